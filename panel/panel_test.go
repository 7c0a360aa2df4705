package panel

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"sync"
	"testing"

	"pteromcp/config"
)

func testConfig(baseURL string) config.Config {
	return config.Config{
		PanelURL:          baseURL,
		ClientAPIKey:      "client_key",
		ApplicationAPIKey: "app_key",
		Timeout:           config.DefaultTimeout,
		VerifySSL:         true,
	}
}

func newTestClient(t *testing.T, cfg config.Config) *Client {
	t.Helper()
	c, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func TestNew_RejectsBadURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"relative", "panel.example.com"},
		{"empty host", "https://"},
		{"garbage", "://nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(tt.url)
			if _, err := New(cfg, nil); err == nil {
				t.Fatalf("New(%q) expected error, got nil", tt.url)
			}
		})
	}
}

func TestDo_HeadersPerSurface(t *testing.T) {
	tests := []struct {
		surface    Surface
		wantBearer string
	}{
		{SurfaceClient, "Bearer client_key"},
		{SurfaceApplication, "Bearer app_key"},
	}

	for _, tt := range tests {
		t.Run(string(tt.surface), func(t *testing.T) {
			var gotAuth, gotAccept, gotContentType string
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotAuth = r.Header.Get("Authorization")
				gotAccept = r.Header.Get("Accept")
				gotContentType = r.Header.Get("Content-Type")
				_, _ = w.Write([]byte(`{}`))
			}))
			defer ts.Close()

			c := newTestClient(t, testConfig(ts.URL))
			if _, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/api/client", Surface: tt.surface}); err != nil {
				t.Fatalf("Do() error = %v", err)
			}
			if gotAuth != tt.wantBearer {
				t.Fatalf("Authorization = %q, want %q", gotAuth, tt.wantBearer)
			}
			if gotAccept != "application/json" {
				t.Fatalf("Accept = %q, want application/json", gotAccept)
			}
			if gotContentType != "application/json" {
				t.Fatalf("Content-Type = %q, want application/json", gotContentType)
			}
		})
	}
}

func TestDo_MissingCredentialBeforeNetwork(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		_, _ = w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	cfg := testConfig(ts.URL)
	cfg.ClientAPIKey = ""
	c := newTestClient(t, cfg)

	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/api/client", Surface: SurfaceClient})
	var missing *MissingCredentialError
	if !errors.As(err, &missing) {
		t.Fatalf("Do() error = %v, want *MissingCredentialError", err)
	}
	if got, want := missing.Error(), "No API key configured for client API"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
	if calls != 0 {
		t.Fatalf("server saw %d calls, want 0", calls)
	}
}

func TestDo_LeadingSlashReplacesBasePath(t *testing.T) {
	// A panel URL with a trailing path must not prefix endpoint paths:
	// the standard URL-joining rule is that a leading slash replaces
	// the base path entirely.
	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	c := newTestClient(t, testConfig(ts.URL+"/panel/"))
	if _, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/api/client", Surface: SurfaceClient}); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if got, want := gotPath, "/api/client"; got != want {
		t.Fatalf("request path = %q, want %q", got, want)
	}
}

func TestDo_QueryParameters(t *testing.T) {
	var gotQuery url.Values
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	c := newTestClient(t, testConfig(ts.URL))
	_, err := c.Do(context.Background(), Request{
		Method:  http.MethodGet,
		Path:    "/api/application/users",
		Surface: SurfaceApplication,
		Query:   url.Values{"page": {"3"}},
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if got, want := gotQuery.Get("page"), "3"; got != want {
		t.Fatalf("page query = %q, want %q", got, want)
	}
}

func TestDo_SerializesBody(t *testing.T) {
	var gotBody string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	c := newTestClient(t, testConfig(ts.URL))
	_, err := c.Do(context.Background(), Request{
		Method:  http.MethodPost,
		Path:    "/api/client/servers/abc/power",
		Surface: SurfaceClient,
		Body:    map[string]any{"signal": "start"},
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if got, want := gotBody, `{"signal":"start"}`; got != want {
		t.Fatalf("body = %q, want %q", got, want)
	}
}

func TestDo_NoContentYieldsSuccessMarker(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	c := newTestClient(t, testConfig(ts.URL))
	got, err := c.Do(context.Background(), Request{Method: http.MethodDelete, Path: "/api/application/users/7", Surface: SurfaceApplication})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	want := map[string]any{"success": true}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Do() = %#v, want %#v", got, want)
	}
}

func TestDo_DecodesJSONPassthrough(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"attributes":{"name":"mc1"}}]}`))
	}))
	defer ts.Close()

	c := newTestClient(t, testConfig(ts.URL))
	got, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/api/client", Surface: SurfaceClient})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	data, ok := got.(map[string]any)["data"].([]any)
	if !ok || len(data) != 1 {
		t.Fatalf("Do() = %#v, want one data element", got)
	}
}

func TestDo_ErrorEnvelopeJoined(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"errors":[{"code":"C1","detail":"D1"},{"code":"C2","detail":"D2"}]}`))
	}))
	defer ts.Close()

	c := newTestClient(t, testConfig(ts.URL))
	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/api/client/servers/nope", Surface: SurfaceClient})

	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("Do() error = %v, want *RequestError", err)
	}
	if got, want := reqErr.StatusCode, http.StatusNotFound; got != want {
		t.Fatalf("StatusCode = %d, want %d", got, want)
	}
	if got, want := reqErr.Detail, "C1: D1; C2: D2"; got != want {
		t.Fatalf("Detail = %q, want %q", got, want)
	}
	if got, want := reqErr.Error(), "API request failed (404): C1: D1; C2: D2"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestDo_ErrorEnvelopeMissingFields(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"errors":[{"code":"","detail":""}]}`))
	}))
	defer ts.Close()

	c := newTestClient(t, testConfig(ts.URL))
	_, err := c.Do(context.Background(), Request{Method: http.MethodPost, Path: "/api/application/users", Surface: SurfaceApplication})

	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("Do() error = %v, want *RequestError", err)
	}
	if got, want := reqErr.Detail, "Unknown: No details"; got != want {
		t.Fatalf("Detail = %q, want %q", got, want)
	}
}

func TestDo_NonJSONErrorBodyFallsBackToRawText(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream gone"))
	}))
	defer ts.Close()

	c := newTestClient(t, testConfig(ts.URL))
	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/api/client", Surface: SurfaceClient})

	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("Do() error = %v, want *RequestError", err)
	}
	if got, want := reqErr.Detail, "upstream gone"; got != want {
		t.Fatalf("Detail = %q, want %q", got, want)
	}
}

func TestDo_EmptyErrorBodyFallsBackToStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	c := newTestClient(t, testConfig(ts.URL))
	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/api/client", Surface: SurfaceClient})

	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("Do() error = %v, want *RequestError", err)
	}
	if reqErr.Detail == "" {
		t.Fatal("Detail is empty, want status line fallback")
	}
	if !strings.Contains(reqErr.Error(), "API request failed (500)") {
		t.Fatalf("Error() = %q, want status-carrying message", reqErr.Error())
	}
}

func TestDo_TransportFailureNormalized(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	ts.Close() // refuse all connections

	c := newTestClient(t, testConfig(ts.URL))
	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/api/client", Surface: SurfaceClient})

	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("Do() error = %v, want *RequestError", err)
	}
	if reqErr.StatusCode != 0 {
		t.Fatalf("StatusCode = %d, want 0 for transport failure", reqErr.StatusCode)
	}
	if !strings.HasPrefix(reqErr.Error(), "Request failed: ") {
		t.Fatalf("Error() = %q, want Request failed prefix", reqErr.Error())
	}
}

func TestDo_ContextCancellation(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer ts.Close()

	c := newTestClient(t, testConfig(ts.URL))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/api/client", Surface: SurfaceClient})
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("Do() error = %v, want *RequestError", err)
	}
}

func TestDo_ConcurrentUse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"path":"` + r.URL.Path + `"}`))
	}))
	defer ts.Close()

	c := newTestClient(t, testConfig(ts.URL))

	var wg sync.WaitGroup
	errs := make([]error, 10)
	for i := range errs {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, errs[n] = c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/api/client", Surface: SurfaceClient})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("concurrent Do() #%d error = %v", i, err)
		}
	}
}
