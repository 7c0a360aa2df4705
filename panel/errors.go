package panel

import "fmt"

// MissingCredentialError reports a request against a surface whose API
// key was never configured. It is raised per call, before any network
// I/O, because a process configured with only one key may still be
// asked for the other surface.
type MissingCredentialError struct {
	Surface Surface
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("No API key configured for %s API", e.Surface)
}

// RequestError is the single failure channel for panel calls. HTTP
// error statuses and transport failures (refused connections, DNS,
// timeouts) both normalize into it; StatusCode is 0 when the request
// never produced an HTTP response.
type RequestError struct {
	StatusCode int
	Detail     string
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API request failed (%d): %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("Request failed: %s", e.Detail)
}

// errorEnvelope is the panel's JSON error shape on failing responses.
type errorEnvelope struct {
	Errors []struct {
		Code   string `json:"code"`
		Detail string `json:"detail"`
	} `json:"errors"`
}
