package transport

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// Request is the in-flight record for a single backend call: the original
// method, path, encoded body and headers, plus the retry counter. A replay
// after a refresh exchange is issued as a copy with Attempt incremented;
// the original record is never mutated, so concurrent requests cannot leak
// retry state into each other.
type Request struct {
	ID      string
	Method  string
	Path    string
	Body    []byte
	Header  http.Header
	Attempt int

	suppressExpired bool
}

// RequestOption modifies a single outgoing request.
type RequestOption func(*Request)

// Background marks the request as part of a background, non-critical
// subsystem (notification polling and the like). Background requests never
// trigger the session-expired handler when a refresh exchange fails.
func Background() RequestOption {
	return func(r *Request) {
		r.suppressExpired = true
	}
}

// LoginSurface marks a request issued from the login surface itself
// (login, registration, password reset). Forcing navigation to login on an
// auth failure there would be redundant, so the session-expired handler is
// skipped the same way it is for Background requests.
func LoginSurface() RequestOption {
	return func(r *Request) {
		r.suppressExpired = true
	}
}

// WithHeader sets an extra header on the outgoing request.
func WithHeader(key, value string) RequestOption {
	return func(r *Request) {
		r.Header.Set(key, value)
	}
}

func newRequest(method, path string, body any, options ...RequestOption) (Request, error) {
	if method == "" {
		return Request{}, fmt.Errorf("method is required")
	}
	if path == "" {
		return Request{}, fmt.Errorf("path is required")
	}

	req := Request{
		ID:     uuid.New().String(),
		Method: method,
		Path:   path,
		Header: make(http.Header),
	}

	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return Request{}, fmt.Errorf("encoding request body: %w", err)
		}
		req.Body = encoded
	}

	for _, opt := range options {
		opt(&req)
	}

	return req, nil
}

// withAttempt returns a copy of the request with the retry counter set.
func (r Request) withAttempt(attempt int) Request {
	r.Attempt = attempt
	return r
}
