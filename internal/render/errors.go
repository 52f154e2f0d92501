package render

import "fmt"

// ErrorKind classifies an APIError for callers that branch on the
// failure mode rather than the message.
type ErrorKind int

const (
	// ErrNetwork is a transport-level failure (connect, timeout, DNS).
	ErrNetwork ErrorKind = iota
	// ErrAuth is a 401 from the API.
	ErrAuth
	// ErrNotFound is a 404 from the API.
	ErrNotFound
	// ErrRateLimited is a 429 from the API.
	ErrRateLimited
	// ErrHTTP is any other non-2xx response, or an unusable body on a
	// 2xx response.
	ErrHTTP
)

// APIError is the single error type crossing the client boundary.
// Raw transport errors never escape; they are wrapped here.
type APIError struct {
	Kind   ErrorKind
	Path   string // API path of the failed request
	Status int    // HTTP status, 0 for transport failures
	Body   string // response body excerpt for generic HTTP failures
	Err    error  // underlying cause, if any
}

func (e *APIError) Error() string {
	switch e.Kind {
	case ErrAuth:
		return "authentication failed: check that RENDER_API_KEY is correct"
	case ErrNotFound:
		return fmt.Sprintf("resource not found: %s", e.Path)
	case ErrRateLimited:
		return "rate limit exceeded: wait before refreshing"
	case ErrNetwork:
		return fmt.Sprintf("network error: %v", e.Err)
	default:
		return fmt.Sprintf("API error %d: %s", e.Status, e.Body)
	}
}

func (e *APIError) Unwrap() error { return e.Err }
