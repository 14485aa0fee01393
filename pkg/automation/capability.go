package automation

import "context"

// Request describes one cancellation attempt against a provider endpoint.
type Request struct {
	URL      string
	Method   string
	FormData map[string]string
}

// Result is what the attempt produced. Retryable marks failures worth
// another attempt (timeouts, 5xx, rate limiting); everything else is final.
type Result struct {
	StatusCode  int
	BodySnippet string
	Retryable   bool
}

// Capability performs automated unsubscribe requests. Implementations must
// honor ctx cancellation; callers bound each attempt with a timeout.
type Capability interface {
	Invoke(ctx context.Context, req Request) (*Result, error)
}
