package automation

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// snippetLimit bounds how much of the provider's response body gets stored
// on the action row.
const snippetLimit = 512

type httpCapability struct {
	client *http.Client
}

// NewHTTPCapability performs real unsubscribe requests over HTTP. The
// timeout applies per attempt; retry policy lives with the caller.
func NewHTTPCapability(timeout time.Duration) Capability {
	return &httpCapability{
		client: &http.Client{Timeout: timeout},
	}
}

func (c *httpCapability) Invoke(ctx context.Context, req Request) (*Result, error) {
	method := req.Method
	if method == "" {
		method = http.MethodPost
	}

	var body io.Reader
	if len(req.FormData) > 0 {
		form := url.Values{}
		for k, v := range req.FormData {
			form.Set(k, v)
		}
		body = strings.NewReader(form.Encode())
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		// Timeouts and connection failures count as attempts that may
		// succeed later; the snippet carries the transport error.
		return &Result{
			BodySnippet: truncate(err.Error(), snippetLimit),
			Retryable:   true,
		}, nil
	}
	defer resp.Body.Close()

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, snippetLimit))

	return &Result{
		StatusCode:  resp.StatusCode,
		BodySnippet: string(snippet),
		Retryable:   resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests,
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
