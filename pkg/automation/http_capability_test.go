package automation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvokeStatusClasses(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		wantRetryable bool
	}{
		{"2xx is final success", 200, false},
		{"202 is final success", 202, false},
		{"404 is a final failure", 404, false},
		{"410 is a final failure", 410, false},
		{"429 is retryable", 429, true},
		{"500 is retryable", 500, true},
		{"503 is retryable", 503, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			cap := NewHTTPCapability(time.Second)
			result, err := cap.Invoke(context.Background(), Request{URL: srv.URL})
			require.NoError(t, err)
			assert.Equal(t, tt.status, result.StatusCode)
			assert.Equal(t, tt.wantRetryable, result.Retryable)
		})
	}
}

func TestInvokeSendsForm(t *testing.T) {
	var gotMethod, gotContentType, gotEmail string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		_ = r.ParseForm()
		gotEmail = r.PostFormValue("email")
	}))
	defer srv.Close()

	cap := NewHTTPCapability(time.Second)
	_, err := cap.Invoke(context.Background(), Request{
		URL:      srv.URL,
		Method:   http.MethodPost,
		FormData: map[string]string{"email": "user@example.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "application/x-www-form-urlencoded", gotContentType)
	assert.Equal(t, "user@example.com", gotEmail)
}

func TestInvokeTransportFailureIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	cap := NewHTTPCapability(time.Second)
	result, err := cap.Invoke(context.Background(), Request{URL: srv.URL})
	require.NoError(t, err)
	assert.True(t, result.Retryable)
	assert.Zero(t, result.StatusCode)
	assert.NotEmpty(t, result.BodySnippet)
}

func TestInvokeCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cap := NewHTTPCapability(time.Second)
	_, err := cap.Invoke(ctx, Request{URL: srv.URL})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInvokeTruncatesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 4096)))
	}))
	defer srv.Close()

	cap := NewHTTPCapability(time.Second)
	result, err := cap.Invoke(context.Background(), Request{URL: srv.URL})
	require.NoError(t, err)
	assert.Len(t, result.BodySnippet, snippetLimit)
}
