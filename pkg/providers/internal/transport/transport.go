// Package transport provides the small JSON-over-HTTP helpers shared by
// the adapters that speak to their vendor without an official SDK.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/omnillm/omnillm/pkg/llm"
)

// Request describes a single JSON API call.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    any
}

// Do executes req and returns the HTTP status code and raw response
// body. Failures to reach the vendor at all are reported as provider
// errors with no status code.
func Do(ctx context.Context, client *http.Client, req Request) (int, []byte, error) {
	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return 0, nil, &llm.Error{
				Code:    "request_error",
				Message: fmt.Sprintf("failed to marshal request: %v", err),
				Type:    llm.ErrTypeValidation,
			}
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return 0, nil, &llm.Error{
			Code:    "request_error",
			Message: fmt.Sprintf("failed to create request: %v", err),
			Type:    llm.ErrTypeValidation,
		}
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return 0, nil, &llm.Error{
			Code:    "network_error",
			Message: fmt.Sprintf("request failed: %v", err),
			Type:    llm.ErrTypeProvider,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &llm.Error{
			Code:    "network_error",
			Message: fmt.Sprintf("failed to read response: %v", err),
			Type:    llm.ErrTypeProvider,
		}
	}
	return resp.StatusCode, data, nil
}

// PostJSON is shorthand for a POST with a JSON body.
func PostJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, body any) (int, []byte, error) {
	return Do(ctx, client, Request{Method: http.MethodPost, URL: url, Headers: headers, Body: body})
}

// GetJSON is shorthand for a bare GET.
func GetJSON(ctx context.Context, client *http.Client, url string, headers map[string]string) (int, []byte, error) {
	return Do(ctx, client, Request{Method: http.MethodGet, URL: url, Headers: headers})
}
