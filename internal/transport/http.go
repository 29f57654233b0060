package transport

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxErrorBody caps how much of an error response is kept as detail.
const maxErrorBody = 4 * 1024

// HTTPClient implements the Client interface over plain HTTP. The target
// URL carries its own authorization, so requests are not signed.
type HTTPClient struct {
	client *http.Client
}

// NewHTTPClient creates a new HTTP transport. A zero timeout means no
// overall request deadline; cancellation then comes from the context.
func NewHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{Timeout: timeout},
	}
}

// Put sends the body to url with a single PUT request
func (c *HTTPClient) Put(ctx context.Context, url string, body io.Reader, size int64, contentType string) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, body)
	if err != nil {
		return Result{}, err
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", contentType)

	resp, err := c.client.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	result := Result{StatusCode: resp.StatusCode}
	if !result.OK() {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		result.Body = strings.TrimSpace(string(data))
	} else {
		io.Copy(io.Discard, resp.Body)
	}

	return result, nil
}
