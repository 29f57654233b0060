package transport

import (
	"context"
	"io"
)

// Client defines the interface for sending object bytes to a
// pre-authorized upload URL
type Client interface {
	// Put sends size bytes from body to url in a single PUT request.
	// A non-nil error means the request never produced a status.
	Put(ctx context.Context, url string, body io.Reader, size int64, contentType string) (Result, error)
}

// Result is the server's answer to a single PUT
type Result struct {
	StatusCode int
	// Body holds the response body for non-2xx statuses, for error detail
	Body string
}

// OK reports whether the status code is in the 2xx range
func (r Result) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// URLBuilder derives per-object upload URLs from a pre-authenticated
// base URL. The exact URL shape is provider-specific, so callers program
// against this interface rather than a fixed rule.
type URLBuilder interface {
	// UploadURL returns the URL that stores objectName.
	UploadURL(objectName string) string
	// PartURL returns the URL for one part of a chunked upload of
	// objectName. Part numbers are 1-indexed.
	PartURL(objectName string, partNum int) string
}
