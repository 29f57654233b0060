package transport

import (
	"fmt"
	"net/url"
	"strings"
)

// PARBuilder builds upload URLs from an OCI pre-authenticated request
// (PAR) URL. A PAR URL looks like
//
//	https://<endpoint>/p/<par_id>/n/<namespace>/b/<bucket>/o/
//
// where /o/ is the object marker segment. When the marker is already
// present the object name is appended directly, otherwise the marker is
// inserted first.
type PARBuilder struct {
	base      string
	hasMarker bool
}

// NewPARBuilder validates the PAR URL and creates a builder for it
func NewPARBuilder(parURL string) (*PARBuilder, error) {
	base := strings.TrimSuffix(parURL, "/")

	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PAR URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("PAR URL must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("PAR URL has no host")
	}
	if u.RawQuery != "" {
		return nil, fmt.Errorf("PAR URL cannot have a query string")
	}

	return &PARBuilder{
		base:      base,
		hasMarker: strings.HasSuffix(u.Path, "/o"),
	}, nil
}

// UploadURL returns the URL that stores objectName
func (b *PARBuilder) UploadURL(objectName string) string {
	if b.hasMarker {
		return b.base + "/" + encodeObjectName(objectName)
	}
	return b.base + "/o/" + encodeObjectName(objectName)
}

// PartURL returns the upload URL for one part of objectName
func (b *PARBuilder) PartURL(objectName string, partNum int) string {
	return fmt.Sprintf("%s?partNum=%d", b.UploadURL(objectName), partNum)
}

// encodeObjectName percent-encodes an object name while keeping the
// forward slashes that separate its segments
func encodeObjectName(name string) string {
	u := url.URL{Path: name}
	return u.EscapedPath()
}
