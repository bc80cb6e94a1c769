// Package urltemplate provides an ImageSource that maps object names onto a
// public URL template, for deployments where thumbnails are served by a CDN
// or directly from the bucket.
package urltemplate

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// ObjectToken is the placeholder in the template replaced with the escaped
// object name.
const ObjectToken = "{object}"

// Source formats thumbnail URLs from a template string.
type Source struct {
	template string
}

// New validates the template and returns a Source. Templates without the
// object token get the object name appended as a trailing path segment.
func New(template string) (*Source, error) {
	if strings.TrimSpace(template) == "" {
		return nil, fmt.Errorf("thumbnail URL template is required")
	}
	if !strings.Contains(template, ObjectToken) {
		template = strings.TrimRight(template, "/") + "/" + ObjectToken
	}
	return &Source{template: template}, nil
}

// Resolve returns the public URL for objectName. It never fails: the object
// name comes from upstream data and is escaped, not validated.
func (s *Source) Resolve(_ context.Context, objectName string) string {
	return strings.Replace(s.template, ObjectToken, url.PathEscape(objectName), 1)
}
