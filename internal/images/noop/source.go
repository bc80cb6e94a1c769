// Package noop provides the ImageSource used when no thumbnail backend is
// configured: every lookup yields an empty thumbnail.
package noop

import "context"

// Source resolves every object name to the empty string.
type Source struct{}

// New returns a no-op image source.
func New() *Source {
	return &Source{}
}

// Resolve always reports no image available.
func (*Source) Resolve(context.Context, string) string {
	return ""
}
