package preview

import "context"

// ImageSource turns an object-storage key into something a crawler can use
// as og:image: a public URL, an inline data URI, or nothing. It returns the
// empty string on any failure; it never returns an error.
type ImageSource interface {
	Resolve(ctx context.Context, objectName string) string
}
