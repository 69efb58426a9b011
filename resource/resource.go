// Package resource provides access to external resources (images) referenced
// from HTML markup.
package resource

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when resource does not exist.
	ErrNotFound = errors.New("resource not found")
	// ErrUnsupportedScheme is returned for URI schemes loader cannot (or is
	// not allowed to) handle.
	ErrUnsupportedScheme = errors.New("unsupported scheme")
	// ErrTooLarge is returned when resource exceeds configured size limit.
	ErrTooLarge = errors.New("resource too large")
	// ErrNotImage is returned by Inspect for data which is not a recognizable
	// image.
	ErrNotImage = errors.New("not an image")
)

// Resource is loaded content. ContentType is what the source claimed (data
// URI media type, HTTP header), it may be empty.
type Resource struct {
	Data        []byte
	ContentType string
}

// Loader fetches resources by URI. Implementations must be safe for
// concurrent use and honor context cancellation.
type Loader interface {
	Fetch(ctx context.Context, uri string) (*Resource, error)
}

// LoaderFunc adapts ordinary function to Loader.
type LoaderFunc func(ctx context.Context, uri string) (*Resource, error)

func (f LoaderFunc) Fetch(ctx context.Context, uri string) (*Resource, error) {
	return f(ctx, uri)
}
