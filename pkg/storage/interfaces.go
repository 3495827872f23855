package storage

import (
	"context"
	"errors"
)

// BlobStore holds uploaded receipts and gift images. References are opaque keys.
type BlobStore interface {
	Put(ctx context.Context, data []byte, name, contentType string) (string, error)
	Exists(ctx context.Context, ref string) (bool, error)
	Resolve(ref string) string
	Delete(ctx context.Context, ref string) error
}

// ErrNotConfigured is returned by Unconfigured for every write or lookup.
var ErrNotConfigured = errors.New("blob store is not configured")

// Unconfigured stands in when no bucket credentials are set. Uploads fail as storage errors.
type Unconfigured struct{}

func (Unconfigured) Put(context.Context, []byte, string, string) (string, error) {
	return "", ErrNotConfigured
}

func (Unconfigured) Exists(context.Context, string) (bool, error) {
	return false, ErrNotConfigured
}

func (Unconfigured) Resolve(ref string) string {
	return ref
}

func (Unconfigured) Delete(context.Context, string) error {
	return ErrNotConfigured
}
