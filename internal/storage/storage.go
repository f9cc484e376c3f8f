package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var ErrObjectNotFound = errors.New("object not found")

// ObjectStore keeps file payloads under opaque keys and hands out
// time-limited links for direct browser transfers.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Exists(ctx context.Context, key string) (bool, error)
	// Size reports the stored byte length, or ErrObjectNotFound.
	Size(ctx context.Context, key string) (int64, error)
	Delete(ctx context.Context, key string) error
	SignedGetURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	SignedPutURL(ctx context.Context, key string, contentType string, ttl time.Duration) (string, error)
}

const DefaultURLTTL = time.Hour
