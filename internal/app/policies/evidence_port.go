package policies

import (
	"context"
	"io"
)

// EvidenceStore accepts raw image bytes and returns a stable reference. The
// core only stores and compares the returned references.
type EvidenceStore interface {
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) (string, error)
}
