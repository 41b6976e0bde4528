// Package blob is the binary-store collaborator: given image data it
// returns a stable retrievable URL. The synchronization layer treats that
// URL as an opaque field value, so any backend satisfying Store plugs in.
package blob

import (
	"context"
	"io"
)

// Store persists binary blobs and hands back retrievable URLs.
type Store interface {
	// Put stores the blob under a derived object name and returns its URL.
	// name is a caller hint (original filename) used for the extension only.
	Put(ctx context.Context, name string, r io.Reader) (string, error)
}
