// Package artifacts abstracts where predictor artifacts live. Artifacts
// are read once at process start; neither implementation supports writes.
package artifacts

import "context"

// Store lists and reads immutable artifact blobs.
type Store interface {
	List(ctx context.Context) ([]string, error)
	Read(ctx context.Context, key string) ([]byte, error)
}
