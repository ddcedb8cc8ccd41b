package datasource

import (
	"context"
	"io"
)

// Source yields one named input as a byte stream. Implementations cover the
// local filesystem and HTTP origins.
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}
