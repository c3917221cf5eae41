package ports

import (
	"context"
	"io"
)

type ImageStore interface {
	// Save stores the upload and returns its public path, e.g. "/public/<file>".
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
}
