// Package document defines the opaque-handle file storage port used for
// resumes and submission documents. The portal's storage backend is an
// external collaborator; the workflow only stores bytes, keeps the
// returned handle, and later retrieves or deletes by handle.
package document

import (
	"context"
	"io"
)

// Store is the file storage port.
type Store interface {
	// Save writes the document bytes and returns an opaque handle.
	Save(ctx context.Context, filename string, r io.Reader) (key string, err error)

	// Open streams a stored document by handle. Returns
	// shared.ErrNotFound if the handle resolves to nothing.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes a stored document. Deleting an unknown handle is
	// a no-op: delete is used on compensation paths where the write may
	// not have landed.
	Delete(ctx context.Context, key string) error
}
