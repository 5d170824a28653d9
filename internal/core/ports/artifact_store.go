package ports

import "context"

// ArtifactStore keeps the uploaded certificate documents.
type ArtifactStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	// Get returns the document and its content type, or
	// domain.ErrArtifactNotFound.
	Get(ctx context.Context, key string) ([]byte, string, error)
	// Delete removes the document. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
