package memory

import (
	"context"
	"sync"

	"github.com/blockverify/certificate-api/internal/core/domain"
)

type artifact struct {
	contentType string
	data        []byte
}

// ArtifactStore keeps uploaded documents in memory.
type ArtifactStore struct {
	mu      sync.RWMutex
	objects map[string]artifact
}

func NewArtifactStore() *ArtifactStore {
	return &ArtifactStore{objects: make(map[string]artifact)}
}

func (s *ArtifactStore) Put(_ context.Context, key, contentType string, data []byte) error {
	s.mu.Lock()
	s.objects[key] = artifact{contentType: contentType, data: append([]byte(nil), data...)}
	s.mu.Unlock()
	return nil
}

// Get returns the stored document and its content type.
func (s *ArtifactStore) Get(_ context.Context, key string) ([]byte, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.objects[key]
	if !ok {
		return nil, "", domain.ErrArtifactNotFound
	}
	return append([]byte(nil), a.data...), a.contentType, nil
}

func (s *ArtifactStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.objects, key)
	s.mu.Unlock()
	return nil
}
