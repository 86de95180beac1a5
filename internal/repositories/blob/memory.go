package blob

import (
	"context"
	"sync"

	"github.com/SscSPs/spa_ledger/internal/apperrors"
	portsrepo "github.com/SscSPs/spa_ledger/internal/core/ports/repositories"
)

// MemoryBlobStore keeps blobs in a map. Used for local runs and tests.
type MemoryBlobStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
	types map[string]string
}

// NewMemoryBlobStore creates an empty MemoryBlobStore.
func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{
		blobs: make(map[string][]byte),
		types: make(map[string]string),
	}
}

var _ portsrepo.BlobStore = (*MemoryBlobStore)(nil)

func (m *MemoryBlobStore) PutBlob(ctx context.Context, key string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make([]byte, len(data))
	copy(copied, data)
	m.blobs[key] = copied
	m.types[key] = contentType
	return nil
}

func (m *MemoryBlobStore) GetBlob(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blobs[key]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := make([]byte, len(data))
	copy(copied, data)
	return copied, nil
}

// ContentType returns the content type recorded for key.
func (m *MemoryBlobStore) ContentType(key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.types[key]
}
