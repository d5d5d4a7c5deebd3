package storage

import (
	"context"
	"sync"

	"github.com/zunayedTheCreator/property-prospect-server/internal/config"
)

// MemoryStorage keeps normalised images in memory. Used when S3 is not configured.
type MemoryStorage struct {
	cfg     *config.Config
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryStorage creates an empty MemoryStorage.
func NewMemoryStorage(cfg *config.Config) *MemoryStorage {
	return &MemoryStorage{cfg: cfg, objects: map[string][]byte{}}
}

func (m *MemoryStorage) PutImage(ctx context.Context, agentEmail, propertyID string, data []byte) (string, string, error) {
	processed, err := NormalizeImage(data, m.cfg.ImageMaxDimension, m.cfg.ImageMaxSizeMB)
	if err != nil {
		return "", "", err
	}
	key := objectKey(agentEmail, propertyID)

	m.mu.Lock()
	m.objects[key] = processed
	m.mu.Unlock()
	return publicURL(m.cfg, key), key, nil
}

// Object returns a stored object.
func (m *MemoryStorage) Object(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[key]
	return data, ok
}
