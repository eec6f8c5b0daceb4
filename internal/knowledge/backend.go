package knowledge

import (
	"context"
	"sync"
)

// Backend is the durable layer under the knowledge base. It stores the whole
// serialized document; every write is a full overwrite (last writer wins).
type Backend interface {
	// Load returns the persisted document bytes, or nil when nothing has
	// been persisted yet.
	Load(ctx context.Context) ([]byte, error)
	// Store overwrites the persisted document.
	Store(ctx context.Context, doc []byte) error
	// Reset discards the persisted document.
	Reset(ctx context.Context) error
	Close() error
}

// MemoryBackend is an in-process Backend for tests and ephemeral sessions.
type MemoryBackend struct {
	mu  sync.Mutex
	doc []byte
}

// NewMemory creates an empty MemoryBackend.
func NewMemory() *MemoryBackend {
	return &MemoryBackend{}
}

func (m *MemoryBackend) Load(_ context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.doc == nil {
		return nil, nil
	}
	out := make([]byte, len(m.doc))
	copy(out, m.doc)
	return out, nil
}

func (m *MemoryBackend) Store(_ context.Context, doc []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.doc = make([]byte, len(doc))
	copy(m.doc, doc)
	return nil
}

func (m *MemoryBackend) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.doc = nil
	return nil
}

func (m *MemoryBackend) Close() error { return nil }
