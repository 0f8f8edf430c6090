package inmemory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/hightouchio/portmanager/keystore"
)

// InMemory is a keystore that stores all keys in process memory. It is useful for tests.
type InMemory struct {
	keys map[uuid.UUID][]byte
	mux  sync.RWMutex
}

func New() *InMemory {
	return &InMemory{keys: make(map[uuid.UUID][]byte)}
}

func (p *InMemory) Get(ctx context.Context, id uuid.UUID) ([]byte, error) {
	p.mux.RLock()
	defer p.mux.RUnlock()

	contents, ok := p.keys[id]
	if !ok {
		return []byte{}, keystore.ErrNotFound
	}
	return append([]byte{}, contents...), nil
}

func (p *InMemory) Set(ctx context.Context, id uuid.UUID, contents []byte) error {
	p.mux.Lock()
	defer p.mux.Unlock()

	p.keys[id] = append([]byte{}, contents...)
	return nil
}

func (p *InMemory) Delete(ctx context.Context, id uuid.UUID) error {
	p.mux.Lock()
	defer p.mux.Unlock()

	delete(p.keys, id)
	return nil
}
