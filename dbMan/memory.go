package dbMan

import (
	"errors"
	"sync"
)

var ErrInjectedFailure = errors.New("Injected persistence failure")

// MemoryPersister keeps the entry in memory. FailSave / FailLoad make the next calls fail, for tests.
type MemoryPersister struct {
	mu       sync.Mutex
	data     []byte
	FailSave bool
	FailLoad bool
	Saves    int
}

// NewMemoryPersister returns an empty MemoryPersister.
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{}
}

// Load implements Persister.
func (p *MemoryPersister) Load() ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.FailLoad {
		return nil, ErrInjectedFailure
	}
	if p.data == nil {
		return nil, nil
	}
	return append([]byte(nil), p.data...), nil
}

// Save implements Persister.
func (p *MemoryPersister) Save(data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.FailSave {
		return ErrInjectedFailure
	}
	p.data = append([]byte(nil), data...)
	p.Saves++
	return nil
}

// Close implements Persister.
func (p *MemoryPersister) Close() error {
	return nil
}
