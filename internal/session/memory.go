package session

import (
	"context"
	"sync"
)

// MemoryDriver keeps the session in process memory. Suitable for tests and
// one-shot commands.
type MemoryDriver struct {
	mu   sync.RWMutex
	data map[string]string
}

var _ Driver = (*MemoryDriver)(nil)

func NewMemoryDriver() *MemoryDriver {
	return &MemoryDriver{data: map[string]string{}}
}

func (d *MemoryDriver) Load(_ context.Context, key string) (string, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	v, ok := d.data[key]
	return v, ok, nil
}

func (d *MemoryDriver) Save(_ context.Context, key string, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.data[key] = value
	return nil
}

func (d *MemoryDriver) Delete(_ context.Context, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.data, key)
	return nil
}

func (d *MemoryDriver) Close() error { return nil }

// NewMemoryStore is shorthand for NewStore(NewMemoryDriver()).
func NewMemoryStore() *DriverStore {
	return NewStore(NewMemoryDriver())
}
