// Package memory provides a process-local storage backend. It is the
// default for tests and for hosts that do not need durability.
package memory

import (
	"context"
	"sync"

	"github.com/lborres/ticketflow/core"
)

type Adapter struct {
	mu     sync.RWMutex
	values map[string]string
}

var _ core.Storage = (*Adapter)(nil)

func New() *Adapter {
	return &Adapter{values: make(map[string]string)}
}

func (a *Adapter) Get(_ context.Context, key string) (string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	value, ok := a.values[key]
	if !ok {
		return "", core.ErrKeyNotFound
	}
	return value, nil
}

func (a *Adapter) Set(_ context.Context, key, value string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.values[key] = value
	return nil
}

func (a *Adapter) Remove(_ context.Context, key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.values, key)
	return nil
}

// Len returns the number of stored keys.
func (a *Adapter) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.values)
}
