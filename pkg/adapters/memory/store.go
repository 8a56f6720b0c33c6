// Package memory provides an in-process MachineStore, the default for
// single-binary serve mode and for tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/spool/pkg/machine"
	"github.com/aretw0/spool/pkg/ports"
)

// Store keeps machines in a map guarded by a mutex.
type Store struct {
	mu       sync.RWMutex
	machines map[string]string // name -> YAML document
}

// New creates an empty store.
func New() *Store {
	return &Store{machines: make(map[string]string)}
}

var _ ports.MachineStore = (*Store)(nil)

// Save serializes and stores the machine under name.
func (s *Store) Save(ctx context.Context, name string, m *machine.Machine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.machines[name] = machine.ToYAML(m)
	return nil
}

// Load retrieves the machine stored under name.
func (s *Store) Load(ctx context.Context, name string) (*machine.Machine, error) {
	s.mu.RLock()
	doc, ok := s.machines[name]
	s.mu.RUnlock()
	if !ok {
		return nil, ports.ErrMachineNotFound
	}
	return machine.FromYAML([]byte(doc))
}

// List returns the stored names in sorted order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.machines))
	for name := range s.machines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes the machine stored under name. Deleting a missing
// name is not an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.machines, name)
	return nil
}
