// Package ports declares the driven-side interfaces the service
// surfaces depend on. Adapters live under pkg/adapters and
// internal/adapters.
package ports

import (
	"context"
	"errors"

	"github.com/aretw0/spool/pkg/machine"
)

// ErrMachineNotFound is returned when a named machine is absent from a
// store.
var ErrMachineNotFound = errors.New("machine not found")

// MachineStore persists compiled machines under caller-chosen names.
// Implementations must round-trip through the YAML interchange format
// so stored machines stay readable by external tooling.
type MachineStore interface {
	Save(ctx context.Context, name string, m *machine.Machine) error
	Load(ctx context.Context, name string) (*machine.Machine, error)
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, name string) error
}
