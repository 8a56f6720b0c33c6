// Package redis backs the MachineStore port with Redis, for serve
// deployments where compiled machines outlive one process.
package redis

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aretw0/spool/pkg/machine"
	"github.com/aretw0/spool/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// Store implements ports.MachineStore on a Redis client. Machines are
// stored as their YAML interchange documents; an index set tracks the
// known names.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithTTL sets an expiration for stored machines.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a store with its own client.
func New(address, password string, db int, opts ...Option) *Store {
	client := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(client, opts...)
}

// NewFromClient creates a store on an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "spool:machine:",
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

var _ ports.MachineStore = (*Store)(nil)

func (s *Store) key(name string) string {
	return s.prefix + name
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Save persists the machine's YAML document and indexes the name.
func (s *Store) Save(ctx context.Context, name string, m *machine.Machine) error {
	doc := machine.ToYAML(m)

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(name), doc, s.ttl)
	pipe.SAdd(ctx, s.indexKey(), name)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves and decodes the machine stored under name.
func (s *Store) Load(ctx context.Context, name string) (*machine.Machine, error) {
	doc, err := s.client.Get(ctx, s.key(name)).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, ports.ErrMachineNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}
	return machine.FromYAML([]byte(doc))
}

// List returns the indexed names. Names whose documents have expired
// are pruned from the index lazily.
func (s *Store) List(ctx context.Context) ([]string, error) {
	names, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list machines: %w", err)
	}

	alive := names[:0]
	for _, name := range names {
		exists, err := s.client.Exists(ctx, s.key(name)).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to check %s: %w", name, err)
		}
		if exists == 0 {
			s.client.SRem(ctx, s.indexKey(), name)
			continue
		}
		alive = append(alive, name)
	}
	sort.Strings(alive)
	return alive, nil
}

// Delete removes the machine and its index entry.
func (s *Store) Delete(ctx context.Context, name string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(name))
	pipe.SRem(ctx, s.indexKey(), name)
	_, err := pipe.Exec(ctx)
	return err
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}
