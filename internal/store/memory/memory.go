// Package memory is an in-memory ledger store for tests and local
// development. It honors the same conditional-write contract as the real
// backends.
package memory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"traindash/internal/core"
	"traindash/internal/store"
)

type Store struct {
	mu      sync.Mutex
	rows    core.Ledger
	exists  bool
	rev     int
	loadErr error
}

func New() *Store {
	return &Store{}
}

// NewFromFile seeds the store from a canonical ledger CSV on disk. A
// missing or unreadable file yields an empty store.
func NewFromFile(path string) *Store {
	s := New()
	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	rows, err := store.DecodeLedger(data)
	if err != nil {
		slog.Warn("Ignoring malformed seed ledger", "path", path, "error", err)
		return s
	}
	s.rows = rows
	s.exists = true
	s.rev = 1
	return s
}

var _ store.LedgerStore = (*Store)(nil)

// FailLoads makes every subsequent Load behave as a fetch failure. Used to
// exercise the fail-open contract.
func (s *Store) FailLoads(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		err = errors.New("simulated fetch failure")
	}
	s.loadErr = err
}

func (s *Store) Load(ctx context.Context) (core.Ledger, store.Version, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		slog.WarnContext(ctx, "Ledger fetch failed, starting empty", "error", s.loadErr)
		return core.Ledger{}, "", nil
	}
	if !s.exists {
		return core.Ledger{}, "", nil
	}
	return s.rows.Clone(), s.version(), nil
}

func (s *Store) Save(ctx context.Context, l core.Ledger, ver store.Version) (store.Version, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current := store.Version("")
	if s.exists {
		current = s.version()
	}
	if ver != current {
		return "", &store.ConflictError{Version: ver}
	}
	s.rows = core.Normalize(l).Clone()
	s.exists = true
	s.rev++
	return s.version(), nil
}

func (s *Store) version() store.Version {
	return store.Version(fmt.Sprintf("mem:%d", s.rev))
}
