// Package backend builds the configured ledger store.
package backend

import (
	"context"

	"traindash/internal/store"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the store instance and optional cleanup function
type BackendResult struct {
	Store   store.LedgerStore
	Cleanup CleanupFunc
}

// Factory creates ledger stores based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	// Backend type
	Type BackendType

	// GitHub specific
	GitHubOwner  string
	GitHubRepo   string
	GitHubBranch string
	GitHubPath   string
	GitHubToken  string

	// SQLite specific
	SQLiteDBPath string

	// Memory backend specific
	SeedFile string
}

// BackendType represents the type of ledger store
type BackendType string

const (
	GitHubBackend BackendType = "github"
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case GitHubBackend, SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
