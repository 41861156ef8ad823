// Package store defines the ledger persistence port and the canonical
// delimited-text encoding shared by its adapters.
package store

import (
	"context"
	"errors"
	"fmt"

	"traindash/internal/core"
)

// Version is the opaque CAS token identifying one state of the stored
// ledger object. The zero value means "object absent".
type Version string

// ErrNotFound reports that the ledger object does not exist yet.
var ErrNotFound = errors.New("ledger object not found")

// ConflictError reports a stale conditional write: the object changed since
// the version token was observed. The caller must re-load and retry; the
// adapter never retries or merges on its own.
type ConflictError struct {
	Version Version
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("ledger was modified by another writer (stale version %q)", string(e.Version))
}

// TransportError reports a network or authentication failure talking to the
// backing store. Nothing was written.
type TransportError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s ledger: unexpected status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s ledger: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// LedgerStore is the outbound port for ledger persistence.
type LedgerStore interface {
	// Load fetches the canonical ledger and its current version token.
	// Load is fail-open: any fetch failure (network, missing object,
	// malformed content) yields an empty ledger, zero version, and a nil
	// error, so the system stays usable on first run.
	Load(ctx context.Context) (core.Ledger, Version, error)

	// Save writes the canonical row-only ledger, conditioned on ver being
	// the object's current token (zero ver performs a create). A stale
	// token fails with *ConflictError; transport or auth failures fail
	// with *TransportError. No partial writes, no automatic retries.
	Save(ctx context.Context, l core.Ledger, ver Version) (Version, error)
}
