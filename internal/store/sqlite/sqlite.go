// Package sqlite is a local durable ledger store. It keeps the canonical
// delimited-text blob in a single-row table with an integer revision used
// as the CAS token, mirroring the conditional-write contract of the remote
// backend.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"traindash/internal/core"
	"traindash/internal/store"

	_ "modernc.org/sqlite"
)

type Repository struct {
	db   *sql.DB
	path string // logical object path within the store
}

var _ store.LedgerStore = (*Repository)(nil)

func New(dbPath, objectPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	if objectPath == "" {
		objectPath = "dashboard.csv"
	}

	return &Repository{db: db, path: objectPath}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Load reads the stored ledger blob. Fail-open: a missing row or any read
// failure yields an empty ledger.
func (r *Repository) Load(ctx context.Context) (core.Ledger, store.Version, error) {
	var (
		content []byte
		rev     int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT content, version FROM ledger_objects WHERE path = ?`, r.path,
	).Scan(&content, &rev)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Ledger{}, "", nil
	}
	if err != nil {
		slog.WarnContext(ctx, "Ledger read failed, starting empty", "path", r.path, "error", err)
		return core.Ledger{}, "", nil
	}

	ledger, err := store.DecodeLedger(content)
	if err != nil {
		slog.WarnContext(ctx, "Stored ledger is malformed, starting empty", "path", r.path, "error", err)
		return core.Ledger{}, "", nil
	}
	return ledger, store.Version(strconv.FormatInt(rev, 10)), nil
}

// Save writes the blob conditioned on ver matching the current revision.
func (r *Repository) Save(ctx context.Context, l core.Ledger, ver store.Version) (store.Version, error) {
	content := store.EncodeLedger(l)
	now := time.Now().UTC()

	if ver == "" {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO ledger_objects (path, content, version, updated_at) VALUES (?, ?, 1, ?)`,
			r.path, content, now)
		if err != nil {
			if isUniqueViolation(err) {
				return "", &store.ConflictError{Version: ver}
			}
			return "", &store.TransportError{Op: "save", Err: err}
		}
		return store.Version("1"), nil
	}

	rev, err := strconv.ParseInt(string(ver), 10, 64)
	if err != nil {
		return "", &store.ConflictError{Version: ver}
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE ledger_objects SET content = ?, version = version + 1, updated_at = ?
		 WHERE path = ? AND version = ?`,
		content, now, r.path, rev)
	if err != nil {
		return "", &store.TransportError{Op: "save", Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return "", &store.TransportError{Op: "save", Err: err}
	}
	if affected == 0 {
		return "", &store.ConflictError{Version: ver}
	}

	slog.InfoContext(ctx, "Ledger persisted to sqlite",
		"path", r.path, "rows", len(core.Normalize(l)), "version", rev+1)
	return store.Version(strconv.FormatInt(rev+1, 10)), nil
}

func isUniqueViolation(err error) bool {
	// modernc.org/sqlite surfaces constraint failures in the error text.
	return err != nil && strings.Contains(err.Error(), "constraint failed")
}
