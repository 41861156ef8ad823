package backend

import (
	"context"
	"path/filepath"
	"testing"

	"traindash/internal/config"
)

func TestCreateMemoryBackend(t *testing.T) {
	f := NewFactory(nil)

	result, err := f.CreateBackend(context.Background(), Config{Type: MemoryBackend})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	if result.Store == nil {
		t.Fatal("expected a store instance")
	}
	if result.Cleanup != nil {
		t.Fatal("memory backend must not need cleanup")
	}

	ledger, ver, err := result.Store.Load(context.Background())
	if err != nil || len(ledger) != 0 || ver != "" {
		t.Fatalf("fresh memory store: ledger=%v ver=%q err=%v", ledger, ver, err)
	}
}

func TestCreateSQLiteBackend(t *testing.T) {
	f := NewFactory(nil)

	result, err := f.CreateBackend(context.Background(), Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: filepath.Join(t.TempDir(), "traindash.db"),
	})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	if result.Cleanup == nil {
		t.Fatal("sqlite backend must provide cleanup")
	}
	defer result.Cleanup()

	if _, _, err := result.Store.Load(context.Background()); err != nil {
		t.Fatalf("load from fresh sqlite store: %v", err)
	}
}

func TestCreateBackendRejectsUnknownType(t *testing.T) {
	f := NewFactory(nil)

	if _, err := f.CreateBackend(context.Background(), Config{Type: "redis"}); err == nil {
		t.Fatal("expected error for unknown backend type")
	}
}

func TestCreateGitHubBackendRequiresCoordinates(t *testing.T) {
	f := NewFactory(nil)

	_, err := f.CreateBackend(context.Background(), Config{Type: GitHubBackend})
	if err == nil {
		t.Fatal("expected error for github backend without coordinates")
	}
}

func TestFromAppConfig(t *testing.T) {
	appCfg := &config.Config{
		DataBackend:  "github",
		GitHubOwner:  "acme",
		GitHubRepo:   "training-data",
		GitHubBranch: "main",
		GitHubPath:   "dashboard.csv",
		GitHubToken:  "token-value",
	}

	cfg, err := FromAppConfig(appCfg)
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if cfg.Type != GitHubBackend {
		t.Errorf("Type = %v, want github", cfg.Type)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestFromAppConfigRejectsUnknownBackend(t *testing.T) {
	if _, err := FromAppConfig(&config.Config{DataBackend: "redis"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"sqlite with path", Config{Type: SQLiteBackend, SQLiteDBPath: "x.db"}, false},
		{"github without token", Config{Type: GitHubBackend, GitHubOwner: "a", GitHubRepo: "b", GitHubPath: "c"}, true},
		{"invalid type", Config{Type: "redis"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
