package backend

import (
	"context"
	"fmt"
	"log/slog"

	"traindash/internal/store/github"
	"traindash/internal/store/memory"
	"traindash/internal/store/sqlite"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if !config.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", config.Type)
	}

	switch config.Type {
	case GitHubBackend:
		return f.createGitHubBackend(config)
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case MemoryBackend:
		return f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createGitHubBackend(config Config) (*BackendResult, error) {
	client, err := github.New(github.Config{
		Owner:  config.GitHubOwner,
		Repo:   config.GitHubRepo,
		Branch: config.GitHubBranch,
		Path:   config.GitHubPath,
		Token:  github.StaticToken(config.GitHubToken),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize GitHub ledger store: %w", err)
	}

	f.logger.Info("Initialized GitHub backend",
		"owner", config.GitHubOwner,
		"repo", config.GitHubRepo,
		"branch", config.GitHubBranch,
		"path", config.GitHubPath)

	return &BackendResult{
		Store:   client,
		Cleanup: nil,
	}, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	objectPath := config.GitHubPath
	if objectPath == "" {
		objectPath = "dashboard.csv"
	}
	repo, err := sqlite.New(config.SQLiteDBPath, objectPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite ledger store: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Store:   repo,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	var st *memory.Store
	if config.SeedFile != "" {
		st = memory.NewFromFile(config.SeedFile)
		f.logger.Info("Initialized memory backend", "seed_file", config.SeedFile)
	} else {
		st = memory.New()
		f.logger.Info("Initialized memory backend")
	}

	return &BackendResult{
		Store:   st,
		Cleanup: nil,
	}, nil
}
