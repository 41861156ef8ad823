package backend

import (
	"fmt"

	"traindash/internal/config"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type: backendType,

		GitHubOwner:  appConfig.GitHubOwner,
		GitHubRepo:   appConfig.GitHubRepo,
		GitHubBranch: appConfig.GitHubBranch,
		GitHubPath:   appConfig.GitHubPath,
		GitHubToken:  appConfig.GitHubToken,

		SQLiteDBPath: appConfig.SQLiteDBPath,

		SeedFile: appConfig.LedgerSeedFile,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case GitHubBackend:
		if c.GitHubOwner == "" {
			return fmt.Errorf("GitHub owner is required for github backend")
		}
		if c.GitHubRepo == "" {
			return fmt.Errorf("GitHub repository is required for github backend")
		}
		if c.GitHubPath == "" {
			return fmt.Errorf("GitHub ledger path is required for github backend")
		}
		if c.GitHubToken == "" {
			return fmt.Errorf("GitHub token is required for github backend")
		}

	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}

	case MemoryBackend:
		// SeedFile is optional, an empty store is a valid start.
	}

	return nil
}

// GetBackendTypes returns all valid backend types
func GetBackendTypes() []BackendType {
	return []BackendType{GitHubBackend, SQLiteBackend, MemoryBackend}
}
