package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type Config struct {
	// HTTP Server
	Port string

	// Backend selection
	DataBackend string

	// GitHub ledger store
	GitHubOwner  string
	GitHubRepo   string
	GitHubBranch string
	GitHubPath   string
	GitHubToken  string

	// SQLite ledger store
	SQLiteDBPath string

	// Optional seed ledger for the memory backend
	LedgerSeedFile string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

func Load() *Config {
	cfg := &Config{
		Port: getEnv("PORT", "8081"),

		DataBackend: getEnv("DATA_BACKEND", "memory"),

		GitHubOwner:  getEnv("GITHUB_OWNER", ""),
		GitHubRepo:   getEnv("GITHUB_REPO", ""),
		GitHubBranch: getEnv("GITHUB_BRANCH", "main"),
		GitHubPath:   getEnv("GITHUB_PATH", "dashboard.csv"),
		GitHubToken:  getEnv("GITHUB_TOKEN", ""),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/traindash.db"),

		LedgerSeedFile: getEnv("LEDGER_SEED_FILE", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "traindash"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_updates"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate data backend
	validBackends := []string{"memory", "github", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	// Validate GitHub configuration if backend is github
	if c.DataBackend == "github" {
		if c.GitHubOwner == "" {
			errors = append(errors, "GitHub owner is required when using github backend")
		}
		if c.GitHubRepo == "" {
			errors = append(errors, "GitHub repository is required when using github backend")
		}
		if c.GitHubToken == "" {
			errors = append(errors, "GitHub token is required when using github backend")
		}
		if c.GitHubPath == "" {
			errors = append(errors, "GitHub ledger path cannot be empty when using github backend")
		}
	}

	// Validate SQLite configuration if backend is sqlite
	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			// Check if directory exists or can be created
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	// Validate seed file if provided
	if c.LedgerSeedFile != "" {
		if _, err := os.Stat(c.LedgerSeedFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("ledger seed file does not exist: %s", c.LedgerSeedFile))
		}
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}

		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
