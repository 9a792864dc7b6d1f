package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// StorageType selects the backend holding users and the access log.
type StorageType string

const (
	StorageTypeCSV    StorageType = "csv"
	StorageTypeSQLite StorageType = "sqlite"
)

// StorageConfig holds credential and access log storage configuration
type StorageConfig struct {
	Type StorageType `toml:"type"`
	CSV  CSVConfig   `toml:"csv"`
}

// CSVConfig holds the flat file locations of the csv backend
type CSVConfig struct {
	UsersPath     string `toml:"usersPath"`
	AccessLogPath string `toml:"accessLogPath"`
}

// GetDefaultStorageConfig returns default storage configuration
func GetDefaultStorageConfig() *StorageConfig {
	return &StorageConfig{
		Type: StorageTypeCSV,
		CSV: CSVConfig{
			UsersPath:     "usuarios.csv",
			AccessLogPath: "log_acessos.csv",
		},
	}
}

// ValidateConfig validates the storage configuration
func (c *StorageConfig) ValidateConfig() error {
	switch c.Type {
	case StorageTypeCSV:
		if c.CSV.UsersPath == "" {
			return fmt.Errorf("users file path cannot be empty")
		}
		if c.CSV.AccessLogPath == "" {
			return fmt.Errorf("access log file path cannot be empty")
		}
		if filepath.Clean(c.CSV.UsersPath) == filepath.Clean(c.CSV.AccessLogPath) {
			return fmt.Errorf("users file and access log file must differ")
		}
	case StorageTypeSQLite:
	default:
		return fmt.Errorf("unsupported storage type: %s", c.Type)
	}
	return nil
}

// IsCSV returns true if users and access events live in flat files
func (c *StorageConfig) IsCSV() bool {
	return c.Type == StorageTypeCSV
}

// IsSQLite returns true if users and access events live in the panel database
func (c *StorageConfig) IsSQLite() bool {
	return c.Type == StorageTypeSQLite
}

// EnsureDirectoryExists ensures the directories for the csv files exist
func (c *StorageConfig) EnsureDirectoryExists() error {
	if c.Type != StorageTypeCSV {
		return nil
	}
	for _, p := range []string{c.CSV.UsersPath, c.CSV.AccessLogPath} {
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return err
		}
	}
	return nil
}
