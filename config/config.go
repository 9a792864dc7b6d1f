package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed version
var version string

//go:embed name
var name string

type LogLevel string

const (
	Debug  LogLevel = "debug"
	Info   LogLevel = "info"
	Notice LogLevel = "notice"
	Warn   LogLevel = "warn"
	Error  LogLevel = "error"
)

func GetVersion() string {
	return strings.TrimSpace(version)
}

func GetName() string {
	return strings.TrimSpace(name)
}

func GetLogLevel() LogLevel {
	if IsDebug() {
		return Debug
	}
	logLevel := os.Getenv("CTOP_LOG_LEVEL")
	if logLevel == "" {
		return Info
	}
	return LogLevel(logLevel)
}

func IsDebug() bool {
	return os.Getenv("CTOP_DEBUG") == "true"
}

func GetDBFolderPath() string {
	dbFolderPath := os.Getenv("CTOP_DB_FOLDER")
	if dbFolderPath == "" {
		if IsDebug() {
			return "db"
		}
		dbFolderPath = "/etc/ctop-busca"
	}
	return dbFolderPath
}

func GetDBPath() string {
	return fmt.Sprintf("%s/%s.db", GetDBFolderPath(), GetName())
}

func GetLogFolder() string {
	logFolderPath := os.Getenv("CTOP_LOG_FOLDER")
	if logFolderPath == "" {
		logFolderPath = "/var/log"
	}
	return logFolderPath
}

// GetAdminPassword returns the password given to the admin account when the
// credential store is initialized. The built-in value is public and must be
// rotated right after the first login.
func GetAdminPassword() string {
	if p := os.Getenv("CTOP_ADMIN_PASSWORD"); p != "" {
		return p
	}
	return DefaultAdminPassword
}

const (
	// AdminUsername is the distinguished account that owns the admin panel.
	AdminUsername = "Jonathan"
	// DefaultAdminPassword is insecure by default.
	DefaultAdminPassword = "Jacare@92"

	defaultDatasetPath = "ENDEREÇO CTOP FINAL Atualizado.xlsx"
)

// GeocoderConfig configures the external geocoding provider.
type GeocoderConfig struct {
	Endpoint    string `toml:"endpoint"`
	UserAgent   string `toml:"userAgent"`
	Country     string `toml:"country"`
	MinInterval string `toml:"minInterval"`
	Timeout     string `toml:"timeout"`
	NegativeTTL string `toml:"negativeTTL"`
}

// Interval is the minimum delay between two provider calls.
func (g GeocoderConfig) Interval() time.Duration {
	return parseDuration(g.MinInterval, time.Second)
}

func (g GeocoderConfig) RequestTimeout() time.Duration {
	return parseDuration(g.Timeout, 15*time.Second)
}

// NegativeCacheTTL is how long a "no match" answer stays cached before the
// query may be retried.
func (g GeocoderConfig) NegativeCacheTTL() time.Duration {
	return parseDuration(g.NegativeTTL, 30*24*time.Hour)
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// Config holds the runtime configuration of the panel.
type Config struct {
	Listen       string         `toml:"listen"`
	Domain       string         `toml:"domain"`
	Port         int            `toml:"port"`
	BasePath     string         `toml:"basePath"`
	TimeLocation string         `toml:"timeLocation"`
	DatasetPath  string         `toml:"datasetPath"`
	Storage      StorageConfig  `toml:"storage"`
	Geocoder     GeocoderConfig `toml:"geocoder"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	return &Config{
		Listen:       "",
		Domain:       "",
		Port:         8501,
		BasePath:     "/",
		TimeLocation: "America/Recife",
		DatasetPath:  defaultDatasetPath,
		Storage:      *GetDefaultStorageConfig(),
		Geocoder: GeocoderConfig{
			Endpoint:    "https://nominatim.openstreetmap.org",
			UserAgent:   GetName() + "/" + GetVersion(),
			Country:     "Brasil",
			MinInterval: "1s",
			Timeout:     "15s",
			NegativeTTL: "720h",
		},
	}
}

// Load builds the configuration from defaults, an optional TOML file and the
// environment, in that order. A .env file in the working directory is read
// first when present. An empty path falls back to CTOP_CONFIG.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	if path == "" {
		path = os.Getenv("CTOP_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("CTOP_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("CTOP_DOMAIN"); v != "" {
		cfg.Domain = v
	}
	if v := os.Getenv("CTOP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		}
	}
	if v := os.Getenv("CTOP_DATASET"); v != "" {
		cfg.DatasetPath = v
	}
	if v := os.Getenv("CTOP_STORAGE"); v != "" {
		cfg.Storage.Type = StorageType(v)
	}
	if v := os.Getenv("CTOP_USERS_FILE"); v != "" {
		cfg.Storage.CSV.UsersPath = v
	}
	if v := os.Getenv("CTOP_ACCESS_LOG_FILE"); v != "" {
		cfg.Storage.CSV.AccessLogPath = v
	}
	if v := os.Getenv("CTOP_GEOCODER_URL"); v != "" {
		cfg.Geocoder.Endpoint = v
	}
	if v := os.Getenv("CTOP_GEOCODER_USER_AGENT"); v != "" {
		cfg.Geocoder.UserAgent = v
	}
}

// Validate checks the configuration and normalizes the base path.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.DatasetPath == "" {
		return errors.New("dataset path cannot be empty")
	}
	if c.Geocoder.Endpoint == "" {
		return errors.New("geocoder endpoint cannot be empty")
	}
	if c.Geocoder.UserAgent == "" {
		return errors.New("geocoder user agent cannot be empty")
	}
	if !strings.HasPrefix(c.BasePath, "/") {
		c.BasePath = "/" + c.BasePath
	}
	if !strings.HasSuffix(c.BasePath, "/") {
		c.BasePath += "/"
	}
	if _, err := time.LoadLocation(c.TimeLocation); err != nil {
		return fmt.Errorf("invalid time location %q: %w", c.TimeLocation, err)
	}
	return c.Storage.ValidateConfig()
}

