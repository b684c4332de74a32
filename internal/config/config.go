package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/Jayden-Richmond/Radius-Finance/internal/cache"
	"github.com/Jayden-Richmond/Radius-Finance/internal/repository"
	"github.com/Jayden-Richmond/Radius-Finance/internal/services/dataloader"
	"github.com/Jayden-Richmond/Radius-Finance/internal/services/fetch"
)

// Config holds application configuration
type Config struct {
	// Server settings
	ListenAddr string `json:"listen_addr"`
	Debug      bool   `json:"debug"`

	// DefaultWeeks is the trailing window served when a spending request
	// names neither weeks nor a date range.
	DefaultWeeks int `json:"default_weeks"`

	// Directories
	DataDirectory      string `json:"data_directory"`
	LogDirectory       string `json:"log_directory"`
	TemplatesDirectory string `json:"templates_directory"`
	StaticDirectory    string `json:"static_directory"`

	// StoragePassphrase unlocks an encrypted data directory. Env-only
	// (RADIUS_STORAGE_PASSPHRASE); never read from config files.
	StoragePassphrase string `json:"-"`

	Datasets DatasetsConfig `json:"datasets"`
	Auth     AuthConfig     `json:"auth"`
	Cache    CacheConfig    `json:"cache"`
	Database DatabaseConfig `json:"database"`
	Fetch    FetchConfig    `json:"fetch"`
}

// DatasetsConfig locates the demo datasets. URLs may be bare paths
// (resolved against the data directory), file://, http(s):// or gs://.
type DatasetsConfig struct {
	PrimaryURL   string `json:"primary_url"`
	ReferenceURL string `json:"reference_url"`
	UsersURL     string `json:"users_url"`
}

// AuthConfig holds the demo credential fallback and session settings.
type AuthConfig struct {
	DemoUsername string `json:"demo_username"`
	DemoPassword string `json:"demo_password"`
	DemoEntityID string `json:"demo_entity_id"`

	SessionCookie   string `json:"session_cookie"`
	SessionTTLHours int    `json:"session_ttl_hours"`
}

// CacheConfig tunes the resource cache.
type CacheConfig struct {
	Type          string `json:"type"` // memory (default) or redis
	MaxEntries    int    `json:"max_entries"`
	TTLSeconds    int    `json:"ttl_seconds"`
	RedisAddr     string `json:"redis_addr"`
	RedisPassword string `json:"redis_password"`
	RedisDB       int    `json:"redis_db"`
}

// DatabaseConfig selects the session/preferences store.
type DatabaseConfig struct {
	Driver   string `json:"driver"` // sqlite (default) or postgres
	Path     string `json:"path"`   // sqlite file
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Name     string `json:"name"`
	SSLMode  string `json:"ssl_mode"`
}

// FetchConfig tunes dataset retrieval.
type FetchConfig struct {
	TimeoutSeconds     int    `json:"timeout_seconds"`
	GCSCredentialsFile string `json:"gcs_credentials_file"`
}

// DefaultConfig returns configuration with sensible defaults
func DefaultConfig() *Config {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}

	dataDir := filepath.Join(wd, "data")

	return &Config{
		ListenAddr:         ":8080",
		Debug:              false,
		DefaultWeeks:       6,
		DataDirectory:      dataDir,
		LogDirectory:       filepath.Join(dataDir, "logs"),
		TemplatesDirectory: filepath.Join(wd, "web", "templates"),
		StaticDirectory:    filepath.Join(wd, "web", "static"),
		Datasets: DatasetsConfig{
			PrimaryURL:   "transactions.csv",
			ReferenceURL: "reference.csv",
			UsersURL:     "users.csv",
		},
		Auth: AuthConfig{
			DemoUsername:    "demo",
			DemoPassword:    "demo",
			DemoEntityID:    "user-001",
			SessionCookie:   "radius_session",
			SessionTTLHours: 24,
		},
		Cache: CacheConfig{
			Type:       "memory",
			MaxEntries: 128,
			TTLSeconds: 300,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			Path:   filepath.Join(dataDir, "radius.db"),
		},
		Fetch: FetchConfig{
			TimeoutSeconds: 30,
		},
	}
}

// Load builds the configuration: defaults, then an optional JSON file,
// then RADIUS_* environment variables (highest priority). A .env file next
// to the binary or in the working directory is honored.
func Load(path string) (*Config, error) {
	if exePath, err := os.Executable(); err == nil {
		envPath := filepath.Join(filepath.Dir(exePath), ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("loaded environment from binary directory")
		}
	}
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("loaded environment from working directory")
	}

	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	cfg.ensureDirectories()

	return cfg, nil
}

func (c *Config) applyEnv() {
	c.ListenAddr = getEnv("RADIUS_LISTEN_ADDR", c.ListenAddr)
	c.Debug = getEnvBool("RADIUS_DEBUG", c.Debug)
	c.DefaultWeeks = getEnvInt("RADIUS_DEFAULT_WEEKS", c.DefaultWeeks)

	if dataDir := os.Getenv("RADIUS_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
		c.LogDirectory = filepath.Join(dataDir, "logs")
		c.Database.Path = filepath.Join(dataDir, "radius.db")
	}
	c.LogDirectory = getEnv("RADIUS_LOG_DIR", c.LogDirectory)
	c.TemplatesDirectory = getEnv("RADIUS_TEMPLATES_DIR", c.TemplatesDirectory)
	c.StaticDirectory = getEnv("RADIUS_STATIC_DIR", c.StaticDirectory)
	c.StoragePassphrase = getEnv("RADIUS_STORAGE_PASSPHRASE", c.StoragePassphrase)

	c.Datasets.PrimaryURL = getEnv("RADIUS_PRIMARY_URL", c.Datasets.PrimaryURL)
	c.Datasets.ReferenceURL = getEnv("RADIUS_REFERENCE_URL", c.Datasets.ReferenceURL)
	c.Datasets.UsersURL = getEnv("RADIUS_USERS_URL", c.Datasets.UsersURL)

	c.Auth.DemoUsername = getEnv("RADIUS_DEMO_USERNAME", c.Auth.DemoUsername)
	c.Auth.DemoPassword = getEnv("RADIUS_DEMO_PASSWORD", c.Auth.DemoPassword)
	c.Auth.DemoEntityID = getEnv("RADIUS_DEMO_ENTITY_ID", c.Auth.DemoEntityID)
	c.Auth.SessionCookie = getEnv("RADIUS_SESSION_COOKIE", c.Auth.SessionCookie)
	c.Auth.SessionTTLHours = getEnvInt("RADIUS_SESSION_TTL_HOURS", c.Auth.SessionTTLHours)

	c.Cache.Type = getEnv("RADIUS_CACHE_TYPE", c.Cache.Type)
	c.Cache.MaxEntries = getEnvInt("RADIUS_CACHE_MAX_ENTRIES", c.Cache.MaxEntries)
	c.Cache.TTLSeconds = getEnvInt("RADIUS_CACHE_TTL_SECONDS", c.Cache.TTLSeconds)
	c.Cache.RedisAddr = getEnv("RADIUS_REDIS_ADDR", c.Cache.RedisAddr)
	c.Cache.RedisPassword = getEnv("RADIUS_REDIS_PASSWORD", c.Cache.RedisPassword)
	c.Cache.RedisDB = getEnvInt("RADIUS_REDIS_DB", c.Cache.RedisDB)

	c.Database.Driver = getEnv("RADIUS_DB_DRIVER", c.Database.Driver)
	c.Database.Path = getEnv("RADIUS_DB_PATH", c.Database.Path)
	c.Database.Host = getEnv("RADIUS_DB_HOST", c.Database.Host)
	c.Database.Port = getEnvInt("RADIUS_DB_PORT", c.Database.Port)
	c.Database.User = getEnv("RADIUS_DB_USER", c.Database.User)
	c.Database.Password = getEnv("RADIUS_DB_PASSWORD", c.Database.Password)
	c.Database.Name = getEnv("RADIUS_DB_NAME", c.Database.Name)
	c.Database.SSLMode = getEnv("RADIUS_DB_SSLMODE", c.Database.SSLMode)

	c.Fetch.TimeoutSeconds = getEnvInt("RADIUS_FETCH_TIMEOUT_SECONDS", c.Fetch.TimeoutSeconds)
	c.Fetch.GCSCredentialsFile = getEnv("RADIUS_GCS_CREDENTIALS", c.Fetch.GCSCredentialsFile)
}

// ensureDirectories creates required directories if they don't exist
func (c *Config) ensureDirectories() {
	dirs := []string{
		c.DataDirectory,
		c.LogDirectory,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Warn().Err(err).Str("path", dir).Msg("could not create directory")
		}
	}
}

// SessionTTL returns the configured session lifetime.
func (c *Config) SessionTTL() time.Duration {
	hours := c.Auth.SessionTTLHours
	if hours <= 0 {
		hours = 24
	}
	return time.Duration(hours) * time.Hour
}

// CacheConfig maps onto the cache package configuration.
func (c *Config) CacheConfig() cache.Config {
	cacheType := c.Cache.Type
	if cacheType == "memory" {
		cacheType = "" // factory default
	}
	return cache.Config{
		Type:          cacheType,
		MaxEntries:    c.Cache.MaxEntries,
		RedisAddr:     c.Cache.RedisAddr,
		RedisPassword: c.Cache.RedisPassword,
		RedisDB:       c.Cache.RedisDB,
	}
}

// RepositoryConfig maps onto the repository package configuration.
func (c *Config) RepositoryConfig() repository.Config {
	return repository.Config{
		Driver:           c.Database.Driver,
		SQLitePath:       c.Database.Path,
		PostgresHost:     c.Database.Host,
		PostgresPort:     c.Database.Port,
		PostgresUser:     c.Database.User,
		PostgresPassword: c.Database.Password,
		PostgresDB:       c.Database.Name,
		PostgresSSLMode:  c.Database.SSLMode,
	}
}

// FetchConfig maps onto the fetcher configuration.
func (c *Config) FetchConfig() fetch.Config {
	return fetch.Config{
		HTTPTimeout:        time.Duration(c.Fetch.TimeoutSeconds) * time.Second,
		CacheTTL:           time.Duration(c.Cache.TTLSeconds) * time.Second,
		GCSCredentialsFile: c.Fetch.GCSCredentialsFile,
	}
}

// LoaderConfig maps onto the dataset loader configuration.
func (c *Config) LoaderConfig() dataloader.Config {
	return dataloader.Config{
		PrimaryURL:   c.Datasets.PrimaryURL,
		ReferenceURL: c.Datasets.ReferenceURL,
		UsersURL:     c.Datasets.UsersURL,
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}
