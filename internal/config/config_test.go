package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q, want %q", cfg.ListenAddr, ":8080")
	}
	if cfg.Datasets.PrimaryURL != "transactions.csv" {
		t.Errorf("PrimaryURL = %q, want %q", cfg.Datasets.PrimaryURL, "transactions.csv")
	}
	if cfg.Cache.Type != "memory" || cfg.Cache.MaxEntries != 128 {
		t.Errorf("cache defaults = %+v, want memory/128", cfg.Cache)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Database.Driver = %q, want %q", cfg.Database.Driver, "sqlite")
	}
	if cfg.Auth.SessionCookie != "radius_session" {
		t.Errorf("SessionCookie = %q, want %q", cfg.Auth.SessionCookie, "radius_session")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("RADIUS_LISTEN_ADDR", ":9999")
	t.Setenv("RADIUS_DEBUG", "true")
	t.Setenv("RADIUS_DATA_DIR", dataDir)
	t.Setenv("RADIUS_PRIMARY_URL", "https://example.com/tx.csv")
	t.Setenv("RADIUS_CACHE_TYPE", "redis")
	t.Setenv("RADIUS_REDIS_ADDR", "redis:6379")
	t.Setenv("RADIUS_SESSION_TTL_HOURS", "2")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ListenAddr != ":9999" {
		t.Errorf("ListenAddr = %q, want %q", cfg.ListenAddr, ":9999")
	}
	if !cfg.Debug {
		t.Error("Debug = false, want true")
	}
	if cfg.DataDirectory != dataDir {
		t.Errorf("DataDirectory = %q, want %q", cfg.DataDirectory, dataDir)
	}
	if cfg.Database.Path != filepath.Join(dataDir, "radius.db") {
		t.Errorf("Database.Path = %q, want it under the data dir", cfg.Database.Path)
	}
	if cfg.Datasets.PrimaryURL != "https://example.com/tx.csv" {
		t.Errorf("PrimaryURL = %q, want env override", cfg.Datasets.PrimaryURL)
	}
	if cfg.Cache.Type != "redis" || cfg.Cache.RedisAddr != "redis:6379" {
		t.Errorf("cache override = %+v, want redis at redis:6379", cfg.Cache)
	}
	if cfg.SessionTTL().Hours() != 2 {
		t.Errorf("SessionTTL() = %v, want 2h", cfg.SessionTTL())
	}

	// Load also creates the directories it is pointed at.
	if _, err := os.Stat(filepath.Join(dataDir, "logs")); err != nil {
		t.Errorf("expected log directory to be created: %v", err)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("RADIUS_DATA_DIR", filepath.Join(dir, "data"))
	fileCfg := map[string]interface{}{
		"listen_addr": ":7070",
		"datasets": map[string]string{
			"primary_url":   "file:///srv/data/tx.csv",
			"reference_url": "",
		},
		"database": map[string]interface{}{
			"driver": "postgres",
			"host":   "db.internal",
			"port":   5433,
		},
	}
	data, _ := json.Marshal(fileCfg)
	path := filepath.Join(dir, "radius.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ListenAddr != ":7070" {
		t.Errorf("ListenAddr = %q, want file value", cfg.ListenAddr)
	}
	if cfg.Datasets.PrimaryURL != "file:///srv/data/tx.csv" {
		t.Errorf("PrimaryURL = %q, want file value", cfg.Datasets.PrimaryURL)
	}
	if cfg.Datasets.ReferenceURL != "" {
		t.Errorf("ReferenceURL = %q, want explicit empty from file", cfg.Datasets.ReferenceURL)
	}
	if cfg.Database.Driver != "postgres" || cfg.Database.Host != "db.internal" || cfg.Database.Port != 5433 {
		t.Errorf("database = %+v, want file values", cfg.Database)
	}
	// Untouched keys keep their defaults.
	if cfg.Auth.DemoUsername != "demo" {
		t.Errorf("DemoUsername = %q, want default", cfg.Auth.DemoUsername)
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("Load() expected error for missing explicit config file")
	}
}

func TestMappingAccessors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cache.Type = "memory"
	cfg.Cache.TTLSeconds = 60
	cfg.Fetch.TimeoutSeconds = 10

	cacheCfg := cfg.CacheConfig()
	if cacheCfg.Type != "" {
		t.Errorf("CacheConfig().Type = %q, want factory default for memory", cacheCfg.Type)
	}
	if cacheCfg.MaxEntries != 128 {
		t.Errorf("CacheConfig().MaxEntries = %d, want 128", cacheCfg.MaxEntries)
	}

	fetchCfg := cfg.FetchConfig()
	if fetchCfg.HTTPTimeout.Seconds() != 10 {
		t.Errorf("FetchConfig().HTTPTimeout = %v, want 10s", fetchCfg.HTTPTimeout)
	}
	if fetchCfg.CacheTTL.Seconds() != 60 {
		t.Errorf("FetchConfig().CacheTTL = %v, want 60s", fetchCfg.CacheTTL)
	}

	repoCfg := cfg.RepositoryConfig()
	if repoCfg.Driver != "sqlite" || repoCfg.SQLitePath == "" {
		t.Errorf("RepositoryConfig() = %+v, want sqlite with a path", repoCfg)
	}

	loaderCfg := cfg.LoaderConfig()
	if loaderCfg.PrimaryURL != "transactions.csv" {
		t.Errorf("LoaderConfig().PrimaryURL = %q, want default", loaderCfg.PrimaryURL)
	}
}
