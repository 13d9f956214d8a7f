package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config 从环境变量读取
type Config struct {
	Port      string
	DBPath    string
	RedisAddr string
	RedisPwd  string
	WebOrigin string
	CacheTTL  time.Duration
}

// LoadEnv pulls in .env when present. Missing file is fine.
func LoadEnv() { _ = godotenv.Load() }

func Load() Config {
	get := func(k, def string) string {
		v := os.Getenv(k)
		if v == "" {
			return def
		}
		return v
	}

	ttl := 5 * time.Minute
	if d, err := time.ParseDuration(get("META_CACHE_TTL", "5m")); err == nil {
		ttl = d
	}

	return Config{
		Port:      get("PORT", "8000"),
		DBPath:    resolveDBPath(),
		RedisAddr: os.Getenv("REDIS_ADDR"), // empty = meta cache disabled
		RedisPwd:  os.Getenv("REDIS_PASSWORD"),
		WebOrigin: get("WEB_ORIGIN", "http://localhost:5173"),
		CacheTTL:  ttl,
	}
}

// resolveDBPath: APP_DB_PATH wins (relative paths resolved against the app
// root, ~ expanded), otherwise <root>/data/equip.db.
func resolveDBPath() string {
	root := appRootDir()

	custom := os.Getenv("APP_DB_PATH")
	if custom == "" {
		dataDir := filepath.Join(root, "data")
		_ = os.MkdirAll(dataDir, 0o755)
		return filepath.Join(dataDir, "equip.db")
	}

	if strings.HasPrefix(custom, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			custom = filepath.Join(home, strings.TrimPrefix(custom, "~"))
		}
	}
	if !filepath.IsAbs(custom) {
		custom = filepath.Join(root, custom)
	}
	_ = os.MkdirAll(filepath.Dir(custom), 0o755)
	return custom
}

func appRootDir() string {
	if v := os.Getenv("APP_ROOT"); v != "" {
		return v
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}
