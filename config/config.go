// Package config provides centralized configuration for the shelfdb engine.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds all engine configuration values.
type Config struct {
	MetaPath string      // path to the _meta instance file
	DataDir  string      // default instance directory; instance paths are not resolved against it by the engine
	FileMode os.FileMode // permissions used when creating a new instance file
}

// Cfg is the global configuration instance, loaded at startup.
var Cfg Config

func init() {
	godotenv.Load()
	Cfg = Load()
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		MetaPath: getEnv("SHELFDB_META_PATH", "_meta.json"),
		DataDir:  getEnv("SHELFDB_DATA_DIR", "."),
		FileMode: 0o644,
	}
}

// getEnv returns the environment variable value or a default if not set.
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
