package config

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort       string
	DataDir        string
	JWTSecret      string
	AllowedOrigins string
}

func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	return &Config{
		HTTPPort:       getEnv("PORT", "3000"),
		DataDir:        getEnv("DATA_DIR", defaultDataDir()),
		JWTSecret:      getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
	}
}

// StorePath is the location of the player record store inside the data dir.
func (c *Config) StorePath() string {
	return filepath.Join(c.DataDir, "db.json")
}

// Origins splits the comma-separated allow list. "*" yields nil,
// meaning any origin.
func (c *Config) Origins() []string {
	if c.AllowedOrigins == "" || c.AllowedOrigins == "*" {
		return nil
	}
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func defaultDataDir() string {
	// Hosts with a persistent disk mount it at /var/data by convention.
	if info, err := os.Stat("/var/data"); err == nil && info.IsDir() {
		return "/var/data"
	}
	return "data"
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
