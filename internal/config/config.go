package config

import (
	_ "embed"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Config struct {
	Database    DatabaseConfig
	Extractor   ExtractorConfig
	Admin       AdminConfig
	Recognition RecognitionConfig
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL; empty selects the in-memory fallback
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type ExtractorConfig struct {
	URL string // face embedding sidecar base URL, defaults to http://localhost:8000
}

// AdminConfig holds the administrative credentials. Both values come from the
// environment only; when either is empty, admin login is disabled.
type AdminConfig struct {
	Username string
	Password string
}

// RecognitionConfig holds the recognition tunables loaded from the embedded
// defaults and overridable via environment variables.
type RecognitionConfig struct {
	MatchThreshold   float64 `yaml:"match_threshold"`
	EmbeddingDim     int     `yaml:"embedding_dim"`
	TicketTTLSeconds int     `yaml:"ticket_ttl_seconds"`
	LogRetention     int     `yaml:"log_retention"`
}

// TicketTTL returns the capture ticket lifetime as a duration.
func (c *RecognitionConfig) TicketTTL() time.Duration {
	return time.Duration(c.TicketTTLSeconds) * time.Second
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

func Load() *Config {
	var rec RecognitionConfig
	if err := yaml.Unmarshal(defaultsYAML, &rec); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded defaults.yaml: " + err.Error())
	}

	rec.MatchThreshold = envFloat("MATCH_THRESHOLD", rec.MatchThreshold)
	rec.EmbeddingDim = envInt("EMBEDDING_DIM", rec.EmbeddingDim)
	rec.TicketTTLSeconds = envInt("TICKET_TTL_SECONDS", rec.TicketTTLSeconds)
	rec.LogRetention = envInt("LOG_RETENTION", rec.LogRetention)

	return &Config{
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Extractor: ExtractorConfig{
			URL: os.Getenv("EXTRACTOR_URL"),
		},
		Admin: AdminConfig{
			Username: os.Getenv("ADMIN_USERNAME"),
			Password: os.Getenv("ADMIN_PASSWORD"),
		},
		Recognition: rec,
	}
}
