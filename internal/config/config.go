package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Offer lifecycle directories
	NewDir        string
	InProgressDir string
	ArchivedDir   string

	// Data storage
	DataFile   string // JSON ledger with analyses and API usage
	ContextDir string // personal context documents (.txt/.md) for prompts
	ExportDir  string // destination for markdown/Excel exports

	// File policy
	MaxFileSizeMB int
	CleanupDays   int

	// Analysis
	MaxConcurrent int // bounded parallel analyses

	// Vertex AI
	GoogleCloudProject     string
	GoogleCloudLocation    string
	Model                  string
	MaxOutputTokens        int32
	Temperature            float32
	CoverLetterTemperature float32
	TokenCost              float64 // cost per output token

	// Gmail intake
	GmailCredentialsPath string
	GmailTokenPath       string

	// Server
	Port           string
	WatchNewOffers bool
}

// DefaultConfig returns a new config with default values
func DefaultConfig() *Config {
	return &Config{
		NewDir:                 filepath.Join("offers", "0_new"),
		InProgressDir:          filepath.Join("offers", "1_in_progress"),
		ArchivedDir:            filepath.Join("offers", "2_archived"),
		DataFile:               filepath.Join("data", "analyses", "analyses.json"),
		ContextDir:             filepath.Join("data", "context"),
		ExportDir:              filepath.Join("data", "exports"),
		MaxFileSizeMB:          10,
		CleanupDays:            30,
		MaxConcurrent:          3,
		GoogleCloudLocation:    "us-central1",
		Model:                  "gemini-1.5-flash",
		MaxOutputTokens:        4096,
		Temperature:            0.2,
		CoverLetterTemperature: 0.7,
		TokenCost:              0.00001,
		GmailCredentialsPath:   "credentials.json",
		GmailTokenPath:         "token.json",
		Port:                   "8080",
	}
}

// Load reads configuration from environment variables, with a best-effort
// .env load for local development.
func Load() *Config {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if base := os.Getenv("OFFERS_DIR"); base != "" {
		cfg.NewDir = filepath.Join(base, "0_new")
		cfg.InProgressDir = filepath.Join(base, "1_in_progress")
		cfg.ArchivedDir = filepath.Join(base, "2_archived")
	}
	cfg.DataFile = getEnv("DATA_FILE", cfg.DataFile)
	cfg.ContextDir = getEnv("CONTEXT_DIR", cfg.ContextDir)
	cfg.ExportDir = getEnv("EXPORT_DIR", cfg.ExportDir)
	cfg.MaxFileSizeMB = getEnvInt("MAX_FILE_SIZE_MB", cfg.MaxFileSizeMB)
	cfg.CleanupDays = getEnvInt("CLEANUP_DAYS", cfg.CleanupDays)
	cfg.MaxConcurrent = getEnvInt("MAX_CONCURRENT_ANALYSES", cfg.MaxConcurrent)
	cfg.GoogleCloudProject = getEnv("GOOGLE_CLOUD_PROJECT", cfg.GoogleCloudProject)
	cfg.GoogleCloudLocation = getEnv("GOOGLE_CLOUD_LOCATION", cfg.GoogleCloudLocation)
	cfg.Model = getEnv("MODEL_NAME", cfg.Model)
	cfg.MaxOutputTokens = int32(getEnvInt("MAX_OUTPUT_TOKENS", int(cfg.MaxOutputTokens)))
	cfg.Temperature = getEnvFloat32("TEMPERATURE", cfg.Temperature)
	cfg.CoverLetterTemperature = getEnvFloat32("COVER_LETTER_TEMPERATURE", cfg.CoverLetterTemperature)
	cfg.TokenCost = getEnvFloat("TOKEN_COST", cfg.TokenCost)
	cfg.GmailCredentialsPath = getEnv("GMAIL_CREDENTIALS_PATH", cfg.GmailCredentialsPath)
	cfg.GmailTokenPath = getEnv("GMAIL_TOKEN_PATH", cfg.GmailTokenPath)
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.WatchNewOffers = getEnvBool("WATCH_NEW_OFFERS", cfg.WatchNewOffers)

	return cfg
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.GoogleCloudProject == "" {
		return fmt.Errorf("GOOGLE_CLOUD_PROJECT is required")
	}
	if c.GoogleCloudLocation == "" {
		return fmt.Errorf("GOOGLE_CLOUD_LOCATION is required")
	}
	if c.MaxFileSizeMB <= 0 {
		return fmt.Errorf("MAX_FILE_SIZE_MB must be positive, got %d", c.MaxFileSizeMB)
	}
	if c.CleanupDays <= 0 {
		return fmt.Errorf("CLEANUP_DAYS must be positive, got %d", c.CleanupDays)
	}
	if c.MaxConcurrent <= 0 {
		return fmt.Errorf("MAX_CONCURRENT_ANALYSES must be positive, got %d", c.MaxConcurrent)
	}
	return nil
}

// EnsureDirs creates all directories the application writes to.
func (c *Config) EnsureDirs() error {
	dirs := []string{
		c.NewDir,
		c.InProgressDir,
		c.ArchivedDir,
		filepath.Dir(c.DataFile),
		c.ContextDir,
		c.ExportDir,
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// MaxFileSizeBytes returns the size limit in bytes.
func (c *Config) MaxFileSizeBytes() int64 {
	return int64(c.MaxFileSizeMB) * 1024 * 1024
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return def
	}
	return f
}

func getEnvFloat32(key string, def float32) float32 {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	f, err := strconv.ParseFloat(val, 32)
	if err != nil {
		return def
	}
	return float32(f)
}

func getEnvBool(key string, def bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return def
	}
	return b
}
