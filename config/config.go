// Package config loads daemon settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the daemon settings.
type Config struct {
	ListenAddr string
	AuthToken  string
	PolicyPath string

	HFToken       string
	TextModelURL  string
	ImageModelURL string

	ClassifierTimeout time.Duration
	TextThreshold     float64
	NSFWThreshold     float64

	DefaultHandler string

	LLMAPIKey  string
	LLMModel   string
	LLMBaseURL string
}

// Default endpoints mirror the hosted inference models the guardrail
// was tuned against.
const (
	defaultTextModelURL  = "https://api-inference.huggingface.co/models/facebook/bart-large-mnli"
	defaultImageModelURL = "https://api-inference.huggingface.co/models/Falconsai/nsfw_image_detection"
)

// Load reads configuration from the environment, optionally seeding it
// from a .env file first. A missing .env file is not an error.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: load %s: %w", envFile, err)
		}
	} else {
		_ = godotenv.Load()
	}

	cfg := &Config{
		ListenAddr:     getEnv("AEGIS_LISTEN", ":8080"),
		AuthToken:      os.Getenv("AEGIS_AUTH_TOKEN"),
		PolicyPath:     getEnv("AEGIS_POLICY_FILE", "config/rules.yaml"),
		HFToken:        os.Getenv("HF_API_TOKEN"),
		TextModelURL:   getEnv("AEGIS_TEXT_MODEL_URL", defaultTextModelURL),
		ImageModelURL:  getEnv("AEGIS_IMAGE_MODEL_URL", defaultImageModelURL),
		DefaultHandler: getEnv("AEGIS_DEFAULT_HANDLER", "research"),
		LLMAPIKey:      os.Getenv("AEGIS_LLM_API_KEY"),
		LLMModel:       getEnv("AEGIS_LLM_MODEL", "gpt-4o-mini"),
		LLMBaseURL:     os.Getenv("AEGIS_LLM_BASE_URL"),
	}

	var err error
	if cfg.ClassifierTimeout, err = getDuration("AEGIS_CLASSIFIER_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.TextThreshold, err = getFloat("AEGIS_TEXT_THRESHOLD", 0.5); err != nil {
		return nil, err
	}
	if cfg.NSFWThreshold, err = getFloat("AEGIS_NSFW_THRESHOLD", 0.8); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return f, nil
}
