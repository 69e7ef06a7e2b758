// Package config loads the daemon runtime settings from the environment
// and the engine configuration from a YAML file.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/Alias1177/signalengine/internal/model"
	"github.com/Alias1177/signalengine/internal/store"
)

// App holds runtime configuration for the daemon binaries.
type App struct {
	LogLevel      string
	TwelveAPIKey  string
	Pairs         []model.Pair
	EngineFile    string
	BatchInterval time.Duration
	MetricsAddr   string

	TelegramToken  string
	TelegramChatID int64

	DB        store.ConnectionParams
	DBEnabled bool
}

// Load initializes configuration from environment variables, reading a
// .env file first when present.
func Load() (*App, error) {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	cfg := &App{
		LogLevel:      getEnvWithDefault("LOG_LEVEL", "info"),
		TwelveAPIKey:  os.Getenv("TWELVE_API_KEY"),
		EngineFile:    os.Getenv("ENGINE_CONFIG"),
		BatchInterval: getEnvDurationWithDefault("BATCH_INTERVAL", 4*time.Hour),
		MetricsAddr:   getEnvWithDefault("METRICS_ADDR", ":9108"),
		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
	}

	if pairs := os.Getenv("PAIRS"); pairs != "" {
		for _, p := range strings.Split(pairs, ",") {
			cfg.Pairs = append(cfg.Pairs, model.Pair(strings.TrimSpace(p)))
		}
	}

	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.TelegramChatID = id
	}

	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.DBEnabled = true
		cfg.DB = store.ConnectionParams{
			Host:     host,
			Port:     getEnvWithDefault("DB_PORT", "5432"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			DBName:   os.Getenv("DB_NAME"),
			SSLMode:  getEnvWithDefault("DB_SSLMODE", "disable"),
		}
	}

	return cfg, nil
}

// engineFile is the YAML shape of an engine configuration document.
type engineFile struct {
	Pairs    map[model.Pair]model.PairConfig `yaml:"pairs" validate:"min=1,dive"`
	Priority []model.Pair                    `yaml:"priority"`
	Sessions model.SessionMap                `yaml:"sessions"`
	Risk     *model.RiskCaps                 `yaml:"risk"`
}

// LoadEngineConfig reads an engine configuration from a YAML file.
// Unknown keys are rejected; missing sections fall back to the
// documented defaults. An empty path yields the full default
// configuration.
func LoadEngineConfig(path string) (model.EngineConfig, error) {
	if path == "" {
		return model.DefaultEngineConfig(), nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return model.EngineConfig{}, fmt.Errorf("read engine config: %w", err)
	}

	var doc engineFile
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return model.EngineConfig{}, fmt.Errorf("parse engine config: %w", err)
	}

	if err := validator.New().Struct(doc); err != nil {
		return model.EngineConfig{}, fmt.Errorf("validate engine config: %w", err)
	}

	cfg := model.EngineConfig{
		Pairs:    doc.Pairs,
		Priority: doc.Priority,
		Sessions: doc.Sessions,
	}
	if doc.Risk != nil {
		cfg.Risk = *doc.Risk
	} else {
		cfg.Risk = model.DefaultRiskCaps()
	}
	return cfg, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
