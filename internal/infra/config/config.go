package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application.
type AppConfig struct {
	// MongoDB
	MongoURI          string
	StudentsDBName    string
	StudentsStatsColl string
	LoggerDBName      string
	LoggerStatsColl   string

	// Google Sheets (student directory + dashboard); optional.
	SheetID         string
	WorksheetName   string
	CredentialsFile string

	// Classification keyword lists.
	PracticeWords []string
	MessageWords  []string

	// Chat export drop file produced by the extraction step.
	ExportFile string

	// Telegram run-summary notifications; optional.
	TelegramToken   string
	AdminTelegramID int64

	CronSpecETL string
	LogLevel    string
	Environment string
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.MongoURI = os.Getenv("MONGO_URI")
	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGO_URI is not set")
	}

	cfg.StudentsDBName = envOrDefault("STUDENTS_DB", "students_db")
	cfg.StudentsStatsColl = envOrDefault("STUDENTS_STATS", "student_stats")
	cfg.LoggerDBName = envOrDefault("LOGGER_DB", "logger_db")
	cfg.LoggerStatsColl = envOrDefault("LOGGER_STATS", "logger_stats")

	cfg.ExportFile = os.Getenv("EXPORT_FILE")
	if cfg.ExportFile == "" {
		return nil, fmt.Errorf("EXPORT_FILE is not set")
	}

	cfg.PracticeWords = parseWordList(os.Getenv("PRACTICE_WORDS"))
	if len(cfg.PracticeWords) == 0 {
		return nil, fmt.Errorf("PRACTICE_WORDS is not set")
	}
	cfg.MessageWords = parseWordList(os.Getenv("MESSAGE_WORDS"))
	if len(cfg.MessageWords) == 0 {
		return nil, fmt.Errorf("MESSAGE_WORDS is not set")
	}

	// The sheet integration is optional, but a configured sheet needs its
	// credentials file alongside.
	cfg.SheetID = os.Getenv("SHEET_ID")
	cfg.WorksheetName = envOrDefault("WORKSHEET_NAME", "main")
	cfg.CredentialsFile = os.Getenv("CREDENTIALS_FILE")
	if cfg.SheetID != "" && cfg.CredentialsFile == "" {
		return nil, fmt.Errorf("CREDENTIALS_FILE is not set but SHEET_ID is")
	}

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken != "" {
		adminIDStr := os.Getenv("ADMIN_TELEGRAM_ID")
		if adminIDStr == "" {
			return nil, fmt.Errorf("ADMIN_TELEGRAM_ID is not set but TELEGRAM_TOKEN is")
		}
		var err error
		cfg.AdminTelegramID, err = strconv.ParseInt(adminIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
		}
	}

	cfg.CronSpecETL = envOrDefault("CRON_SPEC_ETL", "0 8 * * *") // Default: 08:00 daily

	cfg.LogLevel = strings.ToLower(envOrDefault("LOG_LEVEL", "info"))
	cfg.Environment = strings.ToLower(envOrDefault("ENVIRONMENT", "development"))

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parseWordList parses a keyword list from its env form: a comma-separated
// list, optionally bracketed and with quoted items, e.g. `["done", "sent"]`.
func parseWordList(raw string) []string {
	raw = strings.Trim(strings.TrimSpace(raw), "[]")
	if raw == "" {
		return nil
	}
	var words []string
	for _, part := range strings.Split(raw, ",") {
		word := strings.Trim(strings.TrimSpace(part), `"'`)
		if word != "" {
			words = append(words, word)
		}
	}
	return words
}
