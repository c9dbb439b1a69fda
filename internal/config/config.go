package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	CSVSeparator      string
	TranslationColumn string
	InputFormat       string
	OutputFormat      string
	LineEnding        string
	WorkerCount       int
	DatabaseURL       string
	LogLevel          string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	return &Config{
		CSVSeparator:      getEnv("FROMAGE_CSV_SEPARATOR", ","),
		TranslationColumn: getEnv("FROMAGE_TRANSLATION_COLUMN", "TRANSLATION"),
		InputFormat:       getEnv("FROMAGE_INPUT_FORMAT", "atools"),
		OutputFormat:      getEnv("FROMAGE_OUTPUT_FORMAT", "csv"),
		LineEnding:        getEnv("FROMAGE_LINE_ENDING", "crlf"),
		WorkerCount:       getEnvInt("WORKER_COUNT", 4),
		DatabaseURL:       getEnv("DATABASE_URL", "postgres://localhost:5432/fromage?sslmode=disable"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
