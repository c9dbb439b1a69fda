package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	for _, key := range []string{
		"FROMAGE_CSV_SEPARATOR", "FROMAGE_TRANSLATION_COLUMN", "FROMAGE_INPUT_FORMAT",
		"FROMAGE_OUTPUT_FORMAT", "FROMAGE_LINE_ENDING", "WORKER_COUNT", "DATABASE_URL", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, ",", cfg.CSVSeparator)
	assert.Equal(t, "TRANSLATION", cfg.TranslationColumn)
	assert.Equal(t, "atools", cfg.InputFormat)
	assert.Equal(t, "csv", cfg.OutputFormat)
	assert.Equal(t, "crlf", cfg.LineEnding)
	assert.Equal(t, 4, cfg.WorkerCount)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_Environment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("FROMAGE_CSV_SEPARATOR", ";")
	t.Setenv("FROMAGE_TRANSLATION_COLUMN", "FR")
	t.Setenv("WORKER_COUNT", "16")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()
	assert.Equal(t, ";", cfg.CSVSeparator)
	assert.Equal(t, "FR", cfg.TranslationColumn)
	assert.Equal(t, 16, cfg.WorkerCount)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestGetEnvInt_InvalidFallsBack(t *testing.T) {
	t.Setenv("WORKER_COUNT", "many")
	assert.Equal(t, 4, getEnvInt("WORKER_COUNT", 4))
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
