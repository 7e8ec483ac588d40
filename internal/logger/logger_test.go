package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/nurpe/rodify-dispatch/internal/config"
)

func TestNewWritesToRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dispatch.log")
	log := New(config.LogConfig{Level: "debug", File: path}, "production")

	log.Debug().Str("code", "SVC-00001").Msg("service created")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(data)
	for _, want := range []string{`"code":"SVC-00001"`, `"service":"rodify-dispatch"`, `"message":"service created"`} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %s in %s", want, line)
		}
	}
}

func TestNewFallsBackToInfoLevel(t *testing.T) {
	log := New(config.LogConfig{Level: "chatty"}, "production")
	if log.GetLevel() != zerolog.InfoLevel {
		t.Fatalf("expected info level, got %s", log.GetLevel())
	}
}
