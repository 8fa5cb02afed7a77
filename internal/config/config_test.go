package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

func TestFromEnvOverridesDefaults(t *testing.T) {
	t.Setenv("FEUD_PORT", "9090")
	t.Setenv("FEUD_FAST_MONEY_WIN_THRESHOLD", "150")
	t.Setenv("DATABASE_URL", "postgres://localhost/feud")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Port)
	}
	if cfg.FastMoneyWinThreshold != 150 {
		t.Fatalf("expected threshold 150, got %d", cfg.FastMoneyWinThreshold)
	}
	if cfg.DatabaseURL != "postgres://localhost/feud" {
		t.Fatalf("expected DATABASE_URL fallback, got %q", cfg.DatabaseURL)
	}
	if cfg.FaceoffAnswerSeconds != 10 {
		t.Fatalf("expected default faceoff window, got %d", cfg.FaceoffAnswerSeconds)
	}
}

func TestFlagsWinOverEnv(t *testing.T) {
	t.Setenv("FEUD_MAX_PLAYERS", "4")
	cfg := Default()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(fs, &cfg)
	if err := fs.Parse([]string{"--max-players", "12"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := Load(fs); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MaxPlayers != 12 {
		t.Fatalf("expected flag value 12, got %d", cfg.MaxPlayers)
	}
}

func TestInvalidEnvValue(t *testing.T) {
	t.Setenv("FEUD_PORT", "eighty")
	if _, err := FromEnv(); err == nil {
		t.Fatalf("expected error for non-numeric port")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected invalid port to fail")
	}
	cfg = Default()
	cfg.FastMoneyPlayer2Seconds = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected zero fast money clock to fail")
	}
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Fatalf("expected missing file to be ignored, got %v", err)
	}
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("FEUD_PUBLIC_URL=http://from-file\nFEUD_LOG_LEVEL=debug\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("FEUD_PUBLIC_URL", "http://from-env")
	t.Setenv("FEUD_LOG_LEVEL", "")
	os.Unsetenv("FEUD_LOG_LEVEL")
	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("FEUD_LOG_LEVEL") })
	if got := os.Getenv("FEUD_PUBLIC_URL"); got != "http://from-env" {
		t.Fatalf("expected existing env to win, got %q", got)
	}
	if got := os.Getenv("FEUD_LOG_LEVEL"); got != "debug" {
		t.Fatalf("expected value from file, got %q", got)
	}
}
