package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "FEUD"

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

type Config struct {
	Port                     int
	DatabaseURL              string
	RedisURL                 string
	RedisPassword            string
	NATSURL                  string
	PublicURL                string
	FaceoffAnswerSeconds     int
	FastMoneyPlayer1Seconds  int
	FastMoneyPlayer2Seconds  int
	FastMoneyWinThreshold    int
	ReconnectGraceSeconds    int
	SessionIdleMinutes       int
	MaxPlayers               int
	LogLevel                 string
	LogPretty                bool
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeSeconds int
	DBConnMaxIdleTimeSeconds int
}

func Default() Config {
	return Config{
		Port:                     8080,
		PublicURL:                "http://localhost:8080",
		FaceoffAnswerSeconds:     10,
		FastMoneyPlayer1Seconds:  20,
		FastMoneyPlayer2Seconds:  25,
		FastMoneyWinThreshold:    200,
		ReconnectGraceSeconds:    60,
		SessionIdleMinutes:       60,
		MaxPlayers:               16,
		LogLevel:                 "info",
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           10,
		DBConnMaxLifetimeSeconds: 300,
		DBConnMaxIdleTimeSeconds: 60,
	}
}

func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port)
	}
	if c.FaceoffAnswerSeconds < 0 {
		return errors.New("faceoff-answer-seconds must not be negative")
	}
	if c.FastMoneyPlayer1Seconds <= 0 || c.FastMoneyPlayer2Seconds <= 0 {
		return errors.New("fast money timers must be positive")
	}
	if c.FastMoneyWinThreshold <= 0 {
		return errors.New("fast-money-win-threshold must be positive")
	}
	if c.MaxPlayers < 0 {
		return errors.New("max-players must not be negative")
	}
	return nil
}

// BindFlags registers one flag per setting, defaulting to cfg's values.
func BindFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.IntVarP(&cfg.Port, "port", "p", cfg.Port, "port to listen on (env: FEUD_PORT)")
	fs.StringVar(&cfg.DatabaseURL, "database-url", cfg.DatabaseURL, "postgres connection string (env: FEUD_DATABASE_URL or DATABASE_URL)")
	fs.StringVar(&cfg.RedisURL, "redis-url", cfg.RedisURL, "redis address for the room directory (env: FEUD_REDIS_URL)")
	fs.StringVar(&cfg.RedisPassword, "redis-password", cfg.RedisPassword, "redis password (env: FEUD_REDIS_PASSWORD)")
	fs.StringVar(&cfg.NATSURL, "nats-url", cfg.NATSURL, "NATS server for game event publishing (env: FEUD_NATS_URL)")
	fs.StringVar(&cfg.PublicURL, "public-url", cfg.PublicURL, "externally reachable base URL used in join links (env: FEUD_PUBLIC_URL)")
	fs.IntVar(&cfg.FaceoffAnswerSeconds, "faceoff-answer-seconds", cfg.FaceoffAnswerSeconds, "face-off answer window, 0 disables (env: FEUD_FACEOFF_ANSWER_SECONDS)")
	fs.IntVar(&cfg.FastMoneyPlayer1Seconds, "fast-money-player1-seconds", cfg.FastMoneyPlayer1Seconds, "fast money clock for player 1 (env: FEUD_FAST_MONEY_PLAYER1_SECONDS)")
	fs.IntVar(&cfg.FastMoneyPlayer2Seconds, "fast-money-player2-seconds", cfg.FastMoneyPlayer2Seconds, "fast money clock for player 2 (env: FEUD_FAST_MONEY_PLAYER2_SECONDS)")
	fs.IntVar(&cfg.FastMoneyWinThreshold, "fast-money-win-threshold", cfg.FastMoneyWinThreshold, "combined fast money total that wins outright (env: FEUD_FAST_MONEY_WIN_THRESHOLD)")
	fs.IntVar(&cfg.ReconnectGraceSeconds, "reconnect-grace-seconds", cfg.ReconnectGraceSeconds, "how long a disconnected player keeps their seat (env: FEUD_RECONNECT_GRACE_SECONDS)")
	fs.IntVar(&cfg.SessionIdleMinutes, "session-idle-minutes", cfg.SessionIdleMinutes, "time before idle games are closed (env: FEUD_SESSION_IDLE_MINUTES)")
	fs.IntVar(&cfg.MaxPlayers, "max-players", cfg.MaxPlayers, "players per game including the host, 0 for no limit (env: FEUD_MAX_PLAYERS)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "zerolog level (env: FEUD_LOG_LEVEL)")
	fs.BoolVar(&cfg.LogPretty, "log-pretty", cfg.LogPretty, "human readable console logs (env: FEUD_LOG_PRETTY)")
	fs.IntVar(&cfg.DBMaxOpenConns, "db-max-open-conns", cfg.DBMaxOpenConns, "database pool size (env: FEUD_DB_MAX_OPEN_CONNS)")
	fs.IntVar(&cfg.DBMaxIdleConns, "db-max-idle-conns", cfg.DBMaxIdleConns, "idle database connections (env: FEUD_DB_MAX_IDLE_CONNS)")
	fs.IntVar(&cfg.DBConnMaxLifetimeSeconds, "db-conn-max-lifetime-seconds", cfg.DBConnMaxLifetimeSeconds, "database connection lifetime (env: FEUD_DB_CONN_MAX_LIFETIME_SECONDS)")
	fs.IntVar(&cfg.DBConnMaxIdleTimeSeconds, "db-conn-max-idle-seconds", cfg.DBConnMaxIdleTimeSeconds, "database connection idle time (env: FEUD_DB_CONN_MAX_IDLE_SECONDS)")
}

// Load fills flags that were not set on the command line from the
// environment. Flags always win over FEUD_* variables.
func Load(fs *pflag.FlagSet) error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var errs []error
	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		if f.Name == "database-url" {
			_ = v.BindEnv(f.Name, EnvPrefix+"_DATABASE_URL", "DATABASE_URL")
		} else {
			_ = v.BindEnv(f.Name)
		}
		if !f.Changed && v.IsSet(f.Name) {
			if err := fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name))); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", f.Name, err))
			}
		}
	})
	return errors.Join(errs...)
}

// FromEnv resolves a Config from defaults and the environment only.
func FromEnv() (Config, error) {
	cfg := Default()
	fs := pflag.NewFlagSet("feud", pflag.ContinueOnError)
	BindFlags(fs, &cfg)
	if err := Load(fs); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}
