package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"family-feud/internal/config"
	"family-feud/internal/db"
	"family-feud/internal/directory"
	"family-feud/internal/events"
	"family-feud/internal/game"
	"family-feud/internal/server"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Warn().Err(err).Msg("failed to load .env")
	}
	if err := newCommand().Execute(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func newCommand() *cobra.Command {
	cfg := config.Default()
	cmd := &cobra.Command{
		Use:           "family-feud",
		Short:         "Serves live Family Feud games over websockets.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Load(cmd.Flags()); err != nil {
				return err
			}
			return cfg.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(cfg)
			return serve(cmd.Context(), cfg)
		},
	}
	config.BindFlags(cmd.Flags(), &cfg)
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	return cmd
}

func setupLogging(cfg config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func serve(parent context.Context, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opts []server.Option
	var sinks events.FanOut

	conn, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	if conn != nil {
		archive := events.NewArchive(conn, 0)
		go archive.Run(ctx)
		defer archive.Close()
		sinks = append(sinks, archive)
	}

	if cfg.RedisURL != "" {
		client, err := directory.Connect(ctx, cfg.RedisURL, cfg.RedisPassword)
		if err != nil {
			return err
		}
		defer client.Close()
		idle := time.Duration(cfg.SessionIdleMinutes) * time.Minute
		opts = append(opts, server.WithDirectory(directory.NewRedis(client, 2*idle)))
		log.Info().Msg("room directory backed by redis")
	}

	if cfg.NATSURL != "" {
		nc, err := events.ConnectNATS(events.NATSConfig{URL: cfg.NATSURL, MaxReconnects: -1})
		if err != nil {
			return err
		}
		defer nc.Drain()
		sinks = append(sinks, events.NewNATSSink(nc))
		log.Info().Str("url", nc.ConnectedUrl()).Msg("publishing game events to NATS")
	}
	if len(sinks) > 0 {
		opts = append(opts, server.WithEventSink(game.EventSink(sinks)))
	}

	srv := server.New(conn, cfg, opts...)
	go srv.Run(ctx)
	defer srv.Shutdown()

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", httpServer.Addr).Msg("family-feud server listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func openDatabase(cfg config.Config) (*gorm.DB, error) {
	if cfg.DatabaseURL == "" {
		log.Warn().Msg("no database configured; using built-in questions and no leaderboard")
		return nil, nil
	}
	conn, err := db.Open(cfg.DatabaseURL, db.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.DBConnMaxLifetimeSeconds) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.DBConnMaxIdleTimeSeconds) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	if err := db.Migrate(conn); err != nil {
		return nil, fmt.Errorf("database migration failed: %w", err)
	}
	return conn, nil
}
