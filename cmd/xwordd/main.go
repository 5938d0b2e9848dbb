package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/xwordplay/config"
	"github.com/domino14/xwordplay/engine"
	"github.com/domino14/xwordplay/gateway"
	"github.com/domino14/xwordplay/game"
	"github.com/domino14/xwordplay/relay"
	"github.com/domino14/xwordplay/store/postgres"
	"github.com/domino14/xwordplay/store/sqlite"
)

var (
	GitVersion string
)

const (
	GracefulShutdownTimeout = 20 * time.Second
)

func setupLogging(debug bool) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	output.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	output.FormatFieldName = func(i interface{}) string {
		return fmt.Sprintf("%s:", i)
	}

	var logger zerolog.Logger
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		logger = zerolog.New(output).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		logger = zerolog.New(output).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	}
	zerolog.DefaultContextLogger = &logger
	log.Logger = logger
	logger.Debug().Msg("Debug logging is on")
}

func main() {
	// Relative database paths are relative to the executable.
	ex, err := os.Executable()
	if err != nil {
		panic(err)
	}
	exPath := filepath.Dir(ex)

	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "bad configuration:", err)
		os.Exit(2)
	}
	cfg.AdjustRelativePaths(exPath)
	setupLogging(cfg.GetBool(config.ConfigDebug))
	log.Info().Str("version", GitVersion).Msgf("Loaded config: %v", cfg.SanitizedSettings())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("xwordd-failed")
	}
	log.Info().Msg("server gracefully shutting down")
}

// gameStore is a repository the daemon can also report on and close.
type gameStore interface {
	engine.Repository
	CountByStatus(ctx context.Context) (map[game.Status]int, error)
	Close() error
}

func openStore(ctx context.Context, cfg *config.Config) (gameStore, error) {
	if url := cfg.GetString(config.ConfigDatabaseURL); url != "" {
		log.Info().Msg("using-postgres-store")
		return postgres.Open(ctx, url)
	}
	log.Info().Str("path", cfg.GetString(config.ConfigDBPath)).Msg("using-sqlite-store")
	return sqlite.Open(ctx, cfg.GetString(config.ConfigDBPath))
}

func run(ctx context.Context, cfg *config.Config) error {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	counts, err := store.CountByStatus(ctx)
	if err != nil {
		return err
	}
	log.Info().
		Int("waiting", counts[game.StatusWaiting]).
		Int("active", counts[game.StatusActive]).
		Int("finished", counts[game.StatusFinished]).
		Msg("stored-games")

	ecfg := engine.ConfigFrom(cfg)
	log.Info().Bool("shared-store", ecfg.SharedStore).Msg("starting-engine")
	svc := engine.NewService(store, ecfg)

	closed := make(chan struct{})
	nc, err := nats.Connect(cfg.GetString(config.ConfigNatsURL),
		nats.Name("xwordd"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Err(err).Msg("nats-disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("nats-reconnected")
		}),
		nats.ClosedHandler(func(*nats.Conn) {
			close(closed)
		}))
	if err != nil {
		return fmt.Errorf("connecting to nats: %w", err)
	}

	prefix := cfg.GetString(config.ConfigSubjectPrefix)
	r := relay.New(svc, nc, prefix)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.Listen(gctx, nc, cfg.GetString(config.ConfigQueueGroup))
	})
	if addr := cfg.GetString(config.ConfigListenAddr); addr != "" {
		hub := gateway.NewHub()
		g.Go(func() error {
			return hub.Listen(gctx, nc, prefix)
		})
		mux := http.NewServeMux()
		mux.Handle("/ws", gateway.New(r, hub, prefix))
		srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		g.Go(func() error {
			log.Info().Str("addr", addr).Msg("gateway-listening")
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			sctx, cancel := context.WithTimeout(context.Background(), GracefulShutdownTimeout)
			defer cancel()
			return srv.Shutdown(sctx)
		})
	}
	g.Go(func() error {
		select {
		case <-gctx.Done():
			log.Info().Msg("got quit signal...")
			return nil
		case <-closed:
			return errors.New("nats connection closed")
		}
	})
	err = g.Wait()

	// Answer the requests already taken before the store is closed.
	if derr := nc.Drain(); derr != nil {
		log.Err(derr).Msg("drain-failed")
		nc.Close()
	}
	select {
	case <-closed:
	case <-time.After(GracefulShutdownTimeout):
		log.Warn().Msg("shutdown-timed-out")
		nc.Close()
	}
	return err
}
