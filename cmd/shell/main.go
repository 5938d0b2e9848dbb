package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/kballard/go-shellquote"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/xwordplay/config"
	"github.com/domino14/xwordplay/engine"
	"github.com/domino14/xwordplay/game"
	"github.com/domino14/xwordplay/relay"
	"github.com/domino14/xwordplay/shell"
	"github.com/domino14/xwordplay/store/memory"
)

var (
	GitVersion string
)

func main() {
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

	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	output.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	output.FormatMessage = func(i interface{}) string {
		return fmt.Sprintf("%s", i)
	}
	output.FormatFieldName = func(i interface{}) string {
		return fmt.Sprintf("%s:", i)
	}
	var logger zerolog.Logger
	if cfg.GetBool(config.ConfigDebug) {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		logger = zerolog.New(output).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	} else {
		// The shell is interactive; only warnings get in the way of play.
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
		logger = zerolog.New(output).Level(zerolog.WarnLevel).With().Timestamp().Logger()
	}
	zerolog.DefaultContextLogger = &logger
	log.Logger = logger
	log.Debug().Str("version", GitVersion).Msgf("Loaded config: %v", cfg.SanitizedSettings())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var svc relay.Service
	var watch shell.WatchFunc
	if cfg.GetBool(config.ConfigRemote) {
		nc, err := nats.Connect(cfg.GetString(config.ConfigNatsURL), nats.Name("xword-shell"))
		if err != nil {
			log.Fatal().Err(err).Msg("could not connect to nats")
		}
		defer nc.Close()
		prefix := cfg.GetString(config.ConfigSubjectPrefix)
		svc = relay.NewClient(nc, prefix, cfg.GetDuration(config.ConfigRequestTimeout))
		watch = func(ctx context.Context, code, player string, fn func(game.PlayerView)) error {
			return relay.Watch(ctx, nc, prefix, code, player, fn)
		}
	} else {
		svc = engine.NewService(memory.NewStore(), engine.ConfigFrom(cfg))
	}

	idleConnsClosed := make(chan struct{})
	sig := make(chan os.Signal, 1)
	go func() {
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Debug().Msg("got quit signal...")
		close(idleConnsClosed)
	}()

	sc := shell.NewShellController(ctx, svc, watch)
	if args := cfg.Args(); len(args) > 0 {
		sc.Execute(shellquote.Join(args...))
		sig <- syscall.SIGINT
	} else {
		go sc.Loop(sig)
	}

	<-idleConnsClosed
	sc.Cleanup()
}
