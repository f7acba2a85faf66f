package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/yusing/envinject/internal/common"
	"github.com/yusing/envinject/internal/config"
	"github.com/yusing/envinject/internal/entrypoint"
	"github.com/yusing/envinject/internal/gperr"
	"github.com/yusing/envinject/internal/inject"
	"github.com/yusing/envinject/internal/logging"
	"github.com/yusing/envinject/internal/net/gphttp/server"
	"github.com/yusing/envinject/pkg"
	"github.com/yusing/goutils/env"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default $CONFIG_FILE or "+common.ConfigFileName+")")
	renderURL := flag.String("render", "", "fetch a page, print it with config injected and exit")
	flag.Parse()

	// process flags (DEBUG, TRACE) are read at init and ignore .env
	if err := godotenv.Load(common.DotEnvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		gperr.LogWarn("failed to load "+common.DotEnvPath, err)
	}

	initProfiling()
	logging.InitLogger(os.Stderr)
	log.Info().Msgf("envinject version %s", pkg.GetVersion())

	path, optional := *configPath, false
	if path == "" {
		path, optional = env.GetEnvString("CONFIG_FILE", common.ConfigFileName), true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *renderURL != "" {
		render(ctx, path, optional, *renderURL)
		return
	}

	cfg, err := config.Load(path, optional)
	if err != nil {
		gperr.LogFatal("failed to load config", err)
	}

	ep, err := entrypoint.NewEntrypoint(cfg)
	if err != nil {
		gperr.LogFatal("failed to create entrypoint", err)
	}

	log.Info().
		Str("mode", cfg.Mode()).
		Str("upstream", cfg.Upstream).
		Str("root", cfg.Root).
		Bool("url_set", cfg.Inject.URL != "").
		Bool("anon_key_set", cfg.Inject.AnonKey != "").
		Msg("config loaded")

	srv := server.NewServer(server.Options{
		Name:            "envinject",
		Addr:            cfg.Listen,
		Handler:         ep,
		ShutdownTimeout: cfg.ShutdownTimeout,
	})
	if err := srv.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
	log.Info().Interface("stats", ep.Injector().Stats().Snapshot()).Msg("shutdown complete")
}

func render(ctx context.Context, path string, optional bool, rawURL string) {
	injectCfg, err := config.LoadInject(path, optional)
	if err != nil {
		gperr.LogFatal("failed to load config", err)
	}
	client := &http.Client{Timeout: 30 * time.Second}
	if err := entrypoint.Render(ctx, client, inject.New(injectCfg), rawURL, os.Stdout); err != nil {
		gperr.LogFatal("render failed", err)
	}
}
