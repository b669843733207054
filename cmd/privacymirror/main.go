package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"privacymirror/internal/analysis"
	"privacymirror/internal/config"
	"privacymirror/internal/geo"
	"privacymirror/internal/handlers"
	"privacymirror/internal/metrics"
	"privacymirror/internal/middleware"
	"privacymirror/internal/page"
	"privacymirror/internal/server"
	"privacymirror/internal/whoami"
)

func setupLogger(cfg *config.MirrorConfig, verbose bool) zerolog.Logger {
	if cfg.LogFormat == "console" {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		log.Logger = zerolog.New(output).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	return log.Logger
}

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the YAML config file")
	addr := flag.String("addr", "", "Listen address, overrides listen_addr")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if *addr != "" {
		cfg.ListenAddr = *addr
		if err := cfg.Validate(); err != nil {
			log.Fatal().Err(err).Msg("invalid -addr")
		}
	}
	logger := setupLogger(cfg, *verbose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	resolver := &whoami.Resolver{RemoteAddrFallback: cfg.RemoteAddrFallback, Logger: logger}
	geoDB, err := geo.Open(cfg.GeoIP.CityDB, cfg.GeoIP.ASNDB)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open GeoIP databases")
	}
	if geoDB != nil {
		resolver.Geo = geoDB
		defer geoDB.Close()
		logger.Info().Str("city_db", cfg.GeoIP.CityDB).Str("asn_db", cfg.GeoIP.ASNDB).Msg("GeoIP lookups enabled")
	} else {
		logger.Info().Msg("no GeoIP database configured, lookup method disabled")
	}

	renderer, err := page.NewRenderer(cfg.BuildVersion, cfg.Page.WebRTCTimeoutMS, cfg.Page.STUNServers)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare page")
	}

	m := metrics.NewManager()
	h := handlers.New(cfg, logger, m, resolver, analysis.New(), renderer)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server.NewRouter(h, middleware.New(cfg, logger, m)),
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	go func() {
		logger.Info().Str("address", srv.Addr).Str("version", cfg.BuildVersion).Msg("Privacy Mirror starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("could not start server")
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
		return
	}
	logger.Info().Msg("server exited gracefully")
}
