package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"privacymirror/internal/probe"
)

func main() {
	var opts probe.Options
	flag.StringVar(&opts.URL, "url", "http://127.0.0.1:8080/", "Mirror page to load")
	flag.DurationVar(&opts.Timeout, "timeout", 30*time.Second, "How long to wait for the page report")
	flag.BoolVar(&opts.Headless, "headless", true, "Run Chrome headless")
	flag.StringVar(&opts.UserAgent, "user-agent", "", "Override the browser User-Agent. Optional.")
	flag.StringVar(&opts.ExecPath, "chrome", "", "Path to the Chrome binary. Optional.")
	summary := flag.Bool("summary", false, "Print a short summary instead of the full report")
	flag.Parse()

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Info().Str("url", opts.URL).Bool("headless", opts.Headless).Msg("probing")
	report, err := probe.Run(ctx, opts)
	if err != nil {
		log.Fatal().Err(err).Msg("probe failed")
	}

	var out interface{} = report
	if *summary {
		out = probe.Summarize(report)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatal().Err(err).Msg("write report")
	}
}
