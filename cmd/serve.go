package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"voicegate/internal/config"
	"voicegate/internal/degrade"
	"voicegate/internal/leads"
	"voicegate/internal/orchestrator"
	providerfactory "voicegate/internal/provider/factory"
	"voicegate/internal/ratelimit"
	"voicegate/internal/relay"
	"voicegate/internal/server"
)

const serveUsage = `Usage:
  voicegate serve --config <path> [--port <port>]

Flags:
  --config string   Path to YAML configuration file (required)
  --port   int      Override server port from configuration`

const sweepInterval = 5 * time.Minute

func serve(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, serveUsage)
	}

	var cfgPath string
	var overridePort int
	fs.StringVar(&cfgPath, "config", "", "path to configuration file")
	fs.IntVar(&overridePort, "port", 0, "override server port")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("parse serve flags: %w", err)
	}

	if cfgPath == "" {
		return errors.New("serve command requires --config <path>")
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	if overridePort != 0 {
		if overridePort <= 0 || overridePort > 65535 {
			return fmt.Errorf("port override %d must be a valid TCP port", overridePort)
		}
		cfg.Server.Port = overridePort
	}

	registry, err := providerfactory.BuildRegistry(cfg)
	if err != nil {
		return err
	}

	opts := orchestrator.DefaultOptions()
	opts.SpeakTimeout = cfg.Speak.Timeout()
	opts.TranscribeTimeout = cfg.Transcribe.Timeout()
	opts.ConverseTimeout = cfg.Converse.Timeout()
	opts.SpeakDegrade = cfg.Speak.DegradeEnabled()
	opts.TranscribeDegrade = cfg.Transcribe.DegradeEnabled()
	opts.ConverseDegrade = cfg.Converse.DegradeEnabled()

	orch := orchestrator.New(registry, degrade.New(time.Now().UnixNano()), opts)

	limiter := ratelimit.NewMemoryStore(cfg.RateLimit.Window(), cfg.RateLimit.Limit())
	limiter.StartSweeper(sweepInterval, ctx.Done())

	eventRelay := relay.New(cfg.Webhook.URL, cfg.Webhook.SigningSecret, providerfactory.NewRelayClient())
	leadSvc := leads.New(cfg.Brain.BaseURL, cfg.Brain.APIKey, providerfactory.NewRelayClient())

	srv, err := server.New(cfg, orch, eventRelay, leadSvc, limiter)
	if err != nil {
		return err
	}

	return srv.Run(ctx)
}
