package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/vocdoni/zkballot/config"
	"github.com/vocdoni/zkballot/log"
	"github.com/vocdoni/zkballot/service"
)

func main() {
	flags := pflag.NewFlagSet("zkballotd", pflag.ExitOnError)
	config.AddFlags(flags)
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		flags.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEvery flag can also be set with a %s_ environment variable, e.g. %s_LOG_LEVEL\n",
			config.EnvPrefix, config.EnvPrefix)
	}
	cfg, err := config.Load(flags, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	log.Init(cfg.LogLevel, cfg.LogOutput, nil)
	log.Infow("starting zkballot node",
		"datadir", cfg.DataDir,
		"dbtype", cfg.DBType,
		"commission", len(cfg.Commission),
		"transcriptLabel", cfg.TranscriptLabel)

	if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
		log.Fatalf("failed to create data directory: %v", err)
	}
	node, err := service.NewNode(cfg)
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := node.Start(ctx); err != nil {
		log.Fatal(err)
	}

	<-ctx.Done()
	log.Infow("received signal, shutting down")
	node.Stop()
}
