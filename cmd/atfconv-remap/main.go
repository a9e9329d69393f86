// Package main implements the atfconv-remap binary: it rewrites the sparse
// address column of an ATF-like CSV into dense ids assigned in first-seen
// order.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/atfconv/atfconv/internal/app"
	"github.com/atfconv/atfconv/internal/config"
)

func main() {
	configPath := flag.String("config", "", "path to YAML or JSON config file")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "usage: atfconv-remap [-config file] <source>...\n")
		os.Exit(2)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "atfconv-remap: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	var cfg *config.Config
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "atfconv-remap: %v\n", err)
			os.Exit(1)
		}
	} else {
		cfg = config.DefaultConfig()
	}
	config.LoadFromEnv(cfg)

	ctx := context.Background()
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "atfconv-remap: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	for _, source := range flag.Args() {
		if _, err := a.RemapFile(ctx, source); err != nil {
			fmt.Fprintf(os.Stderr, "atfconv-remap: %v\n", err)
			os.Exit(1)
		}
	}
}
