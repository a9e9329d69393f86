// Package main implements the atfconv binary: it converts source trace
// files in any registered format into canonical ATF files next to their
// sources.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/atfconv/atfconv/internal/app"
	"github.com/atfconv/atfconv/internal/config"
	"github.com/atfconv/atfconv/internal/format"
)

func main() {
	var (
		formatID   = flag.String("format", "", "source format: "+strings.Join(format.IDs(), ", "))
		configPath = flag.String("config", "", "path to YAML or JSON config file")
		remote     = flag.Bool("remote", false, "treat arguments as trace-storage object keys")
	)
	flag.Parse()

	if *formatID == "" || flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "usage: atfconv -format <id> [-config file] [-remote] <source>...\n")
		os.Exit(2)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "atfconv: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "atfconv: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "atfconv: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	for _, source := range flag.Args() {
		if *remote {
			_, err = a.ConvertObject(ctx, source, *formatID)
		} else {
			_, err = a.ConvertFile(ctx, source, *formatID)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "atfconv: %v\n", err)
			os.Exit(1)
		}
	}
}

func loadConfig(path string) (*config.Config, error) {
	var cfg *config.Config
	if path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.DefaultConfig()
	}
	config.LoadFromEnv(cfg)
	return cfg, nil
}
