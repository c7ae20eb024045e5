package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/prjemian/flyscan/cmd/flyscan/app"
	"github.com/prjemian/flyscan/logger"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "c", "", "Path to the configuration file")
	flag.Parse()

	config := app.DefaultConfig()
	if configPath != "" {
		loaded, err := app.LoadConfig(configPath)
		if err != nil {
			logger.Error("failed to load configuration file", "path", configPath, "error", err)
			os.Exit(1)
		}
		config = loaded
	}

	log := logger.GetLogger()
	if level, err := config.LogLevel(); err == nil {
		log.SetLevel(level)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.Run(ctx, config, log); err != nil {
		log.Error("fly scan failed", "error", err)

		cancel()
		os.Exit(1)
	}
}
