package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/artci/feedback-api/internal/app"
	"github.com/artci/feedback-api/internal/cli"
	"github.com/artci/feedback-api/internal/config"
	"github.com/artci/feedback-api/internal/service"
)

func main() {
	var root cli.CLI
	kctx := kong.Parse(&root,
		kong.Name("feedbackctl"),
		kong.Description("Run feedback analytics against the configured store and print JSON."),
		kong.UsageOnError(),
	)

	_ = godotenv.Load(root.Env)
	cfg := config.LoadFromEnv()
	if cfg.LogLevel == "" {
		cfg.LogLevel = "warn"
	}

	logger, err := config.NewLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx := context.Background()
	store, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	err = kctx.Run(&cli.Context{
		Ctx:       ctx,
		Analytics: service.NewAnalyticsService(store.Repository, logger, service.WithStoreTimeout(cfg.StoreTimeout)),
		Out:       os.Stdout,
		Indent:    root.Indent,
	})
	_ = store.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
