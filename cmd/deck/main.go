package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ivankudzin/swipedeck/internal/app/deckapp"
	"github.com/ivankudzin/swipedeck/internal/config"
	"github.com/ivankudzin/swipedeck/internal/infra/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfgPath  string
		envPath  string
		apiURL   string
		pageSize int
		logFile  string
	)

	defaultCfg := os.Getenv("APP_CONFIG")
	if defaultCfg == "" {
		defaultCfg = "configs/config.yaml"
	}

	cmd := &cobra.Command{
		Use:           "deck",
		Short:         "Swipe through profile cards in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadDotEnv(envPath); err != nil {
				return err
			}
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			flags := cmd.Flags()
			if flags.Changed("api") {
				cfg.UsersAPI.BaseURL = apiURL
			}
			if flags.Changed("page-size") {
				cfg.UsersAPI.PageSize = pageSize
			}
			if flags.Changed("log-file") {
				cfg.Log.File = logFile
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log, err := logger.NewFile(cfg.Log.Level, cfg.Log.File)
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			defer func() {
				_ = log.Sync()
			}()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
			defer stop()

			app, err := deckapp.NewApp(cfg, log)
			if err != nil {
				log.Error("create deck app", zap.Error(err))
				return err
			}
			return app.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", defaultCfg, "path to the YAML config file")
	cmd.Flags().StringVar(&envPath, "env-file", ".env", "dotenv file loaded before the config")
	cmd.Flags().StringVar(&apiURL, "api", "", "users API base URL")
	cmd.Flags().IntVar(&pageSize, "page-size", 10, "profiles requested per page")
	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file, empty disables logging")

	return cmd
}
