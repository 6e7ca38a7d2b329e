package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/accountabro/backend/cmd/matchctl/cmd"
	"github.com/accountabro/backend/internal/config"
	"github.com/accountabro/backend/internal/logger"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.IsDevelopment(), cfg.SentryDSN)
	defer logger.Flush()

	rootCmd := &cobra.Command{
		Use:          "matchctl",
		Short:        "Operator tools for the matching engine",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cmd.MigrateCmd(cfg))
	rootCmd.AddCommand(cmd.PassCmd(cfg))
	rootCmd.AddCommand(cmd.QueueCmd(cfg))
	rootCmd.AddCommand(cmd.TokenCmd(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		logger.Flush()
		os.Exit(1)
	}
}
