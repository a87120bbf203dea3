package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agenthands/ontovec/internal/server"
	"github.com/agenthands/ontovec/internal/table"
)

func newServeCmd() *cobra.Command {
	var tablePath string
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve an embedding table over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}

			t, err := table.Open(tablePath)
			if err != nil {
				return err
			}

			srv := server.NewServer(t, logger)
			r := srv.SetupRouter()

			logger.Info("serving embedding table",
				zap.String("table", tablePath),
				zap.Int("rows", t.Len()),
				zap.Int("port", cfg.Server.Port))
			return r.Run(fmt.Sprintf(":%d", cfg.Server.Port))
		},
	}
	cmd.Flags().StringVar(&tablePath, "table", "", "path to embedding table (required)")
	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides config)")
	cmd.MarkFlagRequired("table")
	return cmd
}
