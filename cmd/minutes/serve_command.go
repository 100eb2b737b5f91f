package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"minutes/internal/logging"
	"minutes/internal/server"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if value := strings.TrimSpace(bind); value != "" {
				cfg.Paths.APIBind = value
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			logging.PruneLogs(logger, cfg.Paths.LogDir, cfg.Logging.RetentionDays, filepath.Join(cfg.Paths.LogDir, "minutes.log"))

			svc, closeSvc, err := ctx.newService(serviceOptions{history: true, transcribe: true})
			if err != nil {
				return err
			}
			defer closeSvc()

			srv, err := server.New(cfg, svc, logging.NewComponentLogger(logger, "server"))
			if err != nil {
				return fmt.Errorf("create server: %w", err)
			}
			if err := srv.Start(signalCtx); err != nil {
				return err
			}
			defer srv.Stop()

			fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://%s (Ctrl+C to stop)\n", srv.Addr())
			<-signalCtx.Done()
			logger.Info("minutes server shutting down")
			return nil
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Override paths.api_bind (host:port)")
	return cmd
}
