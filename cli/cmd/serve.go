package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Raisondetr3/Person-Service-SOA/internal/api"
	"github.com/Raisondetr3/Person-Service-SOA/internal/database"
	"github.com/Raisondetr3/Person-Service-SOA/internal/observability"
	"github.com/Raisondetr3/Person-Service-SOA/internal/person"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if cfg.Tracing.Enabled {
		shutdown, err := observability.InitTracing(context.Background(), cfg.Tracing.Endpoint)
		if err != nil {
			return err
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(flushCtx); err != nil {
				log.Warn().Err(err).Msg("Trace exporter shutdown failed")
			}
		}()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := database.Connect(ctx, &cfg.Database)
	cancel()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(&cfg.Database); err != nil {
		return err
	}

	server := api.NewServer(cfg, person.NewStorage(db))

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("address", cfg.Server.Address).Msg("Starting HTTP server")
		errCh <- server.Listen()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
