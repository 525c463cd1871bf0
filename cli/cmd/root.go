package cmd

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Raisondetr3/Person-Service-SOA/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "person-service",
	Short: "CRUD web service for the person collection",
	Long: `Person service exposes a person collection over HTTP with
filtering, sorting, pagination and aggregate statistics backed by
PostgreSQL.

Filters use the field[operator]=value query form, for example:
  GET /persons?weight[gte]=70&nationality[lt]=INDIA&name[like]=john`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads configuration and applies the logging settings.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Logging.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Logging.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	return cfg, nil
}
