package main

import (
	"io"
	"os"

	"github.com/go-faster/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/elbader17/sheetrelay/pkg/config"
	"github.com/elbader17/sheetrelay/pkg/database"
	"github.com/elbader17/sheetrelay/pkg/gsheet"
	"github.com/elbader17/sheetrelay/pkg/relay"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "sheetrelay",
		Short:         "Relay SQL query results into Google Sheets",
		Long:          `sheetrelay runs a query against a MySQL database and overwrites a Google Sheets range with the result.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to a YAML config file")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newPushCmd(opts))
	return cmd
}

// loadConfig reads the config file when one was given, else the defaults.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	if o.configPath == "" {
		return config.LoadDefaultConfig(), nil
	}
	return config.LoadConfig(o.configPath)
}

// newRelayService wires the pipeline components from cfg.
func newRelayService(cfg *config.Config, logger zerolog.Logger) (*relay.Service, error) {
	source, err := cfg.Credentials.NewSource()
	if err != nil {
		return nil, errors.Wrap(err, "credential source")
	}

	connector := database.NewConnector(cfg.ConnectorOptions(), logger)
	executor := database.NewExecutor(logger)
	writer := gsheet.NewWriter(gsheet.NewLoader(source), logger)
	return relay.NewService(connector, executor, writer, logger), nil
}

func newLogger(cfg *config.Config, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stdout
	}
	return config.NewLogger(cfg.Log, w)
}
