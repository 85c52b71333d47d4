package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/elbader17/sheetrelay/pkg/relay"
)

// exitError carries the process exit code for a failed relay.
type exitError struct {
	result relay.Result
}

func (e *exitError) Error() string {
	return fmt.Sprintf("relay failed (%s): %s", e.result.Kind(), e.result.Message)
}

func newPushCmd(root *rootOptions) *cobra.Command {
	var req relay.Request

	cmd := &cobra.Command{
		Use:   "push",
		Short: "Run a single relay and print the result envelope",
		Example: `  sheetrelay push --sheet 1AbC --range 'Sheet1!A1' \
    --query 'SELECT id, name FROM t' --host db:3306 --user u --database d`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.DBPassword == "" {
				req.DBPassword = os.Getenv("SHEETRELAY_DB_PASSWORD")
			}

			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}

			logger := newLogger(cfg, cmd.ErrOrStderr())
			svc, err := newRelayService(cfg, logger)
			if err != nil {
				return err
			}

			result := svc.Relay(cmd.Context(), req)
			if err := printResult(cmd.OutOrStdout(), result); err != nil {
				return err
			}
			if !result.OK() {
				return &exitError{result: result}
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&req.SpreadsheetID, "sheet", "", "spreadsheet id")
	flags.StringVar(&req.Range, "range", "", "A1-style target range")
	flags.StringVar(&req.Query, "query", "", "SQL query to run")
	flags.StringVar(&req.DBHost, "host", "", "database host[:port]")
	flags.StringVar(&req.DBUser, "user", "", "database user")
	flags.StringVar(&req.DBPassword, "password", "", "database password (default $SHEETRELAY_DB_PASSWORD)")
	flags.StringVar(&req.DBName, "database", "", "database name")
	return cmd
}

func printResult(w io.Writer, result relay.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
