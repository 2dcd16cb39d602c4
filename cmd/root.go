// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rowctl/rowctl/cmd/flags"
	"github.com/rowctl/rowctl/internal/ctl"
	"github.com/rowctl/rowctl/internal/dbschema"
	"github.com/rowctl/rowctl/internal/idl"
)

// Version is the rowctl version.
var Version = "development"

func init() {
	viper.SetEnvPrefix("ROWCTL")
	viper.AutomaticEnv()
	flags.RootFlags(rootCmd)
}

var rootCmd = &cobra.Command{
	Use:          "rowctl [--opt]... command [--opt]... [args]... [-- ...]",
	Short:        "inspect and modify a typed, row-oriented configuration database",
	SilenceUsage: true,
	Version:      Version,
	Args:         cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStream(cmd.Context(), args)
	},
}

// openInterpreter loads the schema descriptor bundle and builds the
// Interpreter against it (spec.md §4.J's init).
func openInterpreter() (*ctl.Interpreter, *dbschema.Schema, error) {
	path := flags.SchemaFile()
	if path == "" {
		return nil, nil, fmt.Errorf("--schema-file is required")
	}
	schema, err := dbschema.LoadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("loading schema bundle: %w", err)
	}
	return ctl.Init(schema), schema, nil
}

// runStream parses argv as a command stream against the configured
// schema and runs it to completion against the Postgres-backed IDL.
func runStream(ctx context.Context, argv []string) error {
	it, schema, err := openInterpreter()
	if err != nil {
		return err
	}

	invocations, err := ctl.ParseStream(it, argv, nil)
	if err != nil {
		return err
	}
	if len(invocations) == 0 {
		return nil
	}

	client, err := idl.NewPostgres(ctx, flags.DB(), flags.PgSchema(), schema)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", redactDSN(flags.DB()), err)
	}
	defer client.Close()

	driver := &ctl.Driver{Interpreter: it, IDL: client, Logger: ctl.NewLogger()}
	out, err := driver.Run(ctx, invocations, flags.Oneline(), flags.NoWait(), flags.Timeout())
	if err != nil {
		return err
	}
	if out != "" {
		fmt.Println(out)
	}
	return nil
}

// redactDSN hides a connection string's credentials in error messages.
func redactDSN(dsn string) string {
	if i := strings.Index(dsn, "@"); i >= 0 {
		if j := strings.Index(dsn, "://"); j >= 0 && j < i {
			return dsn[:j+3] + "***" + dsn[i:]
		}
	}
	return dsn
}

// Execute executes the root command.
func Execute() error {
	rootCmd.AddCommand(bashCompCmd)
	return rootCmd.Execute()
}
