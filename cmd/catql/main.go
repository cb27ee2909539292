// Command catql runs catalog queries from the command line.
//
//	catql match 'id ~= /org.*/' -c items.yaml
//	catql query 'select(x | x.id == $0).latest()' -c items.yaml -p org.a
//	catql check 'select(x | x.verison > version("1"))'
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sandrolain/catql"
	"github.com/sandrolain/catql/pkg/config"
	"github.com/sandrolain/catql/pkg/ext"
)

type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath string
	logLevel   string
	logFormat  string

	cfg    *config.Config
	logger *slog.Logger
	engine *catql.Engine
}

func main() {
	a := &app{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	if err := a.rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "catql [command]",
		Short:         "Query catalogs of versioned items",
		Version:       catql.Version(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to the configuration file (default ./catql.yaml if present)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "Log format: text, json")

	root.AddCommand(a.matchCmd(), a.queryCmd(), a.checkCmd())
	return root
}

// setup loads the configuration and applies flag overrides.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = cfg.Logger(a.stderr)
	opts := []catql.Option{
		catql.WithLogger(a.logger),
		catql.WithCacheSize(cfg.Cache.Size),
		catql.WithIndexes(cfg.Indexes),
	}
	if cfg.Extensions {
		opts = append(opts, catql.WithFunctions(ext.All()...))
	}
	a.engine = catql.New(opts...)
	return nil
}
