package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sandrolain/catql/pkg/catalog"
	"github.com/sandrolain/catql/pkg/evaluator"
)

type runFlags struct {
	catalog string
	params  []string
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.catalog, "catalog", "c", "", "Catalog file, YAML or JSON (- for stdin)")
	cmd.Flags().StringArrayVarP(&f.params, "param", "p", nil, "Positional parameter $0, $1, ... (repeatable)")
}

func (a *app) matchCmd() *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:   "match PREDICATE",
		Short: "Print the catalog items matching a predicate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.loadCatalog(flags.catalog)
			if err != nil {
				return err
			}
			res, err := a.engine.Select(cmd.Context(), args[0], cat, parseParams(flags.params)...)
			if err != nil {
				return err
			}
			return a.print(res)
		},
	}
	flags.register(cmd)
	return cmd
}

func (a *app) queryCmd() *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:   "query QUERY",
		Short: "Evaluate a context query against a catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.loadCatalog(flags.catalog)
			if err != nil {
				return err
			}
			res, err := a.engine.Query(cmd.Context(), args[0], cat, parseParams(flags.params)...)
			if err != nil {
				return err
			}
			return a.print(res)
		},
	}
	flags.register(cmd)
	return cmd
}

func (a *app) loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		path = a.cfg.Catalog
	}
	if path == "" {
		return nil, errors.New("no catalog: use --catalog or set catalog in the configuration")
	}

	var (
		cat *catalog.Catalog
		err error
	)
	if path == "-" {
		cat, err = catalog.Load(a.stdin)
	} else {
		cat, err = catalog.LoadFile(path)
	}
	if err != nil {
		return nil, err
	}
	a.logger.Debug("catalog loaded", "path", path, "items", cat.Len())
	return cat, nil
}

// parseParams converts flag values: integers and booleans keep their type,
// everything else is a string.
func parseParams(raw []string) []interface{} {
	params := make([]interface{}, len(raw))
	for i, s := range raw {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			params[i] = n
			continue
		}
		if b, err := strconv.ParseBool(s); err == nil && (s == "true" || s == "false") {
			params[i] = b
			continue
		}
		params[i] = s
	}
	return params
}

func (a *app) print(res *evaluator.Result) error {
	if err := writeYAML(a.stdout, res.Slice()); err != nil {
		return err
	}
	if err := res.Err(); err != nil {
		return fmt.Errorf("query stopped early: %w", err)
	}
	return nil
}
