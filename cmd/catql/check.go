package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/spf13/cobra"

	"github.com/sandrolain/catql/pkg/evaluator"
	"github.com/sandrolain/catql/pkg/types"
)

func (a *app) checkCmd() *cobra.Command {
	var (
		predicate bool
		ast       bool
	)
	cmd := &cobra.Command{
		Use:   "check QUERY",
		Short: "Compile a query and warn about unknown member names",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				expr *types.Expression
				err  error
			)
			if predicate {
				var m *types.MatchExpression
				if m, err = a.engine.ParsePredicate(args[0]); err == nil {
					expr = m.Expression
				}
			} else {
				var c *types.ContextExpression
				if c, err = a.engine.ParseQuery(args[0]); err == nil {
					expr = c.Expression
				}
			}
			if err != nil {
				return err
			}

			warnings := unknownMembers(expr.AST(), evaluator.KnownMembers())
			for _, w := range warnings {
				fmt.Fprintln(a.stderr, "warning:", w)
			}
			if ast {
				fmt.Fprintln(a.stdout, types.Format(expr.AST()))
			}
			printSummary(a.stdout, expr, len(warnings))
			return nil
		},
	}
	cmd.Flags().BoolVar(&predicate, "predicate", false, "Compile as a match predicate instead of a context query")
	cmd.Flags().BoolVar(&ast, "ast", false, "Print the compiled expression")
	return cmd
}

// unknownMembers reports member accesses that no value kind defines, with
// the closest known names.
func unknownMembers(root *types.ASTNode, known []string) []string {
	knownSet := make(map[string]struct{}, len(known))
	for _, k := range known {
		knownSet[k] = struct{}{}
	}

	var nodes []*types.ASTNode
	types.Walk(root, func(n *types.ASTNode) bool {
		if n.Type == types.NodeMember {
			if _, ok := knownSet[n.Name()]; !ok {
				nodes = append(nodes, n)
			}
		}
		return true
	})
	sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].Position < nodes[j].Position })

	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		msg := fmt.Sprintf("unknown member %q at position %d", n.Name(), n.Position)
		if s := suggest(n.Name(), known); s != "" {
			msg += fmt.Sprintf(", did you mean %q?", s)
		}
		out = append(out, msg)
	}
	return out
}

// suggest returns the closest known name, or "" when nothing is close.
func suggest(name string, known []string) string {
	if ranks := fuzzy.RankFindFold(name, known); len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target
	}
	best, bestDist := "", len(name)/2+1
	for _, k := range known {
		if d := fuzzy.LevenshteinDistance(name, k); d < bestDist {
			best, bestDist = k, d
		}
	}
	return best
}

func printSummary(w io.Writer, expr *types.Expression, warnings int) {
	fmt.Fprintf(w, "ok: %s query, %d positional parameters, %d warnings\n",
		expr.Mode(), expr.PositionalParameters(), warnings)
}
