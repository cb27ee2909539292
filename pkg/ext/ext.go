// Package ext provides optional functions beyond the built-ins.
//
// The functions live in sub-packages grouped by category:
//   - extstring – lower, upper, trim, concat, replace, substring, indexOf, …
//
// # Integration – all extensions at once
//
//	import "github.com/sandrolain/catql/pkg/ext"
//
//	engine := catql.New(catql.WithFunctions(ext.All()...))
//
// # Integration – single function from a sub-package
//
//	expr, err := parser.ParsePredicate(`lower(id) == $0`,
//	    parser.WithFunctions(extstring.Lower()))
package ext

import (
	"github.com/sandrolain/catql/pkg/ext/extstring"
	"github.com/sandrolain/catql/pkg/functions"
)

// All returns every extension function definition.
func All() []functions.Def {
	var all []functions.Def
	all = append(all, extstring.All()...)
	return all
}

// Names returns the names of every extension function.
func Names() []string {
	all := All()
	names := make([]string, len(all))
	for i, d := range all {
		names[i] = d.Name
	}
	return names
}
