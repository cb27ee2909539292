// Package functions holds the table of functions callable from queries.
//
// Function calls are resolved by the parser: an identifier immediately
// followed by "(" is looked up here and, if found, compiled into a function
// node. Users can add entries per compilation with parser.WithFunctions.
//
// # Example
//
//	expr, err := parser.ParsePredicate(`version ~= range('[1.0,2.0)')`)
//
//	custom := functions.Def{Name: "upper", MinArgs: 1, MaxArgs: 1,
//	    Impl: func(args []interface{}) (interface{}, error) {
//	        return strings.ToUpper(args[0].(string)), nil
//	    }}
//	expr, err = parser.ParsePredicate(`id == upper($0)`, parser.WithFunctions(custom))
package functions

import (
	"fmt"
	"sync"

	"github.com/sandrolain/catql/pkg/types"
)

// Def describes a function table entry.
type Def struct {
	// Name is the identifier used in queries.
	Name string
	// MinArgs is the minimum number of arguments.
	MinArgs int
	// MaxArgs is the maximum number of arguments; -1 means unlimited.
	MaxArgs int
	// Impl is the implementation. It receives evaluated arguments.
	Impl types.FunctionImpl
}

// CheckArity returns an error when n arguments are not acceptable.
func (d *Def) CheckArity(n int) error {
	if n < d.MinArgs || (d.MaxArgs >= 0 && n > d.MaxArgs) {
		if d.MinArgs == d.MaxArgs {
			return fmt.Errorf("%s expects %d arguments, got %d", d.Name, d.MinArgs, n)
		}
		if d.MaxArgs < 0 {
			return fmt.Errorf("%s expects at least %d arguments, got %d", d.Name, d.MinArgs, n)
		}
		return fmt.Errorf("%s expects %d-%d arguments, got %d", d.Name, d.MinArgs, d.MaxArgs, n)
	}
	return nil
}

var (
	builtins     map[string]*Def
	builtinsOnce sync.Once
)

func initBuiltins() {
	builtinsOnce.Do(func() {
		builtins = map[string]*Def{
			"version":     {Name: "version", MinArgs: 1, MaxArgs: 1, Impl: fnVersion},
			"range":       {Name: "range", MinArgs: 1, MaxArgs: 1, Impl: fnRange},
			"set":         {Name: "set", MinArgs: 0, MaxArgs: -1, Impl: fnSet},
			"boolean":     {Name: "boolean", MinArgs: 1, MaxArgs: 1, Impl: fnBoolean},
			"requirement": {Name: "requirement", MinArgs: 2, MaxArgs: 3, Impl: fnRequirement},
			"capability":  {Name: "capability", MinArgs: 2, MaxArgs: 3, Impl: fnCapability},
			"pattern":     {Name: "pattern", MinArgs: 1, MaxArgs: 1, Impl: fnPattern},
		}
	})
}

// Lookup returns the built-in function with the given name.
func Lookup(name string) (*Def, bool) {
	initBuiltins()
	d, ok := builtins[name]
	return d, ok
}

// Names returns the names of all built-in functions.
func Names() []string {
	initBuiltins()
	names := make([]string, 0, len(builtins))
	for n := range builtins {
		names = append(names, n)
	}
	return names
}

// Table is a function table layered over the built-ins. Entries added to a
// Table shadow built-ins of the same name. The zero value is ready to use.
type Table struct {
	extra map[string]*Def
}

// Add registers d in the table.
func (t *Table) Add(d Def) {
	if t.extra == nil {
		t.extra = make(map[string]*Def)
	}
	t.extra[d.Name] = &d
}

// Lookup resolves name against the table, then the built-ins.
func (t *Table) Lookup(name string) (*Def, bool) {
	if t != nil {
		if d, ok := t.extra[name]; ok {
			return d, true
		}
	}
	return Lookup(name)
}
