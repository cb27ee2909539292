// Package extstring provides string functions beyond the built-ins. Register
// them with parser.WithFunctions, catql.WithFunctions or ext.All.
//
// The names avoid the string members (startsWith, endsWith, contains,
// length) so that member calls on the implicit item keep working.
package extstring

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/sandrolain/catql/pkg/functions"
	"github.com/sandrolain/catql/pkg/types"
)

// All returns all string function definitions.
func All() []functions.Def {
	return []functions.Def{
		Lower(),
		Upper(),
		Trim(),
		Concat(),
		Replace(),
		Substring(),
		IndexOf(),
		Split(),
		Capitalize(),
		Repeat(),
	}
}

func str(name string, args []interface{}, i int) (string, error) {
	s, ok := args[i].(string)
	if !ok {
		return "", types.NewError(types.ErrArgumentType,
			fmt.Sprintf("%s: argument %d must be a string, got %T", name, i+1, args[i]), -1)
	}
	return s, nil
}

func integer(name string, args []interface{}, i int) (int, error) {
	switch n := args[i].(type) {
	case int64:
		return int(n), nil
	case int:
		return n, nil
	case float64:
		if n == float64(int(n)) {
			return int(n), nil
		}
	}
	return 0, types.NewError(types.ErrArgumentType,
		fmt.Sprintf("%s: argument %d must be an integer, got %T", name, i+1, args[i]), -1)
}

func unary(name string, fn func(string) string) functions.Def {
	return functions.Def{
		Name:    name,
		MinArgs: 1,
		MaxArgs: 1,
		Impl: func(args []interface{}) (interface{}, error) {
			s, err := str(name, args, 0)
			if err != nil {
				return nil, err
			}
			return fn(s), nil
		},
	}
}

// Lower returns the definition for lower(s).
func Lower() functions.Def { return unary("lower", strings.ToLower) }

// Upper returns the definition for upper(s).
func Upper() functions.Def { return unary("upper", strings.ToUpper) }

// Trim returns the definition for trim(s), which strips surrounding
// whitespace.
func Trim() functions.Def { return unary("trim", strings.TrimSpace) }

// Capitalize returns the definition for capitalize(s). Uppercases the first
// character, lowercases the rest.
func Capitalize() functions.Def {
	return unary("capitalize", func(s string) string {
		if s == "" {
			return s
		}
		runes := []rune(strings.ToLower(s))
		runes[0] = unicode.ToUpper(runes[0])
		return string(runes)
	})
}

// Concat returns the definition for concat(a, b, ...).
func Concat() functions.Def {
	return functions.Def{
		Name:    "concat",
		MinArgs: 1,
		MaxArgs: -1,
		Impl: func(args []interface{}) (interface{}, error) {
			var b strings.Builder
			for i := range args {
				s, err := str("concat", args, i)
				if err != nil {
					return nil, err
				}
				b.WriteString(s)
			}
			return b.String(), nil
		},
	}
}

// Replace returns the definition for replace(s, old, new), which replaces
// every occurrence of old.
func Replace() functions.Def {
	return functions.Def{
		Name:    "replace",
		MinArgs: 3,
		MaxArgs: 3,
		Impl: func(args []interface{}) (interface{}, error) {
			var parts [3]string
			for i := range parts {
				s, err := str("replace", args, i)
				if err != nil {
					return nil, err
				}
				parts[i] = s
			}
			return strings.ReplaceAll(parts[0], parts[1], parts[2]), nil
		},
	}
}

// Substring returns the definition for substring(s, start[, length]).
// Offsets count runes. Out of range offsets are clamped.
func Substring() functions.Def {
	return functions.Def{
		Name:    "substring",
		MinArgs: 2,
		MaxArgs: 3,
		Impl: func(args []interface{}) (interface{}, error) {
			s, err := str("substring", args, 0)
			if err != nil {
				return nil, err
			}
			start, err := integer("substring", args, 1)
			if err != nil {
				return nil, err
			}
			runes := []rune(s)
			start = max(0, min(start, len(runes)))
			end := len(runes)
			if len(args) == 3 {
				n, err := integer("substring", args, 2)
				if err != nil {
					return nil, err
				}
				end = min(end, start+max(n, 0))
			}
			return string(runes[start:end]), nil
		},
	}
}

// IndexOf returns the definition for indexOf(s, search). Returns -1 when
// search does not occur.
func IndexOf() functions.Def {
	return functions.Def{
		Name:    "indexOf",
		MinArgs: 2,
		MaxArgs: 2,
		Impl: func(args []interface{}) (interface{}, error) {
			s, err := str("indexOf", args, 0)
			if err != nil {
				return nil, err
			}
			search, err := str("indexOf", args, 1)
			if err != nil {
				return nil, err
			}
			i := strings.Index(s, search)
			if i < 0 {
				return int64(-1), nil
			}
			return int64(len([]rune(s[:i]))), nil
		},
	}
}

// Split returns the definition for split(s, sep). The result is a
// collection.
func Split() functions.Def {
	return functions.Def{
		Name:    "split",
		MinArgs: 2,
		MaxArgs: 2,
		Impl: func(args []interface{}) (interface{}, error) {
			s, err := str("split", args, 0)
			if err != nil {
				return nil, err
			}
			sep, err := str("split", args, 1)
			if err != nil {
				return nil, err
			}
			parts := strings.Split(s, sep)
			out := make(types.Slice, len(parts))
			for i, p := range parts {
				out[i] = p
			}
			return out, nil
		},
	}
}

// Repeat returns the definition for repeat(s, n).
func Repeat() functions.Def {
	return functions.Def{
		Name:    "repeat",
		MinArgs: 2,
		MaxArgs: 2,
		Impl: func(args []interface{}) (interface{}, error) {
			s, err := str("repeat", args, 0)
			if err != nil {
				return nil, err
			}
			n, err := integer("repeat", args, 1)
			if err != nil {
				return nil, err
			}
			if n < 0 {
				return nil, types.NewError(types.ErrInvalidValue, "repeat: negative count", -1)
			}
			return strings.Repeat(s, n), nil
		},
	}
}
