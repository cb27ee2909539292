package functions

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/sandrolain/catql/pkg/model"
	"github.com/sandrolain/catql/pkg/types"
)

func stringArg(name string, args []interface{}, i int) (string, error) {
	s, ok := args[i].(string)
	if !ok {
		return "", types.NewError(types.ErrArgumentType,
			fmt.Sprintf("argument %d of %s must be a string, got %T", i+1, name, args[i]), -1)
	}
	return s, nil
}

func invalid(name string, err error) error {
	return types.NewError(types.ErrInvalidValue, fmt.Sprintf("%s: %v", name, err), -1).WithCause(err)
}

func fnVersion(args []interface{}) (interface{}, error) {
	if v, ok := args[0].(model.Version); ok {
		return v, nil
	}
	s, err := stringArg("version", args, 0)
	if err != nil {
		return nil, err
	}
	v, err := model.ParseVersion(s)
	if err != nil {
		return nil, invalid("version", err)
	}
	return v, nil
}

func fnRange(args []interface{}) (interface{}, error) {
	if r, ok := args[0].(model.VersionRange); ok {
		return r, nil
	}
	s, err := stringArg("range", args, 0)
	if err != nil {
		return nil, err
	}
	r, err := model.ParseVersionRange(s)
	if err != nil {
		return nil, invalid("range", err)
	}
	return r, nil
}

// fnSet returns its arguments with duplicates removed, in first-seen order.
func fnSet(args []interface{}) (interface{}, error) {
	out := make([]interface{}, 0, len(args))
	seen := make(map[interface{}]struct{}, len(args))
	for _, a := range args {
		if a != nil && reflect.ValueOf(a).Comparable() {
			if _, dup := seen[a]; dup {
				continue
			}
			seen[a] = struct{}{}
		}
		out = append(out, a)
	}
	return out, nil
}

func fnBoolean(args []interface{}) (interface{}, error) {
	switch v := args[0].(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, invalid("boolean", err)
		}
		return b, nil
	default:
		return nil, types.NewError(types.ErrArgumentType,
			fmt.Sprintf("argument 1 of boolean must be a string, got %T", v), -1)
	}
}

func fnRequirement(args []interface{}) (interface{}, error) {
	ns, err := stringArg("requirement", args, 0)
	if err != nil {
		return nil, err
	}
	name, err := stringArg("requirement", args, 1)
	if err != nil {
		return nil, err
	}
	req := model.Requirement{Namespace: ns, Name: name, Range: model.AnyVersion}
	if len(args) == 3 {
		r, err := fnRange(args[2:])
		if err != nil {
			return nil, err
		}
		req.Range = r.(model.VersionRange)
	}
	return req, nil
}

func fnCapability(args []interface{}) (interface{}, error) {
	ns, err := stringArg("capability", args, 0)
	if err != nil {
		return nil, err
	}
	name, err := stringArg("capability", args, 1)
	if err != nil {
		return nil, err
	}
	c := model.Capability{Namespace: ns, Name: name}
	if len(args) == 3 {
		v, err := fnVersion(args[2:])
		if err != nil {
			return nil, err
		}
		c.Version = v.(model.Version)
	}
	return c, nil
}

func fnPattern(args []interface{}) (interface{}, error) {
	s, err := stringArg("pattern", args, 0)
	if err != nil {
		return nil, err
	}
	return types.CompilePattern(s), nil
}
