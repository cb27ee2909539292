package main

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/sandrolain/catql/pkg/evaluator"
	"github.com/sandrolain/catql/pkg/model"
	"github.com/sandrolain/catql/pkg/types"
)

func writeYAML(w io.Writer, values []interface{}) error {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = plain(v)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return enc.Close()
}

// plain converts query values into values yaml can encode.
func plain(v interface{}) interface{} {
	switch x := v.(type) {
	case nil, types.Null:
		return nil
	case *model.Item, model.Capability, model.Requirement:
		return x
	case model.Version, model.VersionRange:
		return fmt.Sprint(x)
	case *types.Pattern:
		return x.String()
	case types.Iterable:
		elems := types.Collect(x.Iterator())
		out := make([]interface{}, len(elems))
		for i, e := range elems {
			out[i] = plain(e)
		}
		return out
	case []interface{}:
		return plain(types.Slice(x))
	}
	if evaluator.IsMissing(v) {
		return nil
	}
	return v
}
