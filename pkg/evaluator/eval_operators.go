package evaluator

import (
	"cmp"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/sandrolain/catql/pkg/model"
	"github.com/sandrolain/catql/pkg/types"
)

// isTrue reports whether v is the boolean true. Every other value, including
// undefined and missing members, is false.
func isTrue(v interface{}) bool {
	b, ok := v.(bool)
	return ok && b
}

// isUndefined reports whether v carries no value.
func isUndefined(v interface{}) bool {
	switch v.(type) {
	case nil, types.Null, missing:
		return true
	}
	return false
}

// toInt converts any Go integer, or a float with an integral value, to int64.
func toInt(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int16:
		return int64(n), true
	case int8:
		return int64(n), true
	case uint:
		return int64(n), n <= math.MaxInt64
	case uint64:
		return int64(n), n <= math.MaxInt64
	case uint32:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint8:
		return int64(n), true
	case float64:
		if n == math.Trunc(n) && math.Abs(n) < 1<<63 {
			return int64(n), true
		}
	case float32:
		f := float64(n)
		if f == math.Trunc(f) && math.Abs(f) < 1<<63 {
			return int64(f), true
		}
	}
	return 0, false
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	if i, ok := toInt(v); ok {
		return float64(i), true
	}
	return 0, false
}

// toVersion converts a Version, or a string that parses as one.
func toVersion(v interface{}) (model.Version, bool) {
	switch x := v.(type) {
	case model.Version:
		return x, true
	case string:
		parsed, err := model.ParseVersion(x)
		return parsed, err == nil
	}
	return model.Version{}, false
}

// compare orders two values of comparable kinds. Numbers compare with
// numbers, strings with strings, versions with versions or strings that
// parse as versions. ok is false for any other combination.
func compare(a, b interface{}) (c int, ok bool) {
	if ai, aok := toInt(a); aok {
		if bi, bok := toInt(b); bok {
			return cmp.Compare(ai, bi), true
		}
	}
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return cmp.Compare(af, bf), true
		}
		return 0, false
	}

	_, av := a.(model.Version)
	_, bv := b.(model.Version)
	if av || bv {
		x, xok := toVersion(a)
		y, yok := toVersion(b)
		if !xok || !yok {
			return 0, false
		}
		return x.Compare(y), true
	}

	if as, aok := a.(string); aok {
		if bs, bok := b.(string); bok {
			return strings.Compare(as, bs), true
		}
	}
	return 0, false
}

// equals reports whether a and b are equal. Values of different kinds are
// never equal; a missing member equals nothing.
func equals(a, b interface{}) bool {
	if _, ok := a.(missing); ok {
		return false
	}
	if _, ok := b.(missing); ok {
		return false
	}
	if a == types.NullValue {
		a = nil
	}
	if b == types.NullValue {
		b = nil
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if c, ok := compare(a, b); ok {
		return c == 0
	}

	switch x := a.(type) {
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	case model.VersionRange:
		y, ok := b.(model.VersionRange)
		return ok && x.String() == y.String()
	case model.Requirement:
		y, ok := b.(model.Requirement)
		return ok && x.Namespace == y.Namespace && x.Name == y.Name &&
			x.Range.String() == y.Range.String() && x.Optional == y.Optional
	case *types.Pattern:
		y, ok := b.(*types.Pattern)
		return ok && x.String() == y.String()
	}

	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	if hashable(a) && hashable(b) {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

// matches implements the ~= operator:
//
//	string      ~= pattern or glob string
//	version     ~= range or range string
//	item        ~= requirement (some provided capability satisfies it)
//	capability  ~= requirement
//	collection  ~= x (some element matches x)
func matches(a, b interface{}) bool {
	if isUndefined(a) || isUndefined(b) {
		return false
	}

	switch rhs := b.(type) {
	case *types.Pattern:
		s, ok := a.(string)
		return ok && rhs.Match(s)

	case model.VersionRange:
		if v, ok := toVersion(a); ok {
			return rhs.Includes(v)
		}

	case model.Requirement:
		switch lhs := a.(type) {
		case *model.Item:
			return lhs.Satisfies(rhs)
		case model.Capability:
			return rhs.SatisfiedBy(lhs)
		}

	case string:
		switch lhs := a.(type) {
		case string:
			return types.CompilePattern(rhs).Match(lhs)
		case model.Version:
			r, err := model.ParseVersionRange(rhs)
			return err == nil && r.Includes(lhs)
		}
	}

	if seq, ok := toIterable(a); ok {
		it := seq.Iterator()
		for {
			v, more := it.Next()
			if !more {
				return false
			}
			if matches(v, b) {
				return true
			}
		}
	}
	return false
}

// at indexes a list by position or a map by key.
func at(target, index interface{}) interface{} {
	switch t := target.(type) {
	case map[string]string:
		k, ok := index.(string)
		if !ok {
			return nil
		}
		if v, ok := t[k]; ok {
			return v
		}
		return nil
	case map[string]interface{}:
		k, ok := index.(string)
		if !ok {
			return nil
		}
		return t[k]
	}

	i, ok := toInt(index)
	if !ok || i < 0 {
		return nil
	}
	switch t := target.(type) {
	case []interface{}:
		if i < int64(len(t)) {
			return t[i]
		}
		return nil
	case types.Slice:
		if i < int64(len(t)) {
			return t[i]
		}
		return nil
	case types.Iterable:
		it := t.Iterator()
		for n := int64(0); ; n++ {
			v, more := it.Next()
			if !more {
				return nil
			}
			if n == i {
				return v
			}
		}
	}
	return nil
}

// identity returns a map key standing for v, so that values of any kind
// can be tracked in visited and seen sets. Collections are keyed by the
// identities of their elements; catalog items and other pointers by address.
func identity(v interface{}) interface{} {
	if v == nil {
		return nil
	}
	if i, ok := toInt(v); ok {
		return i
	}
	if seq, ok := toIterable(v); ok {
		return seqIdentity(seq)
	}
	switch x := v.(type) {
	case model.VersionRange:
		return rangeKey(x.String())
	case model.Requirement:
		return reqKey{
			Namespace: x.Namespace, Name: x.Name, Range: x.Range.String(),
			Filter: x.Filter, Optional: x.Optional, Greedy: x.Greedy,
		}
	}
	if hashable(v) {
		return v
	}
	return refKey{typ: reflect.TypeOf(v), repr: fmt.Sprintf("%#v", v)}
}

// hashable reports whether v can be used as a map key or compared with ==
// without panicking. Unlike reflect.Type.Comparable it looks at the dynamic
// values held in interface fields.
func hashable(v interface{}) bool {
	return v != nil && reflect.ValueOf(v).Comparable()
}

type refKey struct {
	typ  reflect.Type
	repr string
}

// Ranges hold a pointer to their maximum, so they are keyed by their text.
type rangeKey string

type reqKey struct {
	Namespace, Name, Range, Filter string
	Optional, Greedy               bool
}

// seqKey identifies a collection by its length and element identities.
type seqKey struct {
	n    int
	elem string
}

func seqIdentity(seq types.Iterable) seqKey {
	var b strings.Builder
	n := 0
	it := seq.Iterator()
	for {
		v, ok := it.Next()
		if !ok {
			break
		}
		if n > 0 {
			b.WriteByte(',')
		}
		writeKey(&b, identity(v))
		n++
	}
	return seqKey{n: n, elem: b.String()}
}

func writeKey(b *strings.Builder, k interface{}) {
	switch x := k.(type) {
	case nil:
		b.WriteString("nil")
	case string:
		b.WriteString(strconv.Quote(x))
	case int64:
		b.WriteString(strconv.FormatInt(x, 10))
	case seqKey:
		fmt.Fprintf(b, "[%d:%s]", x.n, x.elem)
	case refKey:
		fmt.Fprintf(b, "%s(%q)", x.typ, x.repr)
	default:
		rv := reflect.ValueOf(k)
		if rv.Kind() == reflect.Pointer {
			fmt.Fprintf(b, "%s(%#x)", rv.Type(), rv.Pointer())
			return
		}
		fmt.Fprintf(b, "%s(%#v)", rv.Type(), k)
	}
}
