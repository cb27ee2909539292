package evaluator

import (
	"sort"
	"strings"

	"github.com/sandrolain/catql/pkg/model"
	"github.com/sandrolain/catql/pkg/types"
)

// Kind classifies runtime values for member dispatch.
type Kind uint8

// Value kinds.
const (
	KindUnknown Kind = iota
	KindString
	KindNumber
	KindBoolean
	KindVersion
	KindRange
	KindPattern
	KindItem
	KindCapability
	KindRequirement
	KindCollection
	KindMap
)

var kindNames = map[Kind]string{
	KindUnknown:     "unknown",
	KindString:      "string",
	KindNumber:      "number",
	KindBoolean:     "boolean",
	KindVersion:     "version",
	KindRange:       "range",
	KindPattern:     "pattern",
	KindItem:        "item",
	KindCapability:  "capability",
	KindRequirement: "requirement",
	KindCollection:  "collection",
	KindMap:         "map",
}

// String returns the kind name.
func (k Kind) String() string {
	return kindNames[k]
}

// KindOf returns the kind of v.
func KindOf(v interface{}) Kind {
	switch v.(type) {
	case string:
		return KindString
	case bool:
		return KindBoolean
	case model.Version:
		return KindVersion
	case model.VersionRange:
		return KindRange
	case *types.Pattern:
		return KindPattern
	case *model.Item:
		return KindItem
	case model.Capability:
		return KindCapability
	case model.Requirement:
		return KindRequirement
	case map[string]string, map[string]interface{}:
		return KindMap
	case missing:
		return KindUnknown
	}
	if _, ok := toFloat(v); ok {
		return KindNumber
	}
	if _, ok := toIterable(v); ok {
		return KindCollection
	}
	return KindUnknown
}

// missing is the value of a member that does not exist on its target. It is
// false in boolean context, equal to nothing and empty as a collection.
type missing struct {
	kind Kind
	name string
}

// IsMissing reports whether v is the result of accessing an unknown member.
func IsMissing(v interface{}) bool {
	_, ok := v.(missing)
	return ok
}

type memberKey struct {
	kind Kind
	name string
}

type member struct {
	args int
	fn   func(recv interface{}, args []interface{}) interface{}
}

func getter(fn func(recv interface{}) interface{}) member {
	return member{fn: func(recv interface{}, _ []interface{}) interface{} { return fn(recv) }}
}

func method(fn func(recv, arg interface{}) interface{}) member {
	return member{args: 1, fn: func(recv interface{}, args []interface{}) interface{} { return fn(recv, args[0]) }}
}

// members is the closed table of members per value kind.
var members = map[memberKey]member{
	// items
	{KindItem, "id"}:        getter(func(r interface{}) interface{} { return r.(*model.Item).ID }),
	{KindItem, "version"}:   getter(func(r interface{}) interface{} { return r.(*model.Item).Version }),
	{KindItem, "singleton"}: getter(func(r interface{}) interface{} { return r.(*model.Item).Singleton }),
	{KindItem, "filter"}:    getter(func(r interface{}) interface{} { return r.(*model.Item).Filter }),
	{KindItem, "properties"}: getter(func(r interface{}) interface{} {
		p := r.(*model.Item).Properties
		if p == nil {
			return map[string]string{}
		}
		return p
	}),
	{KindItem, "property"}: method(func(r, key interface{}) interface{} {
		k, ok := key.(string)
		if !ok {
			return nil
		}
		if v, ok := r.(*model.Item).Property(k); ok {
			return v
		}
		return nil
	}),
	{KindItem, "provides"}: getter(func(r interface{}) interface{} {
		return capabilities(r.(*model.Item).Provides)
	}),
	{KindItem, "providedCapabilities"}: getter(func(r interface{}) interface{} {
		return capabilities(r.(*model.Item).ProvidedCapabilities())
	}),
	{KindItem, "requires"}: getter(func(r interface{}) interface{} {
		reqs := r.(*model.Item).Requires
		out := make(types.Slice, len(reqs))
		for i, q := range reqs {
			out[i] = q
		}
		return out
	}),
	{KindItem, "satisfies"}: method(func(r, req interface{}) interface{} {
		q, ok := req.(model.Requirement)
		return ok && r.(*model.Item).Satisfies(q)
	}),

	// capabilities
	{KindCapability, "namespace"}: getter(func(r interface{}) interface{} { return r.(model.Capability).Namespace }),
	{KindCapability, "name"}:      getter(func(r interface{}) interface{} { return r.(model.Capability).Name }),
	{KindCapability, "version"}:   getter(func(r interface{}) interface{} { return r.(model.Capability).Version }),

	// requirements
	{KindRequirement, "namespace"}: getter(func(r interface{}) interface{} { return r.(model.Requirement).Namespace }),
	{KindRequirement, "name"}:      getter(func(r interface{}) interface{} { return r.(model.Requirement).Name }),
	{KindRequirement, "range"}:     getter(func(r interface{}) interface{} { return r.(model.Requirement).Range }),
	{KindRequirement, "optional"}:  getter(func(r interface{}) interface{} { return r.(model.Requirement).Optional }),
	{KindRequirement, "greedy"}:    getter(func(r interface{}) interface{} { return r.(model.Requirement).Greedy }),
	{KindRequirement, "filter"}:    getter(func(r interface{}) interface{} { return r.(model.Requirement).Filter }),
	{KindRequirement, "satisfiedBy"}: method(func(r, c interface{}) interface{} {
		q := r.(model.Requirement)
		switch x := c.(type) {
		case model.Capability:
			return q.SatisfiedBy(x)
		case *model.Item:
			return x.Satisfies(q)
		}
		return false
	}),

	// versions and ranges
	{KindVersion, "major"}:     getter(func(r interface{}) interface{} { return int64(r.(model.Version).Major) }),
	{KindVersion, "minor"}:     getter(func(r interface{}) interface{} { return int64(r.(model.Version).Minor) }),
	{KindVersion, "micro"}:     getter(func(r interface{}) interface{} { return int64(r.(model.Version).Micro) }),
	{KindVersion, "qualifier"}: getter(func(r interface{}) interface{} { return r.(model.Version).Qualifier }),
	{KindRange, "minimum"}:     getter(func(r interface{}) interface{} { return r.(model.VersionRange).Minimum }),
	{KindRange, "maximum"}:     getter(func(r interface{}) interface{} { return versionOrNil(r.(model.VersionRange).Maximum) }),
	{KindRange, "includes"}: method(func(r, v interface{}) interface{} {
		ver, ok := toVersion(v)
		return ok && r.(model.VersionRange).Includes(ver)
	}),

	// strings
	{KindString, "length"}: getter(func(r interface{}) interface{} { return int64(len(r.(string))) }),
	{KindString, "startsWith"}: method(func(r, s interface{}) interface{} {
		p, ok := s.(string)
		return ok && strings.HasPrefix(r.(string), p)
	}),
	{KindString, "endsWith"}: method(func(r, s interface{}) interface{} {
		p, ok := s.(string)
		return ok && strings.HasSuffix(r.(string), p)
	}),
	{KindString, "contains"}: method(func(r, s interface{}) interface{} {
		p, ok := s.(string)
		return ok && strings.Contains(r.(string), p)
	}),

	// collections
	{KindCollection, "size"}: getter(func(r interface{}) interface{} { return int64(count(r)) }),
	{KindCollection, "isEmpty"}: getter(func(r interface{}) interface{} {
		seq, _ := toIterable(r)
		_, ok := seq.Iterator().Next()
		return !ok
	}),
	{KindCollection, "contains"}: method(func(r, v interface{}) interface{} {
		seq, _ := toIterable(r)
		it := seq.Iterator()
		for {
			e, ok := it.Next()
			if !ok {
				return false
			}
			if equals(e, v) {
				return true
			}
		}
	}),

	// maps
	{KindMap, "get"}: method(func(r, k interface{}) interface{} { return at(r, k) }),
	{KindMap, "size"}: getter(func(r interface{}) interface{} {
		switch m := r.(type) {
		case map[string]string:
			return int64(len(m))
		case map[string]interface{}:
			return int64(len(m))
		}
		return int64(0)
	}),
	{KindMap, "containsKey"}: method(func(r, k interface{}) interface{} {
		key, ok := k.(string)
		if !ok {
			return false
		}
		switch m := r.(type) {
		case map[string]string:
			_, ok = m[key]
		case map[string]interface{}:
			_, ok = m[key]
		}
		return ok
	}),
}

func capabilities(caps []model.Capability) types.Slice {
	out := make(types.Slice, len(caps))
	for i, c := range caps {
		out[i] = c
	}
	return out
}

func versionOrNil(v *model.Version) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func count(v interface{}) int {
	seq, ok := toIterable(v)
	if !ok {
		return 0
	}
	n := 0
	it := seq.Iterator()
	for {
		if _, ok := it.Next(); !ok {
			return n
		}
		n++
	}
}

// invokeMember dispatches target.name(args). An unknown member, a wrong
// argument count or an undefined target yields a missing value.
func invokeMember(target interface{}, name string, args []interface{}) interface{} {
	kind := KindOf(target)
	m, ok := members[memberKey{kind, name}]
	if !ok || len(args) != m.args {
		return missing{kind: kind, name: name}
	}
	return m.fn(target, args)
}

// KnownMembers returns the sorted names of all members of any kind.
func KnownMembers() []string {
	seen := make(map[string]struct{}, len(members))
	for k := range members {
		seen[k.name] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// MembersOf returns the sorted member names defined for kind.
func MembersOf(kind Kind) []string {
	var names []string
	for k := range members {
		if k.kind == kind {
			names = append(names, k.name)
		}
	}
	sort.Strings(names)
	return names
}
