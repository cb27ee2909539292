package functions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/catql/pkg/model"
	"github.com/sandrolain/catql/pkg/types"
)

func call(t *testing.T, name string, args ...interface{}) (interface{}, error) {
	t.Helper()
	d, ok := Lookup(name)
	require.True(t, ok, "function %s not registered", name)
	require.NoError(t, d.CheckArity(len(args)))
	return d.Impl(args)
}

func TestBuiltins(t *testing.T) {
	v, err := call(t, "version", "1.2.3")
	require.NoError(t, err)
	assert.Equal(t, model.MustParseVersion("1.2.3"), v)

	r, err := call(t, "range", "[1,2)")
	require.NoError(t, err)
	assert.Equal(t, model.MustParseVersionRange("[1,2)"), r)

	s, err := call(t, "set", "a", "b", "a", int64(1), int64(1))
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"a", "b", int64(1)}, s)

	b, err := call(t, "boolean", "true")
	require.NoError(t, err)
	assert.Equal(t, true, b)

	req, err := call(t, "requirement", "java.package", "org.example", "[1,2)")
	require.NoError(t, err)
	assert.Equal(t, "org.example", req.(model.Requirement).Name)

	c, err := call(t, "capability", "java.package", "org.example")
	require.NoError(t, err)
	assert.Equal(t, model.Zero, c.(model.Capability).Version)

	p, err := call(t, "pattern", "org.*")
	require.NoError(t, err)
	assert.True(t, p.(*types.Pattern).Match("org.example"))
}

type boxed struct{ v interface{} }

func TestSetUnhashable(t *testing.T) {
	a, b := boxed{[]int{1}}, boxed{[]int{1}}
	var s interface{}
	var err error
	require.NotPanics(t, func() { s, err = call(t, "set", a, b, "x", "x") })
	require.NoError(t, err)
	assert.Equal(t, []interface{}{a, b, "x"}, s)
}

func TestBuiltinErrors(t *testing.T) {
	_, err := call(t, "version", "x.y")
	var qerr *types.Error
	require.ErrorAs(t, err, &qerr)
	assert.Equal(t, types.ErrInvalidValue, qerr.Code)

	_, err = call(t, "version", int64(3))
	require.ErrorAs(t, err, &qerr)
	assert.Equal(t, types.ErrArgumentType, qerr.Code)

	d, _ := Lookup("requirement")
	assert.Error(t, d.CheckArity(1))
	assert.Error(t, d.CheckArity(4))
}

func TestTableShadowsBuiltins(t *testing.T) {
	var tbl Table
	tbl.Add(Def{Name: "version", MinArgs: 0, MaxArgs: 0, Impl: func([]interface{}) (interface{}, error) {
		return "shadowed", nil
	}})
	d, ok := tbl.Lookup("version")
	require.True(t, ok)
	out, err := d.Impl(nil)
	require.NoError(t, err)
	assert.Equal(t, "shadowed", out)

	_, ok = tbl.Lookup("range")
	assert.True(t, ok)
	_, ok = tbl.Lookup("nope")
	assert.False(t, ok)
}
