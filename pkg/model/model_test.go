package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in   string
		want Version
	}{
		{"1", Version{Major: 1}},
		{"1.2", Version{Major: 1, Minor: 2}},
		{"1.2.3", Version{Major: 1, Minor: 2, Micro: 3}},
		{"1.2.3.v2024", Version{Major: 1, Minor: 2, Micro: 3, Qualifier: "v2024"}},
		{"", Zero},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseVersion(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"a", "1.x", "1.2.3.", "-1"} {
		_, err := ParseVersion(bad)
		assert.Error(t, err, bad)
	}
}

func TestVersionCompare(t *testing.T) {
	assert.Equal(t, -1, MustParseVersion("1.0").Compare(MustParseVersion("2.0")))
	assert.Equal(t, 1, MustParseVersion("1.10").Compare(MustParseVersion("1.9")))
	assert.Equal(t, 0, MustParseVersion("1.0.0").Compare(MustParseVersion("1")))
	assert.Equal(t, -1, MustParseVersion("1.0.0").Compare(MustParseVersion("1.0.0.a")))
	assert.Equal(t, 1, MustParseVersion("1.0.0.b").Compare(MustParseVersion("1.0.0.a")))
	assert.Equal(t, "1.2.0", MustParseVersion("1.2").String())
}

func TestVersionRange(t *testing.T) {
	r := MustParseVersionRange("[1.0,2.0)")
	assert.True(t, r.Includes(MustParseVersion("1.0")))
	assert.True(t, r.Includes(MustParseVersion("1.9.9")))
	assert.False(t, r.Includes(MustParseVersion("2.0")))
	assert.False(t, r.Includes(MustParseVersion("0.9")))
	assert.Equal(t, "[1.0.0,2.0.0)", r.String())

	open := MustParseVersionRange("(1.0,2.0]")
	assert.False(t, open.Includes(MustParseVersion("1.0")))
	assert.True(t, open.Includes(MustParseVersion("2.0")))

	bare := MustParseVersionRange("1.5")
	assert.True(t, bare.Includes(MustParseVersion("99")))
	assert.False(t, bare.Includes(MustParseVersion("1.4")))

	for _, bad := range []string{"[1.0,2.0", "[1.0]", "[2.0,1.0]", "(1.0,1.0]"} {
		_, err := ParseVersionRange(bad)
		assert.Error(t, err, bad)
	}
}

func TestItemSatisfies(t *testing.T) {
	it := &Item{
		ID:      "org.example.core",
		Version: MustParseVersion("1.2"),
		Provides: []Capability{
			{Namespace: "java.package", Name: "org.example", Version: MustParseVersion("1.2")},
		},
	}
	assert.True(t, it.Satisfies(Requirement{Namespace: "java.package", Name: "org.example", Range: MustParseVersionRange("[1.0,2.0)")}))
	assert.True(t, it.Satisfies(Requirement{Namespace: NamespaceItem, Name: "org.example.core", Range: AnyVersion}))
	assert.False(t, it.Satisfies(Requirement{Namespace: "java.package", Name: "org.example", Range: MustParseVersionRange("[2.0,3.0)")}))
	assert.Len(t, it.ProvidedCapabilities(), 2)
	assert.Equal(t, "org.example.core/1.2.0", it.String())
}
