// Package model defines the catalog records queried by the language:
// items with versions, provided capabilities and requirements.
package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a four part version: major.minor.micro.qualifier. Numeric parts
// compare numerically, the qualifier compares lexically. The zero Version is
// 0.0.0 and sorts before every other version.
//
// Version is comparable and may be used as a map key.
type Version struct {
	Major     int
	Minor     int
	Micro     int
	Qualifier string
}

// Zero is the lowest version.
var Zero = Version{}

// ParseVersion parses "1", "1.2", "1.2.3" or "1.2.3.qualifier".
func ParseVersion(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, nil
	}
	parts := strings.SplitN(s, ".", 4)
	var v Version
	nums := []*int{&v.Major, &v.Minor, &v.Micro}
	for i, p := range parts {
		if i == 3 {
			if p == "" {
				return Zero, fmt.Errorf("invalid version %q: empty qualifier", s)
			}
			v.Qualifier = p
			break
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Zero, fmt.Errorf("invalid version %q: bad component %q", s, p)
		}
		*nums[i] = n
	}
	return v, nil
}

// MustParseVersion is like ParseVersion but panics on error.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Compare returns -1, 0 or 1.
func (v Version) Compare(o Version) int {
	switch {
	case v.Major != o.Major:
		return cmpInt(v.Major, o.Major)
	case v.Minor != o.Minor:
		return cmpInt(v.Minor, o.Minor)
	case v.Micro != o.Micro:
		return cmpInt(v.Micro, o.Micro)
	}
	return strings.Compare(v.Qualifier, o.Qualifier)
}

func cmpInt(a, b int) int {
	if a < b {
		return -1
	}
	return 1
}

// String formats the version; the qualifier is omitted when empty.
func (v Version) String() string {
	if v.Qualifier == "" {
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Micro)
	}
	return fmt.Sprintf("%d.%d.%d.%s", v.Major, v.Minor, v.Micro, v.Qualifier)
}

// MarshalText implements encoding.TextMarshaler.
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Version) UnmarshalText(text []byte) error {
	parsed, err := ParseVersion(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
