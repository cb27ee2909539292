package model

import (
	"fmt"
	"strings"
)

// VersionRange is an interval of versions. A nil Maximum means unbounded.
type VersionRange struct {
	Minimum        Version
	IncludeMinimum bool
	Maximum        *Version
	IncludeMaximum bool
}

// AnyVersion includes every version.
var AnyVersion = VersionRange{Minimum: Zero, IncludeMinimum: true}

// ParseVersionRange parses "[1.0,2.0)", "(1.0,2.0]", "[1.0,1.0]" or a bare
// version "1.0", which means "1.0 or later".
func ParseVersionRange(s string) (VersionRange, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return AnyVersion, nil
	}
	if s[0] != '[' && s[0] != '(' {
		v, err := ParseVersion(s)
		if err != nil {
			return VersionRange{}, err
		}
		return VersionRange{Minimum: v, IncludeMinimum: true}, nil
	}
	last := s[len(s)-1]
	if len(s) < 2 || (last != ']' && last != ')') {
		return VersionRange{}, fmt.Errorf("invalid version range %q: missing closing bracket", s)
	}
	lo, hi, ok := strings.Cut(s[1:len(s)-1], ",")
	if !ok {
		return VersionRange{}, fmt.Errorf("invalid version range %q: missing comma", s)
	}
	min, err := ParseVersion(lo)
	if err != nil {
		return VersionRange{}, err
	}
	max, err := ParseVersion(hi)
	if err != nil {
		return VersionRange{}, err
	}
	r := VersionRange{
		Minimum:        min,
		IncludeMinimum: s[0] == '[',
		Maximum:        &max,
		IncludeMaximum: last == ']',
	}
	if c := min.Compare(max); c > 0 || (c == 0 && !(r.IncludeMinimum && r.IncludeMaximum)) {
		return VersionRange{}, fmt.Errorf("invalid version range %q: empty interval", s)
	}
	return r, nil
}

// MustParseVersionRange is like ParseVersionRange but panics on error.
func MustParseVersionRange(s string) VersionRange {
	r, err := ParseVersionRange(s)
	if err != nil {
		panic(err)
	}
	return r
}

// Includes reports whether v lies inside the range.
func (r VersionRange) Includes(v Version) bool {
	c := r.Minimum.Compare(v)
	if c > 0 || (c == 0 && !r.IncludeMinimum) {
		return false
	}
	if r.Maximum == nil {
		return true
	}
	c = v.Compare(*r.Maximum)
	return c < 0 || (c == 0 && r.IncludeMaximum)
}

// String formats the range in interval notation.
func (r VersionRange) String() string {
	if r.Maximum == nil {
		return r.Minimum.String()
	}
	open, end := "(", ")"
	if r.IncludeMinimum {
		open = "["
	}
	if r.IncludeMaximum {
		end = "]"
	}
	return open + r.Minimum.String() + "," + r.Maximum.String() + end
}

// MarshalText implements encoding.TextMarshaler.
func (r VersionRange) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *VersionRange) UnmarshalText(text []byte) error {
	parsed, err := ParseVersionRange(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
