// Package version provides a major.minor.patch version value with an
// optional release tag, and a constraint type for matching versions.
//
// The format is deliberately narrower than semver: the only accepted tags
// are alpha, beta, and prerelease, and tags never take part in comparisons,
// so v1.0.0-alpha equals v1.0.0.
//
//	v, err := version.Parse("v2.1.0-beta")
//	c, err := version.ParseComparable(">=v2.0.0")
//	c.Match(v)
package version

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidVersion indicates a string that is not a valid version.
var ErrInvalidVersion = errors.New("invalid version")

// Tag is a purely descriptive release label.
type Tag int

const (
	// NoTag marks a plain release.
	NoTag Tag = iota
	Alpha
	Beta
	Prerelease
)

// ParseTag converts "alpha", "beta", or "prerelease" to a Tag.
func ParseTag(s string) (Tag, bool) {
	switch s {
	case "alpha":
		return Alpha, true
	case "beta":
		return Beta, true
	case "prerelease":
		return Prerelease, true
	}
	return NoTag, false
}

// String returns the tag name, or "" for NoTag.
func (t Tag) String() string {
	switch t {
	case Alpha:
		return "alpha"
	case Beta:
		return "beta"
	case Prerelease:
		return "prerelease"
	}
	return ""
}

// Suffix returns the tag as it appears in a version string ("-beta"),
// or "" for NoTag.
func (t Tag) Suffix() string {
	if t == NoTag {
		return ""
	}
	return "-" + t.String()
}

// Info is a version number. The zero value is v0.0.0.
type Info struct {
	Major uint64
	Minor uint64
	Patch uint64
	Tag   Tag
}

// New returns an untagged version.
func New(major, minor, patch uint64) Info {
	return Info{Major: major, Minor: minor, Patch: patch}
}

// NewTagged returns a tagged version.
func NewTagged(major, minor, patch uint64, tag Tag) Info {
	return Info{Major: major, Minor: minor, Patch: patch, Tag: tag}
}

// Parse reads a version like "v1.2.3", "1.2.3", or "v1.2.3-alpha".
func Parse(s string) (Info, error) {
	body, tagName, tagged := strings.Cut(strings.TrimPrefix(s, "v"), "-")

	var v Info
	if tagged {
		tag, ok := ParseTag(tagName)
		if !ok {
			return Info{}, fmt.Errorf("%w %q: unknown tag %q", ErrInvalidVersion, s, tagName)
		}
		v.Tag = tag
	}

	parts := strings.Split(body, ".")
	if len(parts) != 3 {
		return Info{}, fmt.Errorf("%w %q: want major.minor.patch", ErrInvalidVersion, s)
	}
	fields := [3]*uint64{&v.Major, &v.Minor, &v.Patch}
	for i, part := range parts {
		n, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return Info{}, fmt.Errorf("%w %q: %w", ErrInvalidVersion, s, err)
		}
		*fields[i] = n
	}
	return v, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Info {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Validate reports whether s parses as a version.
func Validate(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// Compare returns -1, 0, or +1 comparing a to b by major, minor, then
// patch. Tags are ignored.
func Compare(a, b Info) int {
	for _, pair := range [3][2]uint64{{a.Major, b.Major}, {a.Minor, b.Minor}, {a.Patch, b.Patch}} {
		switch {
		case pair[0] < pair[1]:
			return -1
		case pair[0] > pair[1]:
			return 1
		}
	}
	return 0
}

// Equal reports whether v and o have the same number, ignoring tags.
func (v Info) Equal(o Info) bool { return Compare(v, o) == 0 }

// Less reports whether v is older than o.
func (v Info) Less(o Info) bool { return Compare(v, o) < 0 }

// LessEq reports whether v is older than or equal to o.
func (v Info) LessEq(o Info) bool { return Compare(v, o) <= 0 }

// Greater reports whether v is newer than o.
func (v Info) Greater(o Info) bool { return Compare(v, o) > 0 }

// GreaterEq reports whether v is newer than or equal to o.
func (v Info) GreaterEq(o Info) bool { return Compare(v, o) >= 0 }

// String formats v as "v1.2.3" plus the tag suffix, if any.
func (v Info) String() string {
	return v.StringNoTag() + v.Tag.Suffix()
}

// StringNoTag formats v as "v1.2.3".
func (v Info) StringNoTag() string {
	return fmt.Sprintf("v%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// MarshalJSON encodes v as its string form.
func (v Info) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

// UnmarshalJSON decodes a version string.
func (v *Info) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidVersion, err)
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MarshalYAML encodes v as its string form.
func (v Info) MarshalYAML() (any, error) {
	return v.String(), nil
}

// UnmarshalYAML decodes a version string.
func (v *Info) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidVersion, err)
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
