package version

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Mode selects how a Comparable matches.
type Mode int

const (
	// Exact matches the same version number.
	Exact Mode = iota
	// LessEq matches when the constraint version is at most the candidate.
	LessEq
	// MoreEq matches when the constraint version is at least the candidate.
	MoreEq
)

// Operator returns "=", "<=", or ">=".
func (m Mode) Operator() string {
	switch m {
	case LessEq:
		return "<="
	case MoreEq:
		return ">="
	}
	return "="
}

// Comparable pairs a version with a comparison mode.
//
// Match compares the constraint's own version against the candidate, so
// Comparable{v1.2.0, MoreEq} matches v1.1.0 and v1.2.0 but not v1.3.0.
type Comparable struct {
	Version Info
	Mode    Mode
}

// ParseComparable reads "<=v1.2.3", ">=1.2.3", "=v1.2.3", or a bare
// version, which means Exact.
func ParseComparable(s string) (Comparable, error) {
	var c Comparable
	switch {
	case strings.HasPrefix(s, "<="):
		c.Mode, s = LessEq, s[2:]
	case strings.HasPrefix(s, ">="):
		c.Mode, s = MoreEq, s[2:]
	case strings.HasPrefix(s, "="):
		c.Mode, s = Exact, s[1:]
	}

	v, err := Parse(s)
	if err != nil {
		return Comparable{}, err
	}
	c.Version = v
	return c, nil
}

// ValidateComparable reports whether s parses as a Comparable.
func ValidateComparable(s string) bool {
	_, err := ParseComparable(s)
	return err == nil
}

// Match applies the constraint to v.
func (c Comparable) Match(v Info) bool {
	switch c.Mode {
	case Exact:
		return c.Version.Equal(v)
	case LessEq:
		return c.Version.LessEq(v)
	case MoreEq:
		return c.Version.GreaterEq(v)
	}
	return false
}

// String formats c as the operator followed by the version, e.g. ">=v1.2.3".
func (c Comparable) String() string {
	return c.Mode.Operator() + c.Version.String()
}

// MarshalJSON encodes c as its string form.
func (c Comparable) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON decodes a constraint string.
func (c *Comparable) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidVersion, err)
	}
	parsed, err := ParseComparable(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// MarshalYAML encodes c as its string form.
func (c Comparable) MarshalYAML() (any, error) {
	return c.String(), nil
}

// UnmarshalYAML decodes a constraint string.
func (c *Comparable) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidVersion, err)
	}
	parsed, err := ParseComparable(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
