package typeinfo

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidIdentifier is returned when a path or display name segment is not an identifier.
var ErrInvalidIdentifier = errors.New("invalid identifier")

// Path is the namespace of a named type, outermost segment first.
type Path []string

// NewPath validates segments and returns them as a Path.
func NewPath(segments ...string) (Path, error) {
	if len(segments) == 0 {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidIdentifier)
	}
	for _, seg := range segments {
		if !IsIdentifier(seg) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidIdentifier, seg)
		}
	}
	return append(Path(nil), segments...), nil
}

// String joins the segments with "::".
func (p Path) String() string {
	return strings.Join(p, "::")
}

// Name returns the last segment.
func (p Path) Name() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Namespace is an ordered list of identifier segments, used as the display
// name of a type reference. The empty namespace means "no alias".
type Namespace struct {
	segments []string
}

// Prelude returns the empty namespace.
func Prelude() Namespace {
	return Namespace{}
}

// NewNamespace validates every segment as an identifier.
func NewNamespace(segments []string) (Namespace, error) {
	for _, seg := range segments {
		if !IsIdentifier(seg) {
			return Namespace{}, fmt.Errorf("%w: %q", ErrInvalidIdentifier, seg)
		}
	}
	return Namespace{segments: append([]string(nil), segments...)}, nil
}

// ParseNamespace parses a "::" or "." delimited path such as "erc20::Balance".
func ParseNamespace(s string) (Namespace, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Namespace{}, fmt.Errorf("%w: empty display name", ErrInvalidIdentifier)
	}
	sep := "."
	if strings.Contains(s, "::") {
		sep = "::"
	}
	return NewNamespace(strings.Split(s, sep))
}

// Segments returns a copy of the segments.
func (n Namespace) Segments() []string {
	return append([]string(nil), n.segments...)
}

// IsEmpty reports whether the namespace carries no segments.
func (n Namespace) IsEmpty() bool {
	return len(n.segments) == 0
}

// String joins the segments with "::".
func (n Namespace) String() string {
	return strings.Join(n.segments, "::")
}

// MarshalJSON encodes the namespace as an array of segments.
func (n Namespace) MarshalJSON() ([]byte, error) {
	if n.segments == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(n.segments)
}

// IsIdentifier reports whether s is a valid identifier: an ASCII letter or
// underscore followed by ASCII letters, digits or underscores. A lone "_" is
// not an identifier. The rule matches what type expressions can spell.
func IsIdentifier(s string) bool {
	if s == "" || s == "_" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
		case i > 0 && c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}
