package domain

import (
	"path"
	"slices"
	"strings"
	"unique"

	"go.trai.ch/zerr"
)

// UnitName is the interned, dotted name of a unit (e.g. "pkg2.A").
// Names are compared by handle, so equality checks and map lookups are cheap.
type UnitName struct {
	h unique.Handle[string]
}

// NewUnitName interns s as a UnitName. It does not validate s; use ParseUnitName for untrusted input.
func NewUnitName(s string) UnitName {
	return UnitName{h: unique.Make(s)}
}

// NewUnitNames interns every string in names, preserving order.
func NewUnitNames(names []string) []UnitName {
	if len(names) == 0 {
		return nil
	}
	out := make([]UnitName, len(names))
	for i, n := range names {
		out[i] = NewUnitName(n)
	}
	return out
}

// ParseUnitName validates a dotted name and interns it.
// Every segment must be non-empty and must not contain path separators.
func ParseUnitName(s string) (UnitName, error) {
	if s == "" {
		return UnitName{}, ErrInvalidUnitName
	}
	for seg := range strings.SplitSeq(s, ".") {
		if seg == "" || strings.ContainsAny(seg, `/\ `) {
			return UnitName{}, zerr.With(zerr.Wrap(ErrInvalidUnitName, "malformed segment"), "unit", s)
		}
	}
	return NewUnitName(s), nil
}

// ParseUnitPath maps a slash-separated storage path such as "pkg1/B.unit.yaml"
// back to its unit name ("pkg1.B"). It reports false if rel does not end in ext.
func ParseUnitPath(rel, ext string) (UnitName, bool) {
	rel = path.Clean(strings.ReplaceAll(rel, `\`, "/"))
	if !strings.HasSuffix(rel, ext) {
		return UnitName{}, false
	}
	trimmed := strings.TrimSuffix(rel, ext)
	if trimmed == "" || strings.HasPrefix(trimmed, "../") {
		return UnitName{}, false
	}
	name, err := ParseUnitName(strings.ReplaceAll(trimmed, "/", "."))
	if err != nil {
		return UnitName{}, false
	}
	return name, true
}

// String returns the dotted name.
func (n UnitName) String() string {
	var zero unique.Handle[string]
	if n.h == zero {
		return ""
	}
	return n.h.Value()
}

// IsZero reports whether n was never assigned.
func (n UnitName) IsZero() bool {
	var zero unique.Handle[string]
	return n.h == zero
}

// Package returns everything before the last dot, or "" for an unqualified name.
func (n UnitName) Package() string {
	s := n.String()
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		return s[:i]
	}
	return ""
}

// Simple returns the last segment of the name.
func (n UnitName) Simple() string {
	s := n.String()
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// Path maps the name to its storage path: "pkg1.B" with ext ".unit.yaml" becomes "pkg1/B.unit.yaml".
func (n UnitName) Path(ext string) string {
	return strings.ReplaceAll(n.String(), ".", "/") + ext
}

// Compare orders names lexically; it is suitable for slices.SortFunc.
func (n UnitName) Compare(other UnitName) int {
	return strings.Compare(n.String(), other.String())
}

// MarshalText implements encoding.TextMarshaler.
func (n UnitName) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (n *UnitName) UnmarshalText(text []byte) error {
	n.h = unique.Make(string(text))
	return nil
}

// SortUnitNames sorts names lexically and drops duplicates.
func SortUnitNames(names []UnitName) []UnitName {
	out := slices.Clone(names)
	slices.SortFunc(out, UnitName.Compare)
	return slices.Compact(out)
}

// UnitNameStrings converts names to plain strings, preserving order.
func UnitNameStrings(names []UnitName) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = n.String()
	}
	return out
}
