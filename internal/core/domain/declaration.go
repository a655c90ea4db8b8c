package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

// Declaration is the parsed form of a unit source.
type Declaration struct {
	Package     string
	Class       string
	Imports     []UnitName
	Constants   []Constant
	Nested      []NestedClass
	Annotations []Annotation
	Init        []Statement
}

// Constant is a static constant declared on a class.
type Constant struct {
	Name  string
	Value string
}

// NestedClass is a class declared inside another class.
type NestedClass struct {
	Name      string
	Constants []Constant
	Nested    []NestedClass
}

// Annotation attaches a constant reference to the unit's constructor.
type Annotation struct {
	Name string
	Ref  string
}

// StatementOp identifies a constructor statement.
type StatementOp string

const (
	// OpNew instantiates a class.
	OpNew StatementOp = "new"
	// OpClassName evaluates to the binary name of a class.
	OpClassName StatementOp = "classname"
	// OpPrint prints a constant.
	OpPrint StatementOp = "print"
)

// Statement is one constructor statement; Ref is a dotted reference in source form.
type Statement struct {
	Op  StatementOp
	Ref string
}

// QualifiedName joins the declared package and class.
func (d *Declaration) QualifiedName() string {
	if d.Package == "" {
		return d.Class
	}
	return d.Package + "." + d.Class
}

// Surface is the public shape of a unit that other units may reference:
// the unit's class, its nested classes, and their static constants.
// Member paths are relative to the unit ("" is the unit class itself,
// "NestedInB" a nested class, "NestedInB.NestedProp" a constant).
type Surface struct {
	Unit      UnitName
	Classes   map[string]struct{}
	Constants map[string]string
}

// DeclareSurface collects the surface of a parsed unit.
// Duplicate member names are a compile error.
func DeclareSurface(name UnitName, decl *Declaration) (*Surface, error) {
	s := &Surface{
		Unit:      name,
		Classes:   map[string]struct{}{"": {}},
		Constants: make(map[string]string),
	}
	if err := s.declare("", decl.Constants, decl.Nested); err != nil {
		return nil, zerr.With(err, "unit", name.String())
	}
	return s, nil
}

func (s *Surface) declare(prefix string, constants []Constant, nested []NestedClass) error {
	for _, c := range constants {
		p := joinMember(prefix, c.Name)
		if s.has(p) {
			return zerr.With(zerr.Wrap(ErrCompile, "duplicate member"), "member", p)
		}
		s.Constants[p] = c.Value
	}
	for _, n := range nested {
		p := joinMember(prefix, n.Name)
		if s.has(p) {
			return zerr.With(zerr.Wrap(ErrCompile, "duplicate member"), "member", p)
		}
		s.Classes[p] = struct{}{}
		if err := s.declare(p, n.Constants, n.Nested); err != nil {
			return err
		}
	}
	return nil
}

func (s *Surface) has(member string) bool {
	if _, ok := s.Classes[member]; ok {
		return true
	}
	_, ok := s.Constants[member]
	return ok
}

// HasClass reports whether member names the unit class or one of its nested classes.
func (s *Surface) HasClass(member string) bool {
	_, ok := s.Classes[member]
	return ok
}

// Constant returns the value of the constant at member.
func (s *Surface) Constant(member string) (string, bool) {
	v, ok := s.Constants[member]
	return v, ok
}

// BinaryName returns the runtime name of a class member: "pkg1.B" for the unit
// class, "pkg1.B$NestedInB" for a nested class.
func (s *Surface) BinaryName(member string) string {
	if member == "" {
		return s.Unit.String()
	}
	return s.Unit.String() + "$" + strings.ReplaceAll(member, ".", "$")
}

// Qualify returns the fully qualified dotted form of a member path.
func (s *Surface) Qualify(member string) string {
	return joinMember(s.Unit.String(), member)
}

func joinMember(prefix, name string) string {
	if prefix == "" {
		return name
	}
	if name == "" {
		return prefix
	}
	return prefix + "." + name
}
