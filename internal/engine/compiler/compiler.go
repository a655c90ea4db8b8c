// Package compiler turns parsed units into artifacts.
//
// A unit compiles in two steps. Its surface (class, nested classes, static
// constants) is declared first, then its annotations and constructor body are
// resolved against the surfaces of the units it imports. CompileSingle obtains
// those surfaces from already completed artifacts; CompileBatch declares every
// surface in the batch before resolving any body, which is what lets mutually
// referencing units compile.
package compiler

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"go.trai.ch/knot/internal/core/domain"
	"go.trai.ch/knot/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.UnitCompiler = (*Compiler)(nil)

// Compiler implements ports.UnitCompiler.
type Compiler struct {
	parser ports.Parser
	hasher ports.Hasher
}

// New creates a new Compiler.
func New(parser ports.Parser, hasher ports.Hasher) *Compiler {
	return &Compiler{
		parser: parser,
		hasher: hasher,
	}
}

// declared is a unit whose surface is known but whose body is not yet resolved.
type declared struct {
	unit    *domain.Unit
	decl    *domain.Declaration
	surface *domain.Surface
}

// dependency is what a unit body may see of a referenced unit.
type dependency struct {
	surface     *domain.Surface
	fingerprint string
}

// CompileSingle compiles one unit. References to other units are answered by
// resolve. A reference to the unit itself is answered by its own surface.
func (c *Compiler) CompileSingle(
	ctx context.Context,
	unit *domain.Unit,
	resolve ports.Resolver,
) (*domain.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d, err := c.declare(unit)
	if err != nil {
		return nil, err
	}

	deps := make(map[domain.UnitName]dependency, len(unit.References))
	for _, ref := range unit.References {
		if ref == unit.Name {
			continue
		}
		art, err := resolve(ctx, ref)
		if err != nil {
			return nil, err
		}
		deps[ref] = dependency{surface: art.Surface(), fingerprint: art.Fingerprint}
	}

	return c.define(ctx, d, deps)
}

// CompileBatch compiles units together. Every surface is declared before any
// body is resolved. References outside the batch go through resolve.
func (c *Compiler) CompileBatch(
	ctx context.Context,
	units []*domain.Unit,
	resolve ports.Resolver,
) (map[domain.UnitName]*domain.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	members := make(map[domain.UnitName]*declared, len(units))
	for _, u := range units {
		if _, dup := members[u.Name]; dup {
			return nil, zerr.With(zerr.Wrap(domain.ErrUnitAlreadyExists, "duplicate unit in batch"), "unit", u.Name.String())
		}
		d, err := c.declare(u)
		if err != nil {
			return nil, err
		}
		members[u.Name] = d
	}
	logf(ctx, domain.LogLevelDebug, "declared %d surfaces", len(members))

	external := make(map[domain.UnitName]dependency)
	out := make(map[domain.UnitName]*domain.Artifact, len(units))
	for _, name := range slices.SortedFunc(maps.Keys(members), domain.UnitName.Compare) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		d := members[name]

		deps := make(map[domain.UnitName]dependency, len(d.unit.References))
		for _, ref := range d.unit.References {
			if ref == name {
				continue
			}
			if m, ok := members[ref]; ok {
				deps[ref] = dependency{surface: m.surface, fingerprint: c.hasher.Fingerprint(m.unit)}
				continue
			}
			dep, ok := external[ref]
			if !ok {
				art, err := resolve(ctx, ref)
				if err != nil {
					return nil, err
				}
				dep = dependency{surface: art.Surface(), fingerprint: art.Fingerprint}
				external[ref] = dep
			}
			deps[ref] = dep
		}

		art, err := c.define(ctx, d, deps)
		if err != nil {
			return nil, err
		}
		out[name] = art
	}
	return out, nil
}

func (c *Compiler) declare(unit *domain.Unit) (*declared, error) {
	decl, err := c.parser.Parse(unit.Name, unit.Source)
	if err != nil {
		return nil, err
	}
	surface, err := domain.DeclareSurface(unit.Name, decl)
	if err != nil {
		return nil, err
	}
	return &declared{unit: unit, decl: decl, surface: surface}, nil
}

// define resolves the body of d and assembles its artifact.
func (c *Compiler) define(
	ctx context.Context,
	d *declared,
	deps map[domain.UnitName]dependency,
) (*domain.Artifact, error) {
	s, err := newScope(d.unit, d.surface, deps)
	if err != nil {
		return nil, err
	}
	compiled := &domain.CompiledUnit{
		Name:                   d.unit.Name.String(),
		Classes:                binaryNames(d.surface),
		Constants:              qualifiedConstants(d.surface),
		Links:                  []string{},
		DependencyFingerprints: make(map[string]string, len(deps)),
	}

	for _, ref := range d.unit.References {
		if ref == d.unit.Name {
			continue
		}
		compiled.Links = append(compiled.Links, ref.String())
		compiled.DependencyFingerprints[ref.String()] = deps[ref].fingerprint
	}

	for _, a := range d.decl.Annotations {
		target, member, err := s.lookup(a.Ref)
		if err != nil {
			return nil, err
		}
		value, ok := target.Constant(member)
		if !ok {
			return nil, s.unresolved(a.Ref, "annotation value is not a constant")
		}
		compiled.Annotations = append(compiled.Annotations, domain.ResolvedAnnotation{
			Name:  a.Name,
			Ref:   target.Qualify(member),
			Value: value,
		})
	}

	for _, stmt := range d.decl.Init {
		inst, err := s.instruction(stmt)
		if err != nil {
			return nil, err
		}
		compiled.Init = append(compiled.Init, inst)
	}

	logf(ctx, domain.LogLevelDebug, "compiled %s", d.unit.Name)
	return &domain.Artifact{
		UnitName:    d.unit.Name,
		Fingerprint: c.hasher.Fingerprint(d.unit),
		Handle:      compiled,
	}, nil
}

func binaryNames(s *domain.Surface) []string {
	out := make([]string, 0, len(s.Classes))
	for member := range s.Classes {
		out = append(out, s.BinaryName(member))
	}
	slices.Sort(out)
	return out
}

func qualifiedConstants(s *domain.Surface) map[string]string {
	out := make(map[string]string, len(s.Constants))
	for member, v := range s.Constants {
		out[s.Qualify(member)] = v
	}
	return out
}

func logf(ctx context.Context, level domain.LogLevel, format string, args ...any) {
	if v, ok := ports.VertexFromContext(ctx); ok {
		v.Log(level, fmt.Sprintf(format, args...))
	}
}

// scope answers dotted source references for one unit body.
type scope struct {
	unit     domain.UnitName
	self     *domain.Surface
	deps     map[domain.UnitName]dependency
	bySimple map[string]domain.UnitName
}

// newScope indexes the imports of unit by simple name. Two imports with the same
// simple name, or an import named like the unit itself, fail with domain.ErrCompile.
func newScope(unit *domain.Unit, self *domain.Surface, deps map[domain.UnitName]dependency) (*scope, error) {
	s := &scope{
		unit:     unit.Name,
		self:     self,
		deps:     deps,
		bySimple: make(map[string]domain.UnitName, len(deps)),
	}
	for _, name := range unit.References {
		if name == unit.Name {
			continue
		}
		simple := name.Simple()
		if simple == unit.Name.Simple() {
			err := zerr.With(zerr.Wrap(domain.ErrCompile, "import clashes with the declared class"), "import", name.String())
			return nil, zerr.With(err, "unit", unit.Name.String())
		}
		if prev, ok := s.bySimple[simple]; ok {
			err := zerr.With(zerr.Wrap(domain.ErrCompile, "imports share a simple name"), "imports", prev.String()+", "+name.String())
			return nil, zerr.With(err, "unit", unit.Name.String())
		}
		s.bySimple[simple] = name
	}
	return s, nil
}

// lookup splits ref into the surface it lives on and the member path within it.
// The first segment is tried as the unit's own simple name, then as the simple
// name of an import; otherwise the longest imported qualified prefix wins.
func (s *scope) lookup(ref string) (*domain.Surface, string, error) {
	segments := strings.Split(ref, ".")
	member := func(from int) string {
		return strings.Join(segments[from:], ".")
	}

	if segments[0] == s.unit.Simple() {
		return s.self, member(1), nil
	}
	if name, ok := s.bySimple[segments[0]]; ok {
		return s.deps[name].surface, member(1), nil
	}
	for i := len(segments); i > 1; i-- {
		prefix := strings.Join(segments[:i], ".")
		if prefix == s.unit.String() {
			return s.self, member(i), nil
		}
		for name, dep := range s.deps {
			if name.String() == prefix {
				return dep.surface, member(i), nil
			}
		}
	}
	return nil, "", s.unresolved(ref, "name is not imported")
}

func (s *scope) instruction(stmt domain.Statement) (domain.Instruction, error) {
	target, member, err := s.lookup(stmt.Ref)
	if err != nil {
		return domain.Instruction{}, err
	}

	switch stmt.Op {
	case domain.OpNew:
		if !target.HasClass(member) {
			return domain.Instruction{}, s.unresolved(stmt.Ref, "not a class")
		}
		return domain.Instruction{Op: stmt.Op, Ref: target.Qualify(member)}, nil
	case domain.OpClassName:
		if !target.HasClass(member) {
			return domain.Instruction{}, s.unresolved(stmt.Ref, "not a class")
		}
		return domain.Instruction{Op: stmt.Op, Ref: target.Qualify(member), Value: target.BinaryName(member)}, nil
	case domain.OpPrint:
		value, ok := target.Constant(member)
		if !ok {
			return domain.Instruction{}, s.unresolved(stmt.Ref, "not a constant")
		}
		return domain.Instruction{Op: stmt.Op, Ref: target.Qualify(member), Value: value}, nil
	default:
		err := zerr.With(zerr.Wrap(domain.ErrCompile, "unknown statement"), "op", string(stmt.Op))
		return domain.Instruction{}, zerr.With(err, "unit", s.unit.String())
	}
}

func (s *scope) unresolved(ref, reason string) error {
	err := zerr.With(zerr.Wrap(domain.ErrUnresolvedReference, reason), "reference", ref)
	return zerr.With(err, "unit", s.unit.String())
}
