// Package script parses unit sources written in the YAML unit format.
package script

import (
	"bytes"
	"errors"
	"io"
	"maps"
	"slices"

	"go.trai.ch/knot/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Parser implements ports.Parser and ports.ReferenceExtractor.
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes source into a declaration. Unknown keys, a missing class, and a
// declared identity that differs from name all fail with domain.ErrCompile.
func (p *Parser) Parse(name domain.UnitName, source string) (*domain.Declaration, error) {
	var file unitFile
	dec := yaml.NewDecoder(bytes.NewReader([]byte(source)))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, compileError(name, err.Error())
	}

	if file.Class == "" {
		return nil, compileError(name, "missing class")
	}

	decl := &domain.Declaration{
		Package:   file.Package,
		Class:     file.Class,
		Constants: constants(file.Constants),
	}
	if decl.QualifiedName() != name.String() {
		err := compileError(name, "declared identity does not match unit name")
		return nil, zerr.With(err, "declared", decl.QualifiedName())
	}

	imports, err := parseImports(name, file.Imports)
	if err != nil {
		return nil, err
	}
	decl.Imports = imports

	nested, err := nestedClasses(name, file.Nested)
	if err != nil {
		return nil, err
	}
	decl.Nested = nested

	for _, a := range file.Annotations {
		if a.Name == "" || a.Value == "" {
			return nil, compileError(name, "annotation needs a name and a value")
		}
		decl.Annotations = append(decl.Annotations, domain.Annotation{Name: a.Name, Ref: a.Value})
	}

	for i, s := range file.Init {
		stmt, err := statement(s)
		if err != nil {
			return nil, zerr.With(compileError(name, err.Error()), "statement", i)
		}
		decl.Init = append(decl.Init, stmt)
	}

	return decl, nil
}

// References returns the imports declared by source. The body is not inspected,
// so a malformed body surfaces at compile time rather than while loading.
func (p *Parser) References(name domain.UnitName, source string) ([]domain.UnitName, error) {
	var file importsOnly
	if err := yaml.Unmarshal([]byte(source), &file); err != nil {
		return nil, compileError(name, err.Error())
	}
	return parseImports(name, file.Imports)
}

func parseImports(name domain.UnitName, raw []string) ([]domain.UnitName, error) {
	imports := make([]domain.UnitName, 0, len(raw))
	for _, s := range raw {
		imp, err := domain.ParseUnitName(s)
		if err != nil {
			return nil, zerr.With(compileError(name, "invalid import"), "import", s)
		}
		imports = append(imports, imp)
	}
	return domain.SortUnitNames(imports), nil
}

func nestedClasses(name domain.UnitName, dtos []nestedDTO) ([]domain.NestedClass, error) {
	if len(dtos) == 0 {
		return nil, nil
	}
	out := make([]domain.NestedClass, 0, len(dtos))
	for _, n := range dtos {
		if n.Class == "" {
			return nil, compileError(name, "nested class without a name")
		}
		inner, err := nestedClasses(name, n.Nested)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.NestedClass{
			Name:      n.Class,
			Constants: constants(n.Constants),
			Nested:    inner,
		})
	}
	return out, nil
}

// constants returns the map entries sorted by name.
func constants(m map[string]string) []domain.Constant {
	if len(m) == 0 {
		return nil
	}
	out := make([]domain.Constant, 0, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		out = append(out, domain.Constant{Name: k, Value: m[k]})
	}
	return out
}

func statement(s statementDTO) (domain.Statement, error) {
	var stmts []domain.Statement
	if s.New != "" {
		stmts = append(stmts, domain.Statement{Op: domain.OpNew, Ref: s.New})
	}
	if s.ClassName != "" {
		stmts = append(stmts, domain.Statement{Op: domain.OpClassName, Ref: s.ClassName})
	}
	if s.Print != "" {
		stmts = append(stmts, domain.Statement{Op: domain.OpPrint, Ref: s.Print})
	}
	if len(stmts) != 1 {
		return domain.Statement{}, errors.New("statement must have exactly one of new, classname, print")
	}
	return stmts[0], nil
}

func compileError(name domain.UnitName, msg string) error {
	return zerr.With(zerr.Wrap(domain.ErrCompile, msg), "unit", name.String())
}
