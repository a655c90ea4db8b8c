package domain

import "strings"

// Artifact is the compiled, loadable result of resolving a unit.
// It is never mutated after the compiler returns it.
type Artifact struct {
	UnitName    UnitName
	Fingerprint string
	Handle      *CompiledUnit
}

// CompiledUnit is the compiled representation carried by an Artifact.
// Other units are referenced by name only.
type CompiledUnit struct {
	Name        string               `msgpack:"name"`
	Classes     []string             `msgpack:"classes"`
	Constants   map[string]string    `msgpack:"constants"`
	Annotations []ResolvedAnnotation `msgpack:"annotations"`
	Init        []Instruction        `msgpack:"init"`
	Links       []string             `msgpack:"links"`
	// DependencyFingerprints records the fingerprint of every referenced unit at compile time.
	DependencyFingerprints map[string]string `msgpack:"dependency_fingerprints"`
}

// ResolvedAnnotation is an annotation whose constant reference has been folded.
type ResolvedAnnotation struct {
	Name  string `msgpack:"name"`
	Ref   string `msgpack:"ref"`
	Value string `msgpack:"value"`
}

// Instruction is a constructor statement with its reference fully qualified.
// Value holds the folded constant for OpPrint and the binary class name for OpClassName.
type Instruction struct {
	Op    StatementOp `msgpack:"op"`
	Ref   string      `msgpack:"ref"`
	Value string      `msgpack:"value,omitempty"`
}

// Constant returns the value of a constant by its fully qualified name.
func (a *Artifact) Constant(qualified string) (string, bool) {
	if a == nil || a.Handle == nil {
		return "", false
	}
	v, ok := a.Handle.Constants[qualified]
	return v, ok
}

// Surface rebuilds the referenceable surface of a compiled unit, so that units
// compiled later can resolve against it without the original source.
func (a *Artifact) Surface() *Surface {
	s := &Surface{
		Unit:      a.UnitName,
		Classes:   make(map[string]struct{}, len(a.Handle.Classes)),
		Constants: make(map[string]string, len(a.Handle.Constants)),
	}
	root := a.UnitName.String()
	for _, bin := range a.Handle.Classes {
		if bin == root {
			s.Classes[""] = struct{}{}
			continue
		}
		member := strings.TrimPrefix(bin, root+"$")
		s.Classes[strings.ReplaceAll(member, "$", ".")] = struct{}{}
	}
	for qualified, v := range a.Handle.Constants {
		s.Constants[strings.TrimPrefix(qualified, root+".")] = v
	}
	return s
}
