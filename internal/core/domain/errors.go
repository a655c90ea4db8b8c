package domain

import (
	"errors"

	"go.trai.ch/zerr"
)

var (
	// ErrUnknownReference is returned when a unit references a name that was never registered.
	ErrUnknownReference = zerr.New("unknown reference")

	// ErrUnresolvedReference is returned when a reference names something that is registered
	// but not reachable in the current resolution context (not imported, or no such member).
	ErrUnresolvedReference = zerr.New("unresolved reference")

	// ErrCircularReference is returned when lazy single-unit resolution re-enters a unit
	// that is still being resolved.
	ErrCircularReference = zerr.New("circular reference")

	// ErrCompile is returned when a unit body is malformed.
	ErrCompile = zerr.New("compile error")

	// ErrSelfReference is returned when a unit references itself and the policy rejects it.
	ErrSelfReference = zerr.New("unit references itself")

	// ErrBatchCompileFailed is returned when compiling a batch of units fails.
	ErrBatchCompileFailed = zerr.New("batch compilation failed")

	// ErrUnitAlreadyExists is returned when a unit with the same name is registered twice.
	ErrUnitAlreadyExists = zerr.New("unit already exists")

	// ErrUnitNotFound is returned when a requested unit is not in the store.
	ErrUnitNotFound = zerr.New("unit not found")

	// ErrInvalidUnitName is returned when a unit name is empty or has malformed segments.
	ErrInvalidUnitName = zerr.New("invalid unit name")

	// ErrInvalidSelfReferencePolicy is returned when the configured self reference policy is unknown.
	ErrInvalidSelfReferencePolicy = zerr.New("invalid self reference policy, expected 'allow' or 'reject'")

	// ErrNoTargetsSpecified is returned when no units are given to a command that needs them.
	ErrNoTargetsSpecified = zerr.New("no units specified")

	// ErrConfigNotFound is returned when no configuration file can be found.
	ErrConfigNotFound = zerr.New("could not find knot.yaml or knot.toml")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrSourceReadFailed is returned when a unit source file cannot be read.
	ErrSourceReadFailed = zerr.New("failed to read unit source")

	// ErrStoreCreateFailed is returned when the artifact directory cannot be created.
	ErrStoreCreateFailed = zerr.New("failed to create artifact directory")

	// ErrStoreReadFailed is returned when a stored artifact cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read artifact")

	// ErrStoreDecodeFailed is returned when a stored artifact cannot be decoded.
	ErrStoreDecodeFailed = zerr.New("failed to decode artifact")

	// ErrStoreEncodeFailed is returned when an artifact cannot be encoded.
	ErrStoreEncodeFailed = zerr.New("failed to encode artifact")

	// ErrStoreWriteFailed is returned when an artifact cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write artifact")

	// ErrStoreCleanFailed is returned when the artifact directory cannot be removed.
	ErrStoreCleanFailed = zerr.New("failed to clean artifact directory")
)

// Metadata returns the first value stored under key anywhere in err's chain.
func Metadata(err error, key string) (any, bool) {
	for current := err; current != nil; current = errors.Unwrap(current) {
		z, ok := current.(*zerr.Error)
		if !ok {
			continue
		}
		if v, found := z.Metadata()[key]; found {
			return v, true
		}
	}
	return nil, false
}
