package dagger

import (
	"fmt"
	"reflect"
)

// ========================================
// Core Error Values (Sentinel Errors)
// ========================================
//
// These are only ever returned for the "fatal invariant violation" cases
// enumerated in spec.md §7. Missing or duplicate bindings are never errors —
// they are represented as data (an empty ResolvedBindings, or an
// UNRESOLVED_DELEGATE binding) for a downstream validator to diagnose.

var (
	// ErrKeyNotMapOrSet is returned when SyntheticSynthesizer is asked to
	// build a multibound binding for a key that unwraps to neither a map
	// nor a set type.
	ErrKeyNotMapOrSet = fmt.Errorf("multibinding synthesis requires a map or set key")

	// ErrUnresolvedDependency names the case of a binding's dependency that
	// is present in neither the current resolver's table nor any
	// ancestor's at consumption time. Nothing in this package returns it:
	// Resolver.ResolvedBindings answers such a lookup with an empty
	// ResolvedBindings.
	ErrUnresolvedDependency = fmt.Errorf("dependency key missing from resolver lineage at consumption time")

	// ErrSCCInvariantViolated names the case of a dependency outside the
	// current SCC whose caches are not yet populated during the Tarjan pass
	// backing ReResolutionChecker. Nothing in this package returns it:
	// rescc.Checker.EnsureVisited does not check this condition and has no
	// error result.
	ErrSCCInvariantViolated = fmt.Errorf("strongly-connected-component cache invariant violated")
)

// InvariantViolationError wraps one of the sentinel errors above with the
// key and operation that triggered it.
type InvariantViolationError struct {
	Operation string
	Key       Key
	Cause     error
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("dagger: invariant violated during %s for key %s: %v", e.Operation, e.Key, e.Cause)
}

func (e *InvariantViolationError) Unwrap() error {
	return e.Cause
}

// UnsupportedTypeError indicates a reflect.Type could not be classified.
// Nothing in this package constructs it: the KeyFactory helpers in key.go
// report an unrecognized shape through an ok=false result (UnwrapOptional,
// UnwrapMembersInjector) or return the key unchanged (UnwrapMapValueType).
type UnsupportedTypeError struct {
	Operation string
	Type      reflect.Type
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("dagger: %s: unsupported type %s", e.Operation, formatType(e.Type))
}

func formatType(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
