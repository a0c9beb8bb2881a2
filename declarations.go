package dagger

import "reflect"

// MultibindingDeclaration records that a key is declared as a multibinding
// (a Go stand-in for Dagger's @Multibinds) even when it currently has zero
// contributions — it still resolves to an empty map or set rather than
// being reported missing (§3, §5.2 edge case).
type MultibindingDeclaration struct {
	Key                Key
	ContributingModule reflect.Type
}

// MultibindingContribution is one element or map entry contributed to a
// multibound key. Its own ContributionKey is independently resolvable (it
// carries a unique Key.ContributionID) and is itself added as a dependency
// of the synthesized MULTIBOUND_SET/MULTIBOUND_MAP binding (§5.2).
type MultibindingContribution struct {
	ContributionKey    Key
	MapKey             any // nil for set contributions
	ContributingModule reflect.Type
	BindingElement     string
}

// DelegateDeclaration is a Go stand-in for Dagger's @Binds: Key is
// satisfied by forwarding to DelegateRequest without any intervening
// construction step (§3, §5.4).
type DelegateDeclaration struct {
	Key                Key
	DelegateRequest    DependencyRequest
	ContributingModule reflect.Type
	BindingElement     string
}

// DelegateMultibindingContribution is a multibinding contribution made via
// @Binds rather than @Provides: it forwards to DelegateRequest instead of
// carrying its own independently-resolvable key.
type DelegateMultibindingContribution struct {
	ContributionID     string
	DelegateRequest    DependencyRequest
	MapKey             any
	ContributingModule reflect.Type
	BindingElement     string
}

// OptionalBindingDeclaration declares that an (unwrapped) key has an
// optional binding available — a Go stand-in for @BindsOptionalOf — used
// by SyntheticSynthesizer to decide whether Optional[T] resolves present or
// absent (§5.3).
type OptionalBindingDeclaration struct {
	Key                Key
	ContributingModule reflect.Type
}

// SubcomponentDeclaration associates a creator key (a builder/factory
// type) with the child ComponentDescriptor it constructs, letting
// SyntheticSynthesizer build a SUBCOMPONENT_CREATOR binding on demand
// (§5.5).
type SubcomponentDeclaration struct {
	Key   Key
	Child *ComponentDescriptor
}

// ComponentDeclarations is the per-component index of everything a single
// component's module set and interface declare, keyed for lookup by
// Resolver. It is produced by a collaborator out of scope for this package
// (annotation/declaration extraction) and consumed read-only; ordering
// within each returned slice must be deterministic (declaration order) so
// that resolution output is reproducible across runs (§1 goal,
// determinism).
type ComponentDeclarations interface {
	// Bindings returns the explicit bindings (@Provides/@Produces methods,
	// @Inject constructors registered as bound instances, component
	// dependencies, bound instances) declared for key at this component.
	Bindings(key Key) []Binding

	// MultibindingContributions returns the @Provides/@Produces-style
	// contributions to the multibound key.
	MultibindingContributions(key Key) []MultibindingContribution

	// DelegateMultibindingContributions returns the @Binds-style
	// contributions to the multibound key.
	DelegateMultibindingContributions(key Key) []DelegateMultibindingContribution

	// Delegates returns the @Binds-style declarations for key.
	Delegates(key Key) []DelegateDeclaration

	// MultibindingDeclarations returns the @Multibinds-style declarations
	// for key (present even with no contributions).
	MultibindingDeclarations(key Key) []MultibindingDeclaration

	// OptionalBindingDeclarations returns the @BindsOptionalOf-style
	// declarations for the unwrapped key.
	OptionalBindingDeclarations(key Key) []OptionalBindingDeclaration

	// SubcomponentDeclarations returns the subcomponent-creator
	// declarations for key.
	SubcomponentDeclarations(key Key) []SubcomponentDeclaration

	// AllDeclarationKeys enumerates every key with at least one
	// declaration of any kind originating from this component's modules,
	// used by the Orchestrator's full-binding-graph mode (§4.1 step 3) to
	// seed resolution of keys no entry point ever requests.
	AllDeclarationKeys() []Key
}

// ComponentDeclarationsFactory produces the ComponentDeclarations for one
// component, given its descriptor. Implementations typically also consult
// the parent's declarations to resolve inherited module installations;
// that wiring is internal to the factory and opaque to Resolver.
type ComponentDeclarationsFactory interface {
	Create(descriptor *ComponentDescriptor) ComponentDeclarations
}
