package dagger

import "fmt"

// InjectBindingRegistry looks up (or lazily constructs) the implicit
// INJECTION/MEMBERS_INJECTOR bindings derived from a type's own
// constructor/field annotations, independent of any module (§3's "implicit
// bindings"). A real implementation typically caches results keyed by Key.
type InjectBindingRegistry interface {
	// GetOrFindInjectionBinding returns the implicit constructor-injection
	// binding for key, if key's type carries an injectable constructor.
	GetOrFindInjectionBinding(key Key) (Binding, bool)

	// GetOrFindMembersInjectorBinding returns the implicit
	// MEMBERS_INJECTOR binding for key's type, if it declares injected
	// fields or methods.
	GetOrFindMembersInjectorBinding(key Key) (Binding, bool)
}

// KeyFactory performs the type-level transformations the resolver needs on
// keys without ever constructing a value: unwrapping Optional[T] and the
// framework wrapper around a multibound map's value type. DefaultKeyFactory
// implements this over the free functions in key.go; it is exposed as an
// interface so callers can substitute their own key-shape conventions.
type KeyFactory interface {
	UnwrapOptional(key Key) (Key, bool)
	UnwrapMapValueType(key Key) Key
}

// DefaultKeyFactory is the out-of-the-box KeyFactory, backed by the
// reflect-based generic unwrapping in key.go.
type DefaultKeyFactory struct{}

func (DefaultKeyFactory) UnwrapOptional(key Key) (Key, bool) {
	return UnwrapOptional(key)
}

func (DefaultKeyFactory) UnwrapMapValueType(key Key) Key {
	return UnwrapMapValueType(key)
}

// BindingFactory constructs the concrete Binding values for synthetic
// binding kinds. SyntheticSynthesizer decides *when* a synthetic binding is
// needed and *what* its dependencies are; BindingFactory is the out-of-scope
// collaborator that turns that decision into a Binding value (§3's "Out of
// scope: binding value objects").
type BindingFactory interface {
	MultiboundSetBinding(key Key, contributions []DependencyRequest) Binding
	MultiboundMapBinding(key Key, contributions []DependencyRequest) Binding
	OptionalBinding(key Key, present bool, innerRequest DependencyRequest) Binding
	SubcomponentCreatorBinding(key Key, child *ComponentDescriptor) Binding
	DelegateBinding(key Key, target DependencyRequest) Binding
	UnresolvedDelegateBinding(key Key) Binding
}

// BindingNodeFactory wraps a Binding into a BindingNode installed at path,
// carrying forward the owning component's declaration sets and tagging the
// node with resolverID for BindingNodeHandle identity.
type BindingNodeFactory interface {
	Create(
		binding Binding,
		path ComponentPath,
		resolverID string,
		multi []MultibindingDeclaration,
		optional []OptionalBindingDeclaration,
		sub []SubcomponentDeclaration,
	) *BindingNode
}

// DefaultBindingNodeFactory is the out-of-the-box BindingNodeFactory.
type DefaultBindingNodeFactory struct{}

func (DefaultBindingNodeFactory) Create(
	binding Binding,
	path ComponentPath,
	resolverID string,
	multi []MultibindingDeclaration,
	optional []OptionalBindingDeclaration,
	sub []SubcomponentDeclaration,
) *BindingNode {
	return &BindingNode{
		Handle:                      newBindingNodeHandle(resolverID, binding),
		Binding:                     binding,
		InstallationPath:            path,
		MultibindingDeclarations:    multi,
		OptionalBindingDeclarations: optional,
		SubcomponentDeclarations:    sub,
	}
}

// DefaultBindingFactory is the out-of-the-box BindingFactory: it builds
// Binding values directly from the arguments it's given, with no module or
// binding element of its own (synthetic bindings have neither).
type DefaultBindingFactory struct{}

func (DefaultBindingFactory) MultiboundSetBinding(key Key, contributions []DependencyRequest) Binding {
	return Binding{Key: key, Kind: MultiboundSet, Dependencies: contributions}
}

func (DefaultBindingFactory) MultiboundMapBinding(key Key, contributions []DependencyRequest) Binding {
	return Binding{Key: key, Kind: MultiboundMap, Dependencies: contributions}
}

func (DefaultBindingFactory) OptionalBinding(key Key, present bool, innerRequest DependencyRequest) Binding {
	b := Binding{Key: key, Kind: OptionalKind}
	if present {
		b.Dependencies = []DependencyRequest{innerRequest}
	}
	return b
}

func (DefaultBindingFactory) SubcomponentCreatorBinding(key Key, child *ComponentDescriptor) Binding {
	return Binding{Key: key, Kind: SubcomponentCreator, BindingElement: formatType(child.TypeElement)}
}

func (DefaultBindingFactory) DelegateBinding(key Key, target DependencyRequest) Binding {
	return Binding{Key: key, Kind: Delegate, Dependencies: []DependencyRequest{target}}
}

func (DefaultBindingFactory) UnresolvedDelegateBinding(key Key) Binding {
	return Binding{Key: key, Kind: UnresolvedDelegate}
}

// ConflictValidationKind governs how CompilerOptions wants the validator to
// treat a binding that conflicts with an implicit @Inject binding for the
// same key (a Go stand-in for Dagger's ValidationType, used only by
// -Adagger.explicitBindingConflictsWithInject).
type ConflictValidationKind int

const (
	ConflictError ConflictValidationKind = iota
	ConflictWarning
	ConflictNone
	ConflictNote
)

func (k ConflictValidationKind) String() string {
	switch k {
	case ConflictError:
		return "ERROR"
	case ConflictWarning:
		return "WARNING"
	case ConflictNone:
		return "NONE"
	case ConflictNote:
		return "NOTE"
	default:
		return fmt.Sprintf("ConflictValidationKind(%d)", int(k))
	}
}

// CompilerOptions is the subset of compiler-wide flags handed to the
// resolver (§3). The resolver reads only UseStrictMultibindings;
// ExplicitBindingConflictsWithInjectValidationType is carried for callers
// and is not read anywhere in this package. Everything else a real
// compiler would flag (unused bindings, nullability, ...) lives outside
// this package.
type CompilerOptions interface {
	// ExplicitBindingConflictsWithInjectValidationType reports how
	// strictly to treat an explicit binding that collides with an
	// implicit @Inject binding for the same key.
	ExplicitBindingConflictsWithInjectValidationType() ConflictValidationKind

	// UseStrictMultibindings reports whether duplicate contributions to
	// binding's multibound key should all be retained (strict) or
	// deduplicated by (contributingModule, bindingElement) (non-strict).
	// See DESIGN.md for the resolved Open Question this implements.
	UseStrictMultibindings(binding Binding) bool
}

// StaticCompilerOptions is a CompilerOptions backed by two fixed values,
// sufficient for tests and for compilers that do not expose per-binding
// overrides.
type StaticCompilerOptions struct {
	ConflictValidation  ConflictValidationKind
	StrictMultibindings bool
}

func (o StaticCompilerOptions) ExplicitBindingConflictsWithInjectValidationType() ConflictValidationKind {
	return o.ConflictValidation
}

func (o StaticCompilerOptions) UseStrictMultibindings(Binding) bool {
	return o.StrictMultibindings
}
