// Package testutil provides fake implementations of the dagger package's
// external collaborator interfaces, for building small binding graphs in
// tests without a real annotation processor behind them.
package testutil

import (
	"reflect"

	"github.com/kchobantonov/dagger"
)

// Declarations is a mutable, in-memory dagger.ComponentDeclarations: tests
// populate it directly rather than deriving it from source annotations.
type Declarations struct {
	bindings               map[dagger.Key][]dagger.Binding
	multibindingContribs   map[dagger.Key][]dagger.MultibindingContribution
	delegateMultiContribs  map[dagger.Key][]dagger.DelegateMultibindingContribution
	delegates              map[dagger.Key][]dagger.DelegateDeclaration
	multibindingDecls      map[dagger.Key][]dagger.MultibindingDeclaration
	optionalDecls          map[dagger.Key][]dagger.OptionalBindingDeclaration
	subcomponentDecls      map[dagger.Key][]dagger.SubcomponentDeclaration
	allKeys                []dagger.Key
}

// NewDeclarations returns an empty Declarations ready for AddBinding et al.
func NewDeclarations() *Declarations {
	return &Declarations{
		bindings:              make(map[dagger.Key][]dagger.Binding),
		multibindingContribs:  make(map[dagger.Key][]dagger.MultibindingContribution),
		delegateMultiContribs: make(map[dagger.Key][]dagger.DelegateMultibindingContribution),
		delegates:             make(map[dagger.Key][]dagger.DelegateDeclaration),
		multibindingDecls:     make(map[dagger.Key][]dagger.MultibindingDeclaration),
		optionalDecls:         make(map[dagger.Key][]dagger.OptionalBindingDeclaration),
		subcomponentDecls:     make(map[dagger.Key][]dagger.SubcomponentDeclaration),
	}
}

func (d *Declarations) AddBinding(b dagger.Binding) *Declarations {
	d.bindings[b.Key] = append(d.bindings[b.Key], b)
	d.allKeys = append(d.allKeys, b.Key)
	return d
}

func (d *Declarations) AddMultibindingContribution(aggregateKey dagger.Key, c dagger.MultibindingContribution) *Declarations {
	d.multibindingContribs[aggregateKey] = append(d.multibindingContribs[aggregateKey], c)
	d.allKeys = append(d.allKeys, c.ContributionKey)
	return d
}

func (d *Declarations) AddDelegateMultibindingContribution(key dagger.Key, c dagger.DelegateMultibindingContribution) *Declarations {
	d.delegateMultiContribs[key] = append(d.delegateMultiContribs[key], c)
	d.allKeys = append(d.allKeys, key)
	return d
}

func (d *Declarations) AddDelegate(key dagger.Key, decl dagger.DelegateDeclaration) *Declarations {
	d.delegates[key] = append(d.delegates[key], decl)
	d.allKeys = append(d.allKeys, key)
	return d
}

func (d *Declarations) AddMultibindingDeclaration(decl dagger.MultibindingDeclaration) *Declarations {
	d.multibindingDecls[decl.Key] = append(d.multibindingDecls[decl.Key], decl)
	d.allKeys = append(d.allKeys, decl.Key)
	return d
}

func (d *Declarations) AddOptionalBindingDeclaration(decl dagger.OptionalBindingDeclaration) *Declarations {
	d.optionalDecls[decl.Key] = append(d.optionalDecls[decl.Key], decl)
	d.allKeys = append(d.allKeys, decl.Key)
	return d
}

func (d *Declarations) AddSubcomponentDeclaration(decl dagger.SubcomponentDeclaration) *Declarations {
	d.subcomponentDecls[decl.Key] = append(d.subcomponentDecls[decl.Key], decl)
	d.allKeys = append(d.allKeys, decl.Key)
	return d
}

func (d *Declarations) Bindings(key dagger.Key) []dagger.Binding {
	return d.bindings[key]
}

func (d *Declarations) MultibindingContributions(key dagger.Key) []dagger.MultibindingContribution {
	return d.multibindingContribs[key]
}

func (d *Declarations) DelegateMultibindingContributions(key dagger.Key) []dagger.DelegateMultibindingContribution {
	return d.delegateMultiContribs[key]
}

func (d *Declarations) Delegates(key dagger.Key) []dagger.DelegateDeclaration {
	return d.delegates[key]
}

func (d *Declarations) MultibindingDeclarations(key dagger.Key) []dagger.MultibindingDeclaration {
	return d.multibindingDecls[key]
}

func (d *Declarations) OptionalBindingDeclarations(key dagger.Key) []dagger.OptionalBindingDeclaration {
	return d.optionalDecls[key]
}

func (d *Declarations) SubcomponentDeclarations(key dagger.Key) []dagger.SubcomponentDeclaration {
	return d.subcomponentDecls[key]
}

func (d *Declarations) AllDeclarationKeys() []dagger.Key {
	return d.allKeys
}

// DeclarationsFactory maps each *dagger.ComponentDescriptor to the
// Declarations a test built for it.
type DeclarationsFactory struct {
	byDescriptor map[*dagger.ComponentDescriptor]dagger.ComponentDeclarations
}

// NewDeclarationsFactory builds a factory over the given descriptor ->
// declarations pairs.
func NewDeclarationsFactory() *DeclarationsFactory {
	return &DeclarationsFactory{byDescriptor: make(map[*dagger.ComponentDescriptor]dagger.ComponentDeclarations)}
}

func (f *DeclarationsFactory) Register(descriptor *dagger.ComponentDescriptor, decls *Declarations) *DeclarationsFactory {
	f.byDescriptor[descriptor] = decls
	return f
}

func (f *DeclarationsFactory) Create(descriptor *dagger.ComponentDescriptor) dagger.ComponentDeclarations {
	if decls, ok := f.byDescriptor[descriptor]; ok {
		return decls
	}
	return NewDeclarations()
}

// Registry is a fake dagger.InjectBindingRegistry backed by two maps a test
// populates directly, standing in for constructor/field analysis.
type Registry struct {
	injection       map[dagger.Key]dagger.Binding
	membersInjector map[dagger.Key]dagger.Binding
}

func NewRegistry() *Registry {
	return &Registry{
		injection:       make(map[dagger.Key]dagger.Binding),
		membersInjector: make(map[dagger.Key]dagger.Binding),
	}
}

func (r *Registry) AddInjection(key dagger.Key, deps ...dagger.DependencyRequest) *Registry {
	r.injection[key] = dagger.Binding{Key: key, Kind: dagger.Injection, Dependencies: deps}
	return r
}

// AddScopedInjection is AddInjection for a constructor whose @Inject
// constructor also carries a scope annotation.
func (r *Registry) AddScopedInjection(key dagger.Key, scope dagger.Scope, deps ...dagger.DependencyRequest) *Registry {
	r.injection[key] = dagger.Binding{Key: key, Kind: dagger.Injection, Scope: &scope, Dependencies: deps}
	return r
}

func (r *Registry) AddMembersInjector(key dagger.Key, deps ...dagger.DependencyRequest) *Registry {
	r.membersInjector[key] = dagger.Binding{Key: key, Kind: dagger.MembersInjector, Dependencies: deps}
	return r
}

func (r *Registry) GetOrFindInjectionBinding(key dagger.Key) (dagger.Binding, bool) {
	b, ok := r.injection[key]
	return b, ok
}

func (r *Registry) GetOrFindMembersInjectorBinding(key dagger.Key) (dagger.Binding, bool) {
	b, ok := r.membersInjector[key]
	return b, ok
}

// KeyOf builds a dagger.Key for a plain Go type with no qualifier, the
// common case in tests.
func KeyOf[T any]() dagger.Key {
	var zero T
	return dagger.Key{Type: reflect.TypeOf(&zero).Elem()}
}

// QualifiedKeyOf builds a dagger.Key for a plain Go type under a qualifier
// value.
func QualifiedKeyOf[T any](qualifier any) dagger.Key {
	k := KeyOf[T]()
	k.Qualifier = qualifier
	return k
}
