package dagger

import (
	"log/slog"

	"github.com/kchobantonov/dagger/internal/ownership"
	"github.com/kchobantonov/dagger/internal/rescc"
)

// Resolver owns the resolution tables for one component: it answers
// lookUpBindings/resolve for every key requested at or beneath this
// component, consulting its parent lineage but never mutating it except
// to enqueue subcomponents and to force an ancestor to compute a binding
// it owns but has not yet been asked for (§3, §4).
type Resolver struct {
	id         string
	path       ComponentPath
	descriptor *ComponentDescriptor
	parent     *Resolver

	declarations ComponentDeclarations
	registry     InjectBindingRegistry
	keys         KeyFactory
	factory      BindingFactory
	nodes        BindingNodeFactory
	options      CompilerOptions
	log          *slog.Logger

	excludeInjectionFromDuplicateCheck bool

	resolvedContribution map[Key]ResolvedBindings
	contributionOrder    []Key

	resolvedMembers map[Key]ResolvedBindings
	membersOrder    []Key

	cycleStack []Key

	checker   *rescc.Checker
	hashToKey map[string]Key

	subcomponentsToResolve []*ComponentDescriptor

	selfToRootCache []*Resolver
}

func newResolver(
	descriptor *ComponentDescriptor,
	parent *Resolver,
	declarations ComponentDeclarations,
	registry InjectBindingRegistry,
	keys KeyFactory,
	factory BindingFactory,
	nodeFactory BindingNodeFactory,
	options CompilerOptions,
	log *slog.Logger,
	excludeInjectionFromDuplicateCheck bool,
) *Resolver {
	path := RootPath(descriptor.TypeElement)
	if parent != nil {
		path = parent.path.Push(descriptor.TypeElement)
	}

	r := &Resolver{
		id:                                 newResolverID(),
		path:                               path,
		descriptor:                         descriptor,
		parent:                             parent,
		declarations:                       declarations,
		registry:                           registry,
		keys:                               keys,
		factory:                            factory,
		nodes:                              nodeFactory,
		options:                            options,
		log:                                log,
		excludeInjectionFromDuplicateCheck: excludeInjectionFromDuplicateCheck,
		resolvedContribution:               make(map[Key]ResolvedBindings),
		resolvedMembers:                    make(map[Key]ResolvedBindings),
		hashToKey:                          make(map[string]Key),
	}
	r.checker = rescc.NewChecker(r.previouslyResolvedSet, r.hasLocalBindingsForKeyHash)

	var lineage []*Resolver
	for cur := r; cur != nil; cur = cur.parent {
		lineage = append(lineage, cur)
	}
	r.selfToRootCache = lineage

	return r
}

// ComponentPath returns this resolver's component path.
func (r *Resolver) ComponentPath() ComponentPath { return r.path }

// ComponentDescriptor returns this resolver's component descriptor.
func (r *Resolver) ComponentDescriptor() *ComponentDescriptor { return r.descriptor }

// ParentResolver returns this resolver's parent, or nil at the root.
func (r *Resolver) ParentResolver() *Resolver { return r.parent }

func (r *Resolver) lineageSelfToRoot() []*Resolver { return r.selfToRootCache }

func (r *Resolver) lineageRootToSelf() []*Resolver {
	out := make([]*Resolver, len(r.selfToRootCache))
	for i, res := range r.selfToRootCache {
		out[len(out)-1-i] = res
	}
	return out
}

func (r *Resolver) rootIsSubcomponent() bool {
	root := r.selfToRootCache[len(r.selfToRootCache)-1]
	return root.descriptor.IsSubcomponent
}

func (r *Resolver) rememberKey(k Key) string {
	h := k.String()
	r.hashToKey[h] = k
	return h
}

// ========================================
// ownership.Node
// ========================================

func (r *Resolver) IsProductionComponent() bool { return r.descriptor.IsProduction }

func (r *Resolver) HasScope(scopeName string) bool {
	return r.descriptor.HasScope(Scope{Name: scopeName})
}

func (r *Resolver) ContainsExplicitBinding(b ownership.BindingFacts) bool {
	key, ok := r.hashToKey[b.KeyHash]
	if !ok {
		return false
	}
	for _, bound := range r.declarations.Bindings(key) {
		if bound.IdentityHash() == b.Hash {
			return true
		}
	}
	mapUnwrapped := r.keys.UnwrapMapValueType(key)
	for _, d := range r.declarations.Delegates(mapUnwrapped) {
		delegateHash := delegateIdentityHash(key, d)
		if delegateHash == b.Hash {
			return true
		}
	}
	return len(r.declarations.SubcomponentDeclarations(key)) > 0
}

func (r *Resolver) HasResolvedIdentity(keyHash, bindingHash string) bool {
	key, ok := r.hashToKey[keyHash]
	if !ok {
		return false
	}
	rb, ok := r.resolvedContribution[key]
	if !ok {
		return false
	}
	for _, n := range rb.Nodes {
		if n.Binding.IdentityHash() == bindingHash {
			return true
		}
	}
	return false
}

func (r *Resolver) Parent() (ownership.Node, bool) {
	if r.parent == nil {
		return nil, false
	}
	return r.parent, true
}

func delegateIdentityHash(key Key, d DelegateDeclaration) string {
	b := Binding{Key: key, Kind: Delegate, ContributingModule: d.ContributingModule, BindingElement: d.BindingElement}
	return b.IdentityHash()
}

// ========================================
// rescc lookups
// ========================================

func (r *Resolver) previouslyResolvedSet(keyHash string) rescc.ResolvedSet {
	key, ok := r.hashToKey[keyHash]
	if !ok {
		return rescc.ResolvedSet{Empty: true}
	}
	for _, res := range r.lineageSelfToRoot()[1:] {
		rb, ok := res.resolvedContribution[key]
		if !ok {
			continue
		}
		return r.toResolvedSet(rb)
	}
	return rescc.ResolvedSet{Empty: true}
}

func (r *Resolver) toResolvedSet(rb ResolvedBindings) rescc.ResolvedSet {
	if rb.IsEmpty() {
		return rescc.ResolvedSet{Empty: true}
	}
	out := rescc.ResolvedSet{Empty: false}
	for _, n := range rb.Nodes {
		var deps []string
		for _, d := range n.Binding.Dependencies {
			deps = append(deps, r.rememberKey(d.Key))
		}
		out.Bindings = append(out.Bindings, rescc.BindingDeps{
			ShouldCheckDependencies: shouldCheckDependencies(n.Binding),
			DependencyKeyHashes:     deps,
		})
	}
	return out
}

func shouldCheckDependencies(b Binding) bool {
	return !isScopedToComponent(b) && b.Kind != Production
}

func isScopedToComponent(b Binding) bool {
	return b.Scope != nil && !b.Scope.IsReusable()
}

func (r *Resolver) hasLocalBindingsForKeyHash(keyHash string) bool {
	key, ok := r.hashToKey[keyHash]
	if !ok {
		return false
	}
	prev, _ := r.firstAncestorResolved(key)
	return r.hasLocalBindingsGiven(key, prev)
}

func (r *Resolver) firstAncestorResolved(key Key) (ResolvedBindings, bool) {
	for _, res := range r.lineageSelfToRoot()[1:] {
		if rb, ok := res.resolvedContribution[key]; ok {
			return rb, true
		}
	}
	return ResolvedBindings{Key: key}, false
}

func (r *Resolver) hasLocalBindingsGiven(key Key, prev ResolvedBindings) bool {
	if len(r.declarations.MultibindingContributions(key)) > 0 || len(r.declarations.DelegateMultibindingContributions(key)) > 0 {
		return true
	}

	if !prev.IsEmpty() {
		considered := prev
		if r.excludeInjectionFromDuplicateCheck {
			considered = filterOutKind(prev, Injection)
		}
		if !considered.IsEmpty() && len(r.declarations.Bindings(key)) > 0 {
			return true
		}
	}

	if prev.HasKind(OptionalKind) {
		if unwrapped, ok := r.keys.UnwrapOptional(key); ok {
			if len(r.declarations.Bindings(unwrapped)) > 0 {
				return true
			}
		}
		return false
	}
	if unwrapped, ok := r.keys.UnwrapOptional(key); ok {
		return len(r.declarations.OptionalBindingDeclarations(unwrapped)) > 0
	}
	return false
}

func filterOutKind(rb ResolvedBindings, kind BindingKind) ResolvedBindings {
	out := ResolvedBindings{Key: rb.Key}
	for _, n := range rb.Nodes {
		if n.Binding.Kind != kind {
			out.Nodes = append(out.Nodes, n)
		}
	}
	return out
}

// ========================================
// Public resolution entry points
// ========================================

// Resolve implements §4.2: ensures resolvedContributionBindings[key] is set
// in this or some ancestor resolver, and transitively for every
// dependency of every binding stored there.
func (r *Resolver) Resolve(key Key) error {
	for _, onStack := range r.cycleStack {
		if onStack == key {
			return nil
		}
	}
	if _, ok := r.resolvedContribution[key]; ok {
		return nil
	}

	r.log.Debug("resolve", "component", r.path, "key", key)

	r.rememberKey(key)
	r.cycleStack = append(r.cycleStack, key)
	rb, err := r.lookUpBindings(key)
	if err != nil {
		r.cycleStack = r.cycleStack[:len(r.cycleStack)-1]
		return err
	}
	r.storeContribution(key, rb)

	for _, n := range rb.BindingNodesOwnedBy(r.path) {
		for _, dep := range n.Binding.Dependencies {
			if err := r.resolveDependency(dep); err != nil {
				r.cycleStack = r.cycleStack[:len(r.cycleStack)-1]
				return err
			}
		}
	}

	r.cycleStack = r.cycleStack[:len(r.cycleStack)-1]
	return nil
}

func (r *Resolver) resolveDependency(d DependencyRequest) error {
	if d.Kind == MembersInjection {
		r.ResolveMembersInjection(d.Key)
		return nil
	}
	return r.Resolve(d.Key)
}

func (r *Resolver) storeContribution(key Key, rb ResolvedBindings) {
	if _, ok := r.resolvedContribution[key]; ok {
		return
	}
	r.resolvedContribution[key] = rb
	r.contributionOrder = append(r.contributionOrder, key)
}

// ResolveMembersInjection implements §4.6: never inherited, never
// memoized against a dependency chain.
func (r *Resolver) ResolveMembersInjection(key Key) {
	if _, ok := r.resolvedMembers[key]; ok {
		return
	}
	r.rememberKey(key)
	rb := r.lookUpMembersInjectionBinding(key)
	r.resolvedMembers[key] = rb
	r.membersOrder = append(r.membersOrder, key)
}

func (r *Resolver) lookUpMembersInjectionBinding(key Key) ResolvedBindings {
	b, ok := r.registry.GetOrFindMembersInjectorBinding(key)
	if !ok {
		return ResolvedBindings{Key: key}
	}
	node := r.nodes.Create(b, r.path, r.id, nil, nil, nil)
	return ResolvedBindings{Key: key, Nodes: []*BindingNode{node}}
}

// ResolvedBindings returns the contribution resolution for request,
// walking to the parent when absent locally (contribution requests only;
// members-injection never inherits, per §4.6).
func (r *Resolver) ResolvedBindings(req DependencyRequest) ResolvedBindings {
	if req.Kind == MembersInjection {
		if rb, ok := r.resolvedMembers[req.Key]; ok {
			return rb
		}
		return ResolvedBindings{Key: req.Key}
	}
	for cur := r; cur != nil; cur = cur.parent {
		if rb, ok := cur.resolvedContribution[req.Key]; ok {
			return rb
		}
	}
	return ResolvedBindings{Key: req.Key}
}

// LocalResolvedBindings iterates this component's own local resolutions
// (contribution union members-injection), without walking to the parent.
func (r *Resolver) LocalResolvedBindings() []ResolvedBindings {
	out := make([]ResolvedBindings, 0, len(r.contributionOrder)+len(r.membersOrder))
	for _, k := range r.contributionOrder {
		out = append(out, r.resolvedContribution[k])
	}
	for _, k := range r.membersOrder {
		out = append(out, r.resolvedMembers[k])
	}
	return out
}
