package dagger

import "github.com/kchobantonov/dagger/internal/ownership"

// lookUpBindings implements §4.3: produces the complete ResolvedBindings
// for key as seen from this component, synthesizing multibound, optional,
// subcomponent-creator and inject-derived bindings where declarations
// call for them, then deciding ownership and installation for each.
func (r *Resolver) lookUpBindings(key Key) (ResolvedBindings, error) {
	r.log.Debug("lookUpBindings", "component", r.path, "key", key)

	var gathered []Binding

	mapUnwrapped := r.keys.UnwrapMapValueType(key)
	var multi []MultibindingDeclaration
	var multiContribs []MultibindingContribution
	var delegateMultiContribs []DelegateMultibindingContribution
	var sub []SubcomponentDeclaration

	for _, res := range r.lineageRootToSelf() {
		gathered = append(gathered, res.declarations.Bindings(key)...)

		for _, d := range res.declarations.Delegates(mapUnwrapped) {
			db, err := r.createDelegateBinding(key, d)
			if err != nil {
				return ResolvedBindings{}, err
			}
			gathered = append(gathered, db)
		}

		multiContribs = append(multiContribs, res.declarations.MultibindingContributions(key)...)
		delegateMultiContribs = append(delegateMultiContribs, res.declarations.DelegateMultibindingContributions(key)...)
		multi = append(multi, res.declarations.MultibindingDeclarations(key)...)
		sub = append(sub, res.declarations.SubcomponentDeclarations(key)...)
	}

	var opt []OptionalBindingDeclaration
	unwrappedOptional, isOptional := r.keys.UnwrapOptional(key)
	if isOptional {
		for _, res := range r.lineageRootToSelf() {
			opt = append(opt, res.declarations.OptionalBindingDeclarations(unwrappedOptional)...)
		}
	}

	if len(multiContribs) > 0 || len(delegateMultiContribs) > 0 || len(multi) > 0 {
		b, err := r.synthesizeMultibinding(key, multiContribs, delegateMultiContribs)
		if err != nil {
			return ResolvedBindings{}, err
		}
		gathered = append(gathered, b)
	}

	if len(opt) > 0 {
		b, err := r.synthesizeOptional(key, unwrappedOptional)
		if err != nil {
			return ResolvedBindings{}, err
		}
		gathered = append(gathered, b)
	}

	if len(sub) > 0 {
		gathered = append(gathered, r.factory.SubcomponentCreatorBinding(key, sub[len(sub)-1].Child))
	}

	if innerKey, ok := UnwrapMembersInjector(key); ok {
		if b, ok := r.registry.GetOrFindMembersInjectorBinding(innerKey); ok {
			gathered = append(gathered, b)
		}
	}

	if len(gathered) == 0 {
		if b, ok := r.registry.GetOrFindInjectionBinding(key); ok {
			facts := r.bindingFacts(b)
			owner, found := ownership.Select(r, facts)
			if ownership.IsCorrectlyScopedInSubcomponent(r.rootIsSubcomponent(), facts.ScopeName, facts.IsReusableScope, owner, found) {
				gathered = append(gathered, b)
			}
		}
	}

	nodes := make([]*BindingNode, 0, len(gathered))
	for _, b := range gathered {
		node, err := r.wrapBinding(key, b, multi, opt, sub)
		if err != nil {
			return ResolvedBindings{}, err
		}
		nodes = append(nodes, node)

		if b.Kind == SubcomponentCreator {
			owner := resolverForPath(r, node.InstallationPath)
			owner.subcomponentsToResolve = append(owner.subcomponentsToResolve, sub[len(sub)-1].Child)
		}
	}

	return ResolvedBindings{Key: key, Nodes: nodes}, nil
}

func resolverForPath(r *Resolver, path ComponentPath) *Resolver {
	for cur := r; cur != nil; cur = cur.parent {
		if cur.path.Equal(path) {
			return cur
		}
	}
	return r
}

// wrapBinding implements §4.3 step 8: decide ownership, decide whether an
// ancestor's existing node can be reused verbatim, and otherwise install a
// fresh node at this component.
func (r *Resolver) wrapBinding(key Key, b Binding, multi []MultibindingDeclaration, opt []OptionalBindingDeclaration, sub []SubcomponentDeclaration) (*BindingNode, error) {
	facts := r.bindingFacts(b)

	owner, reused, err := r.resolveOwnership(key, b, facts)
	if err != nil {
		return nil, err
	}
	if reused {
		return owner, nil
	}
	return r.nodes.Create(b, r.path, r.id, multi, opt, sub), nil
}

// resolveOwnership returns (node, true, nil) when an ancestor's existing
// BindingNode should be reused verbatim, or (nil, false, nil) when the
// caller should install a fresh node locally.
func (r *Resolver) resolveOwnership(key Key, b Binding, facts ownership.BindingFacts) (*BindingNode, bool, error) {
	ownerNode, found := ownership.Select(r, facts)
	if !found {
		return nil, false, nil
	}
	owner := ownerNode.(*Resolver)
	if owner == r {
		return nil, false, nil
	}

	existing, ok := owner.resolvedContribution[key]
	if !ok {
		// First touch: the owner has never been asked for this key. Force
		// it to compute (and transitively resolve) its own view now, so
		// that invariant 3 (ownership stability) holds from the start.
		r.log.Debug("ownership hoist", "component", r.path, "owner", owner.path, "key", key, "reason", "first touch")
		if err := owner.Resolve(key); err != nil {
			return nil, false, err
		}
		existing = owner.resolvedContribution[key]
		if node := findMatchingNode(existing, b); node != nil {
			return node, true, nil
		}
		return nil, false, nil
	}

	matched := findMatchingNode(existing, b)
	singleton := ResolvedBindings{Key: key}
	if matched != nil {
		singleton.Nodes = []*BindingNode{matched}
	}

	r.checker.EnsureVisited(r.rememberKey(key))
	deps := make([]string, 0, len(b.Dependencies))
	for _, d := range b.Dependencies {
		deps = append(deps, r.rememberKey(d.Key))
	}
	requires := r.checker.RequiresResolutionForBinding(
		key.String(),
		b.IsFloatable(),
		r.hasLocalBindingsGiven(key, singleton),
		shouldCheckDependencies(b),
		deps,
	)
	if requires {
		r.log.Debug("re-resolution required", "component", r.path, "owner", owner.path, "key", key)
		return nil, false, nil
	}
	if matched != nil {
		r.log.Debug("ownership reuse", "component", r.path, "owner", owner.path, "key", key)
		return matched, true, nil
	}
	return nil, false, nil
}

func findMatchingNode(rb ResolvedBindings, b Binding) *BindingNode {
	for _, n := range rb.Nodes {
		if n.Binding.IdentityHash() == b.IdentityHash() {
			return n
		}
	}
	return nil
}

func (r *Resolver) bindingFacts(b Binding) ownership.BindingFacts {
	scopeName := ""
	reusable := false
	prodColored := b.Kind.IsProductionKind()
	if b.Scope != nil {
		scopeName = b.Scope.Name
		reusable = b.Scope.IsReusable()
		if b.Scope.IsProduction() {
			prodColored = true
		}
	}
	return ownership.BindingFacts{
		Hash:                b.IdentityHash(),
		KeyHash:             r.rememberKey(b.Key),
		IsInjection:         b.Kind == Injection,
		IsProductionColored: prodColored,
		ScopeName:           scopeName,
		IsReusableScope:     reusable,
	}
}

// synthesizeMultibinding implements §4.3 step 2: exactly one synthesized
// MULTIBOUND_MAP or MULTIBOUND_SET binding, deduplicating contributions by
// (contributingModule, bindingElement) unless CompilerOptions asks for
// strict multibindings.
func (r *Resolver) synthesizeMultibinding(key Key, contribs []MultibindingContribution, delegateContribs []DelegateMultibindingContribution) (Binding, error) {
	kind := pickMultiboundKind(key)
	if kind != MultiboundMap && kind != MultiboundSet {
		return Binding{}, &InvariantViolationError{Operation: "synthesizeMultibinding", Key: key, Cause: ErrKeyNotMapOrSet}
	}

	strict := r.options.UseStrictMultibindings(Binding{Key: key, Kind: kind})

	type seenKey struct {
		mod     string
		element string
	}
	seen := make(map[seenKey]bool)
	var deps []DependencyRequest

	add := func(mod, element string, dr DependencyRequest) {
		if !strict {
			sk := seenKey{mod, element}
			if seen[sk] {
				return
			}
			seen[sk] = true
		}
		deps = append(deps, dr)
	}

	for _, c := range contribs {
		add(formatType(c.ContributingModule), c.BindingElement, DependencyRequest{Key: c.ContributionKey, Kind: Instance})
	}
	for _, c := range delegateContribs {
		add(formatType(c.ContributingModule), c.BindingElement, c.DelegateRequest)
	}

	if kind == MultiboundMap {
		return r.factory.MultiboundMapBinding(key, deps), nil
	}
	return r.factory.MultiboundSetBinding(key, deps), nil
}

func pickMultiboundKind(key Key) BindingKind {
	switch {
	case key.IsMapType():
		return MultiboundMap
	case key.IsSetType():
		return MultiboundSet
	default:
		return UnresolvedDelegate // sentinel: neither map nor set, caller raises the invariant violation
	}
}

// synthesizeOptional implements §4.3 step 3: look up the inner binding set
// to determine presence, and parameterize the OPTIONAL binding's single
// dependency by the request kind the wrapped value type implies (e.g.
// Optional[ProviderOf[Foo]] requests Foo as PROVIDER, not INSTANCE).
func (r *Resolver) synthesizeOptional(key, unwrapped Key) (Binding, error) {
	innerRB, err := r.lookUpBindings(unwrapped)
	if err != nil {
		return Binding{}, err
	}
	present := !innerRB.IsEmpty()

	innerType, kind := UnwrapRequestWrapper(unwrapped.Type)
	innerKey := unwrapped
	innerKey.Type = innerType

	return r.factory.OptionalBinding(key, present, DependencyRequest{Key: innerKey, Kind: kind}), nil
}

// createDelegateBinding implements §4.7.
func (r *Resolver) createDelegateBinding(key Key, decl DelegateDeclaration) (Binding, error) {
	dk := decl.DelegateRequest.Key
	for _, onStack := range r.cycleStack {
		if onStack == dk {
			return r.factory.UnresolvedDelegateBinding(key), nil
		}
	}

	r.cycleStack = append(r.cycleStack, dk)
	inner, err := r.lookUpBindings(dk)
	r.cycleStack = r.cycleStack[:len(r.cycleStack)-1]
	if err != nil {
		return Binding{}, err
	}

	if inner.IsEmpty() {
		return r.factory.UnresolvedDelegateBinding(key), nil
	}
	return r.factory.DelegateBinding(key, decl.DelegateRequest), nil
}
