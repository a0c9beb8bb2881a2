package dagger

import "github.com/kchobantonov/dagger/internal/diagnostics"

// ResolvedComponentTree is the output of BuildGraph: one Resolver per
// component in the hierarchy, mirroring the shape of the component
// descriptor tree it was built from.
type ResolvedComponentTree struct {
	Resolver *Resolver
	Children []*ResolvedComponentTree
}

// Flatten returns every resolver in the tree, root first, in the order
// each component was first reached.
func (t *ResolvedComponentTree) Flatten() []*Resolver {
	if t == nil {
		return nil
	}
	out := []*Resolver{t.Resolver}
	for _, c := range t.Children {
		out = append(out, c.Flatten()...)
	}
	return out
}

// BuildGraph implements §4.1: constructs the root Resolver, seeds its entry
// points (and, in fullMode, every declared key), then recursively drains
// each resolver's subcomponent queue to build the rest of the tree.
//
// declFactory supplies a ComponentDeclarations view for every component
// descriptor encountered; registry, keys, factory and nodeFactory are
// shared across the whole tree; options governs multibinding strictness
// (its conflict-validation setting is not read by the resolver).
func BuildGraph(
	root *ComponentDescriptor,
	declFactory ComponentDeclarationsFactory,
	registry InjectBindingRegistry,
	keys KeyFactory,
	factory BindingFactory,
	nodeFactory BindingNodeFactory,
	options CompilerOptions,
	fullMode bool,
	opts ...Option,
) (*ResolvedComponentTree, error) {
	cfg := defaultBuildConfig()
	for _, o := range opts {
		o(&cfg)
	}

	b := &builder{
		declFactory: declFactory,
		registry:    registry,
		keys:        keys,
		factory:     factory,
		nodeFactory: nodeFactory,
		options:     options,
		cfg:         cfg,
		fullMode:    fullMode,
	}

	rootResolver := newResolver(root, nil, declFactory.Create(root), registry, keys, factory, nodeFactory, options, cfg.log, cfg.excludeInjectionFromDuplicateCheck)
	tree := &ResolvedComponentTree{Resolver: rootResolver}

	if err := b.seed(rootResolver, fullMode); err != nil {
		return nil, err
	}
	if err := b.drain(tree); err != nil {
		return nil, err
	}
	return tree, nil
}

type builder struct {
	declFactory ComponentDeclarationsFactory
	registry    InjectBindingRegistry
	keys        KeyFactory
	factory     BindingFactory
	nodeFactory BindingNodeFactory
	options     CompilerOptions
	cfg         buildConfig
	// fullMode carries through to every recursively-built subgraph: §4.1
	// step 4 describes draining the subcomponent queue as "recursively
	// build a subgraph", i.e. re-running the whole algorithm (including
	// step 3) with the child as root, not just seeding its entry points.
	fullMode bool
}

// seed resolves every entry point declared on a component, and, in fullMode,
// every key any declaration at that component names (§4.1 step 3).
func (b *builder) seed(r *Resolver, fullMode bool) error {
	for _, ep := range r.descriptor.EntryPointMethods {
		if ep.Request.Kind == MembersInjection {
			r.ResolveMembersInjection(ep.Request.Key)
			continue
		}
		if err := r.Resolve(ep.Request.Key); err != nil {
			return err
		}
	}

	if !fullMode {
		return nil
	}

	for _, k := range r.declarations.AllDeclarationKeys() {
		if err := r.Resolve(k.StripMultibindingContributionIdentifier()); err != nil {
			return err
		}
	}
	return nil
}

// drain recursively builds child ResolvedComponentTrees for every
// subcomponent descriptor enqueued while resolving node's own Resolver,
// re-checking the queue after each recursive call since an ancestor-owned
// binding can enqueue a subcomponent while a descendant is still being
// processed.
func (b *builder) drain(node *ResolvedComponentTree) error {
	seen := make(map[*ComponentDescriptor]bool)
	r := node.Resolver

	for len(r.subcomponentsToResolve) > 0 {
		childDescriptor := r.subcomponentsToResolve[0]
		r.subcomponentsToResolve = r.subcomponentsToResolve[1:]

		if seen[childDescriptor] {
			continue
		}
		seen[childDescriptor] = true

		b.cfg.log.Debug("subcomponent discovered", "parent", r.path, "child", childDescriptor.TypeElement)

		childResolver := newResolver(childDescriptor, r, b.declFactory.Create(childDescriptor), b.registry, b.keys, b.factory, b.nodeFactory, b.options, b.cfg.log, b.cfg.excludeInjectionFromDuplicateCheck)
		childNode := &ResolvedComponentTree{Resolver: childResolver}
		node.Children = append(node.Children, childNode)

		if err := b.seed(childResolver, b.fullMode); err != nil {
			return err
		}
		if err := b.drain(childNode); err != nil {
			return err
		}
	}
	return nil
}

func defaultBuildConfig() buildConfig {
	return buildConfig{log: diagnostics.Noop()}
}
