// Package dagger implements the binding graph resolver for a compile-time
// dependency-injection code generator: given a hierarchical component
// descriptor (a root component plus nested subcomponents), it computes, for
// every component, the complete set of resolved bindings — which binding
// satisfies each requested key, at which component that binding is owned,
// and which synthetic bindings (multibindings, optionals, subcomponent
// creators, delegates, assisted factories, members injectors) must be
// materialized.
//
// # Overview
//
// The resolver is a pure, single-threaded graph algorithm. It does not parse
// annotations, construct values, or emit diagnostics — those are the jobs of
// collaborators consumed only through the interfaces declared in
// declarations.go (ComponentDeclarations) and collaborators.go
// (InjectBindingRegistry, KeyFactory, BindingFactory, BindingNodeFactory,
// CompilerOptions).
//
// # Basic usage
//
//	tree, err := dagger.BuildGraph(root, declFactory, registry, keys, bindings, nodes, opts, true,
//	    dagger.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	resolved := tree.Resolver.ResolvedBindings(dagger.DependencyRequest{Key: fooKey, Kind: dagger.Instance})
//
// # Ownership and re-resolution
//
// A binding discovered while resolving a descendant component may be
// installed at an ancestor instead (OwnershipSelector, internal/ownership),
// and an ancestor's already-resolved binding may need to be recomputed at a
// descendant when local declarations change the answer (ReResolutionChecker,
// internal/rescc). Both decisions are made without ever raising an error:
// missing or duplicate bindings are represented as data for a later
// validation pass to diagnose.
package dagger
