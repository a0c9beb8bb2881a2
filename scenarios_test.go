package dagger_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kchobantonov/dagger"
	"github.com/kchobantonov/dagger/internal/testutil"
)

// Each scenario below is a literal end-to-end walkthrough of the resolver's
// behavior for one class of binding graph, built without any annotation
// processor behind it: descriptors, declarations and the inject registry are
// all assembled directly with testutil.

func TestHoistedSingletonInject(t *testing.T) {
	type Bar struct{}
	type Foo struct{ B Bar } // declared after Bar: a local type's scope begins at its own identifier
	type RootComponent struct{}
	type SubComponent struct{}
	type SubCreator struct{}

	fooKey := testutil.KeyOf[Foo]()
	barKey := testutil.KeyOf[Bar]()
	creatorKey := testutil.KeyOf[SubCreator]()

	subDesc := testutil.NewDescriptor(reflect.TypeOf(SubComponent{})).
		Subcomponent().
		WithEntryPoint("Foo", dagger.DependencyRequest{Key: fooKey, Kind: dagger.Instance}).
		Build()

	rootDesc := testutil.NewDescriptor(reflect.TypeOf(RootComponent{})).
		WithScope(dagger.Scope{Name: "Singleton"}).
		WithEntryPoint("Sub", dagger.DependencyRequest{Key: creatorKey, Kind: dagger.Instance}).
		Build()

	rootDecls := testutil.NewDeclarations().
		AddSubcomponentDeclaration(dagger.SubcomponentDeclaration{Key: creatorKey, Child: subDesc})
	subDecls := testutil.NewDeclarations()

	factory := testutil.NewDeclarationsFactory().
		Register(rootDesc, rootDecls).
		Register(subDesc, subDecls)

	registry := testutil.NewRegistry().
		AddScopedInjection(fooKey, dagger.Scope{Name: "Singleton"}, dagger.DependencyRequest{Key: barKey, Kind: dagger.Instance}).
		AddInjection(barKey)

	tree, err := dagger.BuildGraph(
		rootDesc, factory, registry, dagger.DefaultKeyFactory{}, dagger.DefaultBindingFactory{},
		dagger.DefaultBindingNodeFactory{}, dagger.StaticCompilerOptions{}, false,
	)
	require.NoError(t, err)
	require.Len(t, tree.Children, 1)

	root := tree.Resolver
	sub := tree.Children[0].Resolver

	rootFoo := root.ResolvedBindings(dagger.DependencyRequest{Key: fooKey, Kind: dagger.Instance})
	require.False(t, rootFoo.IsEmpty())
	assert.Equal(t, root.ComponentPath(), rootFoo.Nodes[0].InstallationPath, "singleton-scoped Foo must hoist to the component declaring @Singleton")

	rootBar := root.ResolvedBindings(dagger.DependencyRequest{Key: barKey, Kind: dagger.Instance})
	require.False(t, rootBar.IsEmpty())
	assert.Equal(t, root.ComponentPath(), rootBar.Nodes[0].InstallationPath, "Foo's own dependency walk installs Bar at the same component as Foo")

	subFoo := sub.ResolvedBindings(dagger.DependencyRequest{Key: fooKey, Kind: dagger.Instance})
	require.False(t, subFoo.IsEmpty())
	assert.Same(t, rootFoo.Nodes[0], subFoo.Nodes[0], "the subcomponent must reuse the root's exact node, not a copy")

	subOwn := sub.LocalResolvedBindings()
	for _, rb := range subOwn {
		if rb.Key == barKey {
			t.Fatalf("Bar must not be re-walked locally at Sub; it belongs to Root's dependency walk")
		}
	}
}

func TestMultibindingInheritanceRequiresReResolution(t *testing.T) {
	type RootComponent struct{}
	type SubComponent struct{}
	type SubCreator struct{}
	type RootModule struct{}
	type SubModule struct{}

	setKey := dagger.Key{Type: reflect.TypeOf([]string(nil))}
	keyA := dagger.Key{Type: reflect.TypeOf(""), ContributionID: "a"}
	keyB := dagger.Key{Type: reflect.TypeOf(""), ContributionID: "b"}
	creatorKey := testutil.KeyOf[SubCreator]()

	subDesc := testutil.NewDescriptor(reflect.TypeOf(SubComponent{})).
		Subcomponent().
		WithEntryPoint("Strings", dagger.DependencyRequest{Key: setKey, Kind: dagger.Instance}).
		Build()

	rootDesc := testutil.NewDescriptor(reflect.TypeOf(RootComponent{})).
		WithEntryPoint("Sub", dagger.DependencyRequest{Key: creatorKey, Kind: dagger.Instance}).
		WithEntryPoint("Strings", dagger.DependencyRequest{Key: setKey, Kind: dagger.Instance}).
		Build()

	rootModType := reflect.TypeOf(RootModule{})
	subModType := reflect.TypeOf(SubModule{})

	rootDecls := testutil.NewDeclarations().
		AddSubcomponentDeclaration(dagger.SubcomponentDeclaration{Key: creatorKey, Child: subDesc}).
		AddBinding(dagger.Binding{Key: keyA, Kind: dagger.Provision, ContributingModule: rootModType, BindingElement: "provideA"}).
		AddMultibindingContribution(setKey, dagger.MultibindingContribution{
			ContributionKey: keyA, ContributingModule: rootModType, BindingElement: "provideA",
		})

	subDecls := testutil.NewDeclarations().
		AddBinding(dagger.Binding{Key: keyB, Kind: dagger.Provision, ContributingModule: subModType, BindingElement: "provideB"}).
		AddMultibindingContribution(setKey, dagger.MultibindingContribution{
			ContributionKey: keyB, ContributingModule: subModType, BindingElement: "provideB",
		})

	factory := testutil.NewDeclarationsFactory().
		Register(rootDesc, rootDecls).
		Register(subDesc, subDecls)

	registry := testutil.NewRegistry()

	tree, err := dagger.BuildGraph(
		rootDesc, factory, registry, dagger.DefaultKeyFactory{}, dagger.DefaultBindingFactory{},
		dagger.DefaultBindingNodeFactory{}, dagger.StaticCompilerOptions{}, false,
	)
	require.NoError(t, err)
	require.Len(t, tree.Children, 1)

	root := tree.Resolver
	sub := tree.Children[0].Resolver

	rootSet := root.ResolvedBindings(dagger.DependencyRequest{Key: setKey, Kind: dagger.Instance})
	require.Len(t, rootSet.Nodes, 1)
	assert.Len(t, rootSet.Nodes[0].Binding.Dependencies, 1, "Root only sees its own contribution")

	subSet := sub.ResolvedBindings(dagger.DependencyRequest{Key: setKey, Kind: dagger.Instance})
	require.Len(t, subSet.Nodes, 1)
	assert.Len(t, subSet.Nodes[0].Binding.Dependencies, 2, "Sub must re-synthesize the aggregate to see both Root's and its own contribution")
	assert.Equal(t, sub.ComponentPath(), subSet.Nodes[0].InstallationPath)
	assert.NotSame(t, rootSet.Nodes[0], subSet.Nodes[0], "a local multibinding contribution forces a fresh aggregate node, not reuse of the ancestor's")
}

func TestOptionalWithMissingInner(t *testing.T) {
	type Foo struct{}
	type RootComponent struct{}
	type RootModule struct{}

	fooKey := testutil.KeyOf[Foo]()
	optKey := testutil.KeyOf[dagger.Optional[Foo]]()

	rootDesc := testutil.NewDescriptor(reflect.TypeOf(RootComponent{})).
		WithEntryPoint("OptFoo", dagger.DependencyRequest{Key: optKey, Kind: dagger.Instance}).
		Build()

	rootDecls := testutil.NewDeclarations().
		AddOptionalBindingDeclaration(dagger.OptionalBindingDeclaration{Key: fooKey, ContributingModule: reflect.TypeOf(RootModule{})})

	factory := testutil.NewDeclarationsFactory().Register(rootDesc, rootDecls)
	registry := testutil.NewRegistry()

	tree, err := dagger.BuildGraph(
		rootDesc, factory, registry, dagger.DefaultKeyFactory{}, dagger.DefaultBindingFactory{},
		dagger.DefaultBindingNodeFactory{}, dagger.StaticCompilerOptions{}, false,
	)
	require.NoError(t, err)

	rb := tree.Resolver.ResolvedBindings(dagger.DependencyRequest{Key: optKey, Kind: dagger.Instance})
	require.Len(t, rb.Nodes, 1)
	assert.Equal(t, dagger.OptionalKind, rb.Nodes[0].Binding.Kind)
	assert.Empty(t, rb.Nodes[0].Binding.Dependencies, "no inner binding exists anywhere, so the synthesized OPTIONAL must be absent")
}

func TestFloatingProvisionBlockedByMissing(t *testing.T) {
	type Foo struct{}
	type Bar struct{}
	type RootComponent struct{}
	type SubComponent struct{}
	type SubCreator struct{}
	type RootModule struct{}
	type SubModule struct{}

	fooKey := testutil.KeyOf[Foo]()
	barKey := testutil.KeyOf[Bar]()
	creatorKey := testutil.KeyOf[SubCreator]()

	subDesc := testutil.NewDescriptor(reflect.TypeOf(SubComponent{})).
		Subcomponent().
		WithEntryPoint("Foo", dagger.DependencyRequest{Key: fooKey, Kind: dagger.Instance}).
		Build()

	rootDesc := testutil.NewDescriptor(reflect.TypeOf(RootComponent{})).
		WithEntryPoint("Sub", dagger.DependencyRequest{Key: creatorKey, Kind: dagger.Instance}).
		WithEntryPoint("Foo", dagger.DependencyRequest{Key: fooKey, Kind: dagger.Instance}).
		Build()

	rootDecls := testutil.NewDeclarations().
		AddSubcomponentDeclaration(dagger.SubcomponentDeclaration{Key: creatorKey, Child: subDesc}).
		AddBinding(dagger.Binding{
			Key: fooKey, Kind: dagger.Provision, ContributingModule: reflect.TypeOf(RootModule{}),
			BindingElement: "provideFoo", Dependencies: []dagger.DependencyRequest{{Key: barKey, Kind: dagger.Instance}},
		})

	subDecls := testutil.NewDeclarations().
		AddBinding(dagger.Binding{
			Key: barKey, Kind: dagger.Provision, ContributingModule: reflect.TypeOf(SubModule{}), BindingElement: "provideBar",
		})

	factory := testutil.NewDeclarationsFactory().
		Register(rootDesc, rootDecls).
		Register(subDesc, subDecls)

	registry := testutil.NewRegistry()

	tree, err := dagger.BuildGraph(
		rootDesc, factory, registry, dagger.DefaultKeyFactory{}, dagger.DefaultBindingFactory{},
		dagger.DefaultBindingNodeFactory{}, dagger.StaticCompilerOptions{}, true, // fullMode carries through to the subgraph
	)
	require.NoError(t, err)
	require.Len(t, tree.Children, 1)

	root := tree.Resolver
	sub := tree.Children[0].Resolver

	rootFoo := root.ResolvedBindings(dagger.DependencyRequest{Key: fooKey, Kind: dagger.Instance})
	require.Len(t, rootFoo.Nodes, 1)
	assert.Equal(t, root.ComponentPath(), rootFoo.Nodes[0].InstallationPath)

	rootBar := root.ResolvedBindings(dagger.DependencyRequest{Key: barKey, Kind: dagger.Instance})
	assert.True(t, rootBar.IsEmpty(), "Bar is declared at Sub, invisible from Root's own lineage")

	subFoo := sub.ResolvedBindings(dagger.DependencyRequest{Key: fooKey, Kind: dagger.Instance})
	require.Len(t, subFoo.Nodes, 1)
	assert.Same(t, rootFoo.Nodes[0], subFoo.Nodes[0], "Foo depends on a Bar missing at Root, so Sub reuses Root's node instead of re-resolving it")

	subBar := sub.ResolvedBindings(dagger.DependencyRequest{Key: barKey, Kind: dagger.Instance})
	require.Len(t, subBar.Nodes, 1, "Sub's own full-mode enumeration resolves its own @Provides Bar")
	assert.Equal(t, sub.ComponentPath(), subBar.Nodes[0].InstallationPath)
}

func TestDelegateCycle(t *testing.T) {
	type Foo struct{}
	type Bar struct{}
	type RootComponent struct{}
	type RootModule struct{}

	fooKey := testutil.KeyOf[Foo]()
	barKey := testutil.KeyOf[Bar]()

	rootDesc := testutil.NewDescriptor(reflect.TypeOf(RootComponent{})).
		WithEntryPoint("Foo", dagger.DependencyRequest{Key: fooKey, Kind: dagger.Instance}).
		Build()

	mod := reflect.TypeOf(RootModule{})
	rootDecls := testutil.NewDeclarations().
		AddDelegate(fooKey, dagger.DelegateDeclaration{
			Key: fooKey, DelegateRequest: dagger.DependencyRequest{Key: barKey, Kind: dagger.Instance},
			ContributingModule: mod, BindingElement: "bindFoo",
		}).
		AddDelegate(barKey, dagger.DelegateDeclaration{
			Key: barKey, DelegateRequest: dagger.DependencyRequest{Key: fooKey, Kind: dagger.Instance},
			ContributingModule: mod, BindingElement: "bindBar",
		})

	factory := testutil.NewDeclarationsFactory().Register(rootDesc, rootDecls)
	registry := testutil.NewRegistry()

	tree, err := dagger.BuildGraph(
		rootDesc, factory, registry, dagger.DefaultKeyFactory{}, dagger.DefaultBindingFactory{},
		dagger.DefaultBindingNodeFactory{}, dagger.StaticCompilerOptions{}, false,
	)
	require.NoError(t, err)

	root := tree.Resolver
	fooRB := root.ResolvedBindings(dagger.DependencyRequest{Key: fooKey, Kind: dagger.Instance})
	require.Len(t, fooRB.Nodes, 1)
	assert.Equal(t, dagger.Delegate, fooRB.Nodes[0].Binding.Kind, "the delegate reached first resolves normally, forwarding to Bar")

	barRB := root.ResolvedBindings(dagger.DependencyRequest{Key: barKey, Kind: dagger.Instance})
	require.Len(t, barRB.Nodes, 1)
	assert.Equal(t, dagger.UnresolvedDelegate, barRB.Nodes[0].Binding.Kind, "closing the cycle back to Foo breaks it with an UNRESOLVED_DELEGATE placeholder instead of recursing forever")
}

func TestSubcomponentCreatorDiscovery(t *testing.T) {
	type SubComponent struct{}
	type SubBuilder struct{}
	type RootComponent struct{}
	type RootModule struct{}

	builderKey := testutil.KeyOf[SubBuilder]()

	subDesc := testutil.NewDescriptor(reflect.TypeOf(SubComponent{})).
		Subcomponent().
		Build()

	rootDesc := testutil.NewDescriptor(reflect.TypeOf(RootComponent{})).
		WithEntryPoint("Builder", dagger.DependencyRequest{Key: builderKey, Kind: dagger.Instance}).
		Build()

	rootDecls := testutil.NewDeclarations().
		AddSubcomponentDeclaration(dagger.SubcomponentDeclaration{Key: builderKey, Child: subDesc})

	factory := testutil.NewDeclarationsFactory().Register(rootDesc, rootDecls)
	registry := testutil.NewRegistry()

	tree, err := dagger.BuildGraph(
		rootDesc, factory, registry, dagger.DefaultKeyFactory{}, dagger.DefaultBindingFactory{},
		dagger.DefaultBindingNodeFactory{}, dagger.StaticCompilerOptions{}, false,
	)
	require.NoError(t, err)
	require.Len(t, tree.Children, 1)
	assert.Same(t, subDesc, tree.Children[0].Resolver.ComponentDescriptor())

	rb := tree.Resolver.ResolvedBindings(dagger.DependencyRequest{Key: builderKey, Kind: dagger.Instance})
	require.Len(t, rb.Nodes, 1)
	assert.Equal(t, dagger.SubcomponentCreator, rb.Nodes[0].Binding.Kind)

	// Requesting the creator key again does not enqueue a second subgraph.
	err = tree.Resolver.Resolve(builderKey)
	require.NoError(t, err)
	assert.Len(t, tree.Children, 1)
}
