package dagger

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/google/uuid"
)

// Binding is a rule for satisfying a key: a binding kind, the key it
// satisfies, an optional scope and contributing module, and the ordered
// dependency requests it needs to be constructed (§3).
//
// Bindings are value-semantic. IdentityHash produces the identity-forming
// subset used to distinguish bindings that would otherwise collide (e.g.
// two @Provides methods with the same return type installed in different
// modules).
type Binding struct {
	Key                Key
	Kind               BindingKind
	Scope              *Scope
	ContributingModule reflect.Type // nil if not module-sourced
	BindingElement     string       // source method/field name, for diagnostics
	Dependencies       []DependencyRequest
}

// IdentityHash returns a stable string identifying this binding for
// equality/deduplication purposes: enough of the binding's shape to tell
// apart two otherwise-similar bindings installed by different modules or
// elements, without requiring the whole Dependencies slice to match.
func (b Binding) IdentityHash() string {
	var mod string
	if b.ContributingModule != nil {
		mod = formatType(b.ContributingModule)
	}
	return fmt.Sprintf("%s|%s|%s|%s", b.Key, b.Kind, mod, b.BindingElement)
}

func (b Binding) String() string {
	return fmt.Sprintf("%s[%s]", b.Kind, b.Key)
}

// IsFloatable reports whether this binding kind is permitted to be
// re-resolved at a descendant after depending on a binding missing at an
// ancestor (§4.5's isNotAllowedToFloat — the inverse).
func (b Binding) IsFloatable() bool {
	return b.Kind == Injection || b.Kind == AssistedInjection
}

// BindingNodeHandle is the cross-component identity of a BindingNode,
// following §9's suggestion: (resolverID, key, bindingHash). Two handles
// compare equal iff they were produced for the same binding installed by
// the same resolver, independent of pointer identity — useful when nodes
// must be compared across process or serialization boundaries. Within a
// single resolution pass, pointer identity (reusing the same *BindingNode)
// is what actually guarantees invariant 3 (Ownership stability); the handle
// is a debuggable shadow of that identity.
type BindingNodeHandle struct {
	ResolverID  string
	Key         Key
	BindingHash string
}

func (h BindingNodeHandle) String() string {
	return fmt.Sprintf("%s@%s#%s", h.Key, h.ResolverID, h.BindingHash)
}

// newBindingNodeHandle builds a handle from the owning resolver's id.
func newBindingNodeHandle(resolverID string, b Binding) BindingNodeHandle {
	return BindingNodeHandle{ResolverID: resolverID, Key: b.Key, BindingHash: b.IdentityHash()}
}

// BindingNode is a Binding paired with the ComponentPath at which it is
// installed and the owning component's multibinding/optional/subcomponent
// declaration sets that were live when the node was created (§3,
// ResolvedBindings). Descendants that inherit a node reuse this exact
// pointer, never a copy (§9, invariant 3).
type BindingNode struct {
	Handle           BindingNodeHandle
	Binding          Binding
	InstallationPath ComponentPath

	MultibindingDeclarations     []MultibindingDeclaration
	OptionalBindingDeclarations  []OptionalBindingDeclaration
	SubcomponentDeclarations     []SubcomponentDeclaration
}

func (n *BindingNode) String() string {
	return fmt.Sprintf("%s@%s", n.Binding, n.InstallationPath)
}

// newResolverID mints a fresh, unique resolver identity.
func newResolverID() string {
	return uuid.NewString()
}

// ResolvedBindings is the complete answer for a key as seen from one
// component: the set of BindingNode alternatives satisfying it. An empty
// set means "missing" — never an error at this layer (§7).
type ResolvedBindings struct {
	Key   Key
	Nodes []*BindingNode
}

// IsEmpty reports whether no binding satisfies Key.
func (r ResolvedBindings) IsEmpty() bool {
	return len(r.Nodes) == 0
}

// Bindings returns the underlying Binding values, in node order.
func (r ResolvedBindings) Bindings() []Binding {
	out := make([]Binding, len(r.Nodes))
	for i, n := range r.Nodes {
		out[i] = n.Binding
	}
	return out
}

// BindingNodesOwnedBy filters to nodes installed at exactly the given
// component path — used by Resolver.resolve to walk only the dependencies
// of bindings installed at *this* component (§4.2).
func (r ResolvedBindings) BindingNodesOwnedBy(path ComponentPath) []*BindingNode {
	var out []*BindingNode
	for _, n := range r.Nodes {
		if n.InstallationPath.Equal(path) {
			out = append(out, n)
		}
	}
	return out
}

// HasKind reports whether any node has the given binding kind.
func (r ResolvedBindings) HasKind(kind BindingKind) bool {
	for _, n := range r.Nodes {
		if n.Binding.Kind == kind {
			return true
		}
	}
	return false
}

func (r ResolvedBindings) String() string {
	parts := make([]string, len(r.Nodes))
	for i, n := range r.Nodes {
		parts[i] = n.String()
	}
	return fmt.Sprintf("%s => [%s]", r.Key, strings.Join(parts, ", "))
}
