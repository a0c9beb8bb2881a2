// Package ownership decides which component in a resolver lineage should
// own (install) a given binding. It knows nothing about keys, dependency
// graphs, or declaration sets directly: callers describe a binding through
// BindingFacts and a lineage through the Node interface, keeping this
// package free of any dependency back on the resolver package that calls
// it.
package ownership

// Node is the view of one resolver in a parent lineage that the selector
// needs. The caller's concrete resolver type implements this directly.
type Node interface {
	// IsProductionComponent reports whether this node's component is
	// colored production.
	IsProductionComponent() bool
	// HasScope reports whether this node's component declares the named
	// scope.
	HasScope(scopeName string) bool
	// ContainsExplicitBinding reports whether this node's own
	// declarations install the described binding explicitly.
	ContainsExplicitBinding(b BindingFacts) bool
	// HasResolvedIdentity reports whether this node has already resolved
	// keyHash to a binding carrying bindingHash.
	HasResolvedIdentity(keyHash, bindingHash string) bool
	// Parent returns the enclosing node, or ok=false at the root.
	Parent() (Node, bool)
}

// BindingFacts is the subset of a binding's shape the selector's rules
// consult, flattened to primitives so this package never needs to import
// the binding's real type.
type BindingFacts struct {
	Hash                string // binding identity hash
	KeyHash             string // the binding's key, stringified
	IsInjection         bool   // kind == INJECTION
	IsProductionColored bool   // scope is a production scope, or kind == PRODUCTION
	ScopeName           string // "" if unscoped
	IsReusableScope     bool
}

// Select implements the four-rule ownership decision (§4.4 of the
// governing design): production-colored bindings prefer the highest
// production component (root-to-self) or the first explicit installer;
// reusable-scoped bindings prefer wherever the identical binding already
// resolved; otherwise the first explicit installer, then the first scope
// match, walking self-to-root. Returns ok=false when no ancestor qualifies
// and the binding should install at self.
func Select(self Node, b BindingFacts) (owner Node, ok bool) {
	selfToRoot := lineage(self)

	if b.IsProductionColored {
		for i := len(selfToRoot) - 1; i >= 0; i-- { // root -> self
			n := selfToRoot[i]
			if b.IsInjection && n.IsProductionComponent() {
				return n, true
			}
		}
		for i := len(selfToRoot) - 1; i >= 0; i-- { // root -> self
			n := selfToRoot[i]
			if n.ContainsExplicitBinding(b) {
				return n, true
			}
		}
		return nil, false
	}

	if b.IsReusableScope {
		for _, n := range selfToRoot {
			if n.HasResolvedIdentity(b.KeyHash, b.Hash) {
				return n, true
			}
		}
		return nil, false
	}

	for _, n := range selfToRoot {
		if n.ContainsExplicitBinding(b) {
			return n, true
		}
	}

	if b.ScopeName != "" {
		for _, n := range selfToRoot {
			if n.HasScope(b.ScopeName) {
				return n, true
			}
		}
	}

	return nil, false
}

// IsCorrectlyScopedInSubcomponent implements the guard on accepting a
// fallback implicit-inject binding discovered while resolving a
// subcomponent: unscoped and reusable-scoped bindings are always fine;
// otherwise the owner chosen by Select must actually carry that scope.
func IsCorrectlyScopedInSubcomponent(rootIsSubcomponent bool, scopeName string, isReusableScope bool, owner Node, ownerFound bool) bool {
	if !rootIsSubcomponent {
		return true
	}
	if scopeName == "" || isReusableScope {
		return true
	}
	return ownerFound && owner.HasScope(scopeName)
}

func lineage(self Node) []Node {
	var out []Node
	cur := self
	for {
		out = append(out, cur)
		p, ok := cur.Parent()
		if !ok {
			return out
		}
		cur = p
	}
}
