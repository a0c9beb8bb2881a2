package dagger

import (
	"reflect"
	"strings"
)

// ReusableScopeName is the well-known name of the "reusable" scope: a
// relaxed scope with no per-component uniqueness guarantee (§4.4 rule b,
// GLOSSARY "Scope").
const ReusableScopeName = "Reusable"

// Scope marks a binding as installed at most once per component bearing
// that scope, or — for the reusable scope — as eligible to float to any
// ancestor without a uniqueness guarantee.
type Scope struct {
	Name string
}

// ProductionScopeName is the well-known name of the scope that colors a
// binding as production regardless of its BindingKind (§4.4 rule a).
const ProductionScopeName = "Production"

// ReusableScope is the well-known reusable scope.
var ReusableScope = Scope{Name: ReusableScopeName}

// ProductionScope is the well-known production scope.
var ProductionScope = Scope{Name: ProductionScopeName}

// IsReusable reports whether this is the relaxed "reusable" scope.
func (s Scope) IsReusable() bool {
	return s.Name == ReusableScopeName
}

// IsProduction reports whether this is the production-coloring scope.
func (s Scope) IsProduction() bool {
	return s.Name == ProductionScopeName
}

func (s Scope) String() string {
	return "@" + s.Name
}

// EntryPoint is one dependency request declared on a component interface
// (an abstract method a generated implementation must satisfy).
type EntryPoint struct {
	Name    string
	Request DependencyRequest
}

// FactoryMethod associates a component-creation factory method with the
// child component descriptor it produces.
type FactoryMethod struct {
	Name  string
	Child *ComponentDescriptor
}

// BuilderEntryPoint associates a builder/creator entry point with the
// builder type it returns and the child component descriptor it builds.
type BuilderEntryPoint struct {
	Name        string
	BuilderType reflect.Type
	Child       *ComponentDescriptor
}

// ComponentDescriptor is the external, pre-parsed description of a single
// component in the hierarchy (§3). It is produced by a collaborator out of
// scope for this package (declaration extraction) and consumed read-only.
type ComponentDescriptor struct {
	TypeElement    reflect.Type
	Scopes         []Scope
	IsProduction   bool
	IsSubcomponent bool

	EntryPointMethods []EntryPoint

	ChildComponentsByFactoryMethod     []FactoryMethod
	ChildComponentsByBuilderEntryPoint []BuilderEntryPoint
}

// HasScope reports whether the component carries the given scope.
func (c *ComponentDescriptor) HasScope(s Scope) bool {
	for _, have := range c.Scopes {
		if have == s {
			return true
		}
	}
	return false
}

// GetChildComponentWithBuilderType looks up the child component whose
// builder entry point returns the given builder type (§3,
// "getChildComponentWithBuilderType(T)").
func (c *ComponentDescriptor) GetChildComponentWithBuilderType(builderType reflect.Type) (*ComponentDescriptor, bool) {
	for _, b := range c.ChildComponentsByBuilderEntryPoint {
		if b.BuilderType == builderType {
			return b.Child, true
		}
	}
	return nil, false
}

// ComponentPath is an ordered list of component type elements from the root
// to the current component. Equality is by sequence (§3).
type ComponentPath struct {
	elements []reflect.Type
}

// RootPath returns a ComponentPath containing only the root component.
func RootPath(root reflect.Type) ComponentPath {
	return ComponentPath{elements: []reflect.Type{root}}
}

// Push returns a new ComponentPath with child appended; the receiver is
// left unmodified.
func (p ComponentPath) Push(child reflect.Type) ComponentPath {
	next := make([]reflect.Type, len(p.elements)+1)
	copy(next, p.elements)
	next[len(p.elements)] = child
	return ComponentPath{elements: next}
}

// CurrentComponent returns the last (innermost) element of the path.
func (p ComponentPath) CurrentComponent() reflect.Type {
	if len(p.elements) == 0 {
		return nil
	}
	return p.elements[len(p.elements)-1]
}

// Depth returns the number of components in the path (1 for the root).
func (p ComponentPath) Depth() int {
	return len(p.elements)
}

// Equal reports whether two paths name the same sequence of components.
func (p ComponentPath) Equal(other ComponentPath) bool {
	if len(p.elements) != len(other.elements) {
		return false
	}
	for i, t := range p.elements {
		if t != other.elements[i] {
			return false
		}
	}
	return true
}

// Key returns a stable, comparable string identity for the path, suitable
// for use as a map key (reflect.Type slices are not themselves comparable).
func (p ComponentPath) Key() string {
	var b strings.Builder
	for i, t := range p.elements {
		if i > 0 {
			b.WriteByte('/')
		}
		b.WriteString(formatType(t))
	}
	return b.String()
}

func (p ComponentPath) String() string {
	return p.Key()
}
