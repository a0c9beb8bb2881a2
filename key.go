package dagger

import (
	"fmt"
	"reflect"
	"strings"
)

// Optional is the Go stand-in for a parameterized "Optional<T>" request
// type. Only its reflect.Type is ever inspected — Key never holds or
// constructs a value, only the shape of a request.
type Optional[T any] struct{ Value T }

// ProviderOf, LazyOf, ProducerOf and ProducedOf are the framework wrapper
// types referenced by RequestKind: a dependency requested as PROVIDER,
// LAZY, PRODUCER or PRODUCED is represented, at the type level, as one of
// these generic wrappers around the underlying value type. KeyFactory's
// UnwrapMapValueType strips exactly these wrappers from a multibound map's
// value type.
type ProviderOf[T any] struct{ Value T }
type LazyOf[T any] struct{ Value T }
type ProducerOf[T any] struct{ Value T }
type ProducedOf[T any] struct{ Value T }

// MembersInjectorOf is the wrapper for requesting a first-class members
// injector VALUE as a contribution binding (distinct from RequestKind's
// MembersInjection, which asks the resolver to perform members injection
// directly rather than hand back an injector object).
type MembersInjectorOf[T any] struct{ Value T }

// RequestKind classifies how a dependency is requested: as a plain
// instance, or wrapped for deferred/asynchronous access.
type RequestKind int

const (
	Instance RequestKind = iota
	Provider
	Lazy
	Producer
	Produced
	Future
	MembersInjection
)

func (k RequestKind) String() string {
	switch k {
	case Instance:
		return "INSTANCE"
	case Provider:
		return "PROVIDER"
	case Lazy:
		return "LAZY"
	case Producer:
		return "PRODUCER"
	case Produced:
		return "PRODUCED"
	case Future:
		return "FUTURE"
	case MembersInjection:
		return "MEMBERS_INJECTION"
	default:
		return fmt.Sprintf("RequestKind(%d)", int(k))
	}
}

// BindingKind classifies the provenance of a Binding.
type BindingKind int

const (
	Injection BindingKind = iota
	AssistedInjection
	AssistedFactory
	Provision
	Production
	Delegate
	MultiboundSet
	MultiboundMap
	OptionalKind
	SubcomponentCreator
	MembersInjector
	Component
	ComponentProvision
	ComponentDependency
	BoundInstance
	UnresolvedDelegate
)

func (k BindingKind) String() string {
	switch k {
	case Injection:
		return "INJECTION"
	case AssistedInjection:
		return "ASSISTED_INJECTION"
	case AssistedFactory:
		return "ASSISTED_FACTORY"
	case Provision:
		return "PROVISION"
	case Production:
		return "PRODUCTION"
	case Delegate:
		return "DELEGATE"
	case MultiboundSet:
		return "MULTIBOUND_SET"
	case MultiboundMap:
		return "MULTIBOUND_MAP"
	case OptionalKind:
		return "OPTIONAL"
	case SubcomponentCreator:
		return "SUBCOMPONENT_CREATOR"
	case MembersInjector:
		return "MEMBERS_INJECTOR"
	case Component:
		return "COMPONENT"
	case ComponentProvision:
		return "COMPONENT_PROVISION"
	case ComponentDependency:
		return "COMPONENT_DEPENDENCY"
	case BoundInstance:
		return "BOUND_INSTANCE"
	case UnresolvedDelegate:
		return "UNRESOLVED_DELEGATE"
	default:
		return fmt.Sprintf("BindingKind(%d)", int(k))
	}
}

// IsProductionKind reports whether the kind is colored production, used by
// OwnershipSelector's production-colored rule.
func (k BindingKind) IsProductionKind() bool {
	return k == Production
}

// Key is an opaque identity for a dependency request target: a type plus an
// optional qualifier annotation plus an optional multibinding contribution
// identifier. Equality and hashing are by (Qualifier, Type, ContributionID),
// which Go gives us for free via struct comparison as long as Qualifier
// holds a comparable value (the contract callers must honor, same as
// registry.Descriptor.Key in the teacher's container).
type Key struct {
	Type           reflect.Type
	Qualifier      any
	ContributionID string
}

func (k Key) String() string {
	var b strings.Builder
	if k.Qualifier != nil {
		fmt.Fprintf(&b, "@%v ", k.Qualifier)
	}
	b.WriteString(formatType(k.Type))
	if k.ContributionID != "" {
		fmt.Fprintf(&b, "#%s", k.ContributionID)
	}
	return b.String()
}

// StripMultibindingContributionIdentifier returns the key with its
// ContributionID cleared, used by the Orchestrator in full-binding-graph
// mode (§4.1 step 3) to recover the aggregate multibound key from one of
// its per-contribution identities.
func (k Key) StripMultibindingContributionIdentifier() Key {
	k.ContributionID = ""
	return k
}

// IsMapType reports whether the key's type is a Go map, the representation
// used for MULTIBOUND_MAP requests.
func (k Key) IsMapType() bool {
	return k.Type != nil && k.Type.Kind() == reflect.Map
}

// IsSetType reports whether the key's type is a Go slice, the representation
// used for MULTIBOUND_SET requests (Go has no built-in set type; a slice of
// the contributed element type plays that role, matching the way the
// teacher's multibinding groups are exposed as slices).
func (k Key) IsSetType() bool {
	return k.Type != nil && k.Type.Kind() == reflect.Slice
}

// UnwrapOptional strips Optional[T] from the key's type, returning the key
// for T and true, or the zero Key and false if Type is not Optional[T].
func UnwrapOptional(k Key) (Key, bool) {
	if k.Type == nil {
		return Key{}, false
	}
	inner, ok := unwrapGeneric(k.Type, "Optional[")
	if !ok {
		return Key{}, false
	}
	k.Type = inner
	return k, true
}

// UnwrapMapValueType strips a framework wrapper (ProviderOf/LazyOf/
// ProducerOf/ProducedOf) from the value type of a Map[K, Wrapper[V]] key,
// returning a Map[K, V] key. If the key is not a map, or its value type is
// not one of the known wrappers, the key is returned unchanged.
func UnwrapMapValueType(k Key) Key {
	if k.Type == nil || k.Type.Kind() != reflect.Map {
		return k
	}

	valueType := k.Type.Elem()
	for _, prefix := range []string{"ProviderOf[", "LazyOf[", "ProducerOf[", "ProducedOf["} {
		if inner, ok := unwrapGeneric(valueType, prefix); ok {
			k.Type = reflect.MapOf(k.Type.Key(), inner)
			return k
		}
	}

	return k
}

// unwrapGeneric recovers the type argument of a single-field generic
// wrapper struct (Optional[T], ProviderOf[T], ...) by reading the struct's
// sole field type. Go's reflect API does not expose generic type arguments
// directly, so the wrapper's instantiated name (e.g. "Optional[pkg.Foo]")
// is used to recognize the shape before trusting the field.
func unwrapGeneric(t reflect.Type, namePrefix string) (reflect.Type, bool) {
	if t == nil || t.Kind() != reflect.Struct {
		return nil, false
	}
	if !strings.HasPrefix(t.Name(), namePrefix) {
		return nil, false
	}
	if t.NumField() != 1 {
		return nil, false
	}
	return t.Field(0).Type, true
}

// UnwrapRequestWrapper inspects a type for one layer of ProviderOf/LazyOf/
// ProducerOf/ProducedOf and returns the wrapped type together with the
// RequestKind it implies, or (t, Instance) unchanged if t carries none of
// those wrappers. Used to derive the request kind of an optional's inner
// dependency from Optional[T]'s type argument (e.g. Optional[ProviderOf[Foo]]
// unwraps to a PROVIDER request for Foo).
func UnwrapRequestWrapper(t reflect.Type) (reflect.Type, RequestKind) {
	if t == nil {
		return t, Instance
	}
	wrappers := []struct {
		prefix string
		kind   RequestKind
	}{
		{"ProviderOf[", Provider},
		{"LazyOf[", Lazy},
		{"ProducerOf[", Producer},
		{"ProducedOf[", Produced},
	}
	for _, w := range wrappers {
		if inner, ok := unwrapGeneric(t, w.prefix); ok {
			return inner, w.kind
		}
	}
	return t, Instance
}

// UnwrapMembersInjector reports whether the key's type is
// MembersInjectorOf[T] and, if so, returns the key for T.
func UnwrapMembersInjector(k Key) (Key, bool) {
	if k.Type == nil {
		return Key{}, false
	}
	inner, ok := unwrapGeneric(k.Type, "MembersInjectorOf[")
	if !ok {
		return Key{}, false
	}
	k.Type = inner
	return k, true
}

// DependencyRequest is a single dependency of a Binding: a key and the
// request kind (instance, provider, lazy, ...) under which it is needed.
type DependencyRequest struct {
	Key  Key
	Kind RequestKind
}

func (d DependencyRequest) String() string {
	if d.Kind == Instance {
		return d.Key.String()
	}
	return fmt.Sprintf("%s(%s)", d.Kind, d.Key)
}
