package testutil

import (
	"reflect"

	"github.com/kchobantonov/dagger"
)

// DescriptorBuilder assembles a dagger.ComponentDescriptor fluently.
type DescriptorBuilder struct {
	d *dagger.ComponentDescriptor
}

// NewDescriptor starts building a component descriptor for typeElement.
func NewDescriptor(typeElement reflect.Type) *DescriptorBuilder {
	return &DescriptorBuilder{d: &dagger.ComponentDescriptor{TypeElement: typeElement}}
}

func (b *DescriptorBuilder) Subcomponent() *DescriptorBuilder {
	b.d.IsSubcomponent = true
	return b
}

func (b *DescriptorBuilder) Production() *DescriptorBuilder {
	b.d.IsProduction = true
	return b
}

func (b *DescriptorBuilder) WithScope(s dagger.Scope) *DescriptorBuilder {
	b.d.Scopes = append(b.d.Scopes, s)
	return b
}

func (b *DescriptorBuilder) WithEntryPoint(name string, req dagger.DependencyRequest) *DescriptorBuilder {
	b.d.EntryPointMethods = append(b.d.EntryPointMethods, dagger.EntryPoint{Name: name, Request: req})
	return b
}

func (b *DescriptorBuilder) WithFactoryMethod(name string, child *dagger.ComponentDescriptor) *DescriptorBuilder {
	b.d.ChildComponentsByFactoryMethod = append(b.d.ChildComponentsByFactoryMethod, dagger.FactoryMethod{Name: name, Child: child})
	return b
}

func (b *DescriptorBuilder) WithBuilderEntryPoint(name string, builderType reflect.Type, child *dagger.ComponentDescriptor) *DescriptorBuilder {
	b.d.ChildComponentsByBuilderEntryPoint = append(b.d.ChildComponentsByBuilderEntryPoint, dagger.BuilderEntryPoint{Name: name, BuilderType: builderType, Child: child})
	return b
}

func (b *DescriptorBuilder) Build() *dagger.ComponentDescriptor {
	return b.d
}
