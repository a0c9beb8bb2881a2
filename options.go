package dagger

import "log/slog"

// buildConfig holds the ambient settings BuildGraph threads into every
// Resolver it constructs, separate from the external collaborators
// (ComponentDeclarationsFactory, InjectBindingRegistry, ...) since these
// concern tracing and caching behavior rather than the binding graph
// itself.
type buildConfig struct {
	log                                *slog.Logger
	excludeInjectionFromDuplicateCheck bool
}

// Option configures a BuildGraph invocation.
type Option func(*buildConfig)

// WithLogger sets the structured logger every Resolver in the tree uses for
// tracing. The default discards everything.
func WithLogger(log *slog.Logger) Option {
	return func(c *buildConfig) {
		if log != nil {
			c.log = log
		}
	}
}

// WithExcludeInjectionFromDuplicateCheck controls the configuration switch
// mentioned by §4.5: when enabled, INJECTION-kind bindings are excluded
// from the previously-resolved set before Resolver checks whether a key
// already has local bindings, so a local explicit binding does not get
// flagged as conflicting with an inherited implicit constructor injection.
func WithExcludeInjectionFromDuplicateCheck(exclude bool) Option {
	return func(c *buildConfig) {
		c.excludeInjectionFromDuplicateCheck = exclude
	}
}
