package mapping

import (
	"log/slog"
	"reflect"
	"strings"
	"sync"
)

// Raw is a decoded JSON object.
type Raw = map[string]any

// Property is one row of a Definition: the raw key it reads, the record
// field it fills and the extractor producing the value.
type Property struct {
	Source string
	Target string

	extract func(s *Scope, raw Raw) (any, bool, error)
}

// Prop builds a Property from a typed extractor.
func Prop[V any](source, target string, ext Extractor[V]) Property {
	return Property{
		Source: source,
		Target: target,
		extract: func(s *Scope, raw Raw) (any, bool, error) {
			v, ok, err := ext(s, raw)
			if err != nil || !ok {
				return nil, false, err
			}
			return v, true, nil
		},
	}
}

// Definition describes how to build a T from a raw object.
type Definition[T any] struct {
	Required []Property
	Optional []Property
	// Build assembles the record from the extracted values. Required
	// properties are always present in f; optional ones may be missing.
	Build func(f *Fields) (T, error)
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger that receives optional-property reports. If not
// provided, reports are discarded.
func WithLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.log = l
		}
	}
}

// Registry associates record types with their definitions.
type Registry struct {
	mu   sync.RWMutex
	defs map[reflect.Type]any
	log  *slog.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		defs: make(map[reflect.Type]any),
		log:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register inserts or replaces the definition for T.
func Register[T any](r *Registry, def *Definition[T]) {
	r.mu.Lock()
	r.defs[reflect.TypeFor[T]()] = def
	r.mu.Unlock()
}

// Unregister removes the definition for T, if any.
func Unregister[T any](r *Registry) {
	r.mu.Lock()
	delete(r.defs, reflect.TypeFor[T]())
	r.mu.Unlock()
}

// Lookup returns the definition registered for T.
func Lookup[T any](r *Registry) (*Definition[T], bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	v, ok := r.defs[reflect.TypeFor[T]()]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	def, ok := v.(*Definition[T])
	return def, ok && def != nil
}

// Clone returns an independent registry holding the same definitions and
// logger, then applies opts. Changes to the clone do not affect r.
func (r *Registry) Clone(opts ...RegistryOption) *Registry {
	r.mu.RLock()
	c := &Registry{defs: make(map[reflect.Type]any, len(r.defs)), log: r.log}
	for k, v := range r.defs {
		c.defs[k] = v
	}
	r.mu.RUnlock()
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Len reports the number of registered definitions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.defs)
}

// Logger returns the registry logger.
func (r *Registry) Logger() *slog.Logger { return r.log }

// typeName renders T for diagnostics, without pointer or package prefixes.
func typeName[T any]() string {
	t := reflect.TypeFor[T]()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if n := t.Name(); n != "" {
		return n
	}
	s := t.String()
	if i := strings.LastIndex(s, "."); i >= 0 {
		return s[i+1:]
	}
	return s
}
