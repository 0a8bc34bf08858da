package mapping

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Scope is the per-call state shared by the extractors of one Map call and
// every nested mapping it triggers.
type Scope struct {
	registry   *Registry
	capability any
	ctx        context.Context
}

// Registry returns the registry nested mappings resolve definitions from.
func (s *Scope) Registry() *Registry { return s.registry }

// Capability returns the value passed with WithCapability, or nil.
func (s *Scope) Capability() any { return s.capability }

// Context returns the context passed with WithContext, or
// context.Background.
func (s *Scope) Context() context.Context {
	if s.ctx == nil {
		return context.Background()
	}
	return s.ctx
}

// MapOption configures a single Map call.
type MapOption func(*Scope)

// WithCapability hands c to every Build function of the call, including
// nested records, through Fields.Capability. The API client uses it to give
// records a way back for companion fetches.
func WithCapability(c any) MapOption {
	return func(s *Scope) { s.capability = c }
}

// WithContext makes optional-property reports log with ctx, so handlers see
// the attributes it carries.
func WithContext(ctx context.Context) MapOption {
	return func(s *Scope) {
		if ctx != nil {
			s.ctx = ctx
		}
	}
}

// Map builds a T from raw using the definition registered for T.
func Map[T any](r *Registry, raw Raw, opts ...MapOption) (T, error) {
	return record[T](newScope(r, opts), raw, nil)
}

// MapWith builds a T from raw using def. If def is nil the registered
// definition is used, as with Map.
func MapWith[T any](r *Registry, raw Raw, def *Definition[T], opts ...MapOption) (T, error) {
	return record[T](newScope(r, opts), raw, def)
}

func newScope(r *Registry, opts []MapOption) *Scope {
	s := &Scope{registry: r, ctx: context.Background()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scope) logger() *slog.Logger {
	if s.registry == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.registry.log
}

func record[T any](s *Scope, raw Raw, def *Definition[T]) (T, error) {
	var zero T
	name := typeName[T]()

	if def == nil {
		d, ok := Lookup[T](s.registry)
		if !ok {
			return zero, fmt.Errorf("%w: no definition provided for %s", ErrConfiguration, name)
		}
		def = d
	}
	if def.Build == nil {
		return zero, fmt.Errorf("%w: definition for %s has no Build function", ErrConfiguration, name)
	}

	f := &Fields{
		typeName:   name,
		capability: s.capability,
		values:     make(map[string]any, len(def.Required)+len(def.Optional)),
	}

	for _, p := range def.Required {
		v, ok, err := p.run(s, raw)
		if err == nil && !ok {
			err = errAbsent
		}
		if err != nil {
			return zero, &RequiredFieldError{Type: name, Source: p.Source, Err: err}
		}
		f.values[p.Target] = v
	}

	log := s.logger()
	for _, p := range def.Optional {
		v, ok, err := p.run(s, raw)
		if err != nil || !ok {
			reportOptional(s.Context(), log, name, p, raw, err)
			continue
		}
		f.values[p.Target] = v
	}

	out, err := def.Build(f)
	if err == nil {
		err = f.err
	}
	if err != nil {
		return zero, &ConstructionError{Type: name, Err: err}
	}
	return out, nil
}

func (p Property) run(s *Scope, raw Raw) (v any, ok bool, err error) {
	if p.extract == nil {
		return nil, false, fmt.Errorf("property %q has no extractor", p.Source)
	}
	defer func() {
		if rec := recover(); rec != nil {
			v, ok, err = nil, false, fmt.Errorf("extractor panic: %v", rec)
		}
	}()
	return p.extract(s, raw)
}

func reportOptional(ctx context.Context, log *slog.Logger, typ string, p Property, raw Raw, err error) {
	reason := "absent"
	if err != nil {
		reason = "invalid"
	}
	log.WarnContext(ctx, "mapping.optional.unparsed",
		slog.String("type", typ),
		slog.String("field", p.Source),
		slog.String("reason", reason),
	)
	if err == nil {
		err = errAbsent
	}
	log.DebugContext(ctx, "mapping.optional.detail",
		slog.String("type", typ),
		slog.String("field", p.Source),
		slog.Any("raw", raw),
		slog.String("error", err.Error()),
	)
}

// Fields is the set of extracted values handed to a Build function, keyed by
// target field name.
type Fields struct {
	typeName   string
	capability any
	values     map[string]any
	err        error
}

// Type returns the name of the record type being built.
func (f *Fields) Type() string { return f.typeName }

// Has reports whether a value was extracted for name.
func (f *Fields) Has(name string) bool {
	_, ok := f.values[name]
	return ok
}

// Capability returns the value passed to the Map call with WithCapability.
func (f *Fields) Capability() any { return f.capability }

// Len reports how many fields hold a value.
func (f *Fields) Len() int { return len(f.values) }

func (f *Fields) fail(err error) {
	f.err = errors.Join(f.err, err)
}

// Get returns the value extracted for name, or the zero V if the field is
// missing. A value of another type is recorded as a construction error and
// fails the enclosing Map call.
func Get[V any](f *Fields, name string) V {
	var zero V
	v, ok := f.values[name]
	if !ok || v == nil {
		return zero
	}
	out, ok := v.(V)
	if !ok {
		f.fail(fmt.Errorf("field %s holds %T, read as %T", name, v, zero))
		return zero
	}
	return out
}

// Opt is Get for optional fields: nil when the field is missing.
func Opt[V any](f *Fields, name string) *V {
	if !f.Has(name) {
		return nil
	}
	v := Get[V](f, name)
	return &v
}
