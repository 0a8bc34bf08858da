package mapping_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/ggoodman/mercapi-go/mapping"
)

type flat struct {
	Field1 string
	Field2 *string
}

type nestedInner struct {
	FieldA string
	FieldB *string
}

type withNested struct {
	Field1 string
	Nested *nestedInner
}

type listHolder struct {
	ListA []int
}

type listOfFlat struct {
	Items []*flat
}

type node struct {
	ID       string
	Children []*node
}

type item struct {
	ID    string
	Name  string
	Price int
	Desc  *string
	Liked *bool
}

type leaf struct {
	ID string
}

type container struct {
	Items []*leaf
}

var flatDef = &mapping.Definition[*flat]{
	Required: []mapping.Property{
		mapping.Prop("field1", "field_1", mapping.As[string]("field1")),
	},
	Optional: []mapping.Property{
		mapping.Prop("field2", "field_2", mapping.As[string]("field2")),
	},
	Build: func(f *mapping.Fields) (*flat, error) {
		return &flat{
			Field1: mapping.Get[string](f, "field_1"),
			Field2: mapping.Opt[string](f, "field_2"),
		}, nil
	},
}

var nestedInnerDef = &mapping.Definition[*nestedInner]{
	Required: []mapping.Property{
		mapping.Prop("fieldA", "field_a", mapping.As[string]("fieldA")),
	},
	Optional: []mapping.Property{
		mapping.Prop("fieldB", "field_b", mapping.As[string]("fieldB")),
	},
	Build: func(f *mapping.Fields) (*nestedInner, error) {
		return &nestedInner{
			FieldA: mapping.Get[string](f, "field_a"),
			FieldB: mapping.Opt[string](f, "field_b"),
		}, nil
	},
}

var withNestedDef = &mapping.Definition[*withNested]{
	Required: []mapping.Property{
		mapping.Prop("field1", "field_1", mapping.As[string]("field1")),
		mapping.Prop("fieldNested", "field_nested", mapping.Nested[*nestedInner]("fieldNested")),
	},
	Build: func(f *mapping.Fields) (*withNested, error) {
		return &withNested{
			Field1: mapping.Get[string](f, "field_1"),
			Nested: mapping.Get[*nestedInner](f, "field_nested"),
		}, nil
	},
}

var listHolderDef = &mapping.Definition[*listHolder]{
	Required: []mapping.Property{
		mapping.Prop("listA", "list_a", mapping.List[int]("listA")),
	},
	Build: func(f *mapping.Fields) (*listHolder, error) {
		return &listHolder{ListA: mapping.Get[[]int](f, "list_a")}, nil
	},
}

var listOfFlatDef = &mapping.Definition[*listOfFlat]{
	Required: []mapping.Property{
		mapping.Prop("listNested", "list_nested", mapping.ListOf[*flat]("listNested")),
	},
	Build: func(f *mapping.Fields) (*listOfFlat, error) {
		return &listOfFlat{Items: mapping.Get[[]*flat](f, "list_nested")}, nil
	},
}

var nodeDef = &mapping.Definition[*node]{
	Required: []mapping.Property{
		mapping.Prop("id", "id", mapping.StringID("id")),
	},
	Optional: []mapping.Property{
		mapping.Prop("children", "children", mapping.ListOf[*node]("children")),
	},
	Build: func(f *mapping.Fields) (*node, error) {
		return &node{
			ID:       mapping.Get[string](f, "id"),
			Children: mapping.Get[[]*node](f, "children"),
		}, nil
	},
}

var itemDef = &mapping.Definition[*item]{
	Required: []mapping.Property{
		mapping.Prop("id", "id_", mapping.As[string]("id")),
		mapping.Prop("name", "name", mapping.As[string]("name")),
		mapping.Prop("price", "price", mapping.As[int]("price")),
	},
	Optional: []mapping.Property{
		mapping.Prop("description", "description", mapping.As[string]("description")),
		mapping.Prop("liked", "liked", mapping.As[bool]("liked")),
	},
	Build: func(f *mapping.Fields) (*item, error) {
		return &item{
			ID:    mapping.Get[string](f, "id_"),
			Name:  mapping.Get[string](f, "name"),
			Price: mapping.Get[int](f, "price"),
			Desc:  mapping.Opt[string](f, "description"),
			Liked: mapping.Opt[bool](f, "liked"),
		}, nil
	},
}

var leafDef = &mapping.Definition[*leaf]{
	Required: []mapping.Property{
		mapping.Prop("id", "id", mapping.StringID("id")),
	},
	Build: func(f *mapping.Fields) (*leaf, error) {
		return &leaf{ID: mapping.Get[string](f, "id")}, nil
	},
}

var containerDef = &mapping.Definition[*container]{
	Required: []mapping.Property{
		mapping.Prop("items", "items", mapping.ListOf[*leaf]("items")),
	},
	Build: func(f *mapping.Fields) (*container, error) {
		return &container{Items: mapping.Get[[]*leaf](f, "items")}, nil
	},
}

func newTestRegistry(opts ...mapping.RegistryOption) *mapping.Registry {
	r := mapping.NewRegistry(opts...)
	mapping.Register(r, flatDef)
	mapping.Register(r, nestedInnerDef)
	mapping.Register(r, withNestedDef)
	mapping.Register(r, listHolderDef)
	mapping.Register(r, listOfFlatDef)
	mapping.Register(r, nodeDef)
	mapping.Register(r, itemDef)
	mapping.Register(r, leafDef)
	mapping.Register(r, containerDef)
	return r
}

func strp(s string) *string { return &s }

func TestMap_FullObject(t *testing.T) {
	r := newTestRegistry()
	got, err := mapping.Map[*flat](r, mapping.Raw{"field1": "foo", "field2": "bar"})
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	if got.Field1 != "foo" {
		t.Fatalf("Field1 = %q, want foo", got.Field1)
	}
	if got.Field2 == nil || *got.Field2 != "bar" {
		t.Fatalf("Field2 = %v, want bar", got.Field2)
	}
}

func TestMap_WithoutOptionals(t *testing.T) {
	r := newTestRegistry()
	got, err := mapping.Map[*flat](r, mapping.Raw{"field1": "foo"})
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	if got.Field2 != nil {
		t.Fatalf("Field2 = %q, want nil", *got.Field2)
	}
}

func TestMap_MissingRequired(t *testing.T) {
	r := newTestRegistry()
	got, err := mapping.Map[*flat](r, mapping.Raw{"field2": "bar"})
	if got != nil {
		t.Fatalf("expected no record, got %+v", got)
	}
	if !errors.Is(err, mapping.ErrRequiredFieldMissing) {
		t.Fatalf("expected ErrRequiredFieldMissing, got %v", err)
	}
	var rfe *mapping.RequiredFieldError
	if !errors.As(err, &rfe) {
		t.Fatalf("expected *RequiredFieldError, got %T", err)
	}
	if rfe.Type != "flat" || rfe.Source != "field1" {
		t.Fatalf("unexpected diagnostics: type=%q source=%q", rfe.Type, rfe.Source)
	}
	if !strings.Contains(err.Error(), "flat") || !strings.Contains(err.Error(), "field1") {
		t.Fatalf("error message should name type and field: %q", err.Error())
	}
}

func TestMap_RequiredNullIsMissing(t *testing.T) {
	r := newTestRegistry()
	_, err := mapping.Map[*flat](r, mapping.Raw{"field1": nil})
	if !errors.Is(err, mapping.ErrRequiredFieldMissing) {
		t.Fatalf("expected ErrRequiredFieldMissing, got %v", err)
	}
}

func TestMap_RequiredCoercionFailure(t *testing.T) {
	r := newTestRegistry()
	_, err := mapping.Map[*item](r, mapping.Raw{"id": "m1", "name": "Foo", "price": "eight hundred"})
	var rfe *mapping.RequiredFieldError
	if !errors.As(err, &rfe) {
		t.Fatalf("expected *RequiredFieldError, got %v", err)
	}
	if rfe.Source != "price" {
		t.Fatalf("Source = %q, want price", rfe.Source)
	}
	var ce *mapping.CoercionError
	if !errors.As(err, &ce) {
		t.Fatalf("expected wrapped *CoercionError, got %v", err)
	}
}

func TestMap_OptionalExtractorFailureIsSwallowed(t *testing.T) {
	r := newTestRegistry()
	got, err := mapping.Map[*item](r, mapping.Raw{
		"id":          "m1",
		"name":        "Foo",
		"price":       800,
		"description": map[string]any{"unexpected": "shape"},
		"liked":       "definitely",
	})
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	if got.Desc != nil || got.Liked != nil {
		t.Fatalf("malformed optionals should be nil: desc=%v liked=%v", got.Desc, got.Liked)
	}
}

func TestMap_OptionalFailureIsLogged(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	r := newTestRegistry(mapping.WithLogger(log))

	_, err := mapping.Map[*item](r, mapping.Raw{
		"id": "m1", "name": "Foo", "price": 800, "liked": []any{1},
	})
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "field=liked") || !strings.Contains(out, "type=item") {
		t.Fatalf("expected warning naming field and type, got:\n%s", out)
	}
	if !strings.Contains(out, "reason=invalid") {
		t.Fatalf("expected reason=invalid, got:\n%s", out)
	}
	if !strings.Contains(out, "level=DEBUG") || !strings.Contains(out, "mapping.optional.detail") {
		t.Fatalf("expected debug detail record, got:\n%s", out)
	}
}

type traceKey struct{}

// traceHandler records the trace value found in the context of each record.
type traceHandler struct {
	mu     sync.Mutex
	traces []any
}

func (h *traceHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h *traceHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h *traceHandler) WithGroup(string) slog.Handler           { return h }
func (h *traceHandler) Handle(ctx context.Context, _ slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.traces = append(h.traces, ctx.Value(traceKey{}))
	return nil
}

func TestMap_OptionalReportsCarryContext(t *testing.T) {
	h := &traceHandler{}
	r := newTestRegistry(mapping.WithLogger(slog.New(h)))
	ctx := context.WithValue(context.Background(), traceKey{}, "req-1")

	_, err := mapping.Map[*withNested](r, mapping.Raw{
		"field1":      "foo",
		"fieldNested": map[string]any{"fieldA": "bar"},
	}, mapping.WithContext(ctx))
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	if len(h.traces) == 0 {
		t.Fatal("expected optional reports")
	}
	for _, v := range h.traces {
		if v != "req-1" {
			t.Fatalf("report logged without the call context: %v", h.traces)
		}
	}
}

func TestMap_NestedObject(t *testing.T) {
	r := newTestRegistry()
	got, err := mapping.Map[*withNested](r, mapping.Raw{
		"field1":      "foo",
		"fieldNested": map[string]any{"fieldA": "bar", "fieldB": "baz"},
	})
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	want := &nestedInner{FieldA: "bar", FieldB: strp("baz")}
	if !reflect.DeepEqual(got.Nested, want) {
		t.Fatalf("Nested = %+v, want %+v", got.Nested, want)
	}
}

func TestMap_NestedRequiredMissingPropagates(t *testing.T) {
	r := newTestRegistry()
	_, err := mapping.Map[*withNested](r, mapping.Raw{
		"field1":      "foo",
		"fieldNested": map[string]any{"fieldB": "baz"},
	})
	var outer *mapping.RequiredFieldError
	if !errors.As(err, &outer) {
		t.Fatalf("expected *RequiredFieldError, got %v", err)
	}
	if outer.Source != "fieldNested" || outer.Type != "withNested" {
		t.Fatalf("outer error = %+v", outer)
	}
	var inner *mapping.RequiredFieldError
	if !errors.As(outer.Err, &inner) || inner.Source != "fieldA" {
		t.Fatalf("expected inner fieldA failure, got %v", outer.Err)
	}
}

func TestMap_ListOfPrimitives(t *testing.T) {
	r := newTestRegistry()
	got, err := mapping.Map[*listHolder](r, mapping.Raw{"listA": []any{0.0, 1.0, "2", 3, 4.0}})
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	if !reflect.DeepEqual(got.ListA, []int{0, 1, 2, 3, 4}) {
		t.Fatalf("ListA = %v", got.ListA)
	}
}

func TestMap_ListOfNestedObjects(t *testing.T) {
	r := newTestRegistry()
	got, err := mapping.Map[*listOfFlat](r, mapping.Raw{
		"listNested": []any{map[string]any{"field1": "foo", "field2": "bar"}},
	})
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	if len(got.Items) != 1 {
		t.Fatalf("len = %d, want 1", len(got.Items))
	}
	if want := (&flat{Field1: "foo", Field2: strp("bar")}); !reflect.DeepEqual(got.Items[0], want) {
		t.Fatalf("Items[0] = %+v, want %+v", got.Items[0], want)
	}
}

func TestMap_ListOfRecordsKeepsOrder(t *testing.T) {
	r := newTestRegistry()
	got, err := mapping.Map[*container](r, mapping.Raw{
		"items": []any{map[string]any{"id": "1"}, map[string]any{"id": "2"}},
	})
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	if len(got.Items) != 2 || got.Items[0].ID != "1" || got.Items[1].ID != "2" {
		t.Fatalf("unexpected items: %+v", got.Items)
	}
}

func TestMap_ListOfRecordsCount(t *testing.T) {
	r := newTestRegistry()
	for _, n := range []int{0, 1, 5, 40} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			data := make([]any, n)
			for i := range data {
				data[i] = map[string]any{"id": float64(i)}
			}
			got, err := mapping.Map[*container](r, mapping.Raw{"items": data})
			if err != nil {
				t.Fatalf("Map: %v", err)
			}
			if len(got.Items) != n {
				t.Fatalf("len = %d, want %d", len(got.Items), n)
			}
			for i, it := range got.Items {
				if it.ID != fmt.Sprint(i) {
					t.Fatalf("Items[%d].ID = %q", i, it.ID)
				}
			}
		})
	}
}

func TestMap_RecursiveSchema(t *testing.T) {
	r := newTestRegistry()
	for _, depth := range []int{1, 2, 5} {
		t.Run(fmt.Sprint(depth), func(t *testing.T) {
			raw := mapping.Raw{"id": depth}
			for d := depth - 1; d >= 1; d-- {
				raw = mapping.Raw{"id": d, "children": []any{raw}}
			}
			got, err := mapping.Map[*node](r, raw)
			if err != nil {
				t.Fatalf("Map: %v", err)
			}
			levels := 1
			for cur := got; len(cur.Children) > 0; cur = cur.Children[0] {
				levels++
				if cur.ID != fmt.Sprint(levels-1) {
					t.Fatalf("level %d has id %q", levels-1, cur.ID)
				}
			}
			if levels != depth {
				t.Fatalf("depth = %d, want %d", levels, depth)
			}
		})
	}
}

func TestMap_EndToEndItem(t *testing.T) {
	r := newTestRegistry()
	got, err := mapping.Map[*item](r, mapping.Raw{"id": "m1", "name": "Foo", "price": "800"})
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	want := &item{ID: "m1", Name: "Foo", Price: 800}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestMap_Idempotent(t *testing.T) {
	r := newTestRegistry()
	raw := mapping.Raw{"field1": "foo", "field2": "bar"}
	a, err := mapping.Map[*flat](r, raw)
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	b, err := mapping.Map[*flat](r, raw)
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("records differ: %+v vs %+v", a, b)
	}
	if a == b || a.Field2 == b.Field2 {
		t.Fatal("records must be independently owned")
	}
}

func TestMap_ConfigurationError(t *testing.T) {
	r := mapping.NewRegistry()
	_, err := mapping.Map[*flat](r, mapping.Raw{"field1": "foo"})
	if !errors.Is(err, mapping.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	if errors.Is(err, mapping.ErrRequiredFieldMissing) {
		t.Fatal("configuration errors are not data errors")
	}
}

func TestMap_NestedConfigurationError(t *testing.T) {
	r := newTestRegistry()
	mapping.Unregister[*nestedInner](r)
	_, err := mapping.Map[*withNested](r, mapping.Raw{
		"field1":      "foo",
		"fieldNested": map[string]any{"fieldA": "bar"},
	})
	if !errors.Is(err, mapping.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestMapWith_OverrideWithoutRegistration(t *testing.T) {
	r := mapping.NewRegistry()
	got, err := mapping.MapWith(r, mapping.Raw{"field1": "foo"}, flatDef)
	if err != nil {
		t.Fatalf("MapWith: %v", err)
	}
	if got.Field1 != "foo" {
		t.Fatalf("Field1 = %q", got.Field1)
	}
}

func TestMapWith_OverrideTakesPrecedence(t *testing.T) {
	r := newTestRegistry()
	alt := &mapping.Definition[*flat]{
		Required: []mapping.Property{
			mapping.Prop("other", "field_1", mapping.As[string]("other")),
		},
		Build: flatDef.Build,
	}
	got, err := mapping.MapWith(r, mapping.Raw{"other": "x", "field1": "y"}, alt)
	if err != nil {
		t.Fatalf("MapWith: %v", err)
	}
	if got.Field1 != "x" {
		t.Fatalf("Field1 = %q, want x", got.Field1)
	}
}

func TestRegistry_CloneIsolatesSubstitution(t *testing.T) {
	base := newTestRegistry()
	clone := base.Clone()
	mapping.Register(clone, &mapping.Definition[*flat]{
		Required: []mapping.Property{
			mapping.Prop("f", "field_1", mapping.As[string]("f")),
		},
		Build: flatDef.Build,
	})

	if _, err := mapping.Map[*flat](clone, mapping.Raw{"f": "ok"}); err != nil {
		t.Fatalf("clone Map: %v", err)
	}
	if _, err := mapping.Map[*flat](base, mapping.Raw{"f": "ok"}); !errors.Is(err, mapping.ErrRequiredFieldMissing) {
		t.Fatalf("base registry must be unchanged, got %v", err)
	}
	if base.Len() != clone.Len() {
		t.Fatalf("Len mismatch: %d vs %d", base.Len(), clone.Len())
	}
}

func TestRegistry_LastWriteWins(t *testing.T) {
	r := mapping.NewRegistry()
	mapping.Register(r, flatDef)
	mapping.Register(r, listHolderDef)
	second := &mapping.Definition[*flat]{Build: flatDef.Build}
	mapping.Register(r, second)
	got, ok := mapping.Lookup[*flat](r)
	if !ok || got != second {
		t.Fatal("expected the second definition")
	}
	if _, ok := mapping.Lookup[*node](r); ok {
		t.Fatal("unexpected definition for node")
	}
}

func TestMap_BuildTypeMismatchIsConstructionError(t *testing.T) {
	r := mapping.NewRegistry()
	def := &mapping.Definition[*flat]{
		Required: []mapping.Property{
			mapping.Prop("field1", "field_1", mapping.As[int]("field1")),
		},
		Build: flatDef.Build,
	}
	_, err := mapping.MapWith(r, mapping.Raw{"field1": 3}, def)
	var ce *mapping.ConstructionError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ConstructionError, got %v", err)
	}
}

func TestMap_ExtractorPanicIsFailure(t *testing.T) {
	r := mapping.NewRegistry()
	boom := mapping.Mapped("field2", func(v string) (string, error) {
		var m map[string]int
		m["x"] = 1
		return v, nil
	})
	def := &mapping.Definition[*flat]{
		Required: []mapping.Property{mapping.Prop("field1", "field_1", mapping.As[string]("field1"))},
		Optional: []mapping.Property{mapping.Prop("field2", "field_2", boom)},
		Build:    flatDef.Build,
	}
	got, err := mapping.MapWith(r, mapping.Raw{"field1": "a", "field2": "b"}, def)
	if err != nil {
		t.Fatalf("optional panic must not fail the record: %v", err)
	}
	if got.Field2 != nil {
		t.Fatalf("Field2 = %q, want nil", *got.Field2)
	}

	req := &mapping.Definition[*flat]{
		Required: []mapping.Property{mapping.Prop("field2", "field_1", boom)},
		Build:    flatDef.Build,
	}
	if _, err := mapping.MapWith(r, mapping.Raw{"field2": "b"}, req); !errors.Is(err, mapping.ErrRequiredFieldMissing) {
		t.Fatalf("required panic must fail the record, got %v", err)
	}
}

type capRecord struct {
	Cap   any
	Child *capChild
}

type capChild struct {
	Cap any
}

func TestMap_CapabilityReachesNestedRecords(t *testing.T) {
	r := mapping.NewRegistry()
	mapping.Register(r, &mapping.Definition[*capChild]{
		Build: func(f *mapping.Fields) (*capChild, error) { return &capChild{Cap: f.Capability()}, nil },
	})
	mapping.Register(r, &mapping.Definition[*capRecord]{
		Optional: []mapping.Property{mapping.Prop("child", "child", mapping.Nested[*capChild]("child"))},
		Build: func(f *mapping.Fields) (*capRecord, error) {
			return &capRecord{Cap: f.Capability(), Child: mapping.Get[*capChild](f, "child")}, nil
		},
	})

	token := &struct{ name string }{"client"}
	got, err := mapping.Map[*capRecord](r, mapping.Raw{"child": map[string]any{}}, mapping.WithCapability(token))
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	if got.Cap != token || got.Child == nil || got.Child.Cap != token {
		t.Fatalf("capability not propagated: %+v", got)
	}
}

func TestMap_Concurrent(t *testing.T) {
	r := newTestRegistry()
	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := mapping.Map[*container](r, mapping.Raw{
				"items": []any{map[string]any{"id": i}},
			})
			if err != nil {
				errs <- err
				return
			}
			if got.Items[0].ID != fmt.Sprint(i) {
				errs <- fmt.Errorf("got id %q, want %d", got.Items[0].ID, i)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
