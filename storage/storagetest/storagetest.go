// Package storagetest holds the conformance suite every storage.Storage
// backend must pass.
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/ggoodman/mercapi-go/storage"
)

// Factory creates a fresh, empty Storage for one subtest.
type Factory func(t *testing.T) storage.Storage

// RunStorageTests runs the complete Storage test suite against the provided factory.
func RunStorageTests(t *testing.T, factory Factory) {
	t.Run("SetAndGet", func(t *testing.T) { testSetAndGet(t, factory) })
	t.Run("GetMissing", func(t *testing.T) { testGetMissing(t, factory) })
	t.Run("Overwrite", func(t *testing.T) { testOverwrite(t, factory) })
	t.Run("TTL", func(t *testing.T) { testTTL(t, factory) })
	t.Run("NamespaceIsolation", func(t *testing.T) { testNamespaceIsolation(t, factory) })
	t.Run("DeleteKey", func(t *testing.T) { testDeleteKey(t, factory) })
	t.Run("DeleteNamespace", func(t *testing.T) { testDeleteNamespace(t, factory) })
}

func testSetAndGet(t *testing.T, factory Factory) {
	s := factory(t)
	ctx := context.Background()

	if err := s.Set(ctx, "k", []byte(`{"data":1}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	e, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if e == nil {
		t.Fatal("expected entry")
	}
	if string(e.Payload) != `{"data":1}` {
		t.Fatalf("payload = %q", e.Payload)
	}
	if e.StoredAt.IsZero() {
		t.Fatal("StoredAt not set")
	}
	if e.ExpiresAt != nil {
		t.Fatalf("unexpected expiry %v", e.ExpiresAt)
	}
}

func testGetMissing(t *testing.T, factory Factory) {
	s := factory(t)
	e, err := s.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if e != nil {
		t.Fatalf("expected nil entry, got %+v", e)
	}
}

func testOverwrite(t *testing.T, factory Factory) {
	s := factory(t)
	ctx := context.Background()

	_ = s.Set(ctx, "k", []byte("one"))
	_ = s.Set(ctx, "k", []byte("two"))
	e, err := s.Get(ctx, "k")
	if err != nil || e == nil {
		t.Fatalf("Get: %v %v", e, err)
	}
	if string(e.Payload) != "two" {
		t.Fatalf("payload = %q", e.Payload)
	}
}

func testTTL(t *testing.T, factory Factory) {
	s := factory(t)
	ctx := context.Background()

	if err := s.Set(ctx, "short", []byte("x"), storage.WithTTL(50*time.Millisecond)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	e, err := s.Get(ctx, "short")
	if err != nil || e == nil {
		t.Fatalf("expected live entry: %v %v", e, err)
	}
	if e.ExpiresAt == nil {
		t.Fatal("ExpiresAt not set")
	}

	time.Sleep(150 * time.Millisecond)

	e, err = s.Get(ctx, "short")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if e != nil {
		t.Fatal("expected expired entry to be gone")
	}
}

func testNamespaceIsolation(t *testing.T, factory Factory) {
	s := factory(t)
	ctx := context.Background()

	_ = s.Set(ctx, "k", []byte("item"), storage.WithEndpoint("item"))
	_ = s.Set(ctx, "k", []byte("profile"), storage.WithEndpoint("profile"))
	_ = s.Set(ctx, "k", []byte("global"))

	for _, tc := range []struct {
		opts []storage.Option
		want string
	}{
		{[]storage.Option{storage.WithEndpoint("item")}, "item"},
		{[]storage.Option{storage.WithEndpoint("profile")}, "profile"},
		{nil, "global"},
	} {
		e, err := s.Get(ctx, "k", tc.opts...)
		if err != nil || e == nil {
			t.Fatalf("Get(%s): %v %v", tc.want, e, err)
		}
		if string(e.Payload) != tc.want {
			t.Fatalf("payload = %q, want %q", e.Payload, tc.want)
		}
	}

	e, _ := s.Get(ctx, "k", storage.WithEndpoint("items"))
	if e != nil {
		t.Fatal("unexpected entry in unrelated namespace")
	}
}

func testDeleteKey(t *testing.T, factory Factory) {
	s := factory(t)
	ctx := context.Background()

	_ = s.Set(ctx, "a", []byte("1"), storage.WithEndpoint("item"))
	_ = s.Set(ctx, "b", []byte("2"), storage.WithEndpoint("item"))

	if err := s.Delete(ctx, storage.WithEndpoint("item"), storage.WithKey("a")); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if e, _ := s.Get(ctx, "a", storage.WithEndpoint("item")); e != nil {
		t.Fatal("a should be deleted")
	}
	if e, _ := s.Get(ctx, "b", storage.WithEndpoint("item")); e == nil {
		t.Fatal("b should remain")
	}
}

func testDeleteNamespace(t *testing.T, factory Factory) {
	s := factory(t)
	ctx := context.Background()

	_ = s.Set(ctx, "a", []byte("1"), storage.WithEndpoint("item"))
	_ = s.Set(ctx, "b", []byte("2"), storage.WithEndpoint("item"))
	_ = s.Set(ctx, "a", []byte("3"), storage.WithEndpoint("profile"))

	if err := s.Delete(ctx, storage.WithEndpoint("item")); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	for _, k := range []string{"a", "b"} {
		if e, _ := s.Get(ctx, k, storage.WithEndpoint("item")); e != nil {
			t.Fatalf("%s should be deleted", k)
		}
	}
	if e, _ := s.Get(ctx, "a", storage.WithEndpoint("profile")); e == nil {
		t.Fatal("profile namespace should be untouched")
	}
}
