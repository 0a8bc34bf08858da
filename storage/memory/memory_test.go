package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ggoodman/mercapi-go/storage"
	"github.com/ggoodman/mercapi-go/storage/storagetest"
)

func TestStorage(t *testing.T) {
	storagetest.RunStorageTests(t, func(t *testing.T) storage.Storage {
		s, err := New(100, 0)
		if err != nil {
			t.Fatalf("New() failed: %v", err)
		}
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestNew_InvalidSize(t *testing.T) {
	if _, err := New(0, 0); err == nil {
		t.Fatal("expected error for zero size")
	}
}

func TestEviction(t *testing.T) {
	s, err := New(2, 0)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_ = s.Set(ctx, fmt.Sprintf("k%d", i), []byte("x"))
	}
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	if e, _ := s.Get(ctx, "k0"); e != nil {
		t.Fatal("oldest entry should have been evicted")
	}
}

func TestGetReturnsCopy(t *testing.T) {
	s, _ := New(10, 0)
	defer s.Close()

	ctx := context.Background()
	_ = s.Set(ctx, "k", []byte("abc"))
	e, _ := s.Get(ctx, "k")
	e.Payload[0] = 'z'

	again, _ := s.Get(ctx, "k")
	if string(again.Payload) != "abc" {
		t.Fatalf("stored payload mutated: %q", again.Payload)
	}
}

func TestSweep(t *testing.T) {
	s, _ := New(10, 20*time.Millisecond)
	defer s.Close()

	_ = s.Set(context.Background(), "k", []byte("x"), storage.WithTTL(10*time.Millisecond))
	deadline := time.Now().Add(time.Second)
	for s.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("sweeper did not remove expired entry")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
