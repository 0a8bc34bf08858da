package logctx

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestHandler_AddsRequestGroup(t *testing.T) {
	var buf bytes.Buffer
	log := Wrap(slog.New(slog.NewTextHandler(&buf, nil)))

	ctx := WithRequestData(context.Background(), &RequestData{
		RequestID: "r-1",
		Endpoint:  "item",
		Method:    "GET",
		URL:       "https://api.example.com/items/get?id=m1",
	})
	log.With("component", "test").InfoContext(ctx, "http.request.start")

	out := buf.String()
	for _, want := range []string{"req.id=r-1", "req.endpoint=item", "req.method=GET", "component=test"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}
}

func TestHandler_NoRequestData(t *testing.T) {
	var buf bytes.Buffer
	log := Wrap(slog.New(slog.NewTextHandler(&buf, nil)))
	log.Info("plain")
	if strings.Contains(buf.String(), "req.") {
		t.Fatalf("unexpected request attrs: %q", buf.String())
	}
}

func TestWrap_Idempotent(t *testing.T) {
	l := Wrap(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	if Wrap(l) != l {
		t.Fatal("wrapping twice should return the same logger")
	}
}
