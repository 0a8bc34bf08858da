package logctx

import (
	"context"
	"log/slog"
)

// Handler decorates records with the request attributes stored in the
// context by WithRequestData.
type Handler struct {
	slog.Handler
}

func (h Handler) Handle(ctx context.Context, r slog.Record) error {
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		r.AddAttrs(slog.Group("req",
			slog.String("id", rd.RequestID),
			slog.String("endpoint", rd.Endpoint),
			slog.String("method", rd.Method),
			slog.String("url", rd.URL),
		))
	}

	return h.Handler.Handle(ctx, r)
}

func (h Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return Handler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h Handler) WithGroup(name string) slog.Handler {
	return Handler{Handler: h.Handler.WithGroup(name)}
}

// Wrap returns l with its handler wrapped in a Handler. Wrapping an already
// wrapped logger is a no-op.
func Wrap(l *slog.Logger) *slog.Logger {
	if _, ok := l.Handler().(Handler); ok {
		return l
	}
	return slog.New(Handler{Handler: l.Handler()})
}

type requestDataKey struct{}

type RequestData struct {
	RequestID string
	Endpoint  string
	Method    string
	URL       string
}

func WithRequestData(ctx context.Context, data *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, data)
}
