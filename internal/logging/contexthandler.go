package logging

import (
	"context"
	"log/slog"
)

// ContextProvider returns attributes describing the live tour state. It is
// called once per record and must be safe for concurrent use.
type ContextProvider func() []slog.Attr

// TourAttrs builds the attributes a ContextProvider usually reports.
// Empty values are left out.
func TourAttrs(site, flight string) []slog.Attr {
	attrs := make([]slog.Attr, 0, 2)
	if site != "" {
		attrs = append(attrs, slog.String("site", site))
	}
	if flight != "" {
		attrs = append(attrs, slog.String("flight", flight))
	}
	return attrs
}

// ContextHandler wraps another handler and injects dynamic context attributes.
type ContextHandler struct {
	inner    slog.Handler
	provider ContextProvider
}

// NewContextHandler creates a handler that adds dynamic context to each record.
func NewContextHandler(inner slog.Handler, provider ContextProvider) *ContextHandler {
	return &ContextHandler{
		inner:    inner,
		provider: provider,
	}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.provider != nil {
		if attrs := h.provider(); len(attrs) > 0 {
			r = r.Clone()
			r.AddAttrs(attrs...)
		}
	}
	return h.inner.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{
		inner:    h.inner.WithAttrs(attrs),
		provider: h.provider,
	}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &ContextHandler{
		inner:    h.inner.WithGroup(name),
		provider: h.provider,
	}
}
