package logger

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/dmitrymomot/ppp/pkg/document"
)

// Redacted replaces the value of credential-like attributes.
const Redacted = "[REDACTED]"

// ContextExtractor extracts a slog attribute from context.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

// Decorator wraps a slog.Handler. It injects attributes from context and
// redacts credential-like attributes before delegating.
type Decorator struct {
	next       slog.Handler
	extractors []ContextExtractor
	extra      []string
}

// NewDecorator wraps next. Nil extractors are dropped.
func NewDecorator(next slog.Handler, extractors ...ContextExtractor) *Decorator {
	return &Decorator{
		next: next,
		extractors: slices.DeleteFunc(slices.Clone(extractors), func(ex ContextExtractor) bool {
			return ex == nil
		}),
	}
}

func (h *Decorator) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *Decorator) Handle(ctx context.Context, rec slog.Record) error {
	out := slog.NewRecord(rec.Time, rec.Level, rec.Message, rec.PC)
	rec.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.redact(a))
		return true
	})
	for _, ex := range h.extractors {
		if attr, ok := ex(ctx); ok {
			out.AddAttrs(h.redact(attr))
		}
	}
	return h.next.Handle(ctx, out)
}

func (h *Decorator) WithAttrs(attrs []slog.Attr) slog.Handler {
	clean := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		clean[i] = h.redact(a)
	}
	return &Decorator{
		next:       h.next.WithAttrs(clean),
		extractors: h.extractors,
		extra:      h.extra,
	}
}

func (h *Decorator) WithGroup(name string) slog.Handler {
	return &Decorator{
		next:       h.next.WithGroup(name),
		extractors: h.extractors,
		extra:      h.extra,
	}
}

func (h *Decorator) redact(a slog.Attr) slog.Attr {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		group := v.Group()
		clean := make([]slog.Attr, len(group))
		for i, ga := range group {
			clean[i] = h.redact(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(clean...)}
	}
	if h.sensitive(a.Key) {
		return slog.String(a.Key, Redacted)
	}
	return slog.Attr{Key: a.Key, Value: v}
}

func (h *Decorator) sensitive(key string) bool {
	if document.IsSecretField(key) {
		return true
	}
	return slices.ContainsFunc(h.extra, func(k string) bool {
		return strings.EqualFold(k, key)
	})
}
