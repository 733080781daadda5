package logging

import (
	"context"
	"log/slog"
	"slices"
	"sync/atomic"
)

type ctxKey struct{}

var defaultLogger atomic.Pointer[slog.Logger]

func init() {
	defaultLogger.Store(slog.Default())
}

// FromContext extracts the logger from context.
// Returns the default logger if no logger is found or ctx is nil.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return defaultLogger.Load()
	}

	if logger, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return logger
	}

	return defaultLogger.Load()
}

// WithContext stores a logger in the context.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// SetDefault sets the default logger used when no logger is in context.
func SetDefault(logger *slog.Logger) {
	defaultLogger.Store(logger)
	slog.SetDefault(logger)
}

// ValueSource is anything that can look up request-scoped values for the
// calling goroutine. *scope.Store satisfies it.
type ValueSource interface {
	Lookup(key string) (any, bool)
}

// ScopeHandler copies selected keys from a ValueSource into every record it
// handles, so a log line emitted anywhere in a request carries the request's
// identifiers without the logger being threaded through the call chain.
// Scope keys always land at the top level of the record, even on a logger
// opened with WithGroup. Keys already present on the record are left alone.
type ScopeHandler struct {
	root   slog.Handler
	source ValueSource
	keys   []string

	// nested holds WithGroup and WithAttrs calls made after the first group,
	// replayed onto each record so the scope keys stay outside them.
	nested []nestedOp
}

type nestedOp struct {
	group string
	attrs []slog.Attr
}

// NewScopeHandler wraps next with scope enrichment for keys.
func NewScopeHandler(next slog.Handler, source ValueSource, keys ...string) *ScopeHandler {
	return &ScopeHandler{root: next, source: source, keys: keys}
}

// WithScope returns a logger whose records are enriched from source.
func WithScope(logger *slog.Logger, source ValueSource, keys ...string) *slog.Logger {
	return slog.New(NewScopeHandler(logger.Handler(), source, keys...))
}

// Enabled implements slog.Handler.
func (h *ScopeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.root.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *ScopeHandler) Handle(ctx context.Context, r slog.Record) error { //nolint:gocritic // slog.Handler interface requires value
	if len(h.keys) == 0 && len(h.nested) == 0 {
		return h.root.Handle(ctx, r)
	}

	attrs := make([]slog.Attr, 0, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)
		return true
	})

	present := make(map[string]struct{}, len(attrs))
	if len(h.nested) == 0 {
		for _, a := range attrs {
			present[a.Key] = struct{}{}
		}
	}

	// innermost group first
	for i := len(h.nested) - 1; i >= 0; i-- {
		op := h.nested[i]
		if op.group == "" {
			attrs = append(slices.Clone(op.attrs), attrs...)
			continue
		}

		attrs = []slog.Attr{{Key: op.group, Value: slog.GroupValue(attrs...)}}
	}

	out := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	out.AddAttrs(attrs...)

	for _, key := range h.keys {
		if _, ok := present[key]; ok {
			continue
		}

		if v, ok := h.source.Lookup(key); ok {
			out.AddAttrs(slog.Any(key, v))
		}
	}

	return h.root.Handle(ctx, out)
}

// WithAttrs implements slog.Handler.
func (h *ScopeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	if len(h.nested) == 0 {
		return &ScopeHandler{root: h.root.WithAttrs(attrs), source: h.source, keys: h.keys}
	}

	return h.push(nestedOp{attrs: slices.Clone(attrs)})
}

// WithGroup implements slog.Handler.
func (h *ScopeHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	return h.push(nestedOp{group: name})
}

func (h *ScopeHandler) push(op nestedOp) *ScopeHandler {
	nested := make([]nestedOp, len(h.nested), len(h.nested)+1)
	copy(nested, h.nested)

	return &ScopeHandler{
		root:   h.root,
		source: h.source,
		keys:   h.keys,
		nested: append(nested, op),
	}
}
