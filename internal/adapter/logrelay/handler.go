package logrelay

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
)

// Attribute keys that map onto the collector's stack and package fields.
const (
	StackKey   = "stack"
	PackageKey = "package"

	defaultStack = "app"
)

// Handler passes records to the wrapped handler and enqueues a copy for the
// collector. Only top-level attributes are inspected for stack and package;
// every other attribute is appended to the message as key=value.
type Handler struct {
	next           slog.Handler
	client         *Client
	defaultPackage string
	stack          string
	pkg            string
	prefix         string
	extra          []string
}

func NewHandler(next slog.Handler, client *Client, defaultPackage string) *Handler {
	return &Handler{
		next:           next,
		client:         client,
		defaultPackage: defaultPackage,
	}
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	stack, pkg := h.stack, h.pkg
	fields := append([]string(nil), h.extra...)

	r.Attrs(func(a slog.Attr) bool {
		if h.prefix == "" {
			switch a.Key {
			case StackKey:
				stack = a.Value.String()
				return true
			case PackageKey:
				pkg = a.Value.String()
				return true
			}
		}
		fields = appendField(fields, h.prefix, a)
		return true
	})

	if stack == "" {
		stack = defaultStack
	}
	if pkg == "" {
		pkg = h.defaultPackage
	}

	h.client.Enqueue(Entry{
		Stack:     stack,
		Level:     levelName(r.Level),
		Package:   pkg,
		Message:   message(r.Message, fields),
		Timestamp: r.Time.UTC(),
	})

	return h.next.Handle(ctx, r)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h2 := *h
	h2.next = h.next.WithAttrs(attrs)

	h2.extra = append([]string(nil), h.extra...)

	for _, a := range attrs {
		if h.prefix == "" {
			switch a.Key {
			case StackKey:
				h2.stack = a.Value.String()
				continue
			case PackageKey:
				h2.pkg = a.Value.String()
				continue
			}
		}
		h2.extra = appendField(h2.extra, h.prefix, a)
	}

	return &h2
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	h2 := *h
	h2.next = h.next.WithGroup(name)
	h2.prefix = h.prefix + name + "."

	return &h2
}

// appendField renders a as key=value, flattening groups into dotted keys.
func appendField(fields []string, prefix string, a slog.Attr) []string {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return fields
	}

	if a.Value.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			fields = appendField(fields, p, ga)
		}
		return fields
	}

	return append(fields, prefix+a.Key+"="+quote(a.Value.String()))
}

func quote(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}

func message(msg string, fields []string) string {
	if len(fields) == 0 {
		return msg
	}
	return msg + " " + strings.Join(fields, " ")
}

// levelName maps slog levels onto the collector's level names.
func levelName(l slog.Level) string {
	switch {
	case l < slog.LevelInfo:
		return "debug"
	case l < slog.LevelWarn:
		return "info"
	case l < slog.LevelError:
		return "warn"
	default:
		return "error"
	}
}
