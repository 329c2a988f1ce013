package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// Switcher hands out loggers whose output format can be changed after they were
// created, so commands can be built before flags are parsed.
type Switcher struct {
	w        io.Writer
	level    slog.Leveler
	colorize bool

	mu      sync.RWMutex
	handler slog.Handler
}

// NewSwitcher starts in line mode, colorized when colorize is set.
func NewSwitcher(w io.Writer, level slog.Leveler, colorize bool) *Switcher {
	s := &Switcher{w: w, level: level, colorize: colorize}
	s.SetMode(s.lineMode())
	return s
}

// SetMode replaces the handler used by every logger from this switcher.
func (s *Switcher) SetMode(mode Mode) {
	handler := New(mode, s.w, s.level).Handler()
	s.mu.Lock()
	s.handler = handler
	s.mu.Unlock()
}

// SetFormat selects the format by name: "cli" (or "text") or "json".
func (s *Switcher) SetFormat(name string) error {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "cli", "text":
		s.SetMode(s.lineMode())
	case "json":
		s.SetMode(ModeJSON)
	default:
		return fmt.Errorf("unknown log format %q", name)
	}
	return nil
}

// Logger returns a logger that follows the switcher's current format.
func (s *Switcher) Logger() *slog.Logger {
	return slog.New(&switchHandler{switcher: s})
}

func (s *Switcher) lineMode() Mode {
	if s.colorize {
		return ModeColor
	}
	return ModeCLI
}

func (s *Switcher) current() slog.Handler {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.handler
}

// switchHandler replays WithAttrs and WithGroup onto whichever handler is current.
type switchHandler struct {
	switcher *Switcher
	derive   []func(slog.Handler) slog.Handler
}

func (h *switchHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.switcher.current().Enabled(ctx, level)
}

func (h *switchHandler) Handle(ctx context.Context, record slog.Record) error {
	handler := h.switcher.current()
	for _, derive := range h.derive {
		handler = derive(handler)
	}
	return handler.Handle(ctx, record)
}

func (h *switchHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.with(func(next slog.Handler) slog.Handler { return next.WithAttrs(attrs) })
}

func (h *switchHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return h.with(func(next slog.Handler) slog.Handler { return next.WithGroup(name) })
}

func (h *switchHandler) with(derive func(slog.Handler) slog.Handler) *switchHandler {
	chain := make([]func(slog.Handler) slog.Handler, len(h.derive), len(h.derive)+1)
	copy(chain, h.derive)
	return &switchHandler{switcher: h.switcher, derive: append(chain, derive)}
}
