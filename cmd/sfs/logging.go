package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/lmittmann/tint"
)

const (
	terminalHandlerName = "terminal"
	fileHandlerName     = "file"
)

// slogManager is a [slog.Handler] fanning records out to a set of named
// handlers, which can be added and removed while logging.
type slogManager struct {
	sync.RWMutex
	handlers map[string]slog.Handler
	attrs    []slog.Attr
	groups   []string
}

func newSlogManager() *slogManager {
	return &slogManager{
		handlers: make(map[string]slog.Handler),
	}
}

func (m *slogManager) Enabled(ctx context.Context, level slog.Level) bool {
	m.RLock()
	defer m.RUnlock()

	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}

	return false
}

// Handle passes the record to every handler enabled for its level. The
// errors of all failing handlers are returned joined.
func (m *slogManager) Handle(ctx context.Context, r slog.Record) error {
	m.RLock()
	defer m.RUnlock()

	var errs []error
	for name, h := range m.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}

		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	return errors.Join(errs...)
}

func (m *slogManager) WithAttrs(attrs []slog.Attr) slog.Handler {
	m.RLock()
	defer m.RUnlock()

	derived := &slogManager{
		handlers: make(map[string]slog.Handler, len(m.handlers)),
		attrs:    append(append([]slog.Attr{}, m.attrs...), attrs...),
		groups:   append([]string{}, m.groups...),
	}

	for name, h := range m.handlers {
		derived.handlers[name] = h.WithAttrs(attrs)
	}

	return derived
}

func (m *slogManager) WithGroup(name string) slog.Handler {
	m.RLock()
	defer m.RUnlock()

	derived := &slogManager{
		handlers: make(map[string]slog.Handler, len(m.handlers)),
		attrs:    append([]slog.Attr{}, m.attrs...),
		groups:   append(append([]string{}, m.groups...), name),
	}

	for handlerName, h := range m.handlers {
		derived.handlers[handlerName] = h.WithGroup(name)
	}

	return derived
}

// AddHandler adds a handler under the given name, replacing any handler of
// the same name. Attributes and groups of the manager are applied to it.
func (m *slogManager) AddHandler(name string, handler slog.Handler) {
	m.Lock()
	defer m.Unlock()

	h := handler
	if len(m.attrs) > 0 {
		h = h.WithAttrs(m.attrs)
	}

	for _, group := range m.groups {
		h = h.WithGroup(group)
	}

	m.handlers[name] = h
}

func (m *slogManager) RemoveHandler(name string) {
	m.Lock()
	defer m.Unlock()

	delete(m.handlers, name)
}

// setupLogging installs a [slogManager] as the default logger, writing to
// the terminal through tint at the given level. The returned manager can be
// extended with further handlers.
func setupLogging(w io.Writer, level slog.Leveler) *slogManager {
	mgr := newSlogManager()
	mgr.AddHandler(terminalHandlerName, tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))

	slog.SetDefault(slog.New(mgr))

	return mgr
}

// addLogFile adds a JSON handler writing to the file at path. The returned
// function removes the handler and closes the file.
func addLogFile(mgr *slogManager, path string, level slog.Leveler) (func() error, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644) //nolint:mnd
	if err != nil {
		return nil, fmt.Errorf("(main-logfile) %w", err)
	}

	mgr.AddHandler(fileHandlerName, slog.NewJSONHandler(f, &slog.HandlerOptions{
		Level: level,
	}))

	return func() error {
		mgr.RemoveHandler(fileHandlerName)

		return f.Close()
	}, nil
}
