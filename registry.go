package hxsite

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
)

// ErrorHandler writes the response for a failed component request.
type ErrorHandler func(http.ResponseWriter, *http.Request, error)

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger used for request failures.
func WithLogger(l *slog.Logger) RegistryOption {
	return func(reg *Registry) {
		if l != nil {
			reg.logger = l
		}
	}
}

// WithErrorHandler replaces the default error mapping.
func WithErrorHandler(h ErrorHandler) RegistryOption {
	return func(reg *Registry) {
		reg.onError = h
	}
}

// Registry mounts components under their prefixes and serves them.
type Registry struct {
	mu         sync.RWMutex
	mux        *http.ServeMux
	encoder    *Encoder
	components map[string]HXComponent
	logger     *slog.Logger
	onError    ErrorHandler
}

// NewRegistry creates a registry whose props are protected with secret.
func NewRegistry(secret []byte, opts ...RegistryOption) (*Registry, error) {
	enc, err := NewEncoder(secret)
	if err != nil {
		return nil, fmt.Errorf("hxsite: create encoder: %w", err)
	}
	reg := &Registry{
		mux:        http.NewServeMux(),
		encoder:    enc,
		components: make(map[string]HXComponent),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(reg)
	}
	return reg, nil
}

// Encoder returns the registry's props encoder.
func (reg *Registry) Encoder() *Encoder {
	return reg.encoder
}

// Add registers components. Each must embed *Component[P] and implement
// Hydrater[P] and Renderer[P]; a second component with the same prefix is
// rejected.
func (reg *Registry) Add(components ...any) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	for _, comp := range components {
		m, ok := comp.(mountable)
		if !ok {
			return fmt.Errorf("hxsite: %T does not embed *hxsite.Component", comp)
		}
		prefix := m.HXPrefix()
		if _, exists := reg.components[prefix]; exists {
			return fmt.Errorf("hxsite: prefix collision for %q", prefix)
		}
		if err := m.mount(comp, reg); err != nil {
			return err
		}
		reg.components[prefix] = m
		reg.mux.HandleFunc(prefix+"/", m.HXServeHTTP)
		reg.logger.Debug("component registered", "prefix", prefix)
	}
	return nil
}

// Handler returns the handler for component routes; mount it at "/_c/".
// Mutating requests must carry HX-Request, which a cross-site form post
// cannot set.
func (reg *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead && !IsHTMX(r) {
			http.Error(w, "Forbidden: HTMX request required", http.StatusForbidden)
			return
		}
		reg.mux.ServeHTTP(w, r)
	})
}

func (reg *Registry) handleError(w http.ResponseWriter, r *http.Request, err error) {
	if reg.onError != nil {
		reg.onError(w, r, err)
		return
	}
	DefaultErrorHandler(reg.logger)(w, r, err)
}

// DefaultErrorHandler maps component errors to responses. An expired page
// view answers 286 so polling sections stop, with a note asking for a
// reload.
func DefaultErrorHandler(logger *slog.Logger) ErrorHandler {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		switch {
		case IsExpired(err):
			logger.Info("page view expired", "path", r.URL.Path)
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(StatusStopPolling)
			io.WriteString(w, `<p class="section-expired">This section has expired. <a href="">Reload the page</a> to continue.</p>`)
		case IsNotFound(err):
			http.Error(w, "Not found", http.StatusNotFound)
		case IsBadProps(err):
			logger.Warn("rejected props", "path", r.URL.Path, "err", err)
			http.Error(w, "Bad request", http.StatusBadRequest)
		case errors.Is(err, ErrHydrationFailed):
			logger.Error("hydration failed", "path", r.URL.Path, "err", err)
			http.Error(w, "Internal error", http.StatusInternalServerError)
		default:
			logger.Error("component request failed", "path", r.URL.Path, "err", err)
			http.Error(w, "Internal error", http.StatusInternalServerError)
		}
	}
}
