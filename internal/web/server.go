package web

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jaminalder/voronoi-territory/internal/app"
)

// Option configures the HTTP layer.
type Option func(*handlers)

// WithClock sets the clock driving SSE heartbeats.
func WithClock(c quartz.Clock) Option { return func(h *handlers) { h.clock = c } }

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option { return func(h *handlers) { h.logger = l } }

// NewServer wires routes and returns an http.Handler.
func NewServer(s *app.Service, opts ...Option) http.Handler {
	h := &handlers{
		svc:    s,
		tpl:    loadTemplates(),
		clock:  quartz.NewReal(),
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)
	r.Get("/", h.index)
	r.Post("/game", h.create)
	r.Route("/game/{id}", func(r chi.Router) {
		r.Get("/", h.view)
		r.Get("/state", h.state)
		r.Get("/owner", h.owner)
		r.Post("/place", h.place)
		r.Post("/reset", h.reset)
		r.Get("/events", h.events)
		r.Get("/ws", h.ws)
	})
	return r
}

func (h *handlers) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", ww.Status())
	})
}
