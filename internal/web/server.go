package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jaminalder/codex-renju/internal/app"
	"github.com/jaminalder/codex-renju/internal/config"
)

// NewServer wires the JSON API and returns an http.Handler. It also installs
// the broadcast renderer on s.
func NewServer(s *app.Service, cfg *config.Store) http.Handler {
	if cfg == nil {
		cfg = config.NewStore(config.DefaultConfig())
	}
	h := &handlers{svc: s, cfg: cfg}
	s.SetRenderer(renderPosition)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", h.ping)
		r.Post("/evaluate", h.evaluate)
		r.Route("/positions", func(r chi.Router) {
			r.Post("/", h.create)
			r.Get("/", h.list)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.view)
				r.Delete("/", h.remove)
				r.Post("/stones", h.setStone)
				r.Post("/play", h.play)
				r.Post("/undo", h.undo)
				r.Get("/analysis", h.analysis)
				r.Get("/events", h.events)
				r.Get("/ws", h.ws)
			})
		})
		r.Route("/libraries", func(r chi.Router) {
			r.Post("/", h.importLibrary)
			r.Get("/", h.libraries)
			r.Get("/{id}/nodes/{index}", h.libraryNode)
		})
	})
	return r
}
