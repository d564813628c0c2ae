package web

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all feed page routes.
func RegisterRoutes(r chi.Router, h *Handlers) {
	r.Get("/", h.RootHandler)

	r.Get("/new", h.FeedHandler)
	r.Get("/new/{page}", h.FeedHandler)
	r.Get("/top", h.FeedHandler)

	r.Get("/search", h.SearchPageHandler)
	r.Post("/search", h.SearchSubmitHandler)

	r.Post("/vote/{linkID}", h.VoteHandler)

	r.Get("/create", h.CreatePageHandler)
	r.Post("/create", h.CreateSubmitHandler)

	r.Get("/login", h.LoginPageHandler)
	r.Post("/login", h.LoginSubmitHandler)
	r.Post("/logout", h.LogoutHandler)

	r.Get("/health", h.HealthHandler)
}
