package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// UserRoutes returns the /users router
func (h *Handler) UserRoutes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/register", h.Register)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/me", h.Me)
	})

	return r
}
