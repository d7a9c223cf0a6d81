package card

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns the /cards router. The use endpoint stays outside the
// auth group: the RFID reader client has no credentials, so it is rate
// limited instead.
func (h *Handler) Routes(authMiddleware, useLimiter func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.With(useLimiter).Post("/uid/{uid}/use", h.Use)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{id}", h.GetByID)
		r.Get("/uid/{uid}", h.GetByUID)
		r.Put("/{id}", h.Update)
		r.Post("/{id}/add-balance", h.AddBalance)
		r.Delete("/{id}", h.Delete)
	})

	return r
}

// TransactionRoutes returns the /transactions router
func (h *Handler) TransactionRoutes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Get("/{cardID}", h.ListTransactions)
	return r
}
