package httpapi

import (
	"github.com/go-chi/chi/v5"
)

// Routes mounts the account and health endpoints on a chi router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(SecurityHeaders)

	r.Get("/healthz", h.Health)

	if h.users != nil {
		r.Post("/api/register", h.RegisterUser)
		r.Post("/api/login", h.Login)
	}

	return r
}
