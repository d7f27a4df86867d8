package handlers

import (
	"github.com/go-chi/chi/v5"
)

func registerHostRoutes(r chi.Router) {
	r.Get("/hosts", ListHostsHandler)
	r.Post("/hosts", CreateHostHandler)
	r.Put("/hosts/{hostID}", UpdateHostHandler)
	r.Delete("/hosts/{hostID}", DeleteHostHandler)
}
