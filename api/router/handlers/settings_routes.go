package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterSettingsRoutes covers the settings row and the lookup tables behind it.
func RegisterSettingsRoutes(r chi.Router) {
	r.Route("/settings", func(subRouter chi.Router) {
		subRouter.Get("/", GetSettingsHandler)
		subRouter.Put("/", UpdateSettingsHandler)
	})

	r.Route("/business-areas", func(subRouter chi.Router) {
		subRouter.Get("/", ListBusinessAreasHandler)
		subRouter.Post("/", CreateBusinessAreaHandler)
		subRouter.Delete("/{areaID}", DeleteBusinessAreaHandler)
	})

	r.Route("/colors", func(subRouter chi.Router) {
		subRouter.Get("/", ListColorsHandler)
		subRouter.Post("/", CreateColorHandler)
		subRouter.Delete("/{colorID}", DeleteColorHandler)
	})

	r.Route("/classifications", func(subRouter chi.Router) {
		subRouter.Get("/", ListClassificationsHandler)
		subRouter.Post("/", CreateClassificationHandler)
		subRouter.Delete("/{legendID}", DeleteClassificationHandler)
	})
}
