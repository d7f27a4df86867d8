package handlers

import (
	"github.com/go-chi/chi/v5"
)

func registerSupportingDataRoutes(r chi.Router) {
	r.Route("/data", func(subRouter chi.Router) {
		subRouter.Get("/", ListSupportingDataHandler)
		subRouter.Post("/", UploadSupportingDataHandler)
		subRouter.Post("/reorder", ReorderSupportingDataHandler)
		subRouter.Put("/{dataID}", UpdateSupportingDataHandler)
		subRouter.Delete("/{dataID}", DeleteSupportingDataHandler)
		subRouter.Get("/{dataID}/download", DownloadSupportingDataHandler)
	})
}
