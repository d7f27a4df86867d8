package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterMissionRoutes sets up mission CRUD and everything nested below a mission.
func RegisterMissionRoutes(r chi.Router) {
	r.Route("/missions", func(subRouter chi.Router) {
		subRouter.Get("/", ListMissionsHandler)
		subRouter.Post("/", CreateMissionHandler)

		subRouter.Route("/{missionID}", func(missionRouter chi.Router) {
			missionRouter.Get("/", GetMissionHandler)
			missionRouter.Put("/", UpdateMissionHandler)
			missionRouter.Delete("/", DeleteMissionHandler)

			registerReportRoutes(missionRouter)
			registerHostRoutes(missionRouter)
			registerTestCaseRoutes(missionRouter)
		})
	})
}
