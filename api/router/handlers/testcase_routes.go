package handlers

import (
	"github.com/go-chi/chi/v5"
)

func registerTestCaseRoutes(r chi.Router) {
	r.Route("/tests", func(subRouter chi.Router) {
		subRouter.Get("/", ListTestCasesHandler)
		subRouter.Post("/", CreateTestCaseHandler)
		subRouter.Post("/reorder", ReorderTestCasesHandler)

		subRouter.Route("/{testID}", func(testRouter chi.Router) {
			testRouter.Get("/", GetTestCaseHandler)
			testRouter.Put("/", UpdateTestCaseHandler)
			testRouter.Delete("/", DeleteTestCaseHandler)
			testRouter.Post("/clone", CloneTestCaseHandler)

			testRouter.Get("/hosts", ListTestCaseHostsHandler)
			testRouter.Post("/hosts", AddTestCaseHostHandler)
			testRouter.Delete("/hosts", RemoveTestCaseHostHandler)

			registerSupportingDataRoutes(testRouter)
		})
	})
}
