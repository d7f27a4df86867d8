package cmd

import (
	"context"
	"fmt"

	"missionreport/api/router/handlers"
	"missionreport/config"
	"missionreport/core"
	"missionreport/database"
	"missionreport/logger"
	"missionreport/storage"
)

// Ordering scopes, also used as metric labels.
const (
	scopeTestCases      = "test_cases"
	scopeSupportingData = "supporting_data"
)

// services is everything a command needs on top of the open database.
type services struct {
	testOrder   *core.SortReconciler
	dataOrder   *core.SortReconciler
	reports     *core.ReportAssembler
	attachments *core.AttachmentService
}

func buildServices(ctx context.Context) (*services, error) {
	media, err := storage.New(ctx, &config.AppConfig)
	if err != nil {
		return nil, fmt.Errorf("opening media store: %w", err)
	}
	store := database.Store{}
	s := &services{
		testOrder: core.NewSortReconciler(database.TestOrderStore{}, scopeTestCases),
		dataOrder: core.NewSortReconciler(database.SupportingDataOrderStore{}, scopeSupportingData),
	}
	s.reports = &core.ReportAssembler{
		Store:     store,
		TestOrder: s.testOrder,
		DataOrder: s.dataOrder,
		Media:     media,
		Template:  core.TemplateSource(config.AppConfig.Report.TemplatePath),
		Location:  config.ReportLocation(),
	}
	s.attachments = &core.AttachmentService{Store: store, Media: media}

	if config.AppConfig.Report.TemplatePath != "" {
		logger.Info("Report template: %s", config.AppConfig.Report.TemplatePath)
	} else {
		logger.Debug("Report template: built-in")
	}
	return s, nil
}

// installHandlers hands the services to the HTTP layer.
func (s *services) installHandlers() {
	handlers.Init(handlers.Dependencies{
		Reports:     s.reports,
		TestOrder:   s.testOrder,
		DataOrder:   s.dataOrder,
		Attachments: s.attachments,
	})
}
