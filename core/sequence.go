package core

import (
	"context"

	"missionreport/models"
)

// TestCaseLister lists the test cases of a mission in storage order.
type TestCaseLister interface {
	ListTestCasesByMission(ctx context.Context, missionID int64) ([]models.TestCase, error)
}

// SupportingDataLister lists the attachments of a test case in storage order.
type SupportingDataLister interface {
	ListSupportingDataByTestCase(ctx context.Context, testCaseID int64) ([]models.SupportingData, error)
}

// OrderedTestCases returns the test cases of a mission in their reconciled order.
// With reportableOnly set, test cases excluded from the report are skipped.
func OrderedTestCases(ctx context.Context, lister TestCaseLister, r *SortReconciler, missionID int64, reportableOnly bool) ([]models.TestCase, error) {
	testCases, err := lister.ListTestCasesByMission(ctx, missionID)
	if err != nil {
		return nil, err
	}
	order, _, err := r.Reconcile(ctx, missionID, Entries(testCases))
	if err != nil {
		return nil, err
	}
	return Arrange(order, testCases, reportableOnly), nil
}

// OrderedSupportingData returns the attachments of a test case in their reconciled
// order.
func OrderedSupportingData(ctx context.Context, lister SupportingDataLister, r *SortReconciler, testCaseID int64, reportableOnly bool) ([]models.SupportingData, error) {
	items, err := lister.ListSupportingDataByTestCase(ctx, testCaseID)
	if err != nil {
		return nil, err
	}
	order, _, err := r.Reconcile(ctx, testCaseID, Entries(items))
	if err != nil {
		return nil, err
	}
	return Arrange(order, items, reportableOnly), nil
}
