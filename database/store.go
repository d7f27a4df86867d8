package database

import (
	"context"

	"missionreport/models"
)

// Store exposes the package level queries as a value, so services can take them
// through narrow interfaces.
type Store struct{}

func (Store) GetMissionByID(ctx context.Context, missionID int64) (models.Mission, error) {
	return GetMissionByID(ctx, missionID)
}

func (Store) ListTestCasesByMission(ctx context.Context, missionID int64) ([]models.TestCase, error) {
	return ListTestCasesByMission(ctx, missionID)
}

func (Store) ListSupportingDataByTestCase(ctx context.Context, testCaseID int64) ([]models.SupportingData, error) {
	return ListSupportingDataByTestCase(ctx, testCaseID)
}

func (Store) ListSupportingDataByMission(ctx context.Context, missionID int64) ([]models.SupportingData, error) {
	return ListSupportingDataByMission(ctx, missionID)
}

func (Store) CreateSupportingData(ctx context.Context, s models.SupportingData) (int64, error) {
	return CreateSupportingData(ctx, s)
}

func (Store) GetSupportingDataByID(ctx context.Context, id int64) (models.SupportingData, error) {
	return GetSupportingDataByID(ctx, id)
}

func (Store) DeleteSupportingData(ctx context.Context, id int64) error {
	return DeleteSupportingData(ctx, id)
}

func (Store) ListTestCaseHosts(ctx context.Context, testCaseID int64, role string) ([]models.Host, error) {
	return ListTestCaseHosts(ctx, testCaseID, role)
}

func (Store) GetOrCreateDynamicSettings(ctx context.Context) (models.DynamicSettings, error) {
	return GetOrCreateDynamicSettings(ctx)
}

func (Store) UpdateColorHex(ctx context.Context, colorID int64, hex string) error {
	return UpdateColorHex(ctx, colorID, hex)
}

// TestOrderStore keeps the test case order on the mission row.
type TestOrderStore struct{}

func (TestOrderStore) GetOrder(ctx context.Context, missionID int64) (string, error) {
	return GetMissionTestOrder(ctx, missionID)
}

func (TestOrderStore) SetOrder(ctx context.Context, missionID int64, blob string) error {
	return SetMissionTestOrder(ctx, missionID, blob)
}

// SupportingDataOrderStore keeps the attachment order on the test case row.
type SupportingDataOrderStore struct{}

func (SupportingDataOrderStore) GetOrder(ctx context.Context, testCaseID int64) (string, error) {
	return GetSupportingDataOrder(ctx, testCaseID)
}

func (SupportingDataOrderStore) SetOrder(ctx context.Context, testCaseID int64, blob string) error {
	return SetSupportingDataOrder(ctx, testCaseID, blob)
}
