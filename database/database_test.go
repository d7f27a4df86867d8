package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"missionreport/models"
)

func setupDB(t *testing.T) context.Context {
	t.Helper()
	require.NoError(t, InitDB(filepath.Join(t.TempDir(), "missionreport.db")))
	t.Cleanup(func() { CloseDB() })
	return context.Background()
}

func seedMission(t *testing.T, ctx context.Context) models.Mission {
	t.Helper()
	areaID, err := CreateBusinessArea(ctx, "Logistics")
	require.NoError(t, err)
	id, err := CreateMission(ctx, models.Mission{
		MissionName:         "Blue Harbor",
		BusinessAreaID:      areaID,
		MissionIncludeFlags: models.AllMissionIncludeFlags(),
	})
	require.NoError(t, err)
	m, err := GetMissionByID(ctx, id)
	require.NoError(t, err)
	return m
}

func seedTestCase(t *testing.T, ctx context.Context, missionID, number int64) models.TestCase {
	t.Helper()
	tc := models.NewTestCase(missionID, time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC))
	tc.TestNumber = number
	tc.TestObjective = "Objective"
	id, err := CreateTestCase(ctx, tc)
	require.NoError(t, err)
	got, err := GetTestCaseByID(ctx, id)
	require.NoError(t, err)
	return got
}

func TestMissionRoundTrip(t *testing.T) {
	ctx := setupDB(t)
	m := seedMission(t, ctx)

	assert.Equal(t, "Logistics", m.BusinessAreaName)
	assert.Equal(t, "[]", m.TestOrder)
	assert.True(t, m.SupportingDataInclude)

	m.Conclusion = "Wrapped up."
	m.FindingsInclude = false
	require.NoError(t, UpdateMission(ctx, m))
	got, err := GetMissionByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Wrapped up.", got.Conclusion)
	assert.False(t, got.FindingsInclude)

	_, err = GetMissionByID(ctx, 999)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestHasFindingsFollowsFindingsText(t *testing.T) {
	ctx := setupDB(t)
	m := seedMission(t, ctx)
	tc := seedTestCase(t, ctx, m.ID, 1)
	assert.False(t, tc.HasFindings)

	tc.Findings = "Default credentials on the router"
	tc.HasFindings = false
	require.NoError(t, UpdateTestCase(ctx, tc))
	got, err := GetTestCaseByID(ctx, tc.ID)
	require.NoError(t, err)
	assert.True(t, got.HasFindings)

	got.Findings = ""
	got.HasFindings = true
	require.NoError(t, UpdateTestCase(ctx, got))
	got, err = GetTestCaseByID(ctx, tc.ID)
	require.NoError(t, err)
	assert.False(t, got.HasFindings)
}

func TestNoHitHostCannotBeLinked(t *testing.T) {
	ctx := setupDB(t)
	m := seedMission(t, ctx)
	tc := seedTestCase(t, ctx, m.ID, 1)

	hostID, err := CreateHost(ctx, models.Host{MissionID: m.ID, HostName: "printer", IsNoHit: true})
	require.NoError(t, err)

	for _, role := range []string{models.HostRoleSource, models.HostRoleTarget} {
		err := AddTestCaseHost(ctx, tc.ID, hostID, role)
		assert.ErrorIs(t, err, models.ErrConflict, role)
	}
	hosts, err := ListTestCaseHosts(ctx, tc.ID, models.HostRoleTarget)
	require.NoError(t, err)
	assert.Empty(t, hosts)
}

func TestLinkedHostRules(t *testing.T) {
	ctx := setupDB(t)
	m := seedMission(t, ctx)
	tc := seedTestCase(t, ctx, m.ID, 7)

	ip := "10.1.1.1"
	hostID, err := CreateHost(ctx, models.Host{MissionID: m.ID, HostName: "dc01", IPAddress: &ip})
	require.NoError(t, err)
	require.NoError(t, AddTestCaseHost(ctx, tc.ID, hostID, models.HostRoleTarget))

	err = AddTestCaseHost(ctx, tc.ID, hostID, "pivot")
	assert.ErrorIs(t, err, models.ErrValidation)

	err = DeleteHost(ctx, hostID)
	assert.ErrorIs(t, err, models.ErrConflict)
	assert.Contains(t, err.Error(), "7")

	h, err := GetHostByID(ctx, hostID)
	require.NoError(t, err)
	h.IsNoHit = true
	assert.ErrorIs(t, UpdateHost(ctx, h), models.ErrConflict)

	require.NoError(t, RemoveTestCaseHost(ctx, tc.ID, hostID, models.HostRoleTarget))
	require.NoError(t, DeleteHost(ctx, hostID))
}

func TestHostFromAnotherMissionIsRejected(t *testing.T) {
	ctx := setupDB(t)
	m := seedMission(t, ctx)
	other, err := CreateMission(ctx, models.Mission{MissionName: "Other", BusinessAreaID: m.BusinessAreaID})
	require.NoError(t, err)
	tc := seedTestCase(t, ctx, m.ID, 1)

	hostID, err := CreateHost(ctx, models.Host{MissionID: other, HostName: "web01"})
	require.NoError(t, err)
	assert.ErrorIs(t, AddTestCaseHost(ctx, tc.ID, hostID, models.HostRoleSource), models.ErrConflict)
}

func TestCloneCopiesHostLinks(t *testing.T) {
	ctx := setupDB(t)
	m := seedMission(t, ctx)
	tc := seedTestCase(t, ctx, m.ID, 1)
	tc.Status = models.StatusFinal
	require.NoError(t, UpdateTestCase(ctx, tc))
	require.NoError(t, SetSupportingDataOrder(ctx, tc.ID, "[4,5]"))

	hostID, err := CreateHost(ctx, models.Host{MissionID: m.ID, HostName: "kali"})
	require.NoError(t, err)
	require.NoError(t, AddTestCaseHost(ctx, tc.ID, hostID, models.HostRoleSource))

	cloneID, err := CloneTestCase(ctx, tc.ID)
	require.NoError(t, err)
	clone, err := GetTestCaseByID(ctx, cloneID)
	require.NoError(t, err)

	assert.Equal(t, models.StatusNew, clone.Status)
	assert.Equal(t, "[]", clone.SupportingDataOrder)
	assert.Equal(t, tc.TestObjective, clone.TestObjective)
	sources, err := ListTestCaseHosts(ctx, cloneID, models.HostRoleSource)
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, hostID, sources[0].ID)
}

func TestDeleteMissionCascades(t *testing.T) {
	ctx := setupDB(t)
	m := seedMission(t, ctx)
	tc := seedTestCase(t, ctx, m.ID, 1)
	hostID, err := CreateHost(ctx, models.Host{MissionID: m.ID, HostName: "dc01"})
	require.NoError(t, err)
	require.NoError(t, AddTestCaseHost(ctx, tc.ID, hostID, models.HostRoleTarget))
	_, err = CreateSupportingData(ctx, models.SupportingData{TestCaseID: tc.ID, Include: true, TestFile: "a.png"})
	require.NoError(t, err)

	require.NoError(t, DeleteMission(ctx, m.ID))

	_, err = GetTestCaseByID(ctx, tc.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = GetHostByID(ctx, hostID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	items, err := ListSupportingDataByMission(ctx, m.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestReferenceDataDeleteRules(t *testing.T) {
	ctx := setupDB(t)
	m := seedMission(t, ctx)

	assert.ErrorIs(t, DeleteBusinessArea(ctx, m.BusinessAreaID), models.ErrConflict)

	settings, err := GetOrCreateDynamicSettings(ctx)
	require.NoError(t, err)
	active := settings.SystemClassification
	assert.ErrorIs(t, DeleteClassificationLegend(ctx, active.ID), models.ErrConflict)
	assert.ErrorIs(t, DeleteColor(ctx, active.TextColor.ID), models.ErrConflict)

	colorID, err := CreateColor(ctx, models.Color{DisplayText: "Spare", HexColorCode: "123456"})
	require.NoError(t, err)
	require.NoError(t, DeleteColor(ctx, colorID))
	assert.ErrorIs(t, DeleteColor(ctx, colorID), models.ErrNotFound)
}

func TestColorHexUpdate(t *testing.T) {
	ctx := setupDB(t)
	id, err := CreateColor(ctx, models.Color{DisplayText: "Short", HexColorCode: "abc"})
	require.NoError(t, err)
	require.NoError(t, UpdateColorHex(ctx, id, "aabbcc"))
	c, err := GetColorByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "aabbcc", c.HexColorCode)
}

func TestOrderStores(t *testing.T) {
	ctx := setupDB(t)
	m := seedMission(t, ctx)
	tc := seedTestCase(t, ctx, m.ID, 1)

	require.NoError(t, TestOrderStore{}.SetOrder(ctx, m.ID, "[3,1]"))
	blob, err := TestOrderStore{}.GetOrder(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "[3,1]", blob)

	require.NoError(t, SupportingDataOrderStore{}.SetOrder(ctx, tc.ID, "[9]"))
	blob, err = SupportingDataOrderStore{}.GetOrder(ctx, tc.ID)
	require.NoError(t, err)
	assert.Equal(t, "[9]", blob)

	_, err = TestOrderStore{}.GetOrder(ctx, 999)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
