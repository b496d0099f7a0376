package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/arturoeanton/codelens-timemachine/internal/domain"
	"github.com/arturoeanton/codelens-timemachine/internal/port"
	"github.com/arturoeanton/codelens-timemachine/internal/service"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	resolutions map[int64]service.Resolution
	err         error
}

func (f *fakeResolver) ResolveResource(ctx context.Context, resourceID int64) (*service.Resolution, error) {
	if f.err != nil {
		return nil, f.err
	}
	r, ok := f.resolutions[resourceID]
	if !ok {
		return nil, port.ErrResourceNotFound
	}
	return &r, nil
}

func (f *fakeResolver) ResolveProject(ctx context.Context, projectID int64) ([]service.Resolution, error) {
	if f.err != nil {
		return nil, f.err
	}
	r, ok := f.resolutions[projectID]
	if !ok {
		return nil, port.ErrResourceNotFound
	}
	return []service.Resolution{r}, nil
}

func (f *fakeResolver) TimeMachine(ctx context.Context, resourceID int64) (*service.TimeMachine, error) {
	if f.err != nil {
		return nil, f.err
	}
	r, ok := f.resolutions[resourceID]
	if !ok {
		return nil, port.ErrResourceNotFound
	}
	return service.NewTimeMachine(ctx, stubFinder{}, r.Resource, sampleDefinitions(), nil)
}

// stubFinder finds the module snapshot of analysis 20 only.
type stubFinder struct{}

func (stubFinder) FindMostRecentSnapshot(ctx context.Context, resourceID int64, reference domain.Snapshot) (*domain.Snapshot, error) {
	if reference.ID != 20 {
		return nil, nil
	}
	return &domain.Snapshot{ID: 21, ResourceID: resourceID, CreatedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)}, nil
}

func sampleDefinitions() []domain.PeriodDefinition {
	target := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	return []domain.PeriodDefinition{
		{Index: 1, Mode: domain.PeriodModeDays, ModeParameter: "30", TargetDate: &target, ReferenceSnapshot: domain.Snapshot{ID: 20}, Qualifier: domain.QualifierProject},
		{Index: 2, Mode: domain.PeriodModeVersion, ModeParameter: "1.0", ReferenceSnapshot: domain.Snapshot{ID: 30}, Qualifier: domain.QualifierProject},
	}
}

func newTestApp(resolver PeriodResolver) *fiber.App {
	app := fiber.New()
	NewPeriodHandler(resolver).Register(app.Group("/api/v1"))
	return app
}

func sampleResolution() service.Resolution {
	target := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	snapshotDate := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	return service.Resolution{
		Resource: domain.Resource{ID: 2, Key: "org:app:core", Qualifier: domain.QualifierModule},
		Periods: []domain.Period{
			{Index: 1, TargetDate: &target, SnapshotDate: &snapshotDate},
			{Index: 2},
		},
		PastSnapshots: []domain.PastSnapshot{
			{Index: 1, ResourceID: 2, Mode: domain.PeriodModeDays, ModeParameter: "30", TargetDate: &target},
			{Index: 2, ResourceID: 2, Mode: domain.PeriodModeVersion, ModeParameter: "1.0"},
		},
	}
}

func doGet(t *testing.T, app *fiber.App, path string) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, path, nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	return resp.StatusCode, body
}

func TestResourcePeriods(t *testing.T) {
	app := newTestApp(&fakeResolver{resolutions: map[int64]service.Resolution{2: sampleResolution()}})

	code, body := doGet(t, app, "/api/v1/resources/2/periods")
	assert.Equal(t, fiber.StatusOK, code)

	periods := body["periods"].([]any)
	require.Len(t, periods, 2)
	first := periods[0].(map[string]any)
	assert.Equal(t, float64(1), first["index"])
	assert.Equal(t, "2024-02-01T00:00:00Z", first["snapshot_date"])
	second := periods[1].(map[string]any)
	assert.NotContains(t, second, "snapshot_date")
	assert.NotContains(t, second, "target_date")

	past := body["past_snapshots"].([]any)
	require.Len(t, past, 2)
	assert.Equal(t, "version", past[1].(map[string]any)["mode"])
}

func TestResourcePeriodsErrors(t *testing.T) {
	app := newTestApp(&fakeResolver{resolutions: map[int64]service.Resolution{}})

	code, body := doGet(t, app, "/api/v1/resources/abc/periods")
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, "invalid resource id", body["error"])

	code, _ = doGet(t, app, "/api/v1/resources/9/periods")
	assert.Equal(t, fiber.StatusNotFound, code)

	failing := newTestApp(&fakeResolver{err: errors.New(`pq: relation "snapshots" does not exist`)})
	code, body = doGet(t, failing, "/api/v1/resources/2/periods")
	assert.Equal(t, fiber.StatusInternalServerError, code)
	assert.Equal(t, "period resolution failed", body["error"])
	assert.NotContains(t, body["error"], "snapshots")
}

func TestResourcePeriod(t *testing.T) {
	app := newTestApp(&fakeResolver{resolutions: map[int64]service.Resolution{2: sampleResolution()}})

	code, body := doGet(t, app, "/api/v1/resources/2/periods/2")
	assert.Equal(t, fiber.StatusOK, code)
	period := body["period"].(map[string]any)
	assert.Equal(t, float64(2), period["index"])
	assert.NotContains(t, period, "snapshot_date")
	assert.Equal(t, "1.0", body["past_snapshot"].(map[string]any)["mode_parameter"])
	assert.Equal(t, "org:app:core", body["resource"].(map[string]any)["key"])

	code, body = doGet(t, app, "/api/v1/resources/2/periods/1")
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "2024-02-01T00:00:00Z", body["period"].(map[string]any)["snapshot_date"])
	assert.Equal(t, float64(2), body["past_snapshot"].(map[string]any)["resource_id"])

	code, _ = doGet(t, app, "/api/v1/resources/9/periods/1")
	assert.Equal(t, fiber.StatusNotFound, code)

	code, _ = doGet(t, app, "/api/v1/resources/2/periods/5")
	assert.Equal(t, fiber.StatusNotFound, code)

	code, body = doGet(t, app, "/api/v1/resources/2/periods/0")
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, "invalid period index", body["error"])
}

func TestProjectPeriods(t *testing.T) {
	app := newTestApp(&fakeResolver{resolutions: map[int64]service.Resolution{2: sampleResolution()}})

	code, body := doGet(t, app, "/api/v1/projects/2/periods")
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, float64(1), body["count"])
	require.Len(t, body["resolutions"].([]any), 1)

	code, _ = doGet(t, app, "/api/v1/projects/x/periods")
	assert.Equal(t, fiber.StatusBadRequest, code)
}
