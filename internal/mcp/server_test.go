package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/arturoeanton/codelens-timemachine/internal/domain"
	"github.com/arturoeanton/codelens-timemachine/internal/port"
	"github.com/arturoeanton/codelens-timemachine/internal/service"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	res *service.Resolution
}

func (f fakeResolver) ResolveResource(ctx context.Context, resourceID int64) (*service.Resolution, error) {
	if f.res == nil || f.res.Resource.ID != resourceID {
		return nil, port.ErrResourceNotFound
	}
	return f.res, nil
}

func TestResolvePeriodsHandler(t *testing.T) {
	snapshotDate := time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC)
	res := &service.Resolution{
		Resource: domain.Resource{ID: 2, Key: "org:app:core", Qualifier: domain.QualifierModule},
		Periods: []domain.Period{
			{Index: 1, SnapshotDate: &snapshotDate},
			{Index: 2},
		},
		PastSnapshots: []domain.PastSnapshot{
			{Index: 1, Mode: domain.PeriodModePreviousAnalysis},
			{Index: 2, Mode: domain.PeriodModeVersion, ModeParameter: "1.0"},
		},
	}

	handler := ResolvePeriodsHandler(fakeResolver{res: res})
	_, out, err := handler(context.Background(), nil, ResolvePeriodsInput{ResourceID: 2})
	require.NoError(t, err)

	assert.Equal(t, "org:app:core", out.ResourceKey)
	assert.Equal(t, domain.QualifierModule, out.Qualifier)
	require.Len(t, out.Periods, 2)
	assert.Equal(t, "2024-02-01T09:30:00Z", out.Periods[0].SnapshotDate)
	assert.Equal(t, "Compare to previous analysis", out.Periods[0].Label)
	assert.Empty(t, out.Periods[1].SnapshotDate)
	assert.Equal(t, "Compare to version 1.0", out.Periods[1].Label)

	_, _, err = handler(context.Background(), nil, ResolvePeriodsInput{ResourceID: 9})
	assert.ErrorIs(t, err, port.ErrResourceNotFound)
}

func TestServerCallTool(t *testing.T) {
	res := &service.Resolution{
		Resource:      domain.Resource{ID: 1, Key: "org:app", Qualifier: domain.QualifierProject},
		Periods:       []domain.Period{{Index: 1}},
		PastSnapshots: []domain.PastSnapshot{{Index: 1, Mode: domain.PeriodModeDays, ModeParameter: "30"}},
	}
	server := NewServer(fakeResolver{res: res}, "0")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	go func() { _ = server.Run(ctx, serverTransport) }()

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer session.Close()

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "resolve_periods",
		Arguments: map[string]any{"resource_id": 1},
	})
	require.NoError(t, err)
	require.False(t, result.IsError)

	raw, err := json.Marshal(result.StructuredContent)
	require.NoError(t, err)
	var out ResolvePeriodsResult
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "org:app", out.ResourceKey)
	require.Len(t, out.Periods, 1)
	assert.Equal(t, "days", out.Periods[0].Mode)
}
