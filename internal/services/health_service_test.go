package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"disciplinedash/internal/shared/testutil"
	"disciplinedash/pkg/contracts"
	"disciplinedash/pkg/contracts/domain"
)

// MockDatasetStatus implements DatasetStatusProvider
type MockDatasetStatus struct {
	mock.Mock
}

func (m *MockDatasetStatus) Status() domain.DatasetStatus {
	args := m.Called()
	return args.Get(0).(domain.DatasetStatus)
}

// MockClientCounter implements ClientCounter
type MockClientCounter struct {
	mock.Mock
}

func (m *MockClientCounter) ClientCount() int {
	args := m.Called()
	return args.Int(0)
}

func TestHealthService_HealthCheck(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	hs := NewHealthService(nil, nil, logger)

	status := hs.HealthCheck(context.Background())
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, contracts.Version, status.Version)
	assert.WithinDuration(t, time.Now(), status.Timestamp, time.Second)
}

func TestHealthService_ReadinessCheck(t *testing.T) {
	loadedAt := time.Now()

	tests := []struct {
		name        string
		status      domain.DatasetStatus
		wantStatus  string
		wantMessage string
	}{
		{
			name: "loaded",
			status: domain.DatasetStatus{
				State:       domain.DatasetStateLoaded,
				Source:      "discipline.csv",
				LoadedAt:    &loadedAt,
				DatasetInfo: domain.DatasetInfo{Rows: 21},
			},
			wantStatus:  "ready",
			wantMessage: "21 rows loaded from discipline.csv",
		},
		{
			name:        "initial load in progress",
			status:      domain.DatasetStatus{State: domain.DatasetStateLoading},
			wantStatus:  "not_ready",
			wantMessage: "dataset is loading",
		},
		{
			name:        "reload in progress",
			status:      domain.DatasetStatus{State: domain.DatasetStateLoading, LoadedAt: &loadedAt},
			wantStatus:  "ready",
			wantMessage: "dataset is reloading",
		},
		{
			name:        "failed",
			status:      domain.DatasetStatus{State: domain.DatasetStateFailed, LastError: "parse error on line 4"},
			wantStatus:  "not_ready",
			wantMessage: "parse error on line 4",
		},
		{
			name:        "empty",
			status:      domain.DatasetStatus{State: domain.DatasetStateEmpty},
			wantStatus:  "not_ready",
			wantMessage: "dataset is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			dataset := &MockDatasetStatus{}
			dataset.On("Status").Return(tt.status)
			hub := &MockClientCounter{}
			hub.On("ClientCount").Return(2)

			hs := NewHealthService(dataset, hub, logger)
			status := hs.ReadinessCheck(context.Background())

			assert.Equal(t, tt.wantStatus, status.Status)
			datasetHealth, ok := status.Services["dataset"].(ServiceHealth)
			require.True(t, ok)
			assert.Equal(t, tt.wantMessage, datasetHealth.Message)

			wsHealth, ok := status.Services["websocket"].(ServiceHealth)
			require.True(t, ok)
			assert.Equal(t, "ready", wsHealth.Status)
			assert.Equal(t, "2 clients connected", wsHealth.Message)

			dataset.AssertExpectations(t)
		})
	}
}

func TestHealthService_ReadinessWithoutDataset(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	hs := NewHealthService(nil, nil, logger)

	status := hs.ReadinessCheck(context.Background())
	assert.Equal(t, "not_ready", status.Status)
}

func TestHealthService_LivenessAndVersion(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	hs := NewHealthService(nil, nil, logger)

	live := hs.LivenessCheck(context.Background())
	assert.Equal(t, "alive", live.Status)
	assert.Contains(t, live.Runtime, "goroutines")
	assert.Contains(t, live.Runtime, "go_version")

	version := hs.Version()
	assert.Equal(t, contracts.Version, version["version"])
	assert.Equal(t, contracts.APIVersion, version["api_version"])
	assert.Contains(t, version, "start_time")
}

type statsHub struct{}

func (statsHub) ClientCount() int { return 2 }

func (statsHub) Stats() map[string]interface{} {
	return map[string]interface{}{"active_clients": 2, "messages_sent": int64(5)}
}

func TestHealthService_ReadinessIncludesHubStats(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	dataset := new(MockDatasetStatus)
	dataset.On("Status").Return(domain.DatasetStatus{
		State:       domain.DatasetStateLoaded,
		Source:      "discipline.csv",
		DatasetInfo: domain.DatasetInfo{Rows: 3},
	})

	status := NewHealthService(dataset, statsHub{}, logger).ReadinessCheck(context.Background())

	ws, ok := status.Services["websocket"].(ServiceHealth)
	require.True(t, ok)
	assert.Equal(t, "2 clients connected", ws.Message)
	assert.Equal(t, int64(5), ws.Details["messages_sent"])
}
