package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"disciplinedash/internal/infrastructure"
	"disciplinedash/pkg/contracts"
	"disciplinedash/pkg/contracts/domain"
)

// DatasetStatusProvider reports the dataset state for readiness
type DatasetStatusProvider interface {
	Status() domain.DatasetStatus
}

// ClientCounter reports connected websocket clients
type ClientCounter interface {
	ClientCount() int
}

// hubStats is implemented by hubs that keep delivery counters
type hubStats interface {
	Stats() map[string]interface{}
}

// HealthService provides health check functionality
type HealthService struct {
	dataset   DatasetStatusProvider
	hub       ClientCounter
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Uptime  string `json:"uptime,omitempty"`

	Details map[string]interface{} `json:"details,omitempty"`
}

// NewHealthService creates a health service. hub may be nil.
func NewHealthService(dataset DatasetStatusProvider, hub ClientCounter, logger *slog.Logger) *HealthService {
	return &HealthService{
		dataset:   dataset,
		hub:       hub,
		startTime: time.Now(),
		logger:    infrastructure.WithComponent(logger, "health_service"),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "HealthCheck: performing health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   contracts.Version,
	}
}

// ReadinessCheck reports ready only once a dataset is loaded
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   contracts.Version,
		Services: map[string]interface{}{
			"dataset":   hs.checkDatasetHealth(),
			"websocket": hs.checkWebSocketHealth(),
		},
	}

	for _, service := range status.Services {
		if sh, ok := service.(ServiceHealth); ok && sh.Status != "ready" {
			status.Status = "not_ready"
			break
		}
	}

	if status.Status != "ready" {
		hs.logger.InfoContext(ctx, "ReadinessCheck: not ready",
			slog.Any("services", status.Services))
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   contracts.Version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	info := contracts.GetVersionInfo()
	return map[string]interface{}{
		"version":      info.Version,
		"build_time":   info.BuildTime,
		"git_commit":   info.GitCommit,
		"go_version":   info.GoVersion,
		"os":           info.OS,
		"arch":         info.Architecture,
		"data_format":  info.DataFormat,
		"api_version":  info.APIVersion,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}
}

// StartTime returns when the service was created
func (hs *HealthService) StartTime() time.Time {
	return hs.startTime
}

func (hs *HealthService) checkDatasetHealth() ServiceHealth {
	if hs.dataset == nil {
		return ServiceHealth{Status: "not_ready", Message: "dataset service not initialized"}
	}

	status := hs.dataset.Status()
	switch status.State {
	case domain.DatasetStateLoaded:
		return ServiceHealth{
			Status:  "ready",
			Message: fmt.Sprintf("%d rows loaded from %s", status.Rows, status.Source),
		}
	case domain.DatasetStateLoading:
		if status.LoadedAt != nil {
			// A reload keeps serving the previous rows until it completes
			return ServiceHealth{Status: "ready", Message: "dataset is reloading"}
		}
		return ServiceHealth{Status: "not_ready", Message: "dataset is loading"}
	case domain.DatasetStateFailed:
		return ServiceHealth{Status: "not_ready", Message: status.LastError}
	default:
		return ServiceHealth{Status: "not_ready", Message: fmt.Sprintf("dataset is %s", status.State)}
	}
}

func (hs *HealthService) checkWebSocketHealth() ServiceHealth {
	health := ServiceHealth{
		Status: "ready",
		Uptime: time.Since(hs.startTime).String(),
	}
	if hs.hub != nil {
		health.Message = fmt.Sprintf("%d clients connected", hs.hub.ClientCount())
		if stats, ok := hs.hub.(hubStats); ok {
			health.Details = stats.Stats()
		}
	}
	return health
}
