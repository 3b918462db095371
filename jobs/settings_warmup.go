package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/surtidor-erp/surtidor-erp/internal/observability"
	"github.com/surtidor-erp/surtidor-erp/internal/settings"
)

// SettingsWarmupJob preloads the settings cache so the first preview after a
// deploy or an invalidation does not pay the Postgres round trip.
type SettingsWarmupJob struct {
	Settings *settings.Service
	Logger   *slog.Logger
	Metrics  *observability.Metrics
}

// NewSettingsWarmupJob wires dependencies for the warmup handler.
func NewSettingsWarmupJob(settingsSvc *settings.Service, logger *slog.Logger, metrics *observability.Metrics) *SettingsWarmupJob {
	return &SettingsWarmupJob{Settings: settingsSvc, Logger: logger, Metrics: metrics}
}

// Handle processes settings warmup tasks.
func (j *SettingsWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Settings == nil {
		return errors.New("settings warmup: handler not configured")
	}
	var payload SettingsWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	branches := payload.BranchIDs
	if len(branches) == 0 {
		branches = []int64{0}
	}

	if err := j.Settings.Warmup(ctx, branches); err != nil {
		j.Metrics.RecordJob(TaskSettingsWarmup, "error")
		return err
	}
	if j.Logger != nil {
		j.Logger.Info("settings cache warmed", slog.Int("branches", len(branches)))
	}
	j.Metrics.RecordJob(TaskSettingsWarmup, "ok")
	return nil
}
