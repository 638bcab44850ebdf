package audit

import (
	"context"
	"time"

	"github.com/robfig/cron"

	"learnsol-identity/pkg/logger"
)

const retentionWorkerName = "AuditRetentionCronWorker"

// AuditRetentionWorker deletes audit entries older than the retention period
// on a cron schedule.
type AuditRetentionWorker struct {
	service   Service
	retention time.Duration
	schedule  string
	cron      *cron.Cron
	logger    *logger.Logger
	now       func() time.Time
}

func NewAuditRetentionWorker(service Service, retention time.Duration, schedule string, l *logger.Logger) *AuditRetentionWorker {
	return &AuditRetentionWorker{
		service:   service,
		retention: retention,
		schedule:  schedule,
		cron:      cron.New(),
		logger:    l,
		now:       time.Now,
	}
}

func (w *AuditRetentionWorker) GetServiceName() string {
	return retentionWorkerName
}

// StartService runs the schedule until ctx is cancelled.
func (w *AuditRetentionWorker) StartService(ctx context.Context) error {
	if err := w.cron.AddFunc(w.schedule, func() { w.Prune(ctx) }); err != nil {
		w.logger.Errorf(err, "Could not add function to %s", retentionWorkerName)
		return err
	}

	w.logger.Infof("Pruning audit entries older than %s on schedule %q", w.retention, w.schedule)
	w.cron.Start()
	<-ctx.Done()
	w.cron.Stop()
	return nil
}

// Prune runs one retention pass and returns the number of deleted entries.
func (w *AuditRetentionWorker) Prune(ctx context.Context) int64 {
	cutoff := w.now().UTC().Add(-w.retention)
	deleted, err := w.service.PruneBefore(ctx, cutoff)
	if err != nil {
		w.logger.Error(err, "Could not prune audit entries")
		return 0
	}
	if deleted > 0 {
		w.logger.Infof("Pruned %d audit entries older than %s", deleted, cutoff.Format(time.RFC3339))
	}
	return deleted
}
