package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/foodcircle/foodcircle-backend/pkg/logger"
)

const (
	notificationReadRetentionDays = 7
	notificationRetentionDays     = 30
)

type notificationsCleanupRepo interface {
	DeleteReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// NotificationCleanupJobParams configure the notification retention sweep.
type NotificationCleanupJobParams struct {
	Logger     *logger.Logger
	Repository notificationsCleanupRepo
	// ReadRetention is how many days read notifications are kept.
	ReadRetention int
	// Retention is how many days any notification is kept, read or not.
	Retention int
}

// NewNotificationCleanupJob deletes notifications past their retention
// windows. Read notifications age out on the shorter window.
func NewNotificationCleanupJob(params NotificationCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	readRetention := params.ReadRetention
	if readRetention <= 0 {
		readRetention = notificationReadRetentionDays
	}
	retention := params.Retention
	if retention <= 0 {
		retention = notificationRetentionDays
	}
	return &notificationCleanupJob{
		logg:          params.Logger,
		repo:          params.Repository,
		readRetention: readRetention,
		retention:     retention,
		now:           time.Now,
	}, nil
}

type notificationCleanupJob struct {
	logg          *logger.Logger
	repo          notificationsCleanupRepo
	readRetention int
	retention     int
	now           func() time.Time
}

func (j *notificationCleanupJob) Name() string { return "notification-cleanup" }

func (j *notificationCleanupJob) Run(ctx context.Context) error {
	var errs []error
	if err := j.sweepRead(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := j.sweepAll(ctx); err != nil {
		errs = append(errs, err)
	}
	return multierr.Combine(errs...)
}

func (j *notificationCleanupJob) sweepRead(ctx context.Context) error {
	cutoff := j.cutoff(j.readRetention)
	deleted, err := j.repo.DeleteReadOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("read notification cleanup: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.readRetention,
		"rows_deleted":   deleted,
	})
	j.logg.Info(logCtx, "read notification sweep complete")
	return nil
}

func (j *notificationCleanupJob) sweepAll(ctx context.Context) error {
	cutoff := j.cutoff(j.retention)
	deleted, err := j.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("notification cleanup: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.retention,
		"rows_deleted":   deleted,
	})
	j.logg.Info(logCtx, "notification retention sweep complete")
	return nil
}

func (j *notificationCleanupJob) cutoff(days int) time.Time {
	return j.now().UTC().Add(-time.Duration(days) * 24 * time.Hour)
}
