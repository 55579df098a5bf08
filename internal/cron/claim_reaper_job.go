package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/foodcircle/foodcircle-backend/pkg/logger"
)

type claimReaper interface {
	ReapExpired(ctx context.Context, now time.Time) (int64, error)
}

// ClaimReaperJobParams configure the reservation reaper.
type ClaimReaperJobParams struct {
	Logger     *logger.Logger
	Repository claimReaper
}

// NewClaimReaperJob expires overdue reservations and releases their listings
// back into circulation.
func NewClaimReaperJob(params ClaimReaperJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("claims repository required")
	}
	return &claimReaperJob{
		logg: params.Logger,
		repo: params.Repository,
		now:  time.Now,
	}, nil
}

type claimReaperJob struct {
	logg *logger.Logger
	repo claimReaper
	now  func() time.Time
}

func (j *claimReaperJob) Name() string { return "claim-reaper" }

func (j *claimReaperJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	reaped, err := j.repo.ReapExpired(ctx, now)
	if err != nil {
		return fmt.Errorf("claim reaper: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":      now,
		"rows_reaped": reaped,
	})
	j.logg.Info(logCtx, "claim reaper sweep complete")
	return nil
}
