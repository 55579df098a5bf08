package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/foodcircle/foodcircle-backend/pkg/logger"
)

type listingExpirer interface {
	ExpireOld(ctx context.Context, now time.Time) (int64, error)
}

// ListingExpiryJobParams configure the listing expiry sweep.
type ListingExpiryJobParams struct {
	Logger     *logger.Logger
	Repository listingExpirer
}

// NewListingExpiryJob flips available listings past their expiry timestamp to EXPIRED.
func NewListingExpiryJob(params ListingExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("listings repository required")
	}
	return &listingExpiryJob{
		logg: params.Logger,
		repo: params.Repository,
		now:  time.Now,
	}, nil
}

type listingExpiryJob struct {
	logg *logger.Logger
	repo listingExpirer
	now  func() time.Time
}

func (j *listingExpiryJob) Name() string { return "listing-expiry" }

func (j *listingExpiryJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	expired, err := j.repo.ExpireOld(ctx, now)
	if err != nil {
		return fmt.Errorf("listing expiry: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":       now,
		"rows_expired": expired,
	})
	j.logg.Info(logCtx, "listing expiry sweep complete")
	return nil
}
