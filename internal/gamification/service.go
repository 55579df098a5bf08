package gamification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/foodcircle/foodcircle-backend/internal/notifications"
	"github.com/foodcircle/foodcircle-backend/pkg/enums"
	pkgerrors "github.com/foodcircle/foodcircle-backend/pkg/errors"
	"github.com/foodcircle/foodcircle-backend/pkg/logger"
)

// Service evaluates badge thresholds and exposes read access to stats.
type Service interface {
	EvaluateBadges(ctx context.Context, userID uuid.UUID) ([]BadgeDTO, error)
	Stats(ctx context.Context, userID uuid.UUID) (*StatsDTO, error)
	Badges(ctx context.Context, userID uuid.UUID) ([]BadgeDTO, error)
}

type service struct {
	repo     Repository
	notifier notifications.Service
	logg     *logger.Logger
}

// NewService wires gamification dependencies.
func NewService(repo Repository, notifier notifications.Service, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "gamification repository required")
	}
	if notifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications service required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{repo: repo, notifier: notifier, logg: logg}, nil
}

// EvaluateBadges grants every catalog badge whose threshold the user's stats
// now meet. Awards are idempotent; re-running after a partial failure only
// grants what is still missing.
func (s *service) EvaluateBadges(ctx context.Context, userID uuid.UUID) ([]BadgeDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	stats, err := s.repo.GetStats(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user stats")
	}

	catalog, err := s.repo.ListCatalog(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load badge catalog")
	}

	earned, err := s.repo.ListEarned(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load earned badges")
	}
	earnedSet := make(map[uuid.UUID]struct{}, len(earned))
	for _, award := range earned {
		earnedSet[award.BadgeID] = struct{}{}
	}

	now := time.Now().UTC()
	var awarded []BadgeDTO
	for _, badge := range catalog {
		if _, ok := earnedSet[badge.ID]; ok {
			continue
		}
		if statValue(stats, badge.RequiredStat) < badge.RequiredValue {
			continue
		}

		granted, err := s.repo.AwardBadge(ctx, userID, badge.ID, now)
		if err != nil {
			return awarded, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "award badge")
		}
		if !granted {
			continue
		}

		awarded = append(awarded, BadgeDTO{
			Slug:        badge.Slug,
			Name:        badge.Name,
			Description: badge.Description,
			AwardedAt:   now,
		})

		if err := s.notifier.Notify(ctx, notifications.NotifyInput{
			UserID:  userID,
			Type:    enums.NotificationTypeBadge,
			Title:   fmt.Sprintf("Badge earned: %s", badge.Name),
			Message: badge.Description,
		}); err != nil {
			s.logg.Warn(s.logg.WithUserID(ctx, userID.String()), "badge notification failed: "+err.Error())
		}
	}

	return awarded, nil
}

func (s *service) Stats(ctx context.Context, userID uuid.UUID) (*StatsDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	stats, err := s.repo.GetStats(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user stats")
	}
	return statsFromModel(stats), nil
}

func (s *service) Badges(ctx context.Context, userID uuid.UUID) ([]BadgeDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	earned, err := s.repo.ListEarned(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load earned badges")
	}
	if len(earned) == 0 {
		return []BadgeDTO{}, nil
	}

	catalog, err := s.repo.ListCatalog(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load badge catalog")
	}
	byID := make(map[uuid.UUID]int, len(catalog))
	for i, badge := range catalog {
		byID[badge.ID] = i
	}

	badges := make([]BadgeDTO, 0, len(earned))
	for _, award := range earned {
		idx, ok := byID[award.BadgeID]
		if !ok {
			continue
		}
		badge := catalog[idx]
		badges = append(badges, BadgeDTO{
			Slug:        badge.Slug,
			Name:        badge.Name,
			Description: badge.Description,
			AwardedAt:   award.AwardedAt,
		})
	}
	return badges, nil
}
