package service

import (
	"context"
	"strings"
	"time"

	"github.com/erazemk/klinika/internal/model"
	"github.com/erazemk/klinika/internal/store"
	"github.com/erazemk/klinika/internal/tenant"
)

const (
	defaultActivityLimit = 10
	maxActivityLimit     = 100
)

// RecentActivities returns the newest activities of the clinic. A
// non-positive limit uses the default.
func (s *Service) RecentActivities(ctx context.Context, limit int) ([]model.Activity, error) {
	clinic, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	limit = min(limit, maxActivityLimit)
	return store.ListRecentActivities(ctx, s.DB, clinic, limit)
}

func (s *Service) ActivitiesSince(ctx context.Context, since time.Time) ([]model.Activity, error) {
	clinic, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	if since.IsZero() {
		return nil, invalidf("since is required")
	}
	return store.ListActivitiesSince(ctx, s.DB, clinic, since)
}

func (s *Service) EntityActivities(ctx context.Context, entityType string, entityID int64) ([]model.Activity, error) {
	clinic, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	return store.ListActivitiesForEntity(ctx, s.DB, clinic, strings.ToUpper(entityType), entityID)
}

func (s *Service) UserActivities(ctx context.Context, userID int64) ([]model.Activity, error) {
	clinic, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	return store.ListActivitiesForUser(ctx, s.DB, clinic, userID)
}
