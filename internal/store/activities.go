package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/klinika/internal/model"
	"github.com/erazemk/klinika/internal/tenant"
)

const activityColumns = `id, clinic_code, action, entity_type, entity_id, entity_name, description, user_id,
	user_name, created_at`

func scanActivity(s scanner) (model.Activity, error) {
	var a model.Activity
	err := s.Scan(&a.ID, &a.ClinicCode, &a.Action, &a.EntityType, &a.EntityID, &a.EntityName,
		&a.Description, &a.UserID, &a.UserName, &a.CreatedAt)
	return a, err
}

// RecordActivity stamps and appends an activity. Activities are never updated.
func RecordActivity(ctx context.Context, db *sql.DB, a *model.Activity) error {
	if err := tenant.Stamp(ctx, a); err != nil {
		return err
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO activities (clinic_code, action, entity_type, entity_id, entity_name, description,
		     user_id, user_name, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ClinicCode, a.Action, a.EntityType, a.EntityID, a.EntityName, a.Description,
		a.UserID, a.UserName, dbTime(a.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("recording activity: %w", err)
	}

	a.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting activity id: %w", err)
	}
	return nil
}

func listActivities(ctx context.Context, db *sql.DB, clinicCode, where string, args ...any) ([]model.Activity, error) {
	if err := requireClinic(clinicCode); err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		`SELECT `+activityColumns+` FROM activities WHERE clinic_code = ? `+where,
		append([]any{clinicCode}, args...)...,
	)
	if err != nil {
		return nil, fmt.Errorf("listing activities: %w", err)
	}

	activities, err := collect(rows, scanActivity)
	if err != nil {
		return nil, fmt.Errorf("scanning activity: %w", err)
	}
	return activities, nil
}

// ListRecentActivities returns the clinic's newest activities.
func ListRecentActivities(ctx context.Context, db *sql.DB, clinicCode string, limit int) ([]model.Activity, error) {
	return listActivities(ctx, db, clinicCode, `ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
}

// ListActivitiesSince returns the clinic's activities at or after since, newest first.
func ListActivitiesSince(ctx context.Context, db *sql.DB, clinicCode string, since time.Time) ([]model.Activity, error) {
	return listActivities(ctx, db, clinicCode, `AND created_at >= ? ORDER BY created_at DESC, id DESC`, dbTime(since))
}

// ListActivitiesForEntity returns the history of one entity, newest first.
func ListActivitiesForEntity(ctx context.Context, db *sql.DB, clinicCode, entityType string, entityID int64) ([]model.Activity, error) {
	return listActivities(ctx, db, clinicCode,
		`AND entity_type = ? AND entity_id = ? ORDER BY created_at DESC, id DESC`, entityType, entityID)
}

// ListActivitiesForUser returns the activities performed by one user, newest first.
func ListActivitiesForUser(ctx context.Context, db *sql.DB, clinicCode string, userID int64) ([]model.Activity, error) {
	return listActivities(ctx, db, clinicCode, `AND user_id = ? ORDER BY created_at DESC, id DESC`, userID)
}
