package service

import (
	"context"
	"fmt"

	"kidpoints/internal/models"
	"kidpoints/internal/repository"
)

// CatalogService manages the activity templates children earn points from
type CatalogService struct {
	activities *repository.ActivityRepository
}

// NewCatalogService creates a new catalog service
func NewCatalogService(activities *repository.ActivityRepository) *CatalogService {
	return &CatalogService{activities: activities}
}

// AddActivity creates a new activity template. Points may be negative for
// penalty activities.
func (s *CatalogService) AddActivity(ctx context.Context, ownerID int64, name, description, icon string, points int, category string) (*models.Activity, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: activity name is required", ErrInvalidInput)
	}

	activity, err := s.activities.CreateActivity(ctx, models.Activity{
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
		Icon:        icon,
		Points:      points,
		Category:    category,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add activity: %w", err)
	}
	return activity, nil
}

// EditActivity updates an activity's template fields. Point snapshots on
// previously recorded completions are never touched: history keeps the
// value that was current when each completion was recorded.
func (s *CatalogService) EditActivity(ctx context.Context, ownerID, activityID int64, name, description, icon string, points int, category string) error {
	if name == "" {
		return fmt.Errorf("%w: activity name is required", ErrInvalidInput)
	}

	if _, err := s.getOwnedActivity(ctx, ownerID, activityID); err != nil {
		return err
	}

	if err := s.activities.UpdateActivity(ctx, activityID, name, description, icon, points, category); err != nil {
		return fmt.Errorf("failed to edit activity: %w", err)
	}
	return nil
}

// RemoveActivity soft-deletes an activity. The row stays in place so
// historical ledger references remain valid; it just disappears from
// listings and can no longer be completed.
func (s *CatalogService) RemoveActivity(ctx context.Context, ownerID, activityID int64) error {
	if _, err := s.getOwnedActivity(ctx, ownerID, activityID); err != nil {
		return err
	}

	if err := s.activities.DeactivateActivity(ctx, activityID); err != nil {
		return fmt.Errorf("failed to remove activity: %w", err)
	}
	return nil
}

// ListActivities retrieves the owner's active activities
func (s *CatalogService) ListActivities(ctx context.Context, ownerID int64) ([]models.Activity, error) {
	return s.activities.GetActiveActivities(ctx, ownerID)
}

func (s *CatalogService) getOwnedActivity(ctx context.Context, ownerID, activityID int64) (*models.Activity, error) {
	activity, err := s.activities.GetActivityByID(ctx, activityID)
	if err != nil {
		return nil, err
	}
	if activity == nil || activity.OwnerID != ownerID {
		return nil, fmt.Errorf("%w: activity %d", ErrNotFound, activityID)
	}
	return activity, nil
}
