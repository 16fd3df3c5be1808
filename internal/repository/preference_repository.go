package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"focus-planner/internal/model"
)

// PreferenceRepository stores the raw planner settings document per user.
// The payload stays opaque here; plan.ParseLimits normalizes it at load.
type PreferenceRepository struct {
	db *gorm.DB
}

func NewPreferenceRepository(db *gorm.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// GetPayload returns the stored raw document, or "" when the user has none.
func (r *PreferenceRepository) GetPayload(ctx context.Context, userID uint) (string, error) {
	var pref model.Preference
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&pref).Error
	switch {
	case err == nil:
		return pref.Payload, nil
	case err == gorm.ErrRecordNotFound:
		return "", nil
	default:
		return "", fmt.Errorf("find preferences: %w", err)
	}
}

func (r *PreferenceRepository) SavePayload(ctx context.Context, userID uint, payload string) error {
	pref := model.Preference{UserID: userID, Payload: payload}
	if err := r.db.WithContext(ctx).Save(&pref).Error; err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}
