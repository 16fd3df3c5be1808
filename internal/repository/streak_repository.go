package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"focus-planner/internal/model"
	"focus-planner/internal/plan"
)

// StreakRepository persists per-user streak state.
type StreakRepository struct {
	db *gorm.DB
}

func NewStreakRepository(db *gorm.DB) *StreakRepository {
	return &StreakRepository{db: db}
}

// GetOrCreate loads the user's streak, initializing a fresh state (zero
// streak, one freeze token) on first use.
func (r *StreakRepository) GetOrCreate(ctx context.Context, userID uint) (model.StreakState, error) {
	var state model.StreakState
	db := r.db.WithContext(ctx)
	err := db.Where("user_id = ?", userID).First(&state).Error
	switch {
	case err == nil:
		return state, nil
	case err == gorm.ErrRecordNotFound:
		state = model.NewStreakState(userID)
		if err := db.Create(&state).Error; err != nil {
			return state, fmt.Errorf("create streak: %w", err)
		}
		return state, nil
	default:
		return state, fmt.Errorf("find streak: %w", err)
	}
}

func (r *StreakRepository) Save(ctx context.Context, state model.StreakState) error {
	if err := r.db.WithContext(ctx).Save(&state).Error; err != nil {
		return fmt.Errorf("save streak: %w", err)
	}
	return nil
}

// Merge reconciles an imported copy of the user's streak (a restore from
// another device) with the stored one and persists the winner.
func (r *StreakRepository) Merge(ctx context.Context, incoming model.StreakState) (model.StreakState, error) {
	current, err := r.GetOrCreate(ctx, incoming.UserID)
	if err != nil {
		return current, err
	}
	merged := plan.MergeStreaks(current, incoming)
	merged.UserID = incoming.UserID
	if err := r.Save(ctx, merged); err != nil {
		return merged, err
	}
	return merged, nil
}
