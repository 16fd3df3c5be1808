package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"focus-planner/internal/model"
)

// CategoryRepository manages task categories.
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) GetOrCreate(ctx context.Context, userID uint, name string) (*model.Category, error) {
	if name == "" {
		return nil, nil
	}

	var category model.Category
	db := r.db.WithContext(ctx)
	err := db.Where("user_id = ? AND name = ?", userID, name).First(&category).Error
	switch {
	case err == nil:
		return &category, nil
	case err == gorm.ErrRecordNotFound:
		category = model.Category{
			ID:         uuid.NewString(),
			UserID:     userID,
			Name:       name,
			DailyLimit: model.DefaultDailyLimit,
		}
		if err := db.Create(&category).Error; err != nil {
			return nil, fmt.Errorf("create category: %w", err)
		}
		return &category, nil
	default:
		return nil, fmt.Errorf("find category: %w", err)
	}
}

func (r *CategoryRepository) ListByUser(ctx context.Context, userID uint) ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*model.Category, error) {
	var category model.Category
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// SetDailyLimit updates the flat per-day task count limit used by the
// creation gate.
func (r *CategoryRepository) SetDailyLimit(ctx context.Context, userID uint, id string, limit int) error {
	if err := r.db.WithContext(ctx).Model(&model.Category{}).
		Where("user_id = ? AND id = ?", userID, id).
		Update("daily_limit", limit).Error; err != nil {
		return fmt.Errorf("set daily limit: %w", err)
	}
	return nil
}
