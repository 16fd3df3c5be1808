package service

import (
	"context"

	"focus-planner/internal/model"
	"focus-planner/internal/repository"
)

// CategoryService provides helpers around categories.
type CategoryService struct {
	repo *repository.CategoryRepository
}

func NewCategoryService(repo *repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

func (s *CategoryService) List(ctx context.Context, user *model.User) ([]model.Category, error) {
	return s.repo.ListByUser(ctx, user.ID)
}

// SetDailyLimit updates the creation-gate count limit for a category.
func (s *CategoryService) SetDailyLimit(ctx context.Context, user *model.User, categoryID string, limit int) error {
	return s.repo.SetDailyLimit(ctx, user.ID, categoryID, limit)
}
