package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"focus-planner/internal/model"
)

// TaskRepository handles CRUD for tasks. It is the persistence collaborator
// of the planning engine: the engine works on in-memory pools loaded here
// and the recomputed schedule is written back with SavePool.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// ListPool returns the user's full task pool, completed rows included; the
// scheduler needs them to pin consumed capacity.
func (r *TaskRepository) ListPool(ctx context.Context, userID uint) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListPending returns incomplete tasks only, ordered by schedule day.
func (r *TaskRepository) ListPending(ctx context.Context, userID uint) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Where("user_id = ? AND completed = ?", userID, false).
		Order("start_date ASC, due_date ASC, created_at ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, userID uint, taskID string) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, taskID).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// SavePool upserts a recomputed pool in one transaction. Last write wins:
// a racing pass simply overwrites with its own consistent result.
func (r *TaskRepository) SavePool(ctx context.Context, tasks []model.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range tasks {
			if err := tx.Save(&tasks[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save pool: %w", err)
	}
	return nil
}

// MarkCompleted closes a task. Its StartDate freezes at the day it carried
// when completed (falling back to the completion day) and is never touched
// by the scheduler again.
func (r *TaskRepository) MarkCompleted(ctx context.Context, task *model.Task, completedAt time.Time) error {
	task.Completed = true
	task.CompletedAt = &completedAt
	if task.StartDate == nil {
		day := completedAt
		task.StartDate = &day
	}
	if err := r.db.WithContext(ctx).Save(task).Error; err != nil {
		return fmt.Errorf("complete task: %w", err)
	}
	return nil
}

// Delete removes a task for the given user, regardless of it being recurring or not.
func (r *TaskRepository) Delete(ctx context.Context, userID uint, taskID string) error {
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, taskID).
		Delete(&model.Task{}).Error; err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}
