package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"focus-planner/internal/model"
	"focus-planner/internal/plan"
	"focus-planner/internal/repository"
)

const (
	minEstimatedHours = 0.25
	maxEstimatedHours = 24
)

// TaskInput represents data required to create a task.
type TaskInput struct {
	Name           string
	Category       string
	Importance     model.Importance
	Urgency        model.Urgency
	DueDate        *time.Time
	EstimatedHours float64

	IsRecurring       bool
	RecurringInterval model.RecurInterval
	RecurringDays     model.WeekdaySet
	RecurringEndType  model.RecurEndType
	RecurringEndCount int
}

// TaskService wraps task-related business logic: creation behind the
// category gate, completion with streak tracking and next-occurrence
// generation, and the plumbing around both.
type TaskService struct {
	taskRepo     *repository.TaskRepository
	categoryRepo *repository.CategoryRepository
	streakRepo   *repository.StreakRepository
	planSvc      *PlanService
}

func NewTaskService(taskRepo *repository.TaskRepository, categoryRepo *repository.CategoryRepository, streakRepo *repository.StreakRepository, planSvc *PlanService) *TaskService {
	return &TaskService{
		taskRepo:     taskRepo,
		categoryRepo: categoryRepo,
		streakRepo:   streakRepo,
		planSvc:      planSvc,
	}
}

// CreateTask validates the input, runs the category admission gate and, when
// admitted, stores the task and recomputes the schedule. A gate rejection is
// a normal outcome carried in the returned Admission, not an error.
func (s *TaskService) CreateTask(ctx context.Context, user *model.User, input TaskInput) (*model.Task, plan.Admission, error) {
	if input.Name == "" {
		return nil, plan.Admission{}, fmt.Errorf("name is required")
	}

	hours := input.EstimatedHours
	if hours < minEstimatedHours {
		hours = minEstimatedHours
	}
	if hours > maxEstimatedHours {
		hours = maxEstimatedHours
	}

	now := time.Now()
	task := model.Task{
		ID:             uuid.NewString(),
		UserID:         user.ID,
		Name:           input.Name,
		Importance:     input.Importance,
		Urgency:        input.Urgency,
		DueDate:        input.DueDate,
		EstimatedHours: hours,
	}
	if task.Importance == "" {
		task.Importance = model.NotImportant
	}
	if task.Urgency == "" {
		task.Urgency = model.NotUrgent
	}

	limit := model.DefaultDailyLimit
	if input.Category != "" {
		category, err := s.categoryRepo.GetOrCreate(ctx, user.ID, input.Category)
		if err != nil {
			return nil, plan.Admission{}, err
		}
		if category != nil {
			// Snapshot by value: the task keeps this name even if the
			// category is later renamed.
			task.CategoryID = category.ID
			task.CategoryName = category.Name
			limit = category.EffectiveDailyLimit()
		}
	}

	pool, err := s.taskRepo.ListPool(ctx, user.ID)
	if err != nil {
		return nil, plan.Admission{}, err
	}
	admission := plan.CheckCategoryLimit(pool, task, limit, now)
	if !admission.Allowed {
		log.Printf("[info] task rejected by category gate user=%d category=%q", user.ID, task.CategoryName)
		return nil, admission, nil
	}

	if input.IsRecurring {
		task.IsRecurring = true
		task.RecurringSeriesID = task.ID
		task.RecurringInterval = input.RecurringInterval
		if task.RecurringInterval == "" {
			task.RecurringInterval = model.RecurDaily
		}
		task.RecurringDays = input.RecurringDays
		task.RecurringEndType = input.RecurringEndType
		if task.RecurringEndType == "" {
			task.RecurringEndType = model.RecurEndNever
		}
		task.RecurringEndCount = input.RecurringEndCount
		task.RecurringCurrentCount = 1
		if task.DueDate == nil {
			today := plan.Normalize(now)
			task.DueDate = &today
		}
	}

	if err := s.taskRepo.Create(ctx, &task); err != nil {
		return nil, plan.Admission{}, err
	}

	if _, err := s.planSvc.Recompute(ctx, user.ID, now); err != nil {
		log.Printf("recompute after create: %v", err)
	}
	return &task, admission, nil
}

// CompleteResult carries everything the caller needs to report a completion.
type CompleteResult struct {
	Task   *model.Task
	Streak model.StreakState
	Next   *model.Task
}

// CompleteTask marks a task done, advances the streak, and for recurring
// tasks generates the next occurrence (never on the same day). Completing an
// already-completed task is a no-op.
func (s *TaskService) CompleteTask(ctx context.Context, user *model.User, taskID string, completedAt time.Time) (*CompleteResult, error) {
	task, err := s.taskRepo.FindByID(ctx, user.ID, taskID)
	if err != nil {
		return nil, err
	}

	streak, err := s.streakRepo.GetOrCreate(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	if task.Completed {
		return &CompleteResult{Task: task, Streak: streak}, nil
	}

	if err := s.taskRepo.MarkCompleted(ctx, task, completedAt); err != nil {
		return nil, err
	}

	streak = plan.RegisterCompletion(streak, completedAt, completedAt)
	if err := s.streakRepo.Save(ctx, streak); err != nil {
		return nil, err
	}

	result := &CompleteResult{Task: task, Streak: streak}
	if task.IsRecurring {
		next, err := plan.GenerateNext(*task, completedAt)
		if err != nil {
			return nil, fmt.Errorf("next occurrence: %w", err)
		}
		if next != nil {
			if err := s.taskRepo.Create(ctx, next); err != nil {
				return nil, err
			}
			result.Next = next
		}
	}

	if _, err := s.planSvc.Recompute(ctx, user.ID, completedAt); err != nil {
		log.Printf("recompute after complete: %v", err)
	}
	return result, nil
}

// DismissMilestone clears a pending streak celebration.
func (s *TaskService) DismissMilestone(ctx context.Context, user *model.User) (model.StreakState, error) {
	streak, err := s.streakRepo.GetOrCreate(ctx, user.ID)
	if err != nil {
		return streak, err
	}
	streak = plan.DismissMilestone(streak)
	return streak, s.streakRepo.Save(ctx, streak)
}

// Streak returns the user's current streak state.
func (s *TaskService) Streak(ctx context.Context, user *model.User) (model.StreakState, error) {
	return s.streakRepo.GetOrCreate(ctx, user.ID)
}

// ListPending returns the user's incomplete tasks in schedule order.
func (s *TaskService) ListPending(ctx context.Context, user *model.User) ([]model.Task, error) {
	return s.taskRepo.ListPending(ctx, user.ID)
}

// GetTask loads a single task owned by the user.
func (s *TaskService) GetTask(ctx context.Context, user *model.User, taskID string) (*model.Task, error) {
	return s.taskRepo.FindByID(ctx, user.ID, taskID)
}

// DeleteTask removes a task completely (for both one-time and recurring tasks).
func (s *TaskService) DeleteTask(ctx context.Context, user *model.User, taskID string) error {
	return s.taskRepo.Delete(ctx, user.ID, taskID)
}
