package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"focus-planner/internal/model"
	"focus-planner/internal/plan"
	"focus-planner/internal/repository"
)

// PlanService runs full scheduling passes: load the pool, reconcile legacy
// series, expand recurring occurrences over the horizon, assign days, save.
// A pass is idempotent for fixed inputs, so it is re-run freely on every
// state change and once per night for the date rollover.
type PlanService struct {
	taskRepo *repository.TaskRepository
	prefRepo *repository.PreferenceRepository
	userRepo *repository.UserRepository

	horizonDays   int
	defaultLimits plan.Limits
}

func NewPlanService(taskRepo *repository.TaskRepository, prefRepo *repository.PreferenceRepository, userRepo *repository.UserRepository, horizonDays int, defaults plan.Limits) *PlanService {
	if horizonDays <= 0 {
		horizonDays = 14
	}
	return &PlanService{
		taskRepo:      taskRepo,
		prefRepo:      prefRepo,
		userRepo:      userRepo,
		horizonDays:   horizonDays,
		defaultLimits: defaults,
	}
}

// Limits loads and normalizes the user's scheduler configuration.
func (s *PlanService) Limits(ctx context.Context, userID uint) (plan.Limits, error) {
	raw, err := s.prefRepo.GetPayload(ctx, userID)
	if err != nil {
		return s.defaultLimits, err
	}
	return plan.ParseLimits(raw, s.defaultLimits), nil
}

// Recompute executes one scheduling pass for the user and persists the
// result. Returns the recomputed pool.
func (s *PlanService) Recompute(ctx context.Context, userID uint, now time.Time) ([]model.Task, error) {
	pool, err := s.taskRepo.ListPool(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load pool: %w", err)
	}

	limits, err := s.Limits(ctx, userID)
	if err != nil {
		// Unreadable preferences degrade to defaults; the pass still runs.
		log.Printf("preferences for user %d: %v", userID, err)
		limits = s.defaultLimits
	}

	before := len(pool)
	pool = plan.ReconcileSeries(pool)
	pool = plan.Expand(pool, now, s.horizonDays)
	pool = plan.Assign(pool, limits, now, s.horizonDays)

	if err := s.taskRepo.SavePool(ctx, pool); err != nil {
		return nil, err
	}
	if grown := len(pool) - before; grown > 0 {
		log.Printf("[info] recompute user=%d: %d new occurrences, %d tasks total", userID, grown, len(pool))
	}
	return pool, nil
}

// RecomputeAll runs the daily pass for every known user. Triggered by the
// nightly cron job after the date rolls over.
func (s *PlanService) RecomputeAll(ctx context.Context, now time.Time) error {
	users, err := s.userRepo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	for _, user := range users {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if _, err := s.Recompute(ctx, user.ID, now); err != nil {
			log.Printf("recompute user %d: %v", user.ID, err)
		}
	}
	return nil
}
