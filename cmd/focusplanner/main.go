package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"focus-planner/internal/bot"
	"focus-planner/internal/config"
	"focus-planner/internal/plan"
	"focus-planner/internal/repository"
	"focus-planner/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	streakRepo := repository.NewStreakRepository(db)
	prefRepo := repository.NewPreferenceRepository(db)

	defaults := plan.Limits{
		MaxTasksPerDay: cfg.MaxTasksPerDay,
		DefaultHours: plan.HourLimit{
			WeekdayMax: cfg.WeekdayHoursLimit,
			WeekendMax: cfg.WeekendHoursLimit,
		},
	}

	categorySvc := service.NewCategoryService(categoryRepo)
	planSvc := service.NewPlanService(taskRepo, prefRepo, userRepo, cfg.HorizonDays, defaults)
	taskSvc := service.NewTaskService(taskRepo, categoryRepo, streakRepo, planSvc)
	reminderSvc := service.NewReminderService(taskRepo, streakRepo)

	telegramBot, err := bot.New(cfg.TelegramToken, userRepo, categorySvc, taskSvc, planSvc, reminderSvc, &cfg)
	if err != nil {
		log.Fatalf("bot: %v", err)
	}

	scheduler := service.NewSchedulerService(time.Local)
	if _, err := scheduler.ScheduleDaily(cfg.ReplanTime, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := planSvc.RecomputeAll(jobCtx, time.Now()); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("nightly replan: %v", err)
		}
	}); err != nil {
		log.Fatalf("schedule replan: %v", err)
	}
	if cfg.ReportInterval > 0 {
		if _, err := scheduler.ScheduleInterval(cfg.ReportInterval, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := telegramBot.SendDailyReports(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("report: %v", err)
			}
		}); err != nil {
			log.Fatalf("schedule reports: %v", err)
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	log.Println("Focus planner bot started.")
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("bot stopped with error: %v", err)
	}
	log.Println("Shutdown complete.")
}
