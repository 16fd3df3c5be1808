package service

import (
	"context"
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"focus-planner/internal/model"
	"focus-planner/internal/plan"
	"focus-planner/internal/repository"
)

// ReminderService builds human-readable summaries of the computed plan for
// daily notifications.
type ReminderService struct {
	taskRepo   *repository.TaskRepository
	streakRepo *repository.StreakRepository
}

func NewReminderService(taskRepo *repository.TaskRepository, streakRepo *repository.StreakRepository) *ReminderService {
	return &ReminderService{taskRepo: taskRepo, streakRepo: streakRepo}
}

// DailySummary renders the tasks the scheduler assigned to today, grouped by
// category, plus any overdue backlog and the streak footer.
func (s *ReminderService) DailySummary(ctx context.Context, user model.User, now time.Time) (string, error) {
	tasks, err := s.taskRepo.ListPending(ctx, user.ID)
	if err != nil {
		return "", err
	}

	todayKey := plan.DayKey(now)
	var todays, overdue, unplanned []model.Task
	for _, task := range tasks {
		switch {
		case task.StartDate != nil && plan.DayKey(*task.StartDate) == todayKey:
			todays = append(todays, task)
		case task.DueDate != nil && plan.DayKey(*task.DueDate) < todayKey:
			overdue = append(overdue, task)
		case task.StartDate == nil:
			unplanned = append(unplanned, task)
		}
	}

	plan.SortByScore(todays, now)
	plan.SortByScore(overdue, now)

	var builder strings.Builder
	builder.WriteString("📋 <b>План на день</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", now.Format("02.01.2006")))

	builder.WriteString("🔥 <b>Сегодня</b>\n")
	if len(todays) == 0 {
		builder.WriteString("— на сегодня ничего не запланировано\n")
	} else {
		grouped, order := groupByCategory(todays)
		for _, name := range order {
			builder.WriteString(fmt.Sprintf("<b>%s</b>\n", escape(name)))
			for _, task := range grouped[name] {
				builder.WriteString(formatPlanned(task, now))
			}
		}
	}

	if len(overdue) > 0 {
		builder.WriteString("\n⚠️ <b>Просроченные</b>\n")
		for _, task := range overdue {
			builder.WriteString(formatPlanned(task, now))
		}
	}
	if len(unplanned) > 0 {
		builder.WriteString(fmt.Sprintf("\n⏸ Не поместилось в план: %d задач(и). Они будут распределены, как только освободится место.\n", len(unplanned)))
	}

	streak, err := s.streakRepo.GetOrCreate(ctx, user.ID)
	if err == nil {
		builder.WriteString(formatStreak(streak))
	}

	return strings.TrimSpace(builder.String()), nil
}

func groupByCategory(tasks []model.Task) (map[string][]model.Task, []string) {
	grouped := make(map[string][]model.Task)
	var order []string
	for _, task := range tasks {
		name := strings.TrimSpace(task.CategoryName)
		if name == "" {
			name = "Без категории"
		}
		if _, ok := grouped[name]; !ok {
			order = append(order, name)
		}
		grouped[name] = append(grouped[name], task)
	}
	sort.SliceStable(order, func(i, j int) bool {
		if order[i] == "Без категории" {
			return false
		}
		if order[j] == "Без категории" {
			return true
		}
		return order[i] < order[j]
	})
	return grouped, order
}

func formatPlanned(task model.Task, now time.Time) string {
	var sb strings.Builder

	icon := "🟢"
	if task.IsRecurring {
		icon = "♻️"
	}
	if task.DueDate != nil {
		switch gap := plan.DaysBetween(now, *task.DueDate); {
		case gap < 0:
			icon = "⚠️"
		case gap <= 1 && !task.IsRecurring:
			icon = "⏳"
		}
	}

	sb.WriteString(fmt.Sprintf("%s %s · %.2g ч.", icon, escape(strings.TrimSpace(task.Name)), task.EstimatedHours))
	if task.DueDate != nil {
		d := plan.Normalize(*task.DueDate)
		if gap := plan.DaysBetween(now, d); gap < 0 {
			sb.WriteString(fmt.Sprintf(" — <b>просрочено с %s</b>", d.Format("2006-01-02")))
		} else if gap > 0 && !task.IsRecurring {
			sb.WriteString(fmt.Sprintf(" — до %s", d.Format("2006-01-02")))
		}
	}
	sb.WriteByte('\n')
	return sb.String()
}

func formatStreak(streak model.StreakState) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("\n🔥 Серия: %d дн. (рекорд %d)", streak.CurrentStreak, streak.LongestStreak))
	if streak.FreezeTokens > 0 {
		sb.WriteString(fmt.Sprintf(" · ❄️ заморозок: %d", streak.FreezeTokens))
	}
	if streak.HasMilestone() {
		sb.WriteString(fmt.Sprintf("\n🎉 Новая веха: %d дней подряд!", streak.MilestoneStreak))
	}
	sb.WriteByte('\n')
	return sb.String()
}

func escape(s string) string {
	return html.EscapeString(s)
}
