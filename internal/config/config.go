package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config keeps runtime settings for the planner.
type Config struct {
	TelegramToken  string
	DatabaseURL    string
	ReportInterval time.Duration

	// ReplanTime is the local HH:MM at which the nightly scheduling pass
	// runs for every user, shortly after the date rolls over.
	ReplanTime string

	// HorizonDays is how far forward recurring occurrences are materialized
	// and days are assigned.
	HorizonDays int

	// MaxTasksPerDay and the default hour caps seed the scheduler limits
	// for users without stored preferences.
	MaxTasksPerDay    int
	WeekdayHoursLimit float64
	WeekendHoursLimit float64
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	cfg := Config{
		TelegramToken:     strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		DatabaseURL:       strings.TrimSpace(os.Getenv("DATABASE_URL")),
		ReportInterval:    parseInterval(strings.TrimSpace(os.Getenv("REPORT_INTERVAL_HOURS"))),
		ReplanTime:        strings.TrimSpace(os.Getenv("REPLAN_TIME")),
		HorizonDays:       parsePositiveInt(os.Getenv("PLAN_HORIZON_DAYS")),
		MaxTasksPerDay:    parsePositiveInt(os.Getenv("MAX_TASKS_PER_DAY")),
		WeekdayHoursLimit: parsePositiveFloat(os.Getenv("WEEKDAY_HOURS_LIMIT")),
		WeekendHoursLimit: parsePositiveFloat(os.Getenv("WEEKEND_HOURS_LIMIT")),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "focus_planner.db"
	}
	if cfg.ReportInterval == 0 {
		cfg.ReportInterval = 5 * time.Hour
	}
	if cfg.ReplanTime == "" {
		cfg.ReplanTime = "00:05"
	}
	if cfg.HorizonDays == 0 {
		cfg.HorizonDays = 14
	}
	if cfg.MaxTasksPerDay == 0 {
		cfg.MaxTasksPerDay = 6
	}
	if cfg.WeekdayHoursLimit == 0 {
		cfg.WeekdayHoursLimit = 3
	}
	if cfg.WeekendHoursLimit == 0 {
		cfg.WeekendHoursLimit = 5
	}

	if cfg.TelegramToken == "" {
		return cfg, fmt.Errorf("TELEGRAM_TOKEN is required")
	}

	return cfg, nil
}

func parseInterval(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	hours, err := time.ParseDuration(raw + "h")
	if err != nil || hours <= 0 {
		return 0
	}
	return hours
}

func parsePositiveInt(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

func parsePositiveFloat(raw string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || f <= 0 {
		return 0
	}
	return f
}
