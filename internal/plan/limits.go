package plan

import (
	"encoding/json"
	"strconv"
	"strings"
)

// HourLimit caps a category's scheduled hours per day, split by weekday vs.
// weekend. A missing weekend value falls back to the weekday value.
type HourLimit struct {
	WeekdayMax float64
	WeekendMax float64
}

// Limits is the normalized, strictly typed scheduler configuration. Loose
// persisted payloads go through ParseLimits exactly once at the load
// boundary; the scheduler itself never sees a string-typed number or a
// partial object.
type Limits struct {
	MaxTasksPerDay int
	DefaultHours   HourLimit

	// Categories keys hour limits by category *name*, matching how the
	// category snapshot is embedded in tasks.
	Categories map[string]HourLimit
}

// DefaultLimits is the fallback configuration when a user has no stored
// preferences or the stored payload is unusable.
func DefaultLimits() Limits {
	return Limits{
		MaxTasksPerDay: 6,
		DefaultHours:   HourLimit{WeekdayMax: 3, WeekendMax: 5},
	}
}

// HourCap resolves the applicable per-day hour budget for a category name.
func (l Limits) HourCap(category string, weekend bool) float64 {
	limit := l.DefaultHours
	if cat, ok := l.Categories[category]; ok {
		limit = cat
	}
	if weekend {
		return limit.WeekendMax
	}
	return limit.WeekdayMax
}

// ParseLimits normalizes a raw preferences document into Limits. Historical
// payloads carry numbers as strings and omit fields freely, so every value
// is coerced defensively; anything unusable degrades to the defaults
// instead of propagating a parse error into the scheduler.
//
// Expected shape (all fields optional):
//
//	{
//	  "maxTasksPerDay": 6,
//	  "categoryLimits": {
//	    "Работа": {"weekdayMax": "3", "weekendMax": 5}
//	  }
//	}
func ParseLimits(raw string, defaults Limits) Limits {
	out := defaults
	if strings.TrimSpace(raw) == "" {
		return out
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return out
	}

	if v, ok := doc["maxTasksPerDay"]; ok {
		if n, ok := coerceFloat(v); ok && n > 0 {
			out.MaxTasksPerDay = int(n)
		}
	}

	var cats map[string]map[string]json.RawMessage
	if v, ok := doc["categoryLimits"]; ok {
		if err := json.Unmarshal(v, &cats); err != nil {
			return out
		}
	}
	if len(cats) == 0 {
		return out
	}

	out.Categories = make(map[string]HourLimit, len(cats))
	for name, fields := range cats {
		limit := out.DefaultHours
		weekday, hasWeekday := float64(0), false
		if v, ok := fields["weekdayMax"]; ok {
			weekday, hasWeekday = coerceFloat(v)
		}
		if hasWeekday && weekday > 0 {
			limit.WeekdayMax = weekday
			// Weekend falls back to weekday until overridden below.
			limit.WeekendMax = weekday
		}
		if v, ok := fields["weekendMax"]; ok {
			if weekend, ok := coerceFloat(v); ok && weekend > 0 {
				limit.WeekendMax = weekend
			}
		}
		out.Categories[name] = limit
	}
	return out
}

// coerceFloat accepts a JSON number or a numeric string.
func coerceFloat(raw json.RawMessage) (float64, bool) {
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err == nil {
			return n, true
		}
	}
	return 0, false
}
