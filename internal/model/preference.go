package model

import "time"

// Preference stores the per-user planner settings as a raw JSON document.
// Historical payloads are loosely typed (numbers arriving as strings, partial
// objects), so the row is normalized once at load by plan.ParseLimits instead
// of being mapped to columns.
type Preference struct {
	UserID    uint   `gorm:"primaryKey"`
	Payload   string `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
