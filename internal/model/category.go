package model

import "time"

// DefaultDailyLimit caps how many tasks of one category may be created for
// the same day unless the category overrides it.
const DefaultDailyLimit = 5

// Category groups tasks by area (work, health, study, etc.).
type Category struct {
	ID     string `gorm:"primaryKey"`
	UserID uint   `gorm:"index:idx_user_category_name,unique"`
	Name   string `gorm:"index:idx_user_category_name,unique"`
	Color  string
	Icon   string

	// DailyLimit is the flat max count of same-day tasks enforced at
	// creation time by the category gate. Zero means DefaultDailyLimit.
	DailyLimit int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EffectiveDailyLimit resolves the zero value to the system default.
func (c *Category) EffectiveDailyLimit() int {
	if c.DailyLimit <= 0 {
		return DefaultDailyLimit
	}
	return c.DailyLimit
}
