package model

import "time"

// StreakState tracks consecutive-day completion per user. It is mutated only
// through plan.RegisterCompletion and merged across devices with
// plan.MergeStreaks.
type StreakState struct {
	UserID        uint `gorm:"primaryKey"`
	CurrentStreak int
	LongestStreak int

	// FreezeTokens are grace credits: one missed day can be bridged by
	// consuming a token instead of breaking the streak.
	FreezeTokens int

	// LastCompletedDate and FreezeUsedOn are day-key strings (YYYY-MM-DD),
	// empty when unset.
	LastCompletedDate string
	FreezeUsedOn      string

	// MilestoneStreak/MilestoneAchievedAt form the pending celebration,
	// cleared only by an explicit dismiss.
	MilestoneStreak     int
	MilestoneAchievedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewStreakState returns the initial state: zero streak, one free freeze token.
func NewStreakState(userID uint) StreakState {
	return StreakState{UserID: userID, FreezeTokens: 1}
}

// HasMilestone reports whether an undismissed celebration is pending.
func (s *StreakState) HasMilestone() bool {
	return s.MilestoneStreak > 0 && s.MilestoneAchievedAt != nil
}
