package plan

import (
	"time"

	"focus-planner/internal/model"
)

// Milestones are the streak lengths that trigger a celebration, ascending.
var Milestones = []int{3, 7, 14, 21, 30, 60, 100}

// freezeEarnEvery grants one freeze token back per this many consecutive days.
const freezeEarnEvery = 7

// RegisterCompletion is the single transition of the streak state machine.
// It is idempotent against repeated completions on the same day and treats a
// gap of exactly two days as bridgeable when a freeze token is available.
// The input state is not mutated.
func RegisterCompletion(s model.StreakState, completedAt, now time.Time) model.StreakState {
	key := DayKey(completedAt)
	if key == s.LastCompletedDate {
		return s
	}

	switch {
	case s.LastCompletedDate == "":
		s.CurrentStreak = 1
		s.FreezeUsedOn = ""
		s.LastCompletedDate = key
	default:
		last, ok := ParseDayKey(s.LastCompletedDate)
		if !ok {
			// Corrupt persisted day-key: restart rather than crash.
			s.CurrentStreak = 1
			s.FreezeUsedOn = ""
			s.LastCompletedDate = key
			break
		}
		gap := DaysBetween(last, completedAt)
		switch {
		case gap <= 0:
			// Backdated completion: keep the streak, just clear the
			// freeze flag. The recorded last day does not move backwards.
			s.FreezeUsedOn = ""
			return s
		case gap == 1:
			s.CurrentStreak++
			s.FreezeUsedOn = ""
		case gap == 2 && s.FreezeTokens > 0:
			// One missed day bridged by a freeze token.
			s.CurrentStreak++
			s.FreezeTokens--
			s.FreezeUsedOn = key
		default:
			s.CurrentStreak = 1
			s.FreezeUsedOn = ""
		}
		s.LastCompletedDate = key
	}

	if s.CurrentStreak > s.LongestStreak {
		s.LongestStreak = s.CurrentStreak
	}
	if s.CurrentStreak > 0 && s.CurrentStreak%freezeEarnEvery == 0 {
		s.FreezeTokens++
	}
	for _, m := range Milestones {
		if s.CurrentStreak == m {
			achieved := now
			s.MilestoneStreak = m
			s.MilestoneAchievedAt = &achieved
			break
		}
	}
	return s
}

// DismissMilestone clears a pending celebration; the explicit counterpart of
// the milestone set in RegisterCompletion.
func DismissMilestone(s model.StreakState) model.StreakState {
	s.MilestoneStreak = 0
	s.MilestoneAchievedAt = nil
	return s
}

// MergeStreaks reconciles two independently evolved copies of the same
// user's streak (offline sync): the copy with the more recent
// LastCompletedDate wins, the max of both longest streaks survives, and a
// pending celebration on either side is preserved.
func MergeStreaks(a, b model.StreakState) model.StreakState {
	winner, loser := a, b
	// Day-keys compare chronologically as strings; empty sorts oldest.
	if b.LastCompletedDate > a.LastCompletedDate {
		winner, loser = b, a
	}
	if loser.LongestStreak > winner.LongestStreak {
		winner.LongestStreak = loser.LongestStreak
	}
	if !winner.HasMilestone() && loser.HasMilestone() {
		winner.MilestoneStreak = loser.MilestoneStreak
		winner.MilestoneAchievedAt = loser.MilestoneAchievedAt
	}
	return winner
}
