package engine

import (
	"context"

	"github.com/abhisek/masteryengine/internal/streak"
)

// StreakSummary is the user's study streak across all curricula.
type StreakSummary struct {
	Current       int `json:"current"`
	Longest       int `json:"longest"`
	NextMilestone int `json:"next_milestone"`
}

// Streak computes the streak from every logged activity, counting days in
// the engine's timezone.
func (e *Engine) Streak(ctx context.Context) (StreakSummary, error) {
	times, err := e.progress.ActivityTimes(ctx, e.user)
	if err != nil {
		return StreakSummary{}, err
	}
	now := e.now().In(e.loc)
	cur := streak.Current(times, now)
	return StreakSummary{
		Current:       cur,
		Longest:       streak.Longest(times, now),
		NextMilestone: streak.NextMilestone(cur),
	}, nil
}
