// Package streak derives streak state from a habit's completion log.
package streak

import (
	"sort"
	"time"

	"sparkos/internal/domain/entity"
	"sparkos/internal/domain/period"
)

// Compute derives the streak view of a habit from the calendar days of its
// completions as seen on calendar day today.
//
// The current streak is the run of adjacent periods ending at the most recent
// completion, provided that completion is in today's period or the one before
// it. Otherwise a boundary has been missed and the current streak is zero.
func Compute(c entity.Cadence, completions []time.Time, today time.Time) entity.StreakState {
	if len(completions) == 0 {
		return entity.StreakState{}
	}

	days := make([]time.Time, len(completions))
	copy(days, completions)
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	var longest, run int32
	var prev int64
	for i, d := range days {
		idx := period.Of(c, d).Index()
		switch {
		case i == 0:
			run = 1
		case idx == prev:
			// duplicate period, cannot happen with the uniqueness constraint
			continue
		case idx == prev+1:
			run++
		default:
			run = 1
		}
		prev = idx
		if run > longest {
			longest = run
		}
	}

	lastDay := entity.DateOf(days[len(days)-1])
	state := entity.StreakState{
		Current:           run,
		Longest:           longest,
		LastQualifyingDay: &lastDay,
	}

	if period.Of(c, lastDay).Index() < period.Of(c, today).Prev().Index() {
		state.Current = 0
	}
	return state
}

// Missed reports whether the period immediately preceding asOf's period has
// no completion while the streak was still alive at its start, meaning a
// rollover at asOf must break it.
func Missed(c entity.Cadence, s entity.StreakState, asOf time.Time) bool {
	if s.Current == 0 || s.LastQualifyingDay == nil {
		return false
	}
	boundary := period.Of(c, asOf).Prev()
	return period.Of(c, *s.LastQualifyingDay).Before(boundary)
}

// RunLength returns the number of adjacent periods with a completion in the
// run containing day. It is zero when day's period has no completion.
func RunLength(c entity.Cadence, completions []time.Time, day time.Time) int32 {
	seen := make(map[int64]bool, len(completions))
	for _, d := range completions {
		seen[period.Of(c, d).Index()] = true
	}

	idx := period.Of(c, day).Index()
	if !seen[idx] {
		return 0
	}

	n := int32(1)
	for i := idx - 1; seen[i]; i-- {
		n++
	}
	for i := idx + 1; seen[i]; i++ {
		n++
	}
	return n
}
