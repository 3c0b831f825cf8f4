// Package gamification holds the XP reward policy and the level table.
package gamification

import (
	"errors"
	"fmt"
	"sort"
)

// DefaultLevels is the number of levels in the default table
const DefaultLevels = 50

// DefaultXPPerLevel is the XP distance between two default levels
const DefaultXPPerLevel = 100

// Policy is the configurable numeric policy of the engine
type Policy struct {
	// BaseReward is granted for every accepted completion
	BaseReward int64
	// BonusPerStreakDay is added per streak period beyond the first
	BonusPerStreakDay int64
	// MaxStreakBonus caps the streak bonus
	MaxStreakBonus int64
	// LevelThresholds[i] is the XP needed to reach level i+1.
	// Must start at 0 and be strictly ascending.
	LevelThresholds []int64
}

// DefaultPolicy returns base 10, +1 per streak day capped at +20 and
// 100 XP per level
func DefaultPolicy() Policy {
	return Policy{
		BaseReward:        10,
		BonusPerStreakDay: 1,
		MaxStreakBonus:    20,
		LevelThresholds:   LinearThresholds(DefaultLevels, DefaultXPPerLevel),
	}
}

// LinearThresholds builds a table of n levels spaced step XP apart
func LinearThresholds(n int, step int64) []int64 {
	thresholds := make([]int64, n)
	for i := range thresholds {
		thresholds[i] = int64(i) * step
	}
	return thresholds
}

// Validate checks the policy for consistency
func (p Policy) Validate() error {
	if p.BaseReward < 0 {
		return errors.New("base reward must not be negative")
	}
	if p.BonusPerStreakDay < 0 {
		return errors.New("bonus per streak day must not be negative")
	}
	if p.MaxStreakBonus < 0 {
		return errors.New("max streak bonus must not be negative")
	}
	if len(p.LevelThresholds) == 0 {
		return errors.New("level thresholds must not be empty")
	}
	if p.LevelThresholds[0] != 0 {
		return fmt.Errorf("first level threshold must be 0, got %d", p.LevelThresholds[0])
	}
	for i := 1; i < len(p.LevelThresholds); i++ {
		if p.LevelThresholds[i] <= p.LevelThresholds[i-1] {
			return fmt.Errorf("level thresholds must be strictly ascending at index %d", i)
		}
	}
	return nil
}

// StreakBonus returns the bonus for a completion leaving the streak at streak
func (p Policy) StreakBonus(streak int32) int64 {
	if streak <= 1 {
		return 0
	}
	bonus := int64(streak-1) * p.BonusPerStreakDay
	if bonus > p.MaxStreakBonus {
		return p.MaxStreakBonus
	}
	return bonus
}

// Reward returns the XP granted for a completion leaving the streak at streak
func (p Policy) Reward(streak int32) int64 {
	return p.BaseReward + p.StreakBonus(streak)
}

// ComputeLevel returns the highest level whose threshold is <= totalXP.
// Levels are 1-based; negative totals are treated as 0.
func (p Policy) ComputeLevel(totalXP int64) int32 {
	// first index whose threshold exceeds totalXP
	i := sort.Search(len(p.LevelThresholds), func(i int) bool {
		return p.LevelThresholds[i] > totalXP
	})
	if i == 0 {
		return 1
	}
	return int32(i)
}

// Threshold returns the XP needed to reach level, and false past the table
func (p Policy) Threshold(level int32) (int64, bool) {
	if level < 1 || int(level) > len(p.LevelThresholds) {
		return 0, false
	}
	return p.LevelThresholds[level-1], true
}

// MaxLevel returns the top level of the table
func (p Policy) MaxLevel() int32 {
	return int32(len(p.LevelThresholds))
}

// PercentToNext returns how far totalXP is between its level threshold and
// the next one, in [0, 100]. It is 100 at the top level.
func (p Policy) PercentToNext(totalXP int64) float64 {
	level := p.ComputeLevel(totalXP)
	current, _ := p.Threshold(level)
	next, ok := p.Threshold(level + 1)
	if !ok {
		return 100
	}
	return float64(totalXP-current) / float64(next-current) * 100
}
