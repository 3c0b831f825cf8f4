package gamification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReward(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		streak int32
		want   int64
	}{
		{0, 10},
		{1, 10},
		{2, 11},
		{3, 12},
		{21, 30},
		{22, 30},
		{365, 30},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, p.Reward(tt.streak), "streak %d", tt.streak)
	}
}

func TestReward_WorkedExample(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, int64(33), p.Reward(1)+p.Reward(2)+p.Reward(3))
}

func TestComputeLevel(t *testing.T) {
	p := Policy{LevelThresholds: []int64{0, 100, 250, 500}}

	tests := []struct {
		xp   int64
		want int32
	}{
		{-1, 1},
		{0, 1},
		{99, 1},
		{100, 2},
		{249, 2},
		{250, 3},
		{500, 4},
		{1 << 40, 4},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, p.ComputeLevel(tt.xp), "xp %d", tt.xp)
	}
}

func TestComputeLevel_Monotonic(t *testing.T) {
	p := DefaultPolicy()

	prev := p.ComputeLevel(0)
	for xp := int64(0); xp <= 6000; xp += 7 {
		level := p.ComputeLevel(xp)
		assert.GreaterOrEqual(t, level, prev)
		assert.Equal(t, level, p.ComputeLevel(xp), "pure")
		prev = level
	}
	assert.Equal(t, p.MaxLevel(), prev)
}

func TestThresholdAndPercent(t *testing.T) {
	p := Policy{LevelThresholds: []int64{0, 100, 300}}

	th, ok := p.Threshold(2)
	require.True(t, ok)
	assert.Equal(t, int64(100), th)

	_, ok = p.Threshold(4)
	assert.False(t, ok)
	_, ok = p.Threshold(0)
	assert.False(t, ok)

	assert.InDelta(t, 25.0, p.PercentToNext(25), 0.001)
	assert.InDelta(t, 50.0, p.PercentToNext(200), 0.001)
	assert.InDelta(t, 100.0, p.PercentToNext(300), 0.001)
}

func TestValidate(t *testing.T) {
	require.NoError(t, DefaultPolicy().Validate())

	tests := []struct {
		name   string
		mutate func(p *Policy)
	}{
		{"negative base", func(p *Policy) { p.BaseReward = -1 }},
		{"negative bonus", func(p *Policy) { p.BonusPerStreakDay = -1 }},
		{"negative cap", func(p *Policy) { p.MaxStreakBonus = -1 }},
		{"empty table", func(p *Policy) { p.LevelThresholds = nil }},
		{"nonzero first", func(p *Policy) { p.LevelThresholds = []int64{10, 20} }},
		{"not ascending", func(p *Policy) { p.LevelThresholds = []int64{0, 20, 20} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultPolicy()
			tt.mutate(&p)
			assert.Error(t, p.Validate())
		})
	}
}

func TestLinearThresholds(t *testing.T) {
	assert.Equal(t, []int64{0, 100, 200}, LinearThresholds(3, 100))
}
