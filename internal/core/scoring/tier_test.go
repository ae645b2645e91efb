package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tanda-xntrust/internal/core/domain"
)

func TestResolveTier(t *testing.T) {
	thresholds := DefaultThresholds()

	cases := []struct {
		score float64
		want  domain.Tier
	}{
		{100, domain.TierElite},
		{88, domain.TierElite},
		{87.9, domain.TierExcellent},
		{75, domain.TierExcellent},
		{60, domain.TierGood},
		{59.5, domain.TierFair},
		{45, domain.TierFair},
		{25, domain.TierPoor},
		{24.9, domain.TierCritical},
		{0, domain.TierCritical},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, ResolveTier(tc.score, thresholds), "score %v", tc.score)
	}
}

func TestScoreFloorMatchesThresholds(t *testing.T) {
	thresholds := DefaultThresholds()

	assert.Equal(t, 88.0, ScoreFloor(domain.TierElite, thresholds))
	assert.Equal(t, 25.0, ScoreFloor(domain.TierPoor, thresholds))
	assert.Equal(t, 0.0, ScoreFloor(domain.TierCritical, thresholds))
}

func TestTierBenefits(t *testing.T) {
	elite := BenefitsFor(domain.TierElite)
	assert.True(t, elite.CanVouch)
	assert.True(t, elite.CanJoinCircles)
	assert.Equal(t, 1, elite.PayoutSlotFloor)

	good := BenefitsFor(domain.TierGood)
	assert.False(t, good.CanVouch)
	assert.True(t, good.CanJoinCircles)

	critical := BenefitsFor(domain.TierCritical)
	assert.False(t, critical.CanJoinCircles)
	assert.False(t, critical.CanVouch)
	assert.Zero(t, critical.AdvanceCeiling)
}

func TestConfigurableThresholds(t *testing.T) {
	custom := Thresholds{Elite: 90, Excellent: 80, Good: 65, Fair: 50, Poor: 30}
	assert.Equal(t, domain.TierExcellent, ResolveTier(88, custom))
	assert.Equal(t, domain.TierCritical, ResolveTier(29, custom))
}
