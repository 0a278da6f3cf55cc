package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTierLimits(t *testing.T) {
	cases := []struct {
		tier        Tier
		generations int
		businesses  int
	}{
		{TierFreeTrial, 50, 1},
		{TierSMBBasic, 500, 1},
		{TierSMBPro, 2000, 1},
		{TierAdvisorBasic, 1000, 10},
		{TierAdvisorPro, 5000, 50},
	}

	for _, tc := range cases {
		limits, ok := LimitsFor(tc.tier)
		require.True(t, ok, "tier %s", tc.tier)
		require.Equal(t, tc.generations, limits.GenerationsPerMonth)
		require.Equal(t, tc.businesses, limits.BusinessesAllowed)
	}
}

func TestUnlimitedSentinel(t *testing.T) {
	pro, _ := LimitsFor(TierSMBPro)
	require.Equal(t, Unlimited, pro.IntegrationsAllowed)
	require.Equal(t, Unlimited, pro.TemplatesAllowed)

	advisorPro, _ := LimitsFor(TierAdvisorPro)
	require.Equal(t, Unlimited, advisorPro.IntegrationsAllowed)
}

func TestPlansExcludeTrial(t *testing.T) {
	plans := Plans()
	require.Len(t, plans, 4)
	for _, plan := range plans {
		require.NotEqual(t, TierFreeTrial, plan.Tier)
		require.Positive(t, plan.PriceUSD)
		require.NotEmpty(t, plan.Features)
	}
	require.Equal(t, int64(49), plans[0].PriceUSD)
	require.Equal(t, int64(299), plans[len(plans)-1].PriceUSD)
}

func TestValidTier(t *testing.T) {
	require.True(t, ValidTier(TierFreeTrial))
	require.False(t, ValidTier(Tier("ENTERPRISE")))
	require.True(t, PaidTier(TierSMBBasic))
	require.False(t, PaidTier(TierFreeTrial))
}
