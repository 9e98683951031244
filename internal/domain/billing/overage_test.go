package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverageMode_Cap(t *testing.T) {
	tests := []struct {
		mode   OverageMode
		limit  int64
		capped bool
	}{
		{OverageCutOff, 50000, true},
		{OverageAllow25, 62500, true},
		{OverageAllow100, 100000, true},
		{OverageUnlimited, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			limit, capped := tt.mode.Cap(50000)
			assert.Equal(t, tt.limit, limit)
			assert.Equal(t, tt.capped, capped)
		})
	}
}

func TestOveragePolicy_CanSelectOverageMode(t *testing.T) {
	policy := NewOveragePolicy(DefaultCatalog())

	assert.Equal(t, PlanStarter, policy.EntryTierID())
	assert.False(t, policy.CanSelectOverageMode(OverageUnlimited, PlanStarter))
	assert.True(t, policy.CanSelectOverageMode(OverageAllow100, PlanStarter))
	assert.True(t, policy.CanSelectOverageMode(OverageUnlimited, PlanGrowth))
	assert.False(t, policy.CanSelectOverageMode(OverageMode("double"), PlanGrowth))
}

func TestOveragePolicy_Transition(t *testing.T) {
	policy := NewOveragePolicy(DefaultCatalog())

	t.Run("unlimited on entry tier is ignored", func(t *testing.T) {
		got := policy.Transition(OverageAllow25, OverageUnlimited, PlanStarter)
		assert.Equal(t, OverageAllow25, got)
	})

	t.Run("unlimited on higher tier is accepted", func(t *testing.T) {
		got := policy.Transition(OverageCutOff, OverageUnlimited, PlanScale)
		assert.Equal(t, OverageUnlimited, got)
	})

	t.Run("invalid mode is ignored", func(t *testing.T) {
		got := policy.Transition(OverageCutOff, OverageMode(""), PlanScale)
		assert.Equal(t, OverageCutOff, got)
	})
}

func TestOveragePolicy_OnPlanChange(t *testing.T) {
	policy := NewOveragePolicy(DefaultCatalog())

	tests := []struct {
		name    string
		current OverageMode
		plan    string
		want    OverageMode
	}{
		{"unlimited down to entry tier", OverageUnlimited, PlanStarter, OverageCutOff},
		{"unlimited between higher tiers", OverageUnlimited, PlanEnterprise, OverageUnlimited},
		{"capped mode kept on entry tier", OverageAllow100, PlanStarter, OverageAllow100},
		{"invalid mode falls back to default", OverageMode("??"), PlanGrowth, DefaultOverageMode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.OnPlanChange(tt.current, tt.plan))
		})
	}
}

func TestOveragePolicy_AvailableModes(t *testing.T) {
	policy := NewOveragePolicy(DefaultCatalog())

	assert.Equal(t, []OverageMode{OverageCutOff, OverageAllow25, OverageAllow100}, policy.AvailableModes(PlanStarter))
	assert.Equal(t, []OverageMode{OverageCutOff, OverageAllow25, OverageAllow100, OverageUnlimited}, policy.AvailableModes(PlanGrowth))
}

func TestPolicyText(t *testing.T) {
	plan := mustPlan(t, DefaultCatalog(), PlanGrowth)

	assert.Equal(t, "API access pauses once 50,000 records are used until the next billing period.", PolicyText(plan, OverageCutOff))
	assert.Contains(t, PolicyText(plan, OverageAllow25), "up to 62,500 records (125% of your allowance)")
	assert.Contains(t, PolicyText(plan, OverageAllow100), "up to 100,000 records (200% of your allowance)")
	assert.Contains(t, PolicyText(plan, OverageUnlimited), "with no cap")
}

func TestParseOverageMode(t *testing.T) {
	mode, err := ParseOverageMode("allow_100")
	require.NoError(t, err)
	assert.Equal(t, OverageAllow100, mode)

	_, err = ParseOverageMode("allow_50")
	assert.ErrorIs(t, err, ErrInvalidOverageMode)
}
