package domain

// Tier identifies a subscription plan.
type Tier string

const (
	TierFreeTrial    Tier = "FREE_TRIAL"
	TierSMBBasic     Tier = "SMB_BASIC"
	TierSMBPro       Tier = "SMB_PRO"
	TierAdvisorBasic Tier = "ADVISOR_BASIC"
	TierAdvisorPro   Tier = "ADVISOR_PRO"
)

// Unlimited is the sentinel for limits that are not enforced.
const Unlimited = -1

// Limits captures the per-tier quota dimensions.
type Limits struct {
	GenerationsPerMonth int `json:"ai_generations_per_month"`
	BusinessesAllowed   int `json:"businesses_allowed"`
	IntegrationsAllowed int `json:"integrations_allowed"`
	TemplatesAllowed    int `json:"templates_allowed"`
}

var tierLimits = map[Tier]Limits{
	TierFreeTrial:    {GenerationsPerMonth: 50, BusinessesAllowed: 1, IntegrationsAllowed: 2, TemplatesAllowed: 5},
	TierSMBBasic:     {GenerationsPerMonth: 500, BusinessesAllowed: 1, IntegrationsAllowed: 3, TemplatesAllowed: 20},
	TierSMBPro:       {GenerationsPerMonth: 2000, BusinessesAllowed: 1, IntegrationsAllowed: Unlimited, TemplatesAllowed: Unlimited},
	TierAdvisorBasic: {GenerationsPerMonth: 1000, BusinessesAllowed: 10, IntegrationsAllowed: 5, TemplatesAllowed: 50},
	TierAdvisorPro:   {GenerationsPerMonth: 5000, BusinessesAllowed: 50, IntegrationsAllowed: Unlimited, TemplatesAllowed: Unlimited},
}

// tierPricing is the monthly USD price of each paid tier.
var tierPricing = map[Tier]int64{
	TierSMBBasic:     49,
	TierSMBPro:       99,
	TierAdvisorBasic: 199,
	TierAdvisorPro:   299,
}

var tierFeatures = map[Tier][]string{
	TierFreeTrial: {
		"14-day free trial",
		"50 AI generations/month",
		"1 business",
		"2 integrations",
		"Basic support",
	},
	TierSMBBasic: {
		"500 AI generations/month",
		"1 business",
		"3 integrations",
		"Email support",
		"All AI modules",
	},
	TierSMBPro: {
		"2,000 AI generations/month",
		"1 business",
		"Unlimited integrations",
		"Priority support",
		"Advanced analytics",
	},
	TierAdvisorBasic: {
		"1,000 AI generations/month",
		"Up to 10 businesses",
		"5 integrations per business",
		"Advisor dashboard",
		"Client management",
	},
	TierAdvisorPro: {
		"5,000 AI generations/month",
		"Up to 50 businesses",
		"Unlimited integrations",
		"White-label options",
		"Dedicated support",
	},
}

// ValidTier reports whether t names a known tier.
func ValidTier(t Tier) bool {
	_, ok := tierLimits[t]
	return ok
}

// PaidTier reports whether t can be purchased through checkout.
func PaidTier(t Tier) bool {
	_, ok := tierPricing[t]
	return ok
}

// LimitsFor returns the quota dimensions of a tier.
func LimitsFor(t Tier) (Limits, bool) {
	limits, ok := tierLimits[t]
	return limits, ok
}

// Plan is the public description of one tier.
type Plan struct {
	Tier     Tier     `json:"tier"`
	Name     string   `json:"name"`
	PriceUSD int64    `json:"price_usd"`
	Limits   Limits   `json:"limits"`
	Features []string `json:"features"`
}

// Plans lists the purchasable tiers in ascending price order.
func Plans() []Plan {
	order := []Tier{TierSMBBasic, TierSMBPro, TierAdvisorBasic, TierAdvisorPro}
	plans := make([]Plan, 0, len(order))
	for _, tier := range order {
		plans = append(plans, Plan{
			Tier:     tier,
			Name:     planName(tier),
			PriceUSD: tierPricing[tier],
			Limits:   tierLimits[tier],
			Features: tierFeatures[tier],
		})
	}
	return plans
}

func planName(t Tier) string {
	switch t {
	case TierSMBBasic:
		return "SMB Basic"
	case TierSMBPro:
		return "SMB Pro"
	case TierAdvisorBasic:
		return "Advisor Basic"
	case TierAdvisorPro:
		return "Advisor Pro"
	default:
		return "Free Trial"
	}
}
