package scoring

// Policy holds every tunable weight and cap used by the factor calculators
// and the aggregator. All values are policy, not contract: they are loaded
// from configuration with these defaults.
type Policy struct {
	// Payment History (max 35)
	PaymentHistoryMax   float64
	OnTimeRateWeight    float64
	StreakPointPerUnit  float64
	StreakCap           int
	DefaultPenaltyRatio float64 // multiplier applied while an unresolved default exists
	DefaultLookbackDays int

	// Circle Completion (max 25)
	CircleCompletionMax  float64
	CompletionRateWeight float64
	CycleBonusCap        float64

	// Time & Reliability (max 20)
	TimeReliabilityMax float64
	AgeHalfLifeDays    float64
	DormancyGapDays    int
	DormancyDecay      float64

	// Security Deposit (max 10)
	SecurityDepositMax float64
	ReferenceDeposit   float64

	// Diversity & Social (max 7)
	DiversitySocialMax  float64
	ActiveCirclesCap    int
	EndorsementPoints   float64
	EndorsementBonusCap float64

	// Engagement (max 3)
	EngagementMax          float64
	LongevityMilestoneDays int

	// Modifiers
	FirstCircleBonus float64
	VouchPointsCap   float64 // max active vouch points counted per member

	// Account-age hard ceiling, ascending by MaxAgeDays; the final entry
	// (MaxAgeDays 0) is the open-ended bracket.
	AgeCaps []AgeCap
}

// AgeCap is one bracket of the account-age cap table.
type AgeCap struct {
	MaxAgeDays int // exclusive upper bound; 0 means no bound
	Cap        float64
}

// DefaultPolicy returns the standard scoring policy.
func DefaultPolicy() Policy {
	return Policy{
		PaymentHistoryMax:   35,
		OnTimeRateWeight:    26,
		StreakPointPerUnit:  0.04,
		StreakCap:           50,
		DefaultPenaltyRatio: 0.3,
		DefaultLookbackDays: 365,

		CircleCompletionMax:  25,
		CompletionRateWeight: 20,
		CycleBonusCap:        5,

		TimeReliabilityMax: 20,
		AgeHalfLifeDays:    180,
		DormancyGapDays:    90,
		DormancyDecay:      0.6,

		SecurityDepositMax: 10,
		ReferenceDeposit:   500,

		DiversitySocialMax:  7,
		ActiveCirclesCap:    3,
		EndorsementPoints:   0.5,
		EndorsementBonusCap: 4,

		EngagementMax:          3,
		LongevityMilestoneDays: 365,

		FirstCircleBonus: 5,
		VouchPointsCap:   15,

		AgeCaps: []AgeCap{
			{MaxAgeDays: 180, Cap: 75},
			{MaxAgeDays: 365, Cap: 85},
			{MaxAgeDays: 547, Cap: 90},
			{MaxAgeDays: 0, Cap: 100},
		},
	}
}

// AgeCapFor returns the hard score ceiling for a given account age.
func (p Policy) AgeCapFor(accountAgeDays int) float64 {
	for _, bracket := range p.AgeCaps {
		if bracket.MaxAgeDays == 0 || accountAgeDays < bracket.MaxAgeDays {
			return bracket.Cap
		}
	}
	return 100
}
