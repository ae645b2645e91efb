package domain

import "time"

// Role represents user role in the system
type Role string

const (
	RoleMember  Role = "MEMBER"
	RoleElder   Role = "ELDER"
	RoleAdmin   Role = "ADMIN"
	RoleService Role = "SERVICE" // trusted internal callers (payment processor, circle engine)
)

// EventKind is the closed set of score-relevant event kinds.
// Corrections are modeled as compensating kinds (e.g. DEFAULT_RESOLVED),
// never as edits to stored events.
type EventKind string

const (
	EventOnTimePayment    EventKind = "ON_TIME_PAYMENT"
	EventLatePayment      EventKind = "LATE_PAYMENT"
	EventMissedPayment    EventKind = "MISSED_PAYMENT"
	EventCircleCompleted  EventKind = "CIRCLE_COMPLETED"
	EventCircleDefaulted  EventKind = "CIRCLE_DEFAULTED"
	EventDefaultResolved  EventKind = "DEFAULT_RESOLVED"
	EventDepositLocked    EventKind = "DEPOSIT_LOCKED"
	EventDepositReleased  EventKind = "DEPOSIT_RELEASED"
	EventVouchReceived    EventKind = "VOUCH_RECEIVED"
	EventVouchRevoked     EventKind = "VOUCH_REVOKED"
	EventEndorsement      EventKind = "ENDORSEMENT_RECEIVED"
	EventKYCVerified      EventKind = "KYC_VERIFIED"
	EventProfileCompleted EventKind = "PROFILE_COMPLETED"
	EventCircleJoined     EventKind = "CIRCLE_JOINED"
	EventCircleLeft       EventKind = "CIRCLE_LEFT"
)

// AllEventKinds lists every valid kind for validation and exhaustive matching.
var AllEventKinds = []EventKind{
	EventOnTimePayment, EventLatePayment, EventMissedPayment,
	EventCircleCompleted, EventCircleDefaulted, EventDefaultResolved,
	EventDepositLocked, EventDepositReleased,
	EventVouchReceived, EventVouchRevoked, EventEndorsement,
	EventKYCVerified, EventProfileCompleted,
	EventCircleJoined, EventCircleLeft,
}

// Valid reports whether k is a known event kind.
func (k EventKind) Valid() bool {
	for _, kind := range AllEventKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// MagnitudeRange returns the allowed [min, max] magnitude for an event kind.
// Payments and deposits carry a monetary amount; milestone kinds carry 1.
func (k EventKind) MagnitudeRange() (min, max float64) {
	switch k {
	case EventOnTimePayment, EventLatePayment, EventMissedPayment:
		return 0, 10_000_000
	case EventDepositLocked, EventDepositReleased:
		return 0.01, 10_000_000
	case EventVouchReceived, EventVouchRevoked:
		return 1, 25
	default:
		// milestone/flag kinds carry exactly 1
		return 1, 1
	}
}

// ScoreEvent is an immutable score-relevant event for a member.
type ScoreEvent struct {
	ID         string
	MembNo     string
	Kind       EventKind
	Magnitude  float64
	OccurredAt time.Time
	Metadata   string
	CreatedAt  time.Time
}

// Member represents a savings-circle member in the domain layer.
// CurrentScore and CurrentTier are derived caches owned by the score
// aggregator; they are never written by any other component.
type Member struct {
	MembNo           string
	FullName         string
	Phone            string
	IsActive         bool
	AccountCreatedAt time.Time
	CurrentScore     float64
	CurrentTier      Tier
}

// AccountAgeDays returns the member's account age in whole days at now.
func (m *Member) AccountAgeDays(now time.Time) int {
	return int(now.Sub(m.AccountCreatedAt).Hours() / 24)
}

// Tier is the discrete trust bracket derived from XnScore (1 best, 6 worst).
type Tier int

const (
	TierElite     Tier = 1
	TierExcellent Tier = 2
	TierGood      Tier = 3
	TierFair      Tier = 4
	TierPoor      Tier = 5
	TierCritical  Tier = 6
)

// Name returns the display name of the tier.
func (t Tier) Name() string {
	switch t {
	case TierElite:
		return "Elite"
	case TierExcellent:
		return "Excellent"
	case TierGood:
		return "Good"
	case TierFair:
		return "Fair"
	case TierPoor:
		return "Poor"
	case TierCritical:
		return "Critical"
	default:
		return "Unknown"
	}
}

// TierBenefits is the fixed benefits record exposed per tier.
type TierBenefits struct {
	PayoutSlotFloor      int     `json:"payout_slot_floor"` // earliest payout slot a member may request
	EarlyWithdrawFeePct  float64 `json:"early_withdraw_fee_pct"`
	OnTimeBonusPct       float64 `json:"on_time_bonus_pct"`
	AdvanceCeiling       float64 `json:"advance_ceiling"`
	CanVouch             bool    `json:"can_vouch"`
	MaxConcurrentVouches int     `json:"max_concurrent_vouches"`
	MaxPointsPerVouch    float64 `json:"max_points_per_vouch"`
	CanJoinCircles       bool    `json:"can_join_circles"`
}

// Vouch status values
const (
	VouchStatusActive  = "ACTIVE"
	VouchStatusRevoked = "REVOKED"
	VouchStatusExpired = "EXPIRED"
)

// Vouch is a time-bounded score boost issued by an Elder.
type Vouch struct {
	ID          string
	VoucherNo   string
	RecipientNo string
	Points      float64
	IssuedAt    time.Time
	ExpiresAt   time.Time
	Status      string
	RevokedAt   *time.Time
	RevokedBy   *string
}

// EffectiveStatus evaluates expiry lazily: a stored ACTIVE vouch past its
// ExpiresAt counts as EXPIRED regardless of whether the sweep has run.
func (v *Vouch) EffectiveStatus(now time.Time) string {
	if v.Status == VouchStatusActive && now.After(v.ExpiresAt) {
		return VouchStatusExpired
	}
	return v.Status
}

// Endorsement is a peer testimonial; it carries no direct points and feeds a
// capped aggregate bonus in the diversity & social factor.
type Endorsement struct {
	ID        uint
	FromNo    string
	ToNo      string
	CircleID  uint
	Message   string
	CreatedAt time.Time
}

// Circle is owned by the external circle engine; this service only reads it.
type Circle struct {
	ID                 uint
	Name               string
	MinXnScore         float64
	MaxMembers         int
	ContributionAmount float64
	FrequencyDays      int
	IsActive           bool
}

// Ineligibility reason codes returned by the eligibility gate.
const (
	ReasonScoreBelowMinimum = "SCORE_BELOW_MINIMUM"
	ReasonCircleFull        = "CIRCLE_FULL"
	ReasonCriticalTier      = "CRITICAL_TIER"
	ReasonUnresolvedDefault = "UNRESOLVED_DEFAULT"
	ReasonMemberInactive    = "MEMBER_INACTIVE"
	ReasonAlreadyMember     = "ALREADY_MEMBER"
	ReasonCircleInactive    = "CIRCLE_INACTIVE"
	ReasonScoreUnavailable  = "SCORE_UNAVAILABLE"
	ReasonCheckUnavailable  = "CHECK_UNAVAILABLE"
)

// Reason is a single ineligibility reason with display text for the UI.
type Reason struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
