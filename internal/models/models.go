package models

import "time"

type RequestStatus string

const (
	RequestPending    RequestStatus = "pending"
	RequestProcessing RequestStatus = "processing"
	RequestCompleted  RequestStatus = "completed"
	RequestCancelled  RequestStatus = "cancelled"
)

type RequestPriority string

const (
	PriorityNormal RequestPriority = "normal"
	PriorityUrgent RequestPriority = "urgent"
)

type RechargeStatus string

const (
	RechargePending  RechargeStatus = "pending"
	RechargeApproved RechargeStatus = "approved"
	RechargeRejected RechargeStatus = "rejected"
)

type UserProfile struct {
	ID            int64
	Email         string
	IsAdmin       bool
	PlanType      string
	AIQuota       int
	HumanQuota    int
	PlanExpiresAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TranslationPair is one stored source/target memory entry. Pairs are
// immutable once created; edits are delete+recreate.
type TranslationPair struct {
	ID         int64
	UserID     int64
	SourceText string
	TargetText string
	CreatedAt  time.Time
}

type TranslationRequest struct {
	ID           int64
	UserID       int64
	SourceText   string
	Context      string
	Priority     RequestPriority
	Status       RequestStatus
	TranslatorID *int64
	ResultText   string
	Rating       int
	Feedback     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type RechargePlan struct {
	ID              int64
	Name            string
	Description     string
	PriceMinorUnits int
	DurationDays    int
	AIQuota         int
	HumanQuota      int
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// RechargeRecord snapshots the chosen plan at submission time. Later plan
// edits never change what an approval will grant.
type RechargeRecord struct {
	ID              int64
	UserID          int64
	PlanName        string
	AmountMinor     int
	PlanAIQuota     int
	PlanHumanQuota  int
	PlanDuration    int
	PaymentProofRef string
	Status          RechargeStatus
	AdminID         *int64
	AdminNote       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OwnedPair is a memory entry joined with its owner's email, used by the
// admin-wide export.
type OwnedPair struct {
	Email      string    `json:"email"`
	SourceText string    `json:"japanese"`
	TargetText string    `json:"chinese"`
	CreatedAt  time.Time `json:"created_at"`
}

type SystemConfig struct {
	Key       string
	Value     string
	UpdatedBy int64
	UpdatedAt time.Time
}
