package models

import "time"

// Agreement lifecycle. Generation creates the record directly in
// "generated"; "draft" exists for agreements saved before rendering.
const (
	AgreementStatusDraft     = "draft"
	AgreementStatusGenerated = "generated"
	AgreementStatusSent      = "sent"
	AgreementStatusAccepted  = "accepted"
	AgreementStatusRejected  = "rejected"
	AgreementStatusExpired   = "expired"

	SignatureStatusUnsigned = "unsigned"
	SignatureStatusSigned   = "signed"
)

// ServiceAgreement is a rendered SLA bound to a quote. At most one
// non-rejected, non-expired agreement may exist per quote; the service
// enforces this with a conditional insert and the SQL migrations add a
// partial unique index on (quote_id).
type ServiceAgreement struct {
	ID         uint   `gorm:"primaryKey"`
	Reference  string `gorm:"unique;not null"` // e.g. AGR-9f2c1b…
	QuoteID    uint   `gorm:"not null;index"`
	TemplateID uint   `gorm:"not null"`
	ClientID   uint   `gorm:"not null"`
	CompanyID  uint   `gorm:"not null"`
	Status     string `gorm:"not null"`

	// Detection outcome recorded for provenance.
	Category   string
	Confidence int

	// Rendered document and the resolved variable set (JSON object keyed by
	// variable name). MissingVars lists required variables left unresolved.
	Body        string `gorm:"type:text"`
	Variables   string `gorm:"type:text"` // JSON
	MissingVars string // JSON array of names

	// Performance and penalty terms as resolved at generation time.
	UptimeTarget       float64
	ResponseHours      float64
	ResolutionHours    float64
	MonthlyRevenue     float64
	PenaltyRatePercent float64
	PenaltyCapPercent  float64

	SignatureStatus string `gorm:"not null;default:'unsigned'"`
	SignedAt        *time.Time

	// Provenance: what triggered generation ("api", "quote_accepted") and when.
	AutoGenerated bool
	TriggerSource string
	GeneratedAt   *time.Time
	SentAt        *time.Time
	AcceptedAt    *time.Time
	RejectedAt    *time.Time
	ExpiredAt     *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Active reports whether the agreement still counts against the
// one-active-agreement-per-quote invariant.
func (a *ServiceAgreement) Active() bool {
	return a.Status != AgreementStatusRejected && a.Status != AgreementStatusExpired
}
