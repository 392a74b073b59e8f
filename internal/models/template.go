package models

import "time"

// Variable types accepted by template declarations.
const (
	VarTypeText    = "text"
	VarTypeNumber  = "number"
	VarTypeDate    = "date"
	VarTypeBoolean = "boolean"
)

// SLATemplate declares a service-level agreement document: a plain-text/HTML
// body containing {{snake_case}} placeholders, the variables those
// placeholders resolve through, and default performance metrics.
type SLATemplate struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	Category  string `gorm:"index"` // package category this template suits
	Body      string `gorm:"type:text"`
	Variables []TemplateVariable `gorm:"foreignKey:TemplateID"`
	// Default performance metrics, used when value-tier derivation has no say.
	UptimeTarget    float64 // e.g. 99.5
	ResponseHours   float64
	ResolutionHours float64
	// Penalty terms applied to agreements generated from this template.
	PenaltyRatePercent float64
	PenaltyCapPercent  float64
	IsDefault          bool `gorm:"index"` // default template for its category
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TemplateVariable declares one placeholder: its type, whether it is
// required, an optional default, and an optional explicit data_source
// dotted path consulted before any other resolution tier.
type TemplateVariable struct {
	ID         uint   `gorm:"primaryKey"`
	TemplateID uint   `gorm:"not null;index"`
	Name       string `gorm:"not null"` // snake_case, as it appears in the body
	Label      string // display name used for placeholders
	Type       string `gorm:"not null;default:'text'"`
	Required   bool
	Default    string // literal default, coerced per Type
	DataSource string // dotted path into the merged data object
	Min        *float64
	Max        *float64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
