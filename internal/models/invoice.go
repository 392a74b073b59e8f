package models

import "time"

// Invoicing models
const (
	InvoiceStatusDraft = "draft"
	InvoiceStatusFinal = "final"
	InvoiceStatusPaid  = "paid"

	InvoiceKindFull    = "full"
	InvoiceKindDeposit = "deposit"
)

type Invoice struct {
	ID        uint   `gorm:"primaryKey"`
	Number    string `gorm:"index"`
	Status    string `gorm:"not null"` // draft, final, paid
	Kind      string `gorm:"not null;default:'full'"`
	CompanyID uint   `gorm:"not null"`
	ClientID  uint   `gorm:"not null"`
	QuoteID   uint   `gorm:"index"` // originating quote, if converted
	Items     []InvoiceItem `gorm:"foreignKey:InvoiceID"`
	Currency  string  `gorm:"not null;default:'ZAR'"`
	VATRate   float64 // snapshot of the company rate at creation time
	CreatedAt time.Time
	UpdatedAt time.Time
}

type InvoiceItem struct {
	ID          uint    `gorm:"primaryKey"`
	InvoiceID   uint    `gorm:"not null;index"`
	Description string  `gorm:"not null"`
	Quantity    float64 `gorm:"not null"`
	UnitPrice   float64 `gorm:"not null"`
}
