package models

import "time"

// Quote / estimate models
const (
	QuoteStatusDraft    = "draft"
	QuoteStatusSent     = "sent"
	QuoteStatusAccepted = "accepted"
	QuoteStatusDeclined = "declined"
	QuoteStatusExpired  = "expired"
)

type Quote struct {
	ID             uint   `gorm:"primaryKey"`
	Number         string `gorm:"index"`
	Status         string `gorm:"not null"` // draft, sent, accepted, declined, expired
	CompanyID      uint   `gorm:"not null"`
	ClientID       uint   `gorm:"not null"`
	Client         Client `gorm:"foreignKey:ClientID"`
	Items          []QuoteItem `gorm:"foreignKey:QuoteID"`
	Notes          string
	Terms          string
	DepositPercent float64 // 0..100
	ValidUntil     *time.Time
	// Stamped on the matching status transition.
	SentAt               *time.Time
	AcceptedAt           *time.Time
	DeclinedAt           *time.Time
	ExpiredAt            *time.Time
	ConvertedToInvoiceID uint // set when the quote is converted to an invoice
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// QuoteItem is a free-text line item. There is deliberately no product
// catalogue: consultancy work is quoted as described.
type QuoteItem struct {
	ID          uint    `gorm:"primaryKey"`
	QuoteID     uint    `gorm:"not null;index"`
	Description string  `gorm:"not null"`
	Quantity    float64 `gorm:"not null"`
	UnitPrice   float64 `gorm:"not null"`
}

// Subtotal sums line amounts before VAT.
func (q *Quote) Subtotal() float64 {
	var total float64
	for _, it := range q.Items {
		total += it.Quantity * it.UnitPrice
	}
	return total
}
