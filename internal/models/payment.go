package models

import "time"

// Payment tied to invoices
type Payment struct {
	ID        uint      `gorm:"primaryKey"`
	InvoiceID uint      `gorm:"not null;index"`
	Date      time.Time `gorm:"not null"`
	Amount    float64   `gorm:"not null"`
	Method    string    `gorm:"not null"` // eft, card, cash
	Status    string    `gorm:"not null"` // pending, paid, failed, refunded
	Note      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
