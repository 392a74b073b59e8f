package models

import "time"

// CompanySettings holds the single consultancy profile used on quotes,
// invoices and generated agreements.
type CompanySettings struct {
	ID               uint   `gorm:"primaryKey"`
	UserID           uint   `gorm:"not null;index"` // owner user who ran setup
	User             User   `gorm:"foreignKey:UserID"`
	TradingName      string `gorm:"not null;index"`
	LegalName        string `gorm:"not null;index"`
	RegistrationNo   string `gorm:"index"`
	VATNumber        string `gorm:"index"`
	VATEnabled       bool   `gorm:"not null"`
	VATRate          float64 // e.g. 0.15 for 15%
	Currency         string  `gorm:"not null;default:'ZAR'"`
	Email            string
	Phone            string
	Website          string
	BankDetails      string // free text shown on invoices
	AddressID        uint
	Address          Address `gorm:"foreignKey:AddressID"`
	BillingAddressID uint
	BillingAddress   Address `gorm:"foreignKey:BillingAddressID"`
	// Defaults applied to generated agreements when the template carries none.
	PenaltyRatePercent float64 `gorm:"default:0.5"`
	PenaltyCapPercent  float64 `gorm:"default:10"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
