package models

import "time"

// Client entity
type Client struct {
	ID               uint   `gorm:"primaryKey"`
	Name             string `gorm:"not null;index"` // legal or trading name
	Company          string `gorm:"index"`          // company name if different from contact name
	ContactName      string
	Email            string
	Phone            string
	Website          string
	VATNumber        string `gorm:"index"`
	AddressID        uint
	Address          Address `gorm:"foreignKey:AddressID"`
	BillingAddressID uint
	BillingAddress   Address `gorm:"foreignKey:BillingAddressID"`
	Notes            string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
