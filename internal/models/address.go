package models

import "time"

// Address model, shared by clients and company settings.
type Address struct {
	ID         uint   `gorm:"primaryKey"`
	Line1      string `gorm:"not null"`
	Line2      string
	PostalCode string `gorm:"not null"`
	City       string `gorm:"not null"`
	Country    string `gorm:"not null"`
	Type       string // "main", "billing"
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
