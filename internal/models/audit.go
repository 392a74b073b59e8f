package models

import "time"

// Audit logging
type AuditLog struct {
	ID         uint   `gorm:"primaryKey"`
	UserID     uint   // who performed the change (0 for system triggers)
	EntityType string // "quote", "invoice", "agreement", "template", "client"
	EntityID   uint
	Action     string // "create", "update", "delete", "transition"
	Field      string // changed field, optional
	OldValue   string
	NewValue   string
	CreatedAt  time.Time
}
