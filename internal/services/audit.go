package services

import (
	"gorm.io/gorm"

	"github.com/mokoena/sla-app/internal/models"
)

// writeAudit records a change row. Audit failures never block the main
// operation; they are best-effort.
func writeAudit(db *gorm.DB, userID uint, entityType string, entityID uint, action, field, oldValue, newValue string) {
	_ = db.Create(&models.AuditLog{
		UserID:     userID,
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Field:      field,
		OldValue:   oldValue,
		NewValue:   newValue,
	}).Error
}
