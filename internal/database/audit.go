package database

import (
	"cobranzas/internal/models"

	"gorm.io/gorm"
)

// CreateAuditLog escribe en la bitácora de auditoría usando la conexión o transacción recibida.
func CreateAuditLog(tx *gorm.DB, userID *uint, entity string, entityID uint, action, details string) error {
	record := models.AuditLog{
		UserID:   userID,
		Entity:   entity,
		EntityID: entityID,
		Action:   action,
		Details:  details,
	}
	return tx.Create(&record).Error
}

// ListAuditLogs devuelve las últimas entradas, más recientes primero.
func ListAuditLogs(db *gorm.DB, entity string, limit int) ([]models.AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	q := db.Order("created_at DESC, id DESC").Limit(limit)
	if entity != "" {
		q = q.Where("entity = ?", entity)
	}

	var logs []models.AuditLog
	if err := q.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
