package models

import "time"

type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	UserID *uint `gorm:"index" json:"user_id"` // nil cuando la auth está desactivada o viene del CLI

	Entity   string `gorm:"size:50;not null" json:"entity"` // "import", "assignment"
	EntityID uint   `json:"entity_id"`
	Action   string `gorm:"size:50;not null" json:"action"` // "clients", "advisors", "create"
	Details  string `gorm:"type:text" json:"details"`
}
