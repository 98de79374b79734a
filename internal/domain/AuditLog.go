package domain

import (
	"time"

	"gorm.io/datatypes"
)

const (
	AuditActionStatusChange = "status_change"
	AuditActionDisburse     = "disburse"
	AuditActionUserStatus   = "user_status"
	AuditActionUserRole     = "user_role"
	AuditActionUserDelete   = "user_delete"
)

type AuditLog struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	ActorID   uint              `gorm:"not null;index" json:"actor_id"`
	Action    string            `gorm:"type:varchar(100);not null" json:"action"`
	Entity    string            `gorm:"type:varchar(100);not null;index:idx_audit_entity" json:"entity"`
	EntityID  uint              `gorm:"not null;index:idx_audit_entity" json:"entity_id"`
	Details   datatypes.JSONMap `gorm:"type:json" json:"details,omitempty"`
	CreatedAt time.Time         `gorm:"autoCreateTime" json:"created_at"`
}
