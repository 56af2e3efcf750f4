package models

import "time"

type AuditEntryModel struct {
	ID         string `gorm:"primaryKey;type:uuid"`
	EntityType string `gorm:"index:idx_audit_entity;not null"`
	EntityID   string `gorm:"index:idx_audit_entity;not null"`
	FromState  string `gorm:"not null"`
	ToState    string `gorm:"not null"`
	Actor      string `gorm:"not null"`
	Reason     string
	Timestamp  time.Time `gorm:"index;not null"`
}

func (AuditEntryModel) TableName() string {
	return "audit_entries"
}
