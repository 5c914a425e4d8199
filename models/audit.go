package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	SeverityInfo     = "INFO"
	SeverityWarning  = "WARNING"
	SeverityCritical = "CRITICAL"
)

// AuditEvent rows form a hash chain: Hash covers the event payload plus the
// previous event's Hash. Rows are never updated or deleted.
type AuditEvent struct {
	gorm.Model

	EventID        string         `gorm:"uniqueIndex;size:36" json:"event_id"`
	ActorID        string         `gorm:"size:32;index" json:"actor_id"`
	Action         string         `gorm:"size:64;index" json:"action"`
	Severity       string         `gorm:"size:16;index" json:"severity"`
	TargetResource string         `gorm:"size:64;index" json:"target_resource"`
	Metadata       datatypes.JSON `gorm:"type:jsonb" json:"metadata"`
	Hash           string         `gorm:"size:64" json:"hash"`
	PreviousHash   string         `gorm:"size:64" json:"previous_hash"`
}
