package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TaskChange records one applied task update: who changed what. Written in
// the same transaction as the update itself.
type TaskChange struct {
	gorm.Model

	TaskID  uint           `gorm:"not null;index"`
	UserID  uint           `gorm:"not null;index"`
	Changes datatypes.JSON `gorm:"type:jsonb"`

	// Relationships
	Task Task `gorm:"foreignKey:TaskID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
