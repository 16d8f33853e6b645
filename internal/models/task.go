package models

import "gorm.io/gorm"

// TaskStatus is the closed set of task states. Earlier data used loose
// variants ("desarrollo", "terminado"); only the canonical three are
// accepted going forward.
type TaskStatus string

const (
	StatusPendiente  TaskStatus = "pendiente"
	StatusEnProgreso TaskStatus = "en_progreso"
	StatusCompletada TaskStatus = "completada"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPendiente, StatusEnProgreso, StatusCompletada:
		return true
	}
	return false
}

type Task struct {
	gorm.Model

	Nombre      string `gorm:"not null"`
	Descripcion string
	Estado      TaskStatus `gorm:"type:varchar(15);not null;default:pendiente"`
	ProyectoID  uint       `gorm:"not null;index"`
	AsignadaAID uint       `gorm:"not null;index"` // assigned user

	// Relationships
	Proyecto  Project `gorm:"foreignKey:ProyectoID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	AsignadaA User    `gorm:"foreignKey:AsignadaAID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}
