package models

import (
	"time"

	"gorm.io/gorm"
)

type Project struct {
	gorm.Model

	Nombre      string `gorm:"not null"`
	Descripcion string
	FechaInicio time.Time `gorm:"type:date"`
	FechaFin    time.Time `gorm:"type:date"`
	UsuarioID   uint      `gorm:"not null;index"` // owning user

	// Relationships
	Usuario User   `gorm:"foreignKey:UsuarioID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Tareas  []Task `gorm:"foreignKey:ProyectoID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}
