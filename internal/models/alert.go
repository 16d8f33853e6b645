package models

import "gorm.io/gorm"

// Alert is an append-only notification targeted at one user. CreatedAt is
// the emission timestamp; alerts are hidden (Visible=false) rather than
// edited.
type Alert struct {
	gorm.Model

	UsuarioID uint   `gorm:"not null;index"`
	Mensaje   string `gorm:"not null"`
	Visible   bool   `gorm:"not null;default:true"`

	// Relationships
	Usuario User `gorm:"foreignKey:UsuarioID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
