package models

import "gorm.io/gorm"

// Role is the closed set of roles a user can hold. Anything else is
// rejected at the model boundary instead of being compared as free text.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleUsuario Role = "usuario"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUsuario
}

type User struct {
	gorm.Model

	Username     string `gorm:"uniqueIndex;not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	Nombre       string `gorm:"not null"`
	Rol          Role   `gorm:"type:varchar(15);not null;default:usuario"`
	PasswordHash string `gorm:"not null"`

	// Relationships. Deleting a user is decided by the application-level
	// guard; the constraints refuse instead of cascading.
	Proyectos       []Project `gorm:"foreignKey:UsuarioID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	TareasAsignadas []Task    `gorm:"foreignKey:AsignadaAID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Alertas         []Alert   `gorm:"foreignKey:UsuarioID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (u *User) IsAdmin() bool {
	return u.Rol == RoleAdmin
}
