package models

import (
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// Token is a persisted refresh token. The JTI inside the signed refresh
// token must match a live row here, which makes revocation a delete.
type Token struct {
	gorm.Model

	UserID    uint      `gorm:"not null;index"`
	JTI       uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"not null"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
