package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID             uuid.UUID `gorm:"type:uuid;primarykey"`
	Email          string    `gorm:"uniqueIndex;not null"`
	Username       string    `gorm:"uniqueIndex;not null"`
	HashedPassword string    `gorm:"not null"`
	FullName       string
	IsActive       bool `gorm:"default:true"`
	IsSuperuser    bool `gorm:"default:false"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Password-reset throttling state. ResetLockoutUntil uses
	// exclusive-until semantics: requests are rejected while now < until.
	ResetAttempts     int `gorm:"default:0"`
	LastResetAttempt  *time.Time
	ResetLockoutUntil *time.Time
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// PasswordHistory is an append-only log of every password a user has set.
// Rows are never updated; they disappear only when the user is deleted.
type PasswordHistory struct {
	ID             uuid.UUID `gorm:"type:uuid;primarykey"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index"`
	HashedPassword string    `gorm:"not null"`
	CreatedAt      time.Time
	User           User `gorm:"constraint:OnDelete:CASCADE"`
}

func (p *PasswordHistory) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
