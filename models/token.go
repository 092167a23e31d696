package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UsedToken marks a concrete token (by SHA-256 hash) as consumed so it can
// never be redeemed twice.
type UsedToken struct {
	ID        uuid.UUID `gorm:"type:uuid;primarykey"`
	TokenHash string    `gorm:"uniqueIndex;not null"`
	TokenType string    `gorm:"not null"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	UsedAt    time.Time `gorm:"not null"`
	User      User      `gorm:"constraint:OnDelete:CASCADE"`
}

func (t *UsedToken) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TokenInvalidation is a per-user, per-type watermark: any token of TokenType
// issued at or before InvalidatedAt is void. Upserted each time a newer token
// of that type supersedes the old ones.
type TokenInvalidation struct {
	ID            uuid.UUID `gorm:"type:uuid;primarykey"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_user_token_type"`
	TokenType     string    `gorm:"not null;uniqueIndex:uk_user_token_type"`
	InvalidatedAt time.Time `gorm:"not null"`
	User          User      `gorm:"constraint:OnDelete:CASCADE"`
}

func (t *TokenInvalidation) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
