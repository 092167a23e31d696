package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Garden struct {
	ID          uuid.UUID `gorm:"type:uuid;primarykey"`
	Name        string    `gorm:"not null;uniqueIndex:uk_user_garden_name"`
	Description string
	ImageURL    string
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_user_garden_name"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	User        User    `gorm:"constraint:OnDelete:CASCADE"`
	Plants      []Plant `gorm:"constraint:OnDelete:CASCADE"`
}

func (g *Garden) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}
