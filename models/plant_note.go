package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PlantNote struct {
	ID              uuid.UUID `gorm:"type:uuid;primarykey"`
	PlantID         uuid.UUID `gorm:"type:uuid;not null;index"`
	Text            string    `gorm:"not null"`
	ObservationDate time.Time `gorm:"not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Plant           Plant `gorm:"constraint:OnDelete:CASCADE"`
}

func (n *PlantNote) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
