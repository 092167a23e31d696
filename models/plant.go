package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Plant struct {
	ID        uuid.UUID `gorm:"type:uuid;primarykey"`
	Alias     string    `gorm:"not null;uniqueIndex:uk_user_plant_alias"`
	ImageURL  string
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_user_plant_alias"`
	GardenID  uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt time.Time
	UpdatedAt time.Time

	ScientificNameWithoutAuthor string   `gorm:"not null"`
	Genus                       string   `gorm:"not null"`
	Family                      string   `gorm:"not null"`
	CommonNames                 []string `gorm:"serializer:json;not null"`

	User   User   `gorm:"constraint:OnDelete:CASCADE"`
	Garden Garden `gorm:"constraint:OnDelete:CASCADE"`
}

func (p *Plant) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
