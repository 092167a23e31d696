package auth

import (
	"gorm.io/gorm"

	"github.com/gardenia-app/gardenia-api/models"

	"github.com/google/uuid"
)

// HistoryGuard rejects passwords that verify against any of the user's last
// Size password hashes.
type HistoryGuard struct {
	Size   int
	hasher Hasher
}

func NewHistoryGuard(size int, hasher Hasher) *HistoryGuard {
	return &HistoryGuard{Size: size, hasher: hasher}
}

func (g *HistoryGuard) Check(tx *gorm.DB, userID uuid.UUID, candidate string) *Error {
	var recent []models.PasswordHistory
	if err := tx.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(g.Size).
		Find(&recent).Error; err != nil {
		return internal("Error de base de datos")
	}

	for _, old := range recent {
		if g.hasher.Verify(candidate, old.HashedPassword) {
			return ErrPasswordReused
		}
	}
	return nil
}

func (g *HistoryGuard) Record(tx *gorm.DB, userID uuid.UUID, hashedPassword string) error {
	entry := models.PasswordHistory{
		UserID:         userID,
		HashedPassword: hashedPassword,
	}
	return tx.Create(&entry).Error
}
