package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gardenia-app/gardenia-api/database"
	"github.com/gardenia-app/gardenia-api/models"
)

// Ledger records consumed tokens and per-type invalidation watermarks.
// The relational store is authoritative; redis is an optional fast path for
// the consumed-hash lookup.
type Ledger struct {
	redis *database.RedisClient
	now   func() time.Time
}

func NewLedger(redis *database.RedisClient) *Ledger {
	return &Ledger{redis: redis, now: time.Now}
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// MarkUsed consumes a token. ttl bounds the redis cache entry; it should be
// the remaining lifetime of the token. Two redemptions racing past IsValid
// both reach the insert; the unique index on token_hash makes the loser come
// back as ErrTokenUsed.
func (l *Ledger) MarkUsed(ctx context.Context, tx *gorm.DB, userID uuid.UUID, token string, kind TokenKind, ttl time.Duration) error {
	hash := hashToken(token)
	used := models.UsedToken{
		TokenHash: hash,
		TokenType: string(kind),
		UserID:    userID,
		UsedAt:    l.now(),
	}
	if err := tx.Create(&used).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrTokenUsed
		}
		return err
	}
	if l.redis != nil {
		// Best effort: the row above already prevents replay.
		_ = l.redis.MarkTokenUsed(ctx, hash, ttl)
	}
	return nil
}

// InvalidatePrior voids every not-yet-used token of the given kind issued up
// to now. Truncated to seconds because JWT iat has second precision.
func (l *Ledger) InvalidatePrior(tx *gorm.DB, userID uuid.UUID, kind TokenKind) error {
	inv := models.TokenInvalidation{
		UserID:        userID,
		TokenType:     string(kind),
		InvalidatedAt: l.now().Truncate(time.Second),
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "token_type"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"invalidated_at": inv.InvalidatedAt}),
	}).Create(&inv).Error
}

// IsValid fails closed: a token is rejected when its hash is already in the
// ledger or when an invalidation watermark postdates its issuance.
func (l *Ledger) IsValid(ctx context.Context, db *gorm.DB, userID uuid.UUID, token string, kind TokenKind, issuedAt time.Time) *Error {
	hash := hashToken(token)

	if l.redis != nil {
		if used, err := l.redis.IsTokenUsed(ctx, hash); err == nil && used {
			return ErrTokenUsed
		}
	}

	var used models.UsedToken
	err := db.Where("token_hash = ?", hash).First(&used).Error
	if err == nil {
		return ErrTokenUsed
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return internal("Error de base de datos")
	}

	var inv models.TokenInvalidation
	err = db.Where("user_id = ? AND token_type = ?", userID, string(kind)).First(&inv).Error
	if err == nil && inv.InvalidatedAt.After(issuedAt) {
		return ErrTokenSuperseded
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return internal("Error de base de datos")
	}

	return nil
}
