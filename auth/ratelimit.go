package auth

import (
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/gardenia-app/gardenia-api/models"
)

// RateLimiter throttles password-reset requests per user. State lives on the
// user row itself; the read-modify-write runs inside the caller's
// transaction with no optimistic check, which is fine for a soft throttle.
//
// States: Normal and Lockout. A user enters Lockout when the attempt count
// exceeds MaxAttempts; the lockout duration doubles with every further
// excess attempt, capped at MaxLockout. The counter falls back to 1 once the
// rolling window has passed without attempts.
type RateLimiter struct {
	MaxAttempts int
	BaseLockout time.Duration
	MaxLockout  time.Duration
	Window      time.Duration
	now         func() time.Time
}

func NewRateLimiter(maxAttempts int, baseLockout, maxLockout, window time.Duration) *RateLimiter {
	return &RateLimiter{
		MaxAttempts: maxAttempts,
		BaseLockout: baseLockout,
		MaxLockout:  maxLockout,
		Window:      window,
		now:         time.Now,
	}
}

func remainingMinutes(until, now time.Time) int {
	return int(math.Ceil(until.Sub(now).Minutes()))
}

func (rl *RateLimiter) lockoutFor(attempts int) time.Duration {
	excess := attempts - rl.MaxAttempts - 1
	if excess >= 20 { // 2^20 minutes is already far past any sane cap
		return rl.MaxLockout
	}
	d := rl.BaseLockout << uint(excess)
	if d > rl.MaxLockout {
		return rl.MaxLockout
	}
	return d
}

// Allow records one reset attempt for the user and decides whether the
// request may proceed. It mutates the user row through tx and updates the
// in-memory struct to match.
func (rl *RateLimiter) Allow(tx *gorm.DB, user *models.User) *Error {
	now := rl.now()

	if user.ResetLockoutUntil != nil && now.Before(*user.ResetLockoutUntil) {
		return rateLimited(remainingMinutes(*user.ResetLockoutUntil, now))
	}

	attempts := 1
	if user.LastResetAttempt != nil && now.Sub(*user.LastResetAttempt) < rl.Window {
		attempts = user.ResetAttempts + 1
	}

	updates := map[string]interface{}{
		"reset_attempts":      attempts,
		"last_reset_attempt":  now,
		"reset_lockout_until": nil,
	}

	var lockedOut *Error
	if attempts > rl.MaxAttempts {
		until := now.Add(rl.lockoutFor(attempts))
		updates["reset_lockout_until"] = until
		user.ResetLockoutUntil = &until
		lockedOut = rateLimited(remainingMinutes(until, now))
	} else {
		user.ResetLockoutUntil = nil
	}

	if err := tx.Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
		return internal("Error de base de datos")
	}
	user.ResetAttempts = attempts
	user.LastResetAttempt = &now

	return lockedOut
}
