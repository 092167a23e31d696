package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gardenia-app/gardenia-api/models"
)

func newTestLimiter(clk *testClock) *RateLimiter {
	rl := NewRateLimiter(3, 5*time.Minute, 60*time.Minute, time.Hour)
	rl.now = clk.Now
	return rl
}

func createThrottledUser(t *testing.T, svc *Service) *models.User {
	t.Helper()
	registerTestUser(t, svc, "ana")
	user, err := svc.GetByUsername("ana")
	require.NoError(t, err)
	return user
}

func TestRateLimiterAllowsUnderLimit(t *testing.T) {
	svc, _, clk := newTestService(t)
	user := createThrottledUser(t, svc)
	rl := newTestLimiter(clk)

	for i := 0; i < 3; i++ {
		require.Nil(t, rl.Allow(svc.db, user))
		clk.Advance(time.Second)
	}
	require.Equal(t, 3, user.ResetAttempts)
	require.Nil(t, user.ResetLockoutUntil)
}

func TestRateLimiterLocksOutAndDoubles(t *testing.T) {
	svc, _, clk := newTestService(t)
	user := createThrottledUser(t, svc)
	rl := newTestLimiter(clk)

	for i := 0; i < 3; i++ {
		require.Nil(t, rl.Allow(svc.db, user))
		clk.Advance(time.Second)
	}

	// Fourth attempt: locked for the base duration.
	err := rl.Allow(svc.db, user)
	require.NotNil(t, err)
	require.Equal(t, KindRateLimitExceeded, err.Kind)
	require.NotNil(t, user.ResetLockoutUntil)
	require.Equal(t, clk.Now().Add(5*time.Minute), *user.ResetLockoutUntil)

	// During the lockout the counter does not grow.
	clk.Advance(time.Minute)
	err = rl.Allow(svc.db, user)
	require.NotNil(t, err)
	require.Equal(t, 4, user.ResetAttempts)

	// After the lockout but inside the window the next attempt doubles it.
	clk.Advance(5 * time.Minute)
	err = rl.Allow(svc.db, user)
	require.NotNil(t, err)
	require.Equal(t, 5, user.ResetAttempts)
	require.Equal(t, clk.Now().Add(10*time.Minute), *user.ResetLockoutUntil)
}

func TestRateLimiterWindowReset(t *testing.T) {
	svc, _, clk := newTestService(t)
	user := createThrottledUser(t, svc)
	rl := newTestLimiter(clk)

	for i := 0; i < 3; i++ {
		require.Nil(t, rl.Allow(svc.db, user))
	}

	clk.Advance(61 * time.Minute)

	require.Nil(t, rl.Allow(svc.db, user))
	require.Equal(t, 1, user.ResetAttempts)
}

func TestRateLimiterPersistsAcrossLoads(t *testing.T) {
	svc, _, clk := newTestService(t)
	user := createThrottledUser(t, svc)
	rl := newTestLimiter(clk)

	for i := 0; i < 4; i++ {
		rl.Allow(svc.db, user)
	}

	reloaded, err := svc.GetByUsername("ana")
	require.NoError(t, err)
	require.Equal(t, 4, reloaded.ResetAttempts)
	require.NotNil(t, reloaded.ResetLockoutUntil)
}

func TestLockoutForCapsAtMax(t *testing.T) {
	rl := NewRateLimiter(3, 5*time.Minute, 60*time.Minute, time.Hour)

	require.Equal(t, 5*time.Minute, rl.lockoutFor(4))
	require.Equal(t, 10*time.Minute, rl.lockoutFor(5))
	require.Equal(t, 20*time.Minute, rl.lockoutFor(6))
	require.Equal(t, 40*time.Minute, rl.lockoutFor(7))
	require.Equal(t, 60*time.Minute, rl.lockoutFor(8))
	require.Equal(t, 60*time.Minute, rl.lockoutFor(50))
}
