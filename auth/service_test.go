package auth

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/gardenia-app/gardenia-api/config"
	"github.com/gardenia-app/gardenia-api/database"
)

var dbCounter int

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dbCounter++
	dsn := fmt.Sprintf("file:authtest%d?mode=memory&cache=shared", dbCounter)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

type testClock struct {
	current time.Time
}

func newTestClock() *testClock {
	return &testClock{current: time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	return c.current
}

func (c *testClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}

type captureMailer struct {
	welcomes    []string
	resetTokens []string
}

func (m *captureMailer) SendWelcomeEmail(ctx context.Context, to, username string) error {
	m.welcomes = append(m.welcomes, to)
	return nil
}

func (m *captureMailer) SendPasswordResetEmail(ctx context.Context, to, resetToken string) error {
	m.resetTokens = append(m.resetTokens, resetToken)
	return nil
}

func (m *captureMailer) lastResetToken() string {
	if len(m.resetTokens) == 0 {
		return ""
	}
	return m.resetTokens[len(m.resetTokens)-1]
}

func testEnv() *config.Env {
	return &config.Env{
		SecretKey:                       "test-secret",
		AccessTokenExpireMinutes:        30,
		RefreshTokenExpireDays:          7,
		PasswordResetTokenExpireMinutes: 60,
		PasswordMinLength:               8,
		PasswordMaxLength:               100,
		PasswordHistorySize:             5,
		BcryptCost:                      bcrypt.MinCost,
		MaxResetAttempts:                3,
		BaseLockoutMinutes:              5,
		MaxLockoutMinutes:               60,
		ResetWindowMinutes:              60,
	}
}

func newTestService(t *testing.T) (*Service, *captureMailer, *testClock) {
	t.Helper()
	db := newTestDB(t)
	mail := &captureMailer{}
	svc := NewService(db, nil, mail, slog.New(slog.NewTextHandler(io.Discard, nil)), testEnv())

	clk := newTestClock()
	svc.tokens.now = clk.Now
	svc.ledger.now = clk.Now
	svc.limiter.now = clk.Now
	return svc, mail, clk
}

func registerTestUser(t *testing.T, svc *Service, username string) {
	t.Helper()
	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    username + "@example.com",
		Username: username,
		Password: "contraseña-segura-1",
		FullName: "Usuario de Prueba",
	})
	require.NoError(t, err)
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc, mail, _ := newTestService(t)

	user, err := svc.Register(context.Background(), RegisterInput{
		Email:    "Ana@Example.com",
		Username: "ana",
		Password: "contraseña-segura-1",
		FullName: "Ana García",
	})
	require.NoError(t, err)
	require.Equal(t, "ana@example.com", user.Email, "email stored lowercased")
	require.True(t, user.IsActive)
	require.Equal(t, []string{"ana@example.com"}, mail.welcomes)

	byUsername, err := svc.Authenticate("ana", "contraseña-segura-1")
	require.NoError(t, err)
	require.Equal(t, user.ID, byUsername.ID)

	byEmail, err := svc.Authenticate("ANA@example.com", "contraseña-segura-1")
	require.NoError(t, err)
	require.Equal(t, user.ID, byEmail.ID)

	_, err = svc.Authenticate("ana", "contraseña-incorrecta")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate("desconocido", "contraseña-segura-1")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterDuplicate(t *testing.T) {
	svc, _, _ := newTestService(t)
	registerTestUser(t, svc, "ana")

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "ana@example.com",
		Username: "otra",
		Password: "contraseña-segura-1",
	})
	require.ErrorIs(t, err, ErrUserAlreadyExists)

	_, err = svc.Register(context.Background(), RegisterInput{
		Email:    "otra@example.com",
		Username: "ana",
		Password: "contraseña-segura-1",
	})
	require.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestRegisterWeakPassword(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "ana@example.com",
		Username: "ana",
		Password: "corta",
	})
	var authErr *Error
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, KindWeakPassword, authErr.Kind)
}

func TestPasswordLengthCountsCharacters(t *testing.T) {
	svc, _, _ := newTestService(t)

	// 4 characters but 8 bytes; counting bytes would let it through.
	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "ana@example.com",
		Username: "ana",
		Password: strings.Repeat("ñ", 4),
	})
	var authErr *Error
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, KindWeakPassword, authErr.Kind)

	// 60 characters but 120 bytes stays under the 100-character cap.
	require.Nil(t, svc.validatePasswordStrength(strings.Repeat("ñ", 60)))
}

func TestRefreshRotatesAndRejectsReplay(t *testing.T) {
	svc, _, clk := newTestService(t)
	registerTestUser(t, svc, "ana")

	user, err := svc.Authenticate("ana", "contraseña-segura-1")
	require.NoError(t, err)
	pair, err := svc.IssueTokenPair(user)
	require.NoError(t, err)

	clk.Advance(2 * time.Second)

	rotated, err := svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	_, err = svc.Refresh(context.Background(), pair.RefreshToken)
	require.ErrorIs(t, err, ErrTokenUsed)
}

func TestRefreshSupersedesOlderSessions(t *testing.T) {
	svc, _, clk := newTestService(t)
	registerTestUser(t, svc, "ana")

	user, err := svc.Authenticate("ana", "contraseña-segura-1")
	require.NoError(t, err)

	older, err := svc.IssueTokenPair(user)
	require.NoError(t, err)

	clk.Advance(2 * time.Second)

	newer, err := svc.IssueTokenPair(user)
	require.NoError(t, err)

	clk.Advance(2 * time.Second)

	// Rotating the newer token moves the watermark past the older session.
	rotated, err := svc.Refresh(context.Background(), newer.RefreshToken)
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), older.RefreshToken)
	require.ErrorIs(t, err, ErrTokenSuperseded)

	// The freshly rotated chain keeps working.
	clk.Advance(2 * time.Second)
	_, err = svc.Refresh(context.Background(), rotated.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc, _, _ := newTestService(t)
	registerTestUser(t, svc, "ana")

	user, err := svc.Authenticate("ana", "contraseña-segura-1")
	require.NoError(t, err)
	pair, err := svc.IssueTokenPair(user)
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), pair.AccessToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordResetFlow(t *testing.T) {
	svc, mail, clk := newTestService(t)
	registerTestUser(t, svc, "ana")

	user, err := svc.Authenticate("ana", "contraseña-segura-1")
	require.NoError(t, err)
	pair, err := svc.IssueTokenPair(user)
	require.NoError(t, err)

	clk.Advance(2 * time.Second)

	require.NoError(t, svc.RequestPasswordReset(context.Background(), "ana@example.com"))
	token := mail.lastResetToken()
	require.NotEmpty(t, token)

	clk.Advance(2 * time.Second)

	require.NoError(t, svc.ResetPassword(context.Background(), token, "otra-contraseña-2"))

	_, err = svc.Authenticate("ana", "contraseña-segura-1")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate("ana", "otra-contraseña-2")
	require.NoError(t, err)

	// The token is single use.
	err = svc.ResetPassword(context.Background(), token, "tercera-contraseña-3")
	require.ErrorIs(t, err, ErrTokenUsed)

	// Refresh tokens minted before the reset stop working.
	_, err = svc.Refresh(context.Background(), pair.RefreshToken)
	require.ErrorIs(t, err, ErrTokenSuperseded)
}

func TestPasswordResetSupersedesOlderToken(t *testing.T) {
	svc, mail, clk := newTestService(t)
	registerTestUser(t, svc, "ana")

	require.NoError(t, svc.RequestPasswordReset(context.Background(), "ana@example.com"))
	first := mail.lastResetToken()

	clk.Advance(2 * time.Second)

	require.NoError(t, svc.RequestPasswordReset(context.Background(), "ana@example.com"))
	second := mail.lastResetToken()
	require.NotEqual(t, first, second)

	err := svc.ResetPassword(context.Background(), first, "otra-contraseña-2")
	require.ErrorIs(t, err, ErrTokenSuperseded)

	require.NoError(t, svc.ResetPassword(context.Background(), second, "otra-contraseña-2"))
}

func TestPasswordResetUnknownEmailIsSilent(t *testing.T) {
	svc, mail, _ := newTestService(t)
	registerTestUser(t, svc, "ana")

	require.NoError(t, svc.RequestPasswordReset(context.Background(), "nadie@example.com"))
	require.Empty(t, mail.resetTokens)
}

func TestPasswordResetExpiredToken(t *testing.T) {
	svc, mail, clk := newTestService(t)
	registerTestUser(t, svc, "ana")

	require.NoError(t, svc.RequestPasswordReset(context.Background(), "ana@example.com"))
	token := mail.lastResetToken()

	clk.Advance(61 * time.Minute)

	err := svc.ResetPassword(context.Background(), token, "otra-contraseña-2")
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestPasswordResetRejectsReusedPassword(t *testing.T) {
	svc, mail, _ := newTestService(t)
	registerTestUser(t, svc, "ana")

	require.NoError(t, svc.RequestPasswordReset(context.Background(), "ana@example.com"))
	token := mail.lastResetToken()

	err := svc.ResetPassword(context.Background(), token, "contraseña-segura-1")
	require.ErrorIs(t, err, ErrPasswordReused)
}

func TestPasswordResetRateLimit(t *testing.T) {
	svc, mail, clk := newTestService(t)
	registerTestUser(t, svc, "ana")

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.RequestPasswordReset(context.Background(), "ana@example.com"))
		clk.Advance(time.Second)
	}
	require.Len(t, mail.resetTokens, 3)

	err := svc.RequestPasswordReset(context.Background(), "ana@example.com")
	var authErr *Error
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, KindRateLimitExceeded, authErr.Kind)
	require.Len(t, mail.resetTokens, 3, "no email while locked out")

	// Still locked out a minute later.
	clk.Advance(time.Minute)
	err = svc.RequestPasswordReset(context.Background(), "ana@example.com")
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, KindRateLimitExceeded, authErr.Kind)

	// A successful reset clears the counters.
	require.NoError(t, svc.ResetPassword(context.Background(), mail.lastResetToken(), "otra-contraseña-2"))
	require.NoError(t, svc.RequestPasswordReset(context.Background(), "ana@example.com"))
	require.Len(t, mail.resetTokens, 4)
}

func TestVerifyAccessToken(t *testing.T) {
	svc, _, clk := newTestService(t)
	registerTestUser(t, svc, "ana")

	user, err := svc.Authenticate("ana", "contraseña-segura-1")
	require.NoError(t, err)
	pair, err := svc.IssueTokenPair(user)
	require.NoError(t, err)

	verified, err := svc.VerifyAccessToken(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, user.ID, verified.ID)

	_, err = svc.VerifyAccessToken(pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidToken)

	clk.Advance(31 * time.Minute)
	_, err = svc.VerifyAccessToken(pair.AccessToken)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestUpdateProfile(t *testing.T) {
	svc, _, _ := newTestService(t)
	registerTestUser(t, svc, "ana")
	registerTestUser(t, svc, "berta")

	user, err := svc.GetByUsername("ana")
	require.NoError(t, err)

	newName := "Ana María"
	newEmail := "Ana.Maria@Example.com"
	updated, err := svc.UpdateProfile(user.ID, UpdateProfileInput{
		FullName: &newName,
		Email:    &newEmail,
	})
	require.NoError(t, err)
	require.Equal(t, "Ana María", updated.FullName)
	require.Equal(t, "ana.maria@example.com", updated.Email)

	taken := "berta@example.com"
	_, err = svc.UpdateProfile(user.ID, UpdateProfileInput{Email: &taken})
	require.ErrorIs(t, err, ErrUserAlreadyExists)

	takenUsername := "berta"
	_, err = svc.UpdateProfile(user.ID, UpdateProfileInput{Username: &takenUsername})
	require.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestUpdateProfilePasswordChange(t *testing.T) {
	svc, _, _ := newTestService(t)
	registerTestUser(t, svc, "ana")

	user, err := svc.GetByUsername("ana")
	require.NoError(t, err)

	newPassword := "otra-contraseña-2"

	// Missing current password.
	_, err = svc.UpdateProfile(user.ID, UpdateProfileInput{NewPassword: &newPassword})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	wrong := "contraseña-incorrecta"
	_, err = svc.UpdateProfile(user.ID, UpdateProfileInput{
		CurrentPassword: &wrong,
		NewPassword:     &newPassword,
	})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	current := "contraseña-segura-1"

	// Reusing the current password trips the history guard.
	_, err = svc.UpdateProfile(user.ID, UpdateProfileInput{
		CurrentPassword: &current,
		NewPassword:     &current,
	})
	require.ErrorIs(t, err, ErrPasswordReused)

	_, err = svc.UpdateProfile(user.ID, UpdateProfileInput{
		CurrentPassword: &current,
		NewPassword:     &newPassword,
	})
	require.NoError(t, err)

	_, err = svc.Authenticate("ana", newPassword)
	require.NoError(t, err)
}

func TestDeleteAccount(t *testing.T) {
	svc, _, _ := newTestService(t)
	registerTestUser(t, svc, "ana")

	user, err := svc.GetByUsername("ana")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAccount(user.ID))
	require.ErrorIs(t, svc.DeleteAccount(user.ID), ErrUserNotFound)

	_, err = svc.GetByUsername("ana")
	require.ErrorIs(t, err, ErrUserNotFound)
}
