package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gardenia-app/gardenia-api/config"
	"github.com/gardenia-app/gardenia-api/database"
	"github.com/gardenia-app/gardenia-api/mailer"
	"github.com/gardenia-app/gardenia-api/models"
)

// Service owns the credential lifecycle: registration, login, token
// issuance and rotation, and the password-reset flow with its rate limiter,
// replay ledger and history guard.
type Service struct {
	db      *gorm.DB
	hasher  Hasher
	tokens  *TokenIssuer
	ledger  *Ledger
	limiter *RateLimiter
	history *HistoryGuard
	mailer  mailer.Mailer
	logger  *slog.Logger

	passwordMinLength int
	passwordMaxLength int
}

func NewService(db *gorm.DB, redis *database.RedisClient, m mailer.Mailer, logger *slog.Logger, env *config.Env) *Service {
	hasher := Hasher{Cost: env.BcryptCost}
	return &Service{
		db:     db,
		hasher: hasher,
		tokens: NewTokenIssuer(
			env.SecretKey,
			time.Duration(env.AccessTokenExpireMinutes)*time.Minute,
			time.Duration(env.RefreshTokenExpireDays)*24*time.Hour,
			time.Duration(env.PasswordResetTokenExpireMinutes)*time.Minute,
		),
		ledger: NewLedger(redis),
		limiter: NewRateLimiter(
			env.MaxResetAttempts,
			time.Duration(env.BaseLockoutMinutes)*time.Minute,
			time.Duration(env.MaxLockoutMinutes)*time.Minute,
			time.Duration(env.ResetWindowMinutes)*time.Minute,
		),
		history:           NewHistoryGuard(env.PasswordHistorySize, hasher),
		mailer:            m,
		logger:            logger,
		passwordMinLength: env.PasswordMinLength,
		passwordMaxLength: env.PasswordMaxLength,
	}
}

type RegisterInput struct {
	Email    string
	Username string
	Password string
	FullName string
}

type UpdateProfileInput struct {
	Email           *string
	Username        *string
	FullName        *string
	CurrentPassword *string
	NewPassword     *string
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

func (s *Service) validatePasswordStrength(password string) *Error {
	// Characters, not bytes: a multibyte password must not hit the upper
	// bound early.
	length := utf8.RuneCountInString(password)
	if length < s.passwordMinLength || length > s.passwordMaxLength {
		return weakPassword(s.passwordMinLength, s.passwordMaxLength, length)
	}
	return nil
}

// Register creates the user, seeds the password history and sends the
// welcome email. A failed email is logged but does not undo the signup.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := s.validatePasswordStrength(in.Password); err != nil {
		return nil, err
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	email := strings.ToLower(in.Email)

	var existing models.User
	err := tx.Where("email = ? OR username = ?", email, in.Username).First(&existing).Error
	if err == nil {
		tx.Rollback()
		return nil, ErrUserAlreadyExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		tx.Rollback()
		return nil, internal("Error de base de datos")
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		tx.Rollback()
		return nil, internal("No se pudo procesar la contraseña")
	}

	user := models.User{
		Email:          email,
		Username:       in.Username,
		HashedPassword: hashed,
		FullName:       in.FullName,
		IsActive:       true,
	}
	if err := tx.Create(&user).Error; err != nil {
		tx.Rollback()
		return nil, internal("No se pudo crear el usuario")
	}

	if err := s.history.Record(tx, user.ID, hashed); err != nil {
		tx.Rollback()
		return nil, internal("No se pudo crear el usuario")
	}

	if err := tx.Commit().Error; err != nil {
		return nil, internal("No se pudo crear el usuario")
	}

	if err := s.mailer.SendWelcomeEmail(ctx, user.Email, user.Username); err != nil {
		s.logger.ErrorContext(ctx, "welcome email failed", "email", user.Email, "error", err)
	}

	return &user, nil
}

// Authenticate matches the identifier against email or username and
// verifies the password. Inactive users cannot log in.
func (s *Service) Authenticate(usernameOrEmail, password string) (*models.User, error) {
	var user models.User
	err := s.db.Where("(email = ? OR username = ?) AND is_active = ?",
		strings.ToLower(usernameOrEmail), usernameOrEmail, true).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, internal("Error de base de datos")
	}

	if !s.hasher.Verify(password, user.HashedPassword) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

func (s *Service) IssueTokenPair(user *models.User) (*TokenPair, error) {
	access, err := s.tokens.Issue(user.Username, TokenAccess)
	if err != nil {
		return nil, internal("No se pudo generar el token")
	}
	refresh, err := s.tokens.Issue(user.Username, TokenRefresh)
	if err != nil {
		return nil, internal("No se pudo generar el token")
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// VerifyAccessToken returns the user behind a bearer access token.
func (s *Service) VerifyAccessToken(token string) (*models.User, error) {
	claims, terr := s.tokens.Parse(token, TokenAccess)
	if terr != nil {
		return nil, terr
	}
	return s.GetByUsername(claims.Subject)
}

// Refresh rotates a refresh token: the old one is consumed, refresh tokens
// issued before it are superseded, and a fresh pair is issued. A replayed or
// superseded token is rejected by the ledger.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, terr := s.tokens.Parse(refreshToken, TokenRefresh)
	if terr != nil {
		return nil, terr
	}

	user, err := s.GetByUsername(claims.Subject)
	if err != nil {
		return nil, err
	}

	if verr := s.ledger.IsValid(ctx, s.db, user.ID, refreshToken, TokenRefresh, claims.IssuedAt.Time); verr != nil {
		return nil, verr
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	ttl := claims.ExpiresAt.Time.Sub(s.tokens.now())
	if err := s.ledger.MarkUsed(ctx, tx, user.ID, refreshToken, TokenRefresh, ttl); err != nil {
		tx.Rollback()
		var authErr *Error
		if errors.As(err, &authErr) {
			return nil, authErr
		}
		return nil, internal("Error de base de datos")
	}
	if err := s.ledger.InvalidatePrior(tx, user.ID, TokenRefresh); err != nil {
		tx.Rollback()
		return nil, internal("Error de base de datos")
	}
	if err := tx.Commit().Error; err != nil {
		return nil, internal("Error de base de datos")
	}

	return s.IssueTokenPair(user)
}

// RequestPasswordReset runs the rate limiter, supersedes earlier reset
// tokens and emails a new one. An unknown email is a silent no-op so the
// endpoint cannot be used to enumerate accounts.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	var user models.User
	err := s.db.Where("email = ?", strings.ToLower(email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return internal("Error de base de datos")
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if lerr := s.limiter.Allow(tx, &user); lerr != nil {
		// The attempt counter and lockout must survive the rejection.
		if err := tx.Commit().Error; err != nil {
			return internal("Error de base de datos")
		}
		return lerr
	}

	if err := s.ledger.InvalidatePrior(tx, user.ID, TokenPasswordReset); err != nil {
		tx.Rollback()
		return internal("Error de base de datos")
	}

	token, err := s.tokens.Issue(user.Username, TokenPasswordReset)
	if err != nil {
		tx.Rollback()
		return internal("No se pudo generar el token")
	}

	if err := tx.Commit().Error; err != nil {
		return internal("Error de base de datos")
	}

	if err := s.mailer.SendPasswordResetEmail(ctx, user.Email, token); err != nil {
		s.logger.ErrorContext(ctx, "password reset email failed", "email", user.Email, "error", err)
		return internal("No se pudo enviar el correo de restablecimiento")
	}

	return nil
}

// ResetPassword redeems a reset token. Everything after the gates runs in a
// single transaction: password update, history row, token consumption,
// refresh-token invalidation and counter reset.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	claims, terr := s.tokens.Parse(token, TokenPasswordReset)
	if terr != nil {
		return terr
	}

	user, err := s.GetByUsername(claims.Subject)
	if err != nil {
		return err
	}

	if verr := s.ledger.IsValid(ctx, s.db, user.ID, token, TokenPasswordReset, claims.IssuedAt.Time); verr != nil {
		return verr
	}

	if werr := s.validatePasswordStrength(newPassword); werr != nil {
		return werr
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if herr := s.history.Check(tx, user.ID, newPassword); herr != nil {
		tx.Rollback()
		return herr
	}

	hashed, err := s.hasher.Hash(newPassword)
	if err != nil {
		tx.Rollback()
		return internal("No se pudo procesar la contraseña")
	}

	if err := tx.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"hashed_password":     hashed,
		"reset_attempts":      0,
		"last_reset_attempt":  nil,
		"reset_lockout_until": nil,
	}).Error; err != nil {
		tx.Rollback()
		return internal("Error de base de datos")
	}

	if err := s.history.Record(tx, user.ID, hashed); err != nil {
		tx.Rollback()
		return internal("Error de base de datos")
	}

	ttl := claims.ExpiresAt.Time.Sub(s.tokens.now())
	if err := s.ledger.MarkUsed(ctx, tx, user.ID, token, TokenPasswordReset, ttl); err != nil {
		tx.Rollback()
		var authErr *Error
		if errors.As(err, &authErr) {
			return authErr
		}
		return internal("Error de base de datos")
	}

	// Sessions opened with the old password stop refreshing.
	if err := s.ledger.InvalidatePrior(tx, user.ID, TokenRefresh); err != nil {
		tx.Rollback()
		return internal("Error de base de datos")
	}

	if err := tx.Commit().Error; err != nil {
		return internal("Error de base de datos")
	}

	return nil
}

func (s *Service) GetByUsername(username string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, internal("Error de base de datos")
	}
	return &user, nil
}

func (s *Service) GetByID(id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, internal("Error de base de datos")
	}
	return &user, nil
}

// UpdateProfile changes profile fields and, when NewPassword is set,
// rotates the password with the same guards as the reset flow plus a
// current-password check.
func (s *Service) UpdateProfile(userID uuid.UUID, in UpdateProfileInput) (*models.User, error) {
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var user models.User
	if err := tx.First(&user, "id = ?", userID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, internal("Error de base de datos")
	}

	updates := map[string]interface{}{}

	if in.NewPassword != nil {
		if in.CurrentPassword == nil || !s.hasher.Verify(*in.CurrentPassword, user.HashedPassword) {
			tx.Rollback()
			return nil, ErrInvalidCredentials
		}
		if werr := s.validatePasswordStrength(*in.NewPassword); werr != nil {
			tx.Rollback()
			return nil, werr
		}
		if herr := s.history.Check(tx, user.ID, *in.NewPassword); herr != nil {
			tx.Rollback()
			return nil, herr
		}
		hashed, err := s.hasher.Hash(*in.NewPassword)
		if err != nil {
			tx.Rollback()
			return nil, internal("No se pudo procesar la contraseña")
		}
		updates["hashed_password"] = hashed
		if err := s.history.Record(tx, user.ID, hashed); err != nil {
			tx.Rollback()
			return nil, internal("Error de base de datos")
		}
		if err := s.ledger.InvalidatePrior(tx, user.ID, TokenRefresh); err != nil {
			tx.Rollback()
			return nil, internal("Error de base de datos")
		}
	}

	if in.Email != nil {
		email := strings.ToLower(*in.Email)
		if email != user.Email {
			var existing models.User
			if err := tx.Where("email = ? AND id <> ?", email, user.ID).First(&existing).Error; err == nil {
				tx.Rollback()
				return nil, ErrUserAlreadyExists
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				tx.Rollback()
				return nil, internal("Error de base de datos")
			}
			updates["email"] = email
		}
	}

	if in.Username != nil && *in.Username != user.Username {
		var existing models.User
		if err := tx.Where("username = ? AND id <> ?", *in.Username, user.ID).First(&existing).Error; err == nil {
			tx.Rollback()
			return nil, ErrUserAlreadyExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			tx.Rollback()
			return nil, internal("Error de base de datos")
		}
		updates["username"] = *in.Username
	}

	if in.FullName != nil {
		updates["full_name"] = *in.FullName
	}

	if len(updates) > 0 {
		if err := tx.Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
			tx.Rollback()
			return nil, internal("Error de base de datos")
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, internal("Error de base de datos")
	}

	return s.GetByID(user.ID)
}

// DeleteAccount removes the user; gardens, plants, notes, posts and
// password history go with it through the cascade constraints.
func (s *Service) DeleteAccount(userID uuid.UUID) error {
	result := s.db.Delete(&models.User{}, "id = ?", userID)
	if result.Error != nil {
		return internal("Error de base de datos")
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
