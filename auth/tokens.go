package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenKind is the type tag carried inside every token. A token is only
// accepted where its kind matches.
type TokenKind string

const (
	TokenAccess        TokenKind = "access"
	TokenRefresh       TokenKind = "refresh"
	TokenPasswordReset TokenKind = "password_reset"
)

type Claims struct {
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and verifies HS256 tokens for the three kinds. The
// subject is the username.
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	resetTTL   time.Duration
	now        func() time.Time
}

func NewTokenIssuer(secret string, accessTTL, refreshTTL, resetTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		resetTTL:   resetTTL,
		now:        time.Now,
	}
}

func (ti *TokenIssuer) ttl(kind TokenKind) time.Duration {
	switch kind {
	case TokenRefresh:
		return ti.refreshTTL
	case TokenPasswordReset:
		return ti.resetTTL
	default:
		return ti.accessTTL
	}
}

func (ti *TokenIssuer) Issue(username string, kind TokenKind) (string, error) {
	now := ti.now()
	claims := Claims{
		TokenType: string(kind),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ti.ttl(kind))),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ti.secret)
}

// Parse verifies signature and expiry and checks that the token is of the
// expected kind and names a subject. Any failure comes back as a tagged
// *Error so the HTTP layer can map it.
func (ti *TokenIssuer) Parse(tokenString string, kind TokenKind) (*Claims, *Error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return ti.secret, nil
	}, jwt.WithTimeFunc(ti.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if claims.TokenType != string(kind) || claims.Subject == "" || claims.IssuedAt == nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
