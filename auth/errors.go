package auth

import "fmt"

// Kind classifies an auth failure. Controllers switch on it to pick the
// HTTP status; the message is what the client sees.
type Kind int

const (
	KindInvalidCredentials Kind = iota
	KindUserNotFound
	KindUserAlreadyExists
	KindInvalidToken
	KindTokenExpired
	KindPasswordHistoryViolation
	KindRateLimitExceeded
	KindWeakPassword
	KindInternal
)

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrInvalidCredentials = &Error{KindInvalidCredentials, "Credenciales inválidas"}
	ErrUserNotFound       = &Error{KindUserNotFound, "Usuario no encontrado"}
	ErrUserAlreadyExists  = &Error{KindUserAlreadyExists, "El usuario ya existe"}
	ErrInvalidToken       = &Error{KindInvalidToken, "Token inválido"}
	ErrTokenExpired       = &Error{KindTokenExpired, "El token ha expirado"}
	ErrTokenUsed          = &Error{KindInvalidToken, "El token ya ha sido utilizado"}
	ErrTokenSuperseded    = &Error{KindInvalidToken, "El token ha sido reemplazado por uno más reciente"}
	ErrPasswordReused     = &Error{KindPasswordHistoryViolation, "La nueva contraseña no puede coincidir con ninguna de tus contraseñas recientes"}
)

func weakPassword(minLen, maxLen, got int) *Error {
	if got < minLen {
		return &Error{KindWeakPassword, fmt.Sprintf("La contraseña debe tener al menos %d caracteres", minLen)}
	}
	return &Error{KindWeakPassword, fmt.Sprintf("La contraseña debe tener menos de %d caracteres", maxLen)}
}

func rateLimited(remainingMinutes int) *Error {
	return &Error{KindRateLimitExceeded, fmt.Sprintf("Demasiados intentos de restablecimiento. Inténtalo de nuevo en %d minutos", remainingMinutes)}
}

func internal(msg string) *Error {
	return &Error{KindInternal, msg}
}
