package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gardenia-app/gardenia-api/auth"
	"github.com/gardenia-app/gardenia-api/models"
)

type APIResponse struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   interface{} `json:"error,omitempty"`
}

// sendResponse is a helper function to send consistent JSON responses
func sendResponse(c *gin.Context, status int, message string, data interface{}, err interface{}) {
	c.JSON(status, APIResponse{
		Status:  status,
		Message: message,
		Data:    data,
		Error:   err,
	})
}

// statusForKind is the default error-kind to HTTP status mapping. Handlers
// with a narrower contract (the reset endpoints answer 400 for token
// problems) override it locally.
func statusForKind(kind auth.Kind) int {
	switch kind {
	case auth.KindInvalidCredentials, auth.KindInvalidToken, auth.KindTokenExpired:
		return http.StatusUnauthorized
	case auth.KindUserNotFound:
		return http.StatusNotFound
	case auth.KindUserAlreadyExists, auth.KindPasswordHistoryViolation, auth.KindWeakPassword:
		return http.StatusBadRequest
	case auth.KindRateLimitExceeded:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// sendAuthError maps a service error onto the envelope. Unknown errors
// become an opaque 500.
func sendAuthError(c *gin.Context, message string, err error) {
	var authErr *auth.Error
	if errors.As(err, &authErr) {
		sendResponse(c, statusForKind(authErr.Kind), message, nil, authErr.Message)
		return
	}
	sendResponse(c, http.StatusInternalServerError, message, nil, "Error interno del servidor")
}

func userJSON(u *models.User) map[string]interface{} {
	return map[string]interface{}{
		"id":           u.ID,
		"email":        u.Email,
		"username":     u.Username,
		"full_name":    u.FullName,
		"is_active":    u.IsActive,
		"is_superuser": u.IsSuperuser,
		"created_at":   u.CreatedAt,
		"updated_at":   u.UpdatedAt,
	}
}

// currentUser returns the user placed in the context by AuthMiddleware.
func currentUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get("user")
	if !exists {
		sendResponse(c, http.StatusUnauthorized, "Autenticación requerida", nil, "Usuario no encontrado en el contexto")
		return nil, false
	}
	user, ok := v.(*models.User)
	if !ok {
		sendResponse(c, http.StatusUnauthorized, "Autenticación requerida", nil, "Usuario no encontrado en el contexto")
		return nil, false
	}
	return user, true
}

// pathUUID parses a uuid path parameter, answering 400 on garbage.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		sendResponse(c, http.StatusBadRequest, "Solicitud inválida", nil, "Identificador inválido")
		return uuid.Nil, false
	}
	return id, true
}
