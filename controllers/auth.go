package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gardenia-app/gardenia-api/auth"
	"github.com/gardenia-app/gardenia-api/validators"
)

type AuthController struct {
	svc *auth.Service
}

func NewAuthController(svc *auth.Service) *AuthController {
	return &AuthController{svc: svc}
}

// Register handles user registration
func (ac *AuthController) Register(c *gin.Context) {
	req, ok := validators.ValidateRegisterRequest(c)
	if !ok {
		return
	}

	user, err := ac.svc.Register(c.Request.Context(), auth.RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		sendAuthError(c, "No se pudo registrar el usuario", err)
		return
	}

	sendResponse(c, http.StatusCreated, "Usuario registrado exitosamente", userJSON(user), nil)
}

// Token handles login and returns an access/refresh token pair.
func (ac *AuthController) Token(c *gin.Context) {
	req, ok := validators.ValidateLoginRequest(c)
	if !ok {
		return
	}

	user, err := ac.svc.Authenticate(req.UsernameOrEmail, req.Password)
	if err != nil {
		sendAuthError(c, "Inicio de sesión fallido", err)
		return
	}

	pair, err := ac.svc.IssueTokenPair(user)
	if err != nil {
		sendAuthError(c, "Inicio de sesión fallido", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"token_type":    "bearer",
	})
}

// Refresh rotates a refresh token submitted as form data.
func (ac *AuthController) Refresh(c *gin.Context) {
	refreshToken := c.PostForm("refresh_token")
	if refreshToken == "" {
		sendResponse(c, http.StatusBadRequest, "Solicitud inválida", nil, "Se requiere refresh_token")
		return
	}

	pair, err := ac.svc.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		var authErr *auth.Error
		if errors.As(err, &authErr) && authErr.Kind != auth.KindInternal {
			sendResponse(c, http.StatusUnauthorized, "No se pudo refrescar el token", nil, authErr.Message)
			return
		}
		sendAuthError(c, "No se pudo refrescar el token", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"token_type":    "bearer",
	})
}

// PasswordResetRequest always answers with the same message for existing
// and unknown emails; only the rate limiter may reject.
func (ac *AuthController) PasswordResetRequest(c *gin.Context) {
	req, ok := validators.ValidatePasswordResetRequestRequest(c)
	if !ok {
		return
	}

	if err := ac.svc.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		sendAuthError(c, "No se pudo procesar la solicitud", err)
		return
	}

	sendResponse(c, http.StatusOK,
		"Si el correo existe, se ha enviado un enlace para restablecer la contraseña", nil, nil)
}

// PasswordResetForm serves the HTML reset form linked from the email.
func (ac *AuthController) PasswordResetForm(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.HTML(http.StatusBadRequest, "reset_error.html", gin.H{
			"Message": "El enlace de restablecimiento no es válido",
		})
		return
	}

	c.HTML(http.StatusOK, "reset_password.html", gin.H{
		"Token": token,
	})
}

// PasswordReset redeems the token. Every failure in this flow is a 400 per
// the endpoint contract, except the rate limiter which never applies here.
func (ac *AuthController) PasswordReset(c *gin.Context) {
	req, ok := validators.ValidatePasswordResetRequest(c)
	if !ok {
		return
	}

	if err := ac.svc.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		var authErr *auth.Error
		if errors.As(err, &authErr) && authErr.Kind != auth.KindInternal {
			sendResponse(c, http.StatusBadRequest, "No se pudo restablecer la contraseña", nil, authErr.Message)
			return
		}
		sendAuthError(c, "No se pudo restablecer la contraseña", err)
		return
	}

	sendResponse(c, http.StatusOK, "Contraseña actualizada exitosamente", nil, nil)
}

// AuthMiddleware handles authentication for protected routes
func (ac *AuthController) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, APIResponse{
				Status:  http.StatusUnauthorized,
				Message: "Autenticación requerida",
				Error:   "Se requiere un token de acceso",
			})
			return
		}

		user, err := ac.svc.VerifyAccessToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, APIResponse{
				Status:  http.StatusUnauthorized,
				Message: "Autenticación fallida",
				Error:   "Token inválido o expirado",
			})
			return
		}

		if !user.IsActive {
			c.AbortWithStatusJSON(http.StatusForbidden, APIResponse{
				Status:  http.StatusForbidden,
				Message: "Autenticación fallida",
				Error:   "Usuario inactivo",
			})
			return
		}

		c.Set("user", user)
		c.Next()
	}
}
