package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gardenia-app/gardenia-api/auth"
	"github.com/gardenia-app/gardenia-api/validators"
)

type UserController struct {
	svc *auth.Service
}

func NewUserController(svc *auth.Service) *UserController {
	return &UserController{svc: svc}
}

func (uc *UserController) GetMe(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	sendResponse(c, http.StatusOK, "Usuario recuperado exitosamente", userJSON(user), nil)
}

func (uc *UserController) UpdateMe(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	req, ok := validators.ValidateUpdateProfileRequest(c)
	if !ok {
		return
	}

	updated, err := uc.svc.UpdateProfile(user.ID, auth.UpdateProfileInput{
		Email:           req.Email,
		Username:        req.Username,
		FullName:        req.FullName,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		sendAuthError(c, "No se pudo actualizar el usuario", err)
		return
	}

	sendResponse(c, http.StatusOK, "Usuario actualizado exitosamente", userJSON(updated), nil)
}

func (uc *UserController) DeleteMe(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if err := uc.svc.DeleteAccount(user.ID); err != nil {
		sendAuthError(c, "No se pudo eliminar el usuario", err)
		return
	}

	sendResponse(c, http.StatusOK, "Usuario eliminado exitosamente", nil, nil)
}
