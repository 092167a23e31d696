package validators

import (
	"github.com/gin-gonic/gin"
)

type PostCreateRequest struct {
	Title   string `json:"title" validate:"required,min=3,max=100"`
	Content string `json:"content" validate:"required,min=10,max=5000"`
}

type PostUpdateRequest struct {
	Title   *string `json:"title" validate:"omitempty,min=3,max=100"`
	Content *string `json:"content" validate:"omitempty,min=10,max=5000"`
}

func ValidatePostCreateRequest(c *gin.Context) (*PostCreateRequest, bool) {
	var req PostCreateRequest
	if !bindAndValidate(c, &req) {
		return nil, false
	}
	return &req, true
}

func ValidatePostUpdateRequest(c *gin.Context) (*PostUpdateRequest, bool) {
	var req PostUpdateRequest
	if !bindAndValidate(c, &req) {
		return nil, false
	}
	return &req, true
}
