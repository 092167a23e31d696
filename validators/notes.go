package validators

import (
	"time"

	"github.com/gin-gonic/gin"
)

type NoteCreateRequest struct {
	Text            string     `json:"text" validate:"required,min=3"`
	ObservationDate *time.Time `json:"observation_date" validate:"required"`
}

type NoteUpdateRequest struct {
	Text            *string    `json:"text" validate:"omitempty,min=3"`
	ObservationDate *time.Time `json:"observation_date"`
}

func ValidateNoteCreateRequest(c *gin.Context) (*NoteCreateRequest, bool) {
	var req NoteCreateRequest
	if !bindAndValidate(c, &req) {
		return nil, false
	}
	return &req, true
}

func ValidateNoteUpdateRequest(c *gin.Context) (*NoteUpdateRequest, bool) {
	var req NoteUpdateRequest
	if !bindAndValidate(c, &req) {
		return nil, false
	}
	return &req, true
}
