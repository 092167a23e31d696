package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gardenia-app/gardenia-api/models"
	"github.com/gardenia-app/gardenia-api/validators"
)

type NoteController struct {
	db *gorm.DB
}

func NewNoteController(db *gorm.DB) *NoteController {
	return &NoteController{db: db}
}

func noteJSON(n *models.PlantNote) map[string]interface{} {
	return map[string]interface{}{
		"id":               n.ID,
		"plant_id":         n.PlantID,
		"text":             n.Text,
		"observation_date": n.ObservationDate,
		"created_at":       n.CreatedAt,
		"updated_at":       n.UpdatedAt,
	}
}

// ownedPlant resolves a plant id to a plant owned by the user, answering
// 404 itself when either does not hold.
func (nc *NoteController) ownedPlant(c *gin.Context, plantID, userID uuid.UUID) (*models.Plant, bool) {
	var plant models.Plant
	err := nc.db.Where("id = ? AND user_id = ?", plantID, userID).First(&plant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendResponse(c, http.StatusNotFound, "Planta no encontrada", nil, "Planta no encontrada")
		} else {
			sendResponse(c, http.StatusInternalServerError, "Error interno", nil, "Error de base de datos")
		}
		return nil, false
	}
	return &plant, true
}

func (nc *NoteController) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	plantID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	req, ok := validators.ValidateNoteCreateRequest(c)
	if !ok {
		return
	}
	plant, ok := nc.ownedPlant(c, plantID, user.ID)
	if !ok {
		return
	}

	note := models.PlantNote{
		PlantID:         plant.ID,
		Text:            req.Text,
		ObservationDate: *req.ObservationDate,
	}
	if err := nc.db.Create(&note).Error; err != nil {
		sendResponse(c, http.StatusInternalServerError, "No se pudo crear la nota", nil, "Error de base de datos")
		return
	}

	sendResponse(c, http.StatusCreated, "Nota creada exitosamente", noteJSON(&note), nil)
}

func (nc *NoteController) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	plantID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	plant, ok := nc.ownedPlant(c, plantID, user.ID)
	if !ok {
		return
	}

	var notes []models.PlantNote
	if err := nc.db.Where("plant_id = ?", plant.ID).
		Order("observation_date DESC").Find(&notes).Error; err != nil {
		sendResponse(c, http.StatusInternalServerError, "Error interno", nil, "Error de base de datos")
		return
	}

	items := make([]map[string]interface{}, 0, len(notes))
	for i := range notes {
		items = append(items, noteJSON(&notes[i]))
	}

	sendResponse(c, http.StatusOK, "Notas recuperadas exitosamente", map[string]interface{}{
		"items": items,
		"total": len(items),
	}, nil)
}

func (nc *NoteController) Update(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	plantID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	noteID, ok := pathUUID(c, "noteID")
	if !ok {
		return
	}
	req, ok := validators.ValidateNoteUpdateRequest(c)
	if !ok {
		return
	}
	plant, ok := nc.ownedPlant(c, plantID, user.ID)
	if !ok {
		return
	}

	var note models.PlantNote
	err := nc.db.Where("id = ? AND plant_id = ?", noteID, plant.ID).First(&note).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendResponse(c, http.StatusNotFound, "Nota no encontrada", nil, "Nota no encontrada")
		} else {
			sendResponse(c, http.StatusInternalServerError, "Error interno", nil, "Error de base de datos")
		}
		return
	}

	updates := map[string]interface{}{}
	if req.Text != nil {
		updates["text"] = *req.Text
	}
	if req.ObservationDate != nil {
		updates["observation_date"] = *req.ObservationDate
	}

	if len(updates) > 0 {
		if err := nc.db.Model(&note).Updates(updates).Error; err != nil {
			sendResponse(c, http.StatusInternalServerError, "Error interno", nil, "Error de base de datos")
			return
		}
	}

	sendResponse(c, http.StatusOK, "Nota actualizada exitosamente", noteJSON(&note), nil)
}
