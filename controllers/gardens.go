package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gardenia-app/gardenia-api/models"
	"github.com/gardenia-app/gardenia-api/storage"
	"github.com/gardenia-app/gardenia-api/validators"
)

type GardenController struct {
	db       *gorm.DB
	uploader storage.Uploader
}

func NewGardenController(db *gorm.DB, uploader storage.Uploader) *GardenController {
	return &GardenController{db: db, uploader: uploader}
}

func gardenJSON(g *models.Garden) map[string]interface{} {
	return map[string]interface{}{
		"id":          g.ID,
		"name":        g.Name,
		"description": g.Description,
		"image_url":   g.ImageURL,
		"user_id":     g.UserID,
		"created_at":  g.CreatedAt,
		"updated_at":  g.UpdatedAt,
	}
}

func plantJSON(p *models.Plant) map[string]interface{} {
	return map[string]interface{}{
		"id":                             p.ID,
		"alias":                          p.Alias,
		"image_url":                      p.ImageURL,
		"garden_id":                      p.GardenID,
		"user_id":                        p.UserID,
		"scientific_name_without_author": p.ScientificNameWithoutAuthor,
		"genus":                          p.Genus,
		"family":                         p.Family,
		"common_names":                   p.CommonNames,
		"created_at":                     p.CreatedAt,
		"updated_at":                     p.UpdatedAt,
	}
}

// findGarden loads a garden scoped to its owner, answering 404 itself when
// it does not exist.
func (gc *GardenController) findGarden(c *gin.Context, gardenID, userID uuid.UUID) (*models.Garden, bool) {
	var garden models.Garden
	err := gc.db.Where("id = ? AND user_id = ?", gardenID, userID).First(&garden).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendResponse(c, http.StatusNotFound, "Jardín no encontrado", nil, "Jardín no encontrado")
		} else {
			sendResponse(c, http.StatusInternalServerError, "Error interno", nil, "Error de base de datos")
		}
		return nil, false
	}
	return &garden, true
}

func (gc *GardenController) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	req, ok := validators.ValidateGardenCreateRequest(c)
	if !ok {
		return
	}

	var existing models.Garden
	if err := gc.db.Where("user_id = ? AND name = ?", user.ID, req.Name).First(&existing).Error; err == nil {
		sendResponse(c, http.StatusBadRequest, "No se pudo crear el jardín", nil,
			fmt.Sprintf("Ya existe un jardín con el nombre '%s'", req.Name))
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		sendResponse(c, http.StatusInternalServerError, "Error interno", nil, "Error de base de datos")
		return
	}

	garden := models.Garden{
		Name:        req.Name,
		Description: req.Description,
		UserID:      user.ID,
	}
	if err := gc.db.Create(&garden).Error; err != nil {
		sendResponse(c, http.StatusBadRequest, "No se pudo crear el jardín", nil, "Posible duplicado")
		return
	}

	sendResponse(c, http.StatusCreated, "Jardín creado exitosamente", gardenJSON(&garden), nil)
}

func (gc *GardenController) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var gardens []models.Garden
	if err := gc.db.Where("user_id = ?", user.ID).Order("created_at DESC").Find(&gardens).Error; err != nil {
		sendResponse(c, http.StatusInternalServerError, "Error interno", nil, "Error de base de datos")
		return
	}

	// One grouped count query instead of one count per garden.
	type gardenCount struct {
		GardenID uuid.UUID
		Count    int64
	}
	var counts []gardenCount
	if err := gc.db.Model(&models.Plant{}).
		Select("garden_id, COUNT(id) AS count").
		Where("user_id = ?", user.ID).
		Group("garden_id").
		Find(&counts).Error; err != nil {
		sendResponse(c, http.StatusInternalServerError, "Error interno", nil, "Error de base de datos")
		return
	}
	countByGarden := make(map[uuid.UUID]int64, len(counts))
	for _, gcount := range counts {
		countByGarden[gcount.GardenID] = gcount.Count
	}

	items := make([]map[string]interface{}, 0, len(gardens))
	for i := range gardens {
		item := gardenJSON(&gardens[i])
		item["plant_count"] = countByGarden[gardens[i].ID]
		items = append(items, item)
	}

	sendResponse(c, http.StatusOK, "Jardines recuperados exitosamente", map[string]interface{}{
		"items": items,
		"total": len(items),
	}, nil)
}

func (gc *GardenController) Get(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	gardenID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	garden, ok := gc.findGarden(c, gardenID, user.ID)
	if !ok {
		return
	}

	var plants []models.Plant
	if err := gc.db.Where("garden_id = ? AND user_id = ?", garden.ID, user.ID).Find(&plants).Error; err != nil {
		sendResponse(c, http.StatusInternalServerError, "Error interno", nil, "Error de base de datos")
		return
	}

	plantItems := make([]map[string]interface{}, 0, len(plants))
	for i := range plants {
		plantItems = append(plantItems, plantJSON(&plants[i]))
	}

	data := gardenJSON(garden)
	data["plants"] = plantItems
	data["plant_count"] = len(plantItems)

	sendResponse(c, http.StatusOK, "Jardín recuperado exitosamente", data, nil)
}

func (gc *GardenController) Update(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	gardenID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	req, ok := validators.ValidateGardenUpdateRequest(c)
	if !ok {
		return
	}
	garden, ok := gc.findGarden(c, gardenID, user.ID)
	if !ok {
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil && *req.Name != garden.Name {
		var existing models.Garden
		if err := gc.db.Where("user_id = ? AND name = ? AND id <> ?", user.ID, *req.Name, garden.ID).
			First(&existing).Error; err == nil {
			sendResponse(c, http.StatusBadRequest, "No se pudo actualizar el jardín", nil,
				fmt.Sprintf("Ya existe un jardín con el nombre '%s'", *req.Name))
			return
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			sendResponse(c, http.StatusInternalServerError, "Error interno", nil, "Error de base de datos")
			return
		}
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}

	if len(updates) > 0 {
		if err := gc.db.Model(garden).Updates(updates).Error; err != nil {
			sendResponse(c, http.StatusInternalServerError, "Error interno", nil, "Error de base de datos")
			return
		}
	}

	sendResponse(c, http.StatusOK, "Jardín actualizado exitosamente", gardenJSON(garden), nil)
}

func (gc *GardenController) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	gardenID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	garden, ok := gc.findGarden(c, gardenID, user.ID)
	if !ok {
		return
	}

	if err := gc.db.Delete(garden).Error; err != nil {
		sendResponse(c, http.StatusInternalServerError, "Error interno", nil, "Error de base de datos")
		return
	}

	sendResponse(c, http.StatusOK, "Jardín eliminado exitosamente", nil, nil)
}

func (gc *GardenController) AddPlant(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	gardenID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	req, ok := validators.ValidatePlantCreateRequest(c)
	if !ok {
		return
	}
	garden, ok := gc.findGarden(c, gardenID, user.ID)
	if !ok {
		return
	}

	var existing models.Plant
	if err := gc.db.Where("user_id = ? AND alias = ?", user.ID, req.Alias).First(&existing).Error; err == nil {
		sendResponse(c, http.StatusBadRequest, "No se pudo agregar la planta", nil,
			fmt.Sprintf("Ya existe una planta con el alias '%s' para este usuario", req.Alias))
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		sendResponse(c, http.StatusInternalServerError, "Error interno", nil, "Error de base de datos")
		return
	}

	plant := models.Plant{
		Alias:                       req.Alias,
		ImageURL:                    req.ImageURL,
		UserID:                      user.ID,
		GardenID:                    garden.ID,
		ScientificNameWithoutAuthor: req.ScientificNameWithoutAuthor,
		Genus:                       req.Genus,
		Family:                      req.Family,
		CommonNames:                 req.CommonNames,
	}
	if err := gc.db.Create(&plant).Error; err != nil {
		sendResponse(c, http.StatusBadRequest, "No se pudo agregar la planta", nil, "Posible duplicado")
		return
	}

	sendResponse(c, http.StatusCreated, "Planta agregada exitosamente", plantJSON(&plant), nil)
}

// findPlant loads a plant scoped to garden and owner, answering 404 itself.
func (gc *GardenController) findPlant(c *gin.Context, plantID, gardenID, userID uuid.UUID) (*models.Plant, bool) {
	var plant models.Plant
	err := gc.db.Where("id = ? AND garden_id = ? AND user_id = ?", plantID, gardenID, userID).First(&plant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendResponse(c, http.StatusNotFound, "Planta no encontrada", nil, "Planta no encontrada en el jardín")
		} else {
			sendResponse(c, http.StatusInternalServerError, "Error interno", nil, "Error de base de datos")
		}
		return nil, false
	}
	return &plant, true
}

func (gc *GardenController) ListPlants(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	gardenID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	garden, ok := gc.findGarden(c, gardenID, user.ID)
	if !ok {
		return
	}

	var plants []models.Plant
	if err := gc.db.Where("garden_id = ? AND user_id = ?", garden.ID, user.ID).
		Order("created_at DESC").Find(&plants).Error; err != nil {
		sendResponse(c, http.StatusInternalServerError, "Error interno", nil, "Error de base de datos")
		return
	}

	items := make([]map[string]interface{}, 0, len(plants))
	for i := range plants {
		items = append(items, plantJSON(&plants[i]))
	}

	sendResponse(c, http.StatusOK, "Plantas recuperadas exitosamente", map[string]interface{}{
		"items":       items,
		"total":       len(items),
		"garden_name": garden.Name,
	}, nil)
}

func (gc *GardenController) GetPlant(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	gardenID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	plantID, ok := pathUUID(c, "plantID")
	if !ok {
		return
	}
	plant, ok := gc.findPlant(c, plantID, gardenID, user.ID)
	if !ok {
		return
	}

	sendResponse(c, http.StatusOK, "Planta recuperada exitosamente", plantJSON(plant), nil)
}

func (gc *GardenController) UpdatePlant(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	gardenID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	plantID, ok := pathUUID(c, "plantID")
	if !ok {
		return
	}
	req, ok := validators.ValidatePlantUpdateRequest(c)
	if !ok {
		return
	}
	plant, ok := gc.findPlant(c, plantID, gardenID, user.ID)
	if !ok {
		return
	}

	updates := map[string]interface{}{}
	if req.Alias != nil && *req.Alias != plant.Alias {
		var existing models.Plant
		if err := gc.db.Where("user_id = ? AND alias = ? AND id <> ?", user.ID, *req.Alias, plant.ID).
			First(&existing).Error; err == nil {
			sendResponse(c, http.StatusBadRequest, "No se pudo actualizar la planta", nil,
				fmt.Sprintf("Ya existe una planta con el alias '%s' para este usuario", *req.Alias))
			return
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			sendResponse(c, http.StatusInternalServerError, "Error interno", nil, "Error de base de datos")
			return
		}
		updates["alias"] = *req.Alias
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.ScientificNameWithoutAuthor != nil {
		updates["scientific_name_without_author"] = *req.ScientificNameWithoutAuthor
	}
	if req.Genus != nil {
		updates["genus"] = *req.Genus
	}
	if req.Family != nil {
		updates["family"] = *req.Family
	}

	if len(updates) > 0 {
		if err := gc.db.Model(plant).Updates(updates).Error; err != nil {
			sendResponse(c, http.StatusInternalServerError, "Error interno", nil, "Error de base de datos")
			return
		}
	}
	if req.CommonNames != nil {
		plant.CommonNames = req.CommonNames
		if err := gc.db.Model(plant).Update("common_names", plant.CommonNames).Error; err != nil {
			sendResponse(c, http.StatusInternalServerError, "Error interno", nil, "Error de base de datos")
			return
		}
	}

	sendResponse(c, http.StatusOK, "Planta actualizada exitosamente", plantJSON(plant), nil)
}

func (gc *GardenController) DeletePlant(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	gardenID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	plantID, ok := pathUUID(c, "plantID")
	if !ok {
		return
	}
	plant, ok := gc.findPlant(c, plantID, gardenID, user.ID)
	if !ok {
		return
	}

	if err := gc.db.Delete(plant).Error; err != nil {
		sendResponse(c, http.StatusInternalServerError, "Error interno", nil, "Error de base de datos")
		return
	}

	sendResponse(c, http.StatusOK, "Planta eliminada exitosamente", nil, nil)
}

// uploadImage runs the shared multipart validation + upload sequence and
// returns the stored URL.
func (gc *GardenController) uploadImage(c *gin.Context, folder string) (string, bool) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		sendResponse(c, http.StatusBadRequest, "Solicitud inválida", nil, "Se requiere una imagen")
		return "", false
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if err := storage.ValidateImage(fileHeader.Size, contentType); err != nil {
		sendResponse(c, http.StatusBadRequest, "No se pudo subir la imagen", nil, err.Error())
		return "", false
	}

	file, err := fileHeader.Open()
	if err != nil {
		sendResponse(c, http.StatusInternalServerError, "No se pudo subir la imagen", nil, "No se pudo leer el archivo")
		return "", false
	}
	defer file.Close()

	url, err := gc.uploader.UploadImage(c.Request.Context(), file, fileHeader.Size, contentType, folder)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, storage.ErrFileTooBig) || errors.Is(err, storage.ErrInvalidFileType) {
			status = http.StatusBadRequest
		}
		sendResponse(c, status, "No se pudo subir la imagen", nil, err.Error())
		return "", false
	}

	return url, true
}

func (gc *GardenController) UploadGardenImage(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	gardenID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	garden, ok := gc.findGarden(c, gardenID, user.ID)
	if !ok {
		return
	}

	folder := path.Join(storage.GardenImagesFolder, user.ID.String(), garden.ID.String())
	url, ok := gc.uploadImage(c, folder)
	if !ok {
		return
	}

	if err := gc.db.Model(garden).Update("image_url", url).Error; err != nil {
		sendResponse(c, http.StatusInternalServerError, "Error interno", nil, "Error de base de datos")
		return
	}

	sendResponse(c, http.StatusOK, "Imagen subida exitosamente", map[string]interface{}{"image_url": url}, nil)
}

func (gc *GardenController) UploadPlantImage(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	gardenID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	plantID, ok := pathUUID(c, "plantID")
	if !ok {
		return
	}
	plant, ok := gc.findPlant(c, plantID, gardenID, user.ID)
	if !ok {
		return
	}

	folder := path.Join(storage.GardenImagesFolder, user.ID.String(), gardenID.String(),
		storage.PlantImagesFolder, plant.ID.String())
	url, ok := gc.uploadImage(c, folder)
	if !ok {
		return
	}

	if err := gc.db.Model(plant).Update("image_url", url).Error; err != nil {
		sendResponse(c, http.StatusInternalServerError, "Error interno", nil, "Error de base de datos")
		return
	}

	sendResponse(c, http.StatusOK, "Imagen subida exitosamente", map[string]interface{}{"image_url": url}, nil)
}
