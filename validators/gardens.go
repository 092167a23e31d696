package validators

import (
	"github.com/gin-gonic/gin"
)

type GardenCreateRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
}

type GardenUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=100"`
	Description *string `json:"description"`
}

type PlantCreateRequest struct {
	Alias                       string   `json:"alias" validate:"required,max=100"`
	ImageURL                    string   `json:"image_url"`
	ScientificNameWithoutAuthor string   `json:"scientific_name_without_author" validate:"required"`
	Genus                       string   `json:"genus" validate:"required"`
	Family                      string   `json:"family" validate:"required"`
	CommonNames                 []string `json:"common_names" validate:"required"`
}

type PlantUpdateRequest struct {
	Alias                       *string  `json:"alias" validate:"omitempty,max=100"`
	ImageURL                    *string  `json:"image_url"`
	ScientificNameWithoutAuthor *string  `json:"scientific_name_without_author"`
	Genus                       *string  `json:"genus"`
	Family                      *string  `json:"family"`
	CommonNames                 []string `json:"common_names"`
}

func ValidateGardenCreateRequest(c *gin.Context) (*GardenCreateRequest, bool) {
	var req GardenCreateRequest
	if !bindAndValidate(c, &req) {
		return nil, false
	}
	return &req, true
}

func ValidateGardenUpdateRequest(c *gin.Context) (*GardenUpdateRequest, bool) {
	var req GardenUpdateRequest
	if !bindAndValidate(c, &req) {
		return nil, false
	}
	return &req, true
}

func ValidatePlantCreateRequest(c *gin.Context) (*PlantCreateRequest, bool) {
	var req PlantCreateRequest
	if !bindAndValidate(c, &req) {
		return nil, false
	}
	return &req, true
}

func ValidatePlantUpdateRequest(c *gin.Context) (*PlantUpdateRequest, bool) {
	var req PlantUpdateRequest
	if !bindAndValidate(c, &req) {
		return nil, false
	}
	return &req, true
}
