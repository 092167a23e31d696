package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gardenia-app/gardenia-api/wikipedia"
)

type PlantInfoController struct {
	wiki *wikipedia.Client
}

func NewPlantInfoController(wiki *wikipedia.Client) *PlantInfoController {
	return &PlantInfoController{wiki: wiki}
}

// Wikipedia looks up encyclopedia data for a scientific name.
func (pc *PlantInfoController) Wikipedia(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	scientificName := c.Param("scientificName")
	if scientificName == "" {
		sendResponse(c, http.StatusBadRequest, "Solicitud inválida", nil, "Se requiere un nombre científico")
		return
	}

	info, err := pc.wiki.Summary(c.Request.Context(), scientificName)
	if err != nil {
		sendResponse(c, http.StatusBadGateway, "No se pudo consultar Wikipedia", nil,
			"El servicio de Wikipedia no está disponible")
		return
	}
	if info == nil {
		sendResponse(c, http.StatusNotFound, "Información no encontrada", nil,
			"No se encontró información para el nombre científico")
		return
	}

	sendResponse(c, http.StatusOK, "Información recuperada exitosamente", info, nil)
}
