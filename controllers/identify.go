package controllers

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gardenia-app/gardenia-api/plantnet"
)

type IdentifyController struct {
	client       *plantnet.Client
	maxImages    int
	maxImageSize int64
}

func NewIdentifyController(client *plantnet.Client, maxImages int, maxImageSize int64) *IdentifyController {
	return &IdentifyController{
		client:       client,
		maxImages:    maxImages,
		maxImageSize: maxImageSize,
	}
}

// Identify forwards the uploaded photos to PlantNet and relays its JSON
// answer untouched.
func (ic *IdentifyController) Identify(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		sendResponse(c, http.StatusBadRequest, "Solicitud inválida", nil, "Se esperaba multipart/form-data")
		return
	}

	files := form.File["images"]
	if len(files) == 0 {
		sendResponse(c, http.StatusBadRequest, "Solicitud inválida", nil, "Se requiere al menos una imagen")
		return
	}
	if len(files) > ic.maxImages {
		sendResponse(c, http.StatusBadRequest, "Solicitud inválida", nil,
			fmt.Sprintf("Se permiten máximo %d imágenes", ic.maxImages))
		return
	}

	images := make([]plantnet.Image, 0, len(files))
	for _, fh := range files {
		if fh.Size > ic.maxImageSize {
			sendResponse(c, http.StatusBadRequest, "Solicitud inválida", nil,
				fmt.Sprintf("La imagen '%s' excede el tamaño máximo permitido", fh.Filename))
			return
		}
		contentType := fh.Header.Get("Content-Type")
		if !strings.HasPrefix(contentType, "image/") {
			sendResponse(c, http.StatusBadRequest, "Solicitud inválida", nil,
				fmt.Sprintf("El archivo '%s' no es una imagen", fh.Filename))
			return
		}

		file, err := fh.Open()
		if err != nil {
			sendResponse(c, http.StatusInternalServerError, "Error interno", nil, "No se pudo leer el archivo")
			return
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			sendResponse(c, http.StatusInternalServerError, "Error interno", nil, "No se pudo leer el archivo")
			return
		}

		images = append(images, plantnet.Image{Filename: fh.Filename, Data: data})
	}

	result, err := ic.client.Identify(c.Request.Context(), images)
	if err != nil {
		sendResponse(c, http.StatusBadGateway, "No se pudo identificar la planta", nil,
			"El servicio de identificación no está disponible")
		return
	}

	c.Data(http.StatusOK, "application/json", result)
}
