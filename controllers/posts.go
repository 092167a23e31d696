package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gardenia-app/gardenia-api/models"
	"github.com/gardenia-app/gardenia-api/validators"
)

type PostController struct {
	db *gorm.DB
}

func NewPostController(db *gorm.DB) *PostController {
	return &PostController{db: db}
}

func postJSON(p *models.Post) map[string]interface{} {
	return map[string]interface{}{
		"id":         p.ID,
		"title":      p.Title,
		"content":    p.Content,
		"user_id":    p.UserID,
		"created_at": p.CreatedAt,
		"updated_at": p.UpdatedAt,
	}
}

// queryInt reads a non-negative integer query parameter, falling back to
// def on absence or garbage.
func queryInt(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func (pc *PostController) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	req, ok := validators.ValidatePostCreateRequest(c)
	if !ok {
		return
	}

	post := models.Post{
		Title:   req.Title,
		Content: req.Content,
		UserID:  user.ID,
	}
	if err := pc.db.Create(&post).Error; err != nil {
		sendResponse(c, http.StatusInternalServerError, "No se pudo crear la publicación", nil, "Error de base de datos")
		return
	}

	sendResponse(c, http.StatusCreated, "Publicación creada exitosamente", postJSON(&post), nil)
}

// List returns posts from all users, newest first.
func (pc *PostController) List(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	skip := queryInt(c, "skip", 0)
	limit := queryInt(c, "limit", 100)
	if limit > 100 {
		limit = 100
	}

	var posts []models.Post
	if err := pc.db.Order("created_at DESC").Offset(skip).Limit(limit).Find(&posts).Error; err != nil {
		sendResponse(c, http.StatusInternalServerError, "Error interno", nil, "Error de base de datos")
		return
	}

	items := make([]map[string]interface{}, 0, len(posts))
	for i := range posts {
		items = append(items, postJSON(&posts[i]))
	}

	sendResponse(c, http.StatusOK, "Publicaciones recuperadas exitosamente", map[string]interface{}{
		"items": items,
		"total": len(items),
	}, nil)
}

func (pc *PostController) Get(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}
	postID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var post models.Post
	if err := pc.db.Where("id = ?", postID).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendResponse(c, http.StatusNotFound, "Publicación no encontrada", nil, "Publicación no encontrada")
		} else {
			sendResponse(c, http.StatusInternalServerError, "Error interno", nil, "Error de base de datos")
		}
		return
	}

	sendResponse(c, http.StatusOK, "Publicación recuperada exitosamente", postJSON(&post), nil)
}

// ownedPost loads a post and enforces that the caller wrote it, answering
// 404 or 403 itself.
func (pc *PostController) ownedPost(c *gin.Context, postID, userID uuid.UUID) (*models.Post, bool) {
	var post models.Post
	if err := pc.db.Where("id = ?", postID).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendResponse(c, http.StatusNotFound, "Publicación no encontrada", nil, "Publicación no encontrada")
		} else {
			sendResponse(c, http.StatusInternalServerError, "Error interno", nil, "Error de base de datos")
		}
		return nil, false
	}
	if post.UserID != userID {
		sendResponse(c, http.StatusForbidden, "Operación no permitida", nil,
			"Solo el autor puede modificar la publicación")
		return nil, false
	}
	return &post, true
}

func (pc *PostController) Update(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	postID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	req, ok := validators.ValidatePostUpdateRequest(c)
	if !ok {
		return
	}
	post, ok := pc.ownedPost(c, postID, user.ID)
	if !ok {
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Content != nil {
		updates["content"] = *req.Content
	}

	if len(updates) > 0 {
		if err := pc.db.Model(post).Updates(updates).Error; err != nil {
			sendResponse(c, http.StatusInternalServerError, "Error interno", nil, "Error de base de datos")
			return
		}
	}

	sendResponse(c, http.StatusOK, "Publicación actualizada exitosamente", postJSON(post), nil)
}

func (pc *PostController) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	postID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	post, ok := pc.ownedPost(c, postID, user.ID)
	if !ok {
		return
	}

	if err := pc.db.Delete(post).Error; err != nil {
		sendResponse(c, http.StatusInternalServerError, "Error interno", nil, "Error de base de datos")
		return
	}

	sendResponse(c, http.StatusOK, "Publicación eliminada exitosamente", nil, nil)
}
