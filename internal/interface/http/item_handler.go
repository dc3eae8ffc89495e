package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"lifetrack-api/internal/application"
	"lifetrack-api/internal/domain/entity"
	"lifetrack-api/internal/interface/middleware"
	"lifetrack-api/pkg/response"
	"lifetrack-api/pkg/validation"
)

type ItemHandler struct {
	Items  *application.ItemService
	Logger *logrus.Logger
}

func NewItemHandler(items *application.ItemService, logger *logrus.Logger) *ItemHandler {
	return &ItemHandler{Items: items, Logger: logger}
}

type itemRequest struct {
	Title    string  `json:"title" binding:"required"`
	Category string  `json:"category" binding:"omitempty,oneof=bill policy warranty other"`
	Amount   float64 `json:"amount" binding:"omitempty,gte=0"`
	DueDate  string  `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
	Status   string  `json:"status" binding:"omitempty,oneof=open paid expired"`
	Notes    string  `json:"notes"`
}

type updateItemRequest struct {
	Title    string  `json:"title"`
	Category string  `json:"category" binding:"omitempty,oneof=bill policy warranty other"`
	Amount   float64 `json:"amount" binding:"omitempty,gte=0"`
	DueDate  string  `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
	Status   string  `json:"status" binding:"omitempty,oneof=open paid expired"`
	Notes    string  `json:"notes"`
}

func itemJSON(it *entity.Item) gin.H {
	out := gin.H{
		"id":         it.ID.Hex(),
		"title":      it.Title,
		"category":   it.Category,
		"amount":     it.Amount,
		"status":     it.Status,
		"notes":      it.Notes,
		"created_at": it.CreatedAt,
		"updated_at": it.UpdatedAt,
	}
	if !it.DueDate.IsZero() {
		out["due_date"] = it.DueDate.Format("2006-01-02")
	}
	return out
}

func parseDueDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, _ := time.Parse("2006-01-02", s)
	return t
}

// Create POST /api/items
func (h *ItemHandler) Create(c *gin.Context) {
	id, _ := middleware.IdentityFrom(c)
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	it, err := h.Items.Create(c.Request.Context(), id.UserID, application.ItemInput{
		Title:    req.Title,
		Category: req.Category,
		Amount:   req.Amount,
		DueDate:  parseDueDate(req.DueDate),
		Status:   req.Status,
		Notes:    req.Notes,
	})
	if err != nil {
		h.Logger.WithError(err).WithField("user_id", id.UserID).Error("item create failed")
		response.Error(c, http.StatusInternalServerError, "Failed to create item", nil)
		return
	}
	response.Success(c, http.StatusCreated, itemJSON(it), "item created", nil)
}

// List GET /api/items
func (h *ItemHandler) List(c *gin.Context) {
	id, _ := middleware.IdentityFrom(c)
	items, err := h.Items.List(c.Request.Context(), id.UserID)
	if err != nil {
		h.Logger.WithError(err).WithField("user_id", id.UserID).Error("item list failed")
		response.Error(c, http.StatusInternalServerError, "Failed to get items", nil)
		return
	}
	out := make([]gin.H, 0, len(items))
	for i := range items {
		out = append(out, itemJSON(&items[i]))
	}
	response.Success(c, http.StatusOK, out, "items", map[string]any{"count": len(out)})
}

// Update PUT /api/items/:id
func (h *ItemHandler) Update(c *gin.Context) {
	id, _ := middleware.IdentityFrom(c)
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	it, err := h.Items.Update(c.Request.Context(), id.UserID, c.Param("id"), application.ItemInput{
		Title:    req.Title,
		Category: req.Category,
		Amount:   req.Amount,
		DueDate:  parseDueDate(req.DueDate),
		Status:   req.Status,
		Notes:    req.Notes,
	})
	if err != nil {
		if errors.Is(err, application.ErrItemNotFound) {
			response.Error(c, http.StatusNotFound, "Item not found", nil)
			return
		}
		h.Logger.WithError(err).WithField("user_id", id.UserID).Error("item update failed")
		response.Error(c, http.StatusInternalServerError, "Failed to update item", nil)
		return
	}
	response.Success(c, http.StatusOK, itemJSON(it), "item updated", nil)
}

// Delete DELETE /api/items/:id
func (h *ItemHandler) Delete(c *gin.Context) {
	id, _ := middleware.IdentityFrom(c)
	if err := h.Items.Delete(c.Request.Context(), id.UserID, c.Param("id")); err != nil {
		if errors.Is(err, application.ErrItemNotFound) {
			response.Error(c, http.StatusNotFound, "Item not found", nil)
			return
		}
		h.Logger.WithError(err).WithField("user_id", id.UserID).Error("item delete failed")
		response.Error(c, http.StatusInternalServerError, "Failed to delete item", nil)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "item deleted", nil)
}
