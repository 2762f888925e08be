package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "lucky-draw-backend/internal/common/errors"
	"lucky-draw-backend/internal/common/middleware"
	"lucky-draw-backend/internal/common/validation"
	"lucky-draw-backend/internal/features/ledger/models"
	"lucky-draw-backend/internal/features/ledger/service"
)

type EntriesResponse struct {
	Entries []models.DisplayEntry `json:"entries"`
	Count   int                   `json:"count"`
}

type AdminEntriesResponse struct {
	Entries []models.Entry `json:"entries"`
	Count   int            `json:"count"`
}

type LedgerHandler struct {
	service    service.LedgerService
	adminToken string
	maxLimit   int
}

func NewLedgerHandler(service service.LedgerService, adminToken string, maxLimit int) *LedgerHandler {
	return &LedgerHandler{service: service, adminToken: adminToken, maxLimit: maxLimit}
}

func (h *LedgerHandler) RegisterRoutes(router *gin.RouterGroup) {
	wrap := middleware.HandleErrorWrapper(MapError)

	router.GET("/entries/today", h.getToday)

	admin := router.Group("/admin", middleware.RequireAdmin(h.adminToken))
	{
		admin.GET("/entries", wrap(h.listAll))
		admin.DELETE("/entries/:id", wrap(h.deleteEntry))
		admin.DELETE("/entries", wrap(h.clear))
	}
}

// @Summary Сегодняшние записи
// @Description Замаскированные записи текущего дня, новые первыми. При сбое хранилища возвращается пустой список.
// @Tags entries
// @Produce json
// @Success 200 {object} EntriesResponse
// @Router /entries/today [get]
func (h *LedgerHandler) getToday(c *gin.Context) {
	entries := make([]models.DisplayEntry, 0)
	for e := range h.service.ListToday(c.Request.Context()) {
		entries = append(entries, h.service.Mask(e))
	}
	c.JSON(http.StatusOK, EntriesResponse{Entries: entries, Count: len(entries)})
}

// @Summary Все записи (админ)
// @Tags admin
// @Produce json
// @Param X-Admin-Token header string true "Admin token"
// @Param limit query int false "Максимум записей"
// @Success 200 {object} AdminEntriesResponse
// @Router /admin/entries [get]
func (h *LedgerHandler) listAll(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			_ = c.Error(apperrors.NewValidationError("limit", "must be an integer"))
			return
		}
		limit = n
	}
	limit, err := validation.ValidateLimit(limit, h.maxLimit)
	if err != nil {
		_ = c.Error(apperrors.NewValidationError("limit", err.Error()))
		return
	}

	entries := make([]models.Entry, 0, limit)
	for e := range h.service.ListAll(c.Request.Context(), limit) {
		entries = append(entries, e)
	}
	c.JSON(http.StatusOK, AdminEntriesResponse{Entries: entries, Count: len(entries)})
}

// @Summary Удалить запись (админ)
// @Tags admin
// @Param X-Admin-Token header string true "Admin token"
// @Param id path string true "ID записи"
// @Success 204
// @Failure 404 {object} middleware.ErrorResponse
// @Router /admin/entries/{id} [delete]
func (h *LedgerHandler) deleteEntry(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Удалить все записи (админ)
// @Tags admin
// @Param X-Admin-Token header string true "Admin token"
// @Success 204
// @Router /admin/entries [delete]
func (h *LedgerHandler) clear(c *gin.Context) {
	if err := h.service.Clear(c.Request.Context()); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func MapError(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return apperrors.Wrap(err, apperrors.ErrCodeNotFound, "Entry not found")
	case errors.Is(err, service.ErrStorage):
		return apperrors.NewStorageError("admin", err)
	default:
		return nil
	}
}
