package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "lucky-draw-backend/internal/common/errors"
	"lucky-draw-backend/internal/common/middleware"
	"lucky-draw-backend/internal/common/validation"
	"lucky-draw-backend/internal/features/draw/models"
	drawservice "lucky-draw-backend/internal/features/draw/service"
	"lucky-draw-backend/internal/features/draw/session"
	ledgermodels "lucky-draw-backend/internal/features/ledger/models"
	ledgerservice "lucky-draw-backend/internal/features/ledger/service"
	"lucky-draw-backend/internal/features/proof"
)

type DrawHandler struct {
	service       drawservice.DrawService
	maxProofBytes int
	limiter       gin.HandlerFunc
}

// NewDrawHandler wires the draw routes. limiter guards POST /draws and may be nil.
func NewDrawHandler(service drawservice.DrawService, maxProofBytes int, limiter gin.HandlerFunc) *DrawHandler {
	return &DrawHandler{service: service, maxProofBytes: maxProofBytes, limiter: limiter}
}

func (h *DrawHandler) RegisterRoutes(router *gin.RouterGroup) {
	wrap := middleware.HandleErrorWrapper(MapError)

	router.GET("/tiers", h.getTiers)

	draws := []gin.HandlerFunc{wrap(h.play)}
	if h.limiter != nil {
		draws = append([]gin.HandlerFunc{h.limiter}, draws...)
	}
	router.POST("/draws", draws...)
}

// @Summary Таблица шансов по уровням депозита
// @Tags draws
// @Produce json
// @Success 200 {object} TiersResponse
// @Router /tiers [get]
func (h *DrawHandler) getTiers(c *gin.Context) {
	c.JSON(http.StatusOK, TiersResponse{Tiers: h.service.Tiers()})
}

// @Summary Провести розыгрыш
// @Description Проходит шаги формы, крутит колесо и записывает результат. Результат возвращается только после записи.
// @Tags draws
// @Accept json
// @Produce json
// @Param input body DrawRequest true "Аккаунт, уровень и скриншот депозита"
// @Success 201 {object} DrawResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Failure 429 {object} middleware.ErrorResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Router /draws [post]
func (h *DrawHandler) play(c *gin.Context) {
	var req DrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.Wrap(err, apperrors.ErrCodeBadRequest, "Invalid request body"))
		return
	}

	if err := validation.ValidateHandle(req.Handle); err != nil {
		_ = c.Error(apperrors.NewValidationError("handle", err.Error()))
		return
	}
	tier, err := models.ParseTier(req.Tier)
	if err != nil {
		_ = c.Error(apperrors.NewInvalidTierError(req.Tier, err))
		return
	}
	if err := validation.ValidateProofImage(req.ProofImage, h.maxProofBytes); err != nil {
		_ = c.Error(apperrors.NewValidationError("proof_image", err.Error()))
		return
	}

	sess := session.New()
	if err := sess.ConfirmAccount(req.Handle); err != nil {
		_ = c.Error(err)
		return
	}
	if err := sess.SelectTier(tier); err != nil {
		_ = c.Error(err)
		return
	}
	if err := sess.AttachProof(req.ProofImage); err != nil {
		_ = c.Error(err)
		return
	}

	play, err := h.service.Play(c.Request.Context(), sess)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, DrawResponse{
		Result:      play.Result,
		Entry:       ledgermodels.Mask(play.Entry),
		Celebration: play.Celebration,
		ShareText:   play.ShareText,
	})
}

// MapError converts draw and ledger sentinels into API errors.
func MapError(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, models.ErrInvalidTier):
		return apperrors.NewInvalidTierError("", err)
	case errors.Is(err, session.ErrInvalidStep):
		return apperrors.Wrap(err, apperrors.ErrCodeInvalidStep, "Operation not allowed at this step")
	case errors.Is(err, session.ErrEmptyHandle):
		return apperrors.NewValidationError("handle", err.Error())
	case errors.Is(err, session.ErrProofRequired):
		return apperrors.NewValidationError("proof_image", err.Error())
	case errors.Is(err, drawservice.ErrAlreadyDrawn):
		return apperrors.New(apperrors.ErrCodeAlreadyDrawn, "This account has already drawn today")
	case errors.Is(err, proof.ErrUpload):
		return apperrors.Wrap(err, apperrors.ErrCodeProofUploadFailed, "Proof image upload failed")
	case errors.Is(err, ledgermodels.ErrInvalidEntry):
		return apperrors.Wrap(err, apperrors.ErrCodeValidation, "Invalid entry")
	case errors.Is(err, ledgerservice.ErrNotFound):
		return apperrors.Wrap(err, apperrors.ErrCodeNotFound, "Entry not found")
	case errors.Is(err, ledgerservice.ErrStorage):
		return apperrors.NewStorageError("draw", err)
	default:
		return nil
	}
}
