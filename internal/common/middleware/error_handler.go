package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"lucky-draw-backend/internal/common/errors"
	"lucky-draw-backend/internal/common/logger"
)

const requestIDKey = "request_id"

// ErrorHandler middleware для обработки паник
func ErrorHandler() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		requestID := getRequestID(c)

		logger.Error().
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Interface("panic", recovered).
			Str("stack", string(debug.Stack())).
			Msg("Panic recovered")

		appErr := errors.New(errors.ErrCodeInternal, "Internal server error").
			WithDetail("panic", fmt.Sprintf("%v", recovered))

		sendErrorResponse(c, appErr)
		c.Abort()
	})
}

// RequestID middleware для добавления ID запроса
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(requestIDKey, requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Success   bool             `json:"success"`
	Error     *errors.AppError `json:"error"`
	Timestamp time.Time        `json:"timestamp"`
	RequestID string           `json:"request_id"`
	Path      string           `json:"path,omitempty"`
	Method    string           `json:"method,omitempty"`
}

// AbortWithError отправляет ошибку и прерывает цепочку обработчиков
func AbortWithError(c *gin.Context, appErr *errors.AppError) {
	sendErrorResponse(c, appErr)
	c.Abort()
}

// sendErrorResponse отправляет ошибку в формате JSON
func sendErrorResponse(c *gin.Context, appErr *errors.AppError) {
	requestID := getRequestID(c)

	appErr.WithRequestID(requestID).
		WithContext("path", c.Request.URL.Path).
		WithContext("method", c.Request.Method)

	statusCode := HTTPStatus(appErr)

	response := ErrorResponse{
		Success:   false,
		Error:     appErr,
		Timestamp: time.Now(),
		RequestID: requestID,
		Path:      c.Request.URL.Path,
		Method:    c.Request.Method,
	}

	logError(appErr, c)

	c.JSON(statusCode, response)
}

// HTTPStatus возвращает HTTP статус код для ошибки
func HTTPStatus(appErr *errors.AppError) int {
	switch appErr.Code {
	case errors.ErrCodeValidation, errors.ErrCodeBadRequest, errors.ErrCodeInvalidTier, errors.ErrCodeInvalidStep:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case errors.ErrCodeAlreadyDrawn:
		return http.StatusConflict
	case errors.ErrCodeTooManyRequests:
		return http.StatusTooManyRequests
	case errors.ErrCodeStorage:
		return http.StatusServiceUnavailable
	case errors.ErrCodeProofUploadFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// logError логирует ошибку с контекстом
func logError(appErr *errors.AppError, c *gin.Context) {
	var event *zerolog.Event
	msg := "Application error occurred"

	// Выбираем уровень логирования
	switch {
	case appErr.IsInternal():
		event, msg = logger.Error(), "Internal error occurred"
	case appErr.IsUnauthorized():
		event, msg = logger.Warn(), "Unauthorized access attempt"
	case appErr.IsValidation():
		event, msg = logger.Info(), "Validation error"
	case appErr.IsNotFound():
		event, msg = logger.Info(), "Resource not found"
	default:
		event = logger.Warn()
	}

	event = event.
		Str("request_id", getRequestID(c)).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Str("error_code", string(appErr.Code)).
		Str("error_message", appErr.Message)

	if len(appErr.Details) > 0 {
		event = event.Interface("details", appErr.Details)
	}
	if appErr.Cause != nil {
		event = event.AnErr("cause", appErr.Cause)
	}

	event.Msg(msg)
}

// getRequestID получает ID запроса из контекста
func getRequestID(c *gin.Context) string {
	if requestID, exists := c.Get(requestIDKey); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return "unknown"
}

// HandleErrorWrapper оборачивает обработчики для автоматической обработки ошибок.
// Обработчик кладёт ошибку через c.Error, ответ формируется здесь.
func HandleErrorWrapper(mapErr func(error) *errors.AppError) func(gin.HandlerFunc) gin.HandlerFunc {
	return func(handler gin.HandlerFunc) gin.HandlerFunc {
		return func(c *gin.Context) {
			handler(c)

			if len(c.Errors) == 0 || c.Writer.Written() {
				return
			}
			err := c.Errors.Last().Err

			// Если это уже AppError, используем её
			if appErr, ok := errors.AsAppError(err); ok {
				sendErrorResponse(c, appErr)
				return
			}
			if mapErr != nil {
				if appErr := mapErr(err); appErr != nil {
					sendErrorResponse(c, appErr)
					return
				}
			}

			sendErrorResponse(c, errors.Wrap(err, errors.ErrCodeInternal, "Handler error occurred"))
		}
	}
}
