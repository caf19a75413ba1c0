package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/srgjo27/installation_proof/internal/core/domain"
)

type errorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func abortJSON(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": errorBody{Code: code, Message: msg}})
}

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusUnprocessableEntity
	case domain.KindUnauthorized:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindDependency:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders domain errors with their code and details. Anything
// else is logged and hidden behind a generic 500.
func writeError(c *gin.Context, log *slog.Logger, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		log.Error("unhandled error", "path", c.FullPath(), "error", err)
		abortJSON(c, http.StatusInternalServerError, "INTERNAL", "internal server error")
		return
	}

	status := statusFor(de.Kind())
	if status >= 500 {
		log.Error("request failed", "path", c.FullPath(), "code", de.Code, "error", err)
	}

	c.AbortWithStatusJSON(status, gin.H{"error": errorBody{
		Code:    string(de.Code),
		Message: de.Message,
		Details: de.Details,
	}})
}

func writeBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]any, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": errorBody{
			Code:    "INVALID_REQUEST",
			Message: "request validation failed",
			Details: fields,
		}})
		return
	}
	abortJSON(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
}
