package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/collab-hub/collab-portal/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// RESPONSE ENVELOPE
// ══════════════════════════════════════════════════════════════════════════════

// Response is the uniform envelope for all JSON endpoints.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

func respondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

// respondError maps domain error kinds onto HTTP status codes. The
// message comes from the domain error; internals are never leaked.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case shared.IsNotFound(err):
		status = http.StatusNotFound
		message = domainMessage(err, "not found")
	case shared.IsForbidden(err):
		status = http.StatusForbidden
		message = domainMessage(err, "forbidden")
	case shared.IsConflict(err):
		status = http.StatusConflict
		message = domainMessage(err, "conflict")
	case shared.IsInvalidInput(err):
		status = http.StatusBadRequest
		message = domainMessage(err, "invalid input")
	}

	c.AbortWithStatusJSON(status, Response{Success: false, Message: message})
}

// domainMessage extracts the human-readable message from a DomainError,
// falling back when the error carries no safe text.
func domainMessage(err error, fallback string) string {
	var de *shared.DomainError
	if errors.As(err, &de) && de.Message != "" {
		return de.Message
	}
	return fallback
}
