package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	billingdomain "github.com/watchline/watchline/internal/billing/domain"
	clientdomain "github.com/watchline/watchline/internal/client/domain"
)

// ValidationErrors carries field-level messages alongside the error code.
type ValidationErrors struct {
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

func (v *ValidationErrors) Error() string {
	return v.Code
}

// AbortWithError records err on the context so the error middleware can
// translate it into a response after the handler returns.
func AbortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		lastErr := c.Errors.Last()
		if lastErr == nil || c.Writer.Written() {
			return
		}

		status, body := mapError(lastErr.Err)
		c.JSON(status, body)
	}
}

func mapError(err error) (int, gin.H) {
	var verr *ValidationErrors
	if errors.As(err, &verr) {
		return http.StatusBadRequest, gin.H{"error": verr.Code, "fields": verr.Fields}
	}

	switch {
	case errors.Is(err, billingdomain.ErrInvalidYear),
		errors.Is(err, billingdomain.ErrInvalidMonth),
		errors.Is(err, billingdomain.ErrInvalidClientID),
		errors.Is(err, billingdomain.ErrInvalidSort),
		errors.Is(err, billingdomain.ErrInvalidStatus),
		errors.Is(err, billingdomain.ErrInvalidSite),
		errors.Is(err, billingdomain.ErrInvalidZone),
		errors.Is(err, clientdomain.ErrInvalidName),
		errors.Is(err, clientdomain.ErrInvalidRate),
		errors.Is(err, clientdomain.ErrInvalidID):
		return http.StatusBadRequest, gin.H{"error": err.Error()}
	case errors.Is(err, billingdomain.ErrClientNotFound),
		errors.Is(err, clientdomain.ErrNotFound):
		return http.StatusNotFound, gin.H{"error": err.Error()}
	default:
		return http.StatusInternalServerError, gin.H{"error": "internal_error"}
	}
}

func classifyErrorForLog(err error) (string, string) {
	if err == nil {
		return "", ""
	}

	var verr *ValidationErrors
	if errors.As(err, &verr) {
		return "validation", verr.Code
	}

	status, _ := mapError(err)
	switch {
	case status == http.StatusNotFound:
		return "not_found", err.Error()
	case status >= http.StatusInternalServerError:
		return "internal", "internal_error"
	default:
		return "validation", err.Error()
	}
}
