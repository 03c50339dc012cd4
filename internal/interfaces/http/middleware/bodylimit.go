package middleware

import (
	"errors"
	"net/http"

	"github.com/erp/bankfeed/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// BodyLimit rejects bodies larger than maxBytes with the admin API envelope
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return BodyLimitWithResponse(maxBytes, func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeTooLarge, "Request body exceeds maximum allowed size", GetRequestID(c)))
	})
}

// WebhookBodyLimit rejects bodies larger than maxBytes with the provider envelope
func WebhookBodyLimit(maxBytes int64) gin.HandlerFunc {
	return BodyLimitWithResponse(maxBytes, func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewWebhookError("Payload too large"))
	})
}

// BodyLimitWithResponse limits request bodies and calls reject when the
// declared Content-Length is over the limit. Bodies without a length are
// capped by http.MaxBytesReader; handlers detect that with IsBodyTooLarge.
func BodyLimitWithResponse(maxBytes int64, reject gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			reject(c)
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// IsBodyTooLarge reports whether err came from reading past the body limit
func IsBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
