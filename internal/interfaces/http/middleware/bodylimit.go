package middleware

import (
	"net/http"

	"github.com/erp/cashbook/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ErrCodeRequestTooLarge is returned when the body exceeds the limit
const ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"

// BodyLimit rejects declared bodies over maxBytes and caps streamed ones.
// A non-positive limit disables the check.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
				ErrCodeRequestTooLarge,
				"Request body exceeds maximum allowed size",
				c.GetString(RequestIDKey),
			))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
