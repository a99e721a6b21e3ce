package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ordena/backend/internal/interfaces/http/dto"
)

// DefaultMaxBodySize mirrors the config fallback for http.max_body_size:
// receipt uploads top out at 10MB, plus headroom for the multipart envelope.
const DefaultMaxBodySize int64 = 12 << 20

// BodyLimit rejects requests whose declared length exceeds maxBytes and caps
// streaming bodies at the same size. A non-positive maxBytes falls back to
// DefaultMaxBodySize.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodySize
	}
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponse("REQUEST_TOO_LARGE", "Request body exceeds the configured limit"))
			return
		}
		// chunked uploads carry no Content-Length; cap them while streaming
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
