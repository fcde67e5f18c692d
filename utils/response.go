package utils

import (
	"github.com/gin-gonic/gin"
)

// body builds the envelope every response shares
func body(status int, message string, extra gin.H) gin.H {
	h := gin.H{
		"status":  status,
		"message": message,
	}
	for k, v := range extra {
		h[k] = v
	}
	return h
}

// JSONResponse sends a structured JSON response
func JSONResponse(c *gin.Context, status int, data any, message string) {
	c.JSON(status, body(status, message, gin.H{"data": data}))
}

// JSONError sends a structured error response
func JSONError(c *gin.Context, status int, err error, message string) {
	c.JSON(status, body(status, message, gin.H{"error": err.Error()}))
}

// JSONRejection sends an error response that carries a stable reason code
// clients can branch on
func JSONRejection(c *gin.Context, status int, reason string, err error, message string) {
	c.JSON(status, body(status, message, gin.H{"reason": reason, "error": err.Error()}))
}

// AbortWithJSONError writes an error response and stops the handler chain
func AbortWithJSONError(c *gin.Context, status int, err error, message string) {
	c.AbortWithStatusJSON(status, body(status, message, gin.H{"error": err.Error()}))
}
