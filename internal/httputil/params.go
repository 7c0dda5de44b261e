package httputil

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ValidateAndGetID validates and returns the resource ID from the :id URL parameter.
// IDs are UUIDs generated by the storage layer.
func ValidateAndGetID(c *gin.Context) (string, error) {
	id := c.Param("id")
	if id == "" {
		return "", fmt.Errorf("missing id")
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("invalid id")
	}
	return parsed.String(), nil
}

// QueryLower returns a trimmed, lower-cased query parameter
func QueryLower(c *gin.Context, key string) string {
	return strings.ToLower(strings.TrimSpace(c.Query(key)))
}
