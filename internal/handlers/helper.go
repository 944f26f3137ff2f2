package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// bindJSON decodes the request body into req and answers 400 when it cannot
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
			Code:    "invalid_payload",
		})
		return false
	}
	return true
}
