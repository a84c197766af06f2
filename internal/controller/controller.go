package controller

import (
	"strconv"

	"github.com/tinypost/tinypost/internal/config"
	"github.com/tinypost/tinypost/internal/utils"

	"github.com/gin-gonic/gin"
)

func requireContext(c *gin.Context) (config.UserContext, bool) {
	context, err := utils.GetContext(c)

	if err != nil {
		c.JSON(401, gin.H{
			"status":  401,
			"message": "Unauthorized",
		})
		return config.UserContext{}, false
	}

	return context, true
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)

	if err != nil || id <= 0 {
		c.JSON(400, gin.H{
			"status":  400,
			"message": "Bad Request",
		})
		return 0, false
	}

	return id, true
}

func errorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"status":  status,
		"message": message,
	})
}
