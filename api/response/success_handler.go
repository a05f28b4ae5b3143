package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func HandleSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// HandleCreated writes 201 with a Location header pointing at the new resource.
func HandleCreated(c *gin.Context, location string, data interface{}) {
	c.Header("Location", location)
	c.JSON(http.StatusCreated, data)
}

func HandleNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
