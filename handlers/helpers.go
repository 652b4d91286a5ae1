package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"nursery_app_backend/services"
)

// respondError maps the service error taxonomy onto HTTP statuses.
// Internal errors log their detail and return a generic body.
func respondError(c *gin.Context, err error) {
	switch services.KindOf(err) {
	case services.KindValidation:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case services.KindConflict:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case services.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case services.KindAuthorization:
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		log.Printf("Internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func paramID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name + " parameter"})
		return 0, false
	}
	return id, true
}

func queryPagination(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return page, pageSize
}
