package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"firstbites/services"

	"github.com/gin-gonic/gin"
)

func userIDFromCtx(c *gin.Context) (uint, bool) {
	v, ok := c.Get("userID")
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}

// tracker opens the caller's session, writing the error response itself on failure.
func tracker(c *gin.Context, sessions *services.SessionManager) (*services.Tracker, bool) {
	uid, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, false
	}
	t, err := sessions.Open(c.Request.Context(), uid, c.GetString("email"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return t, true
}

func respondError(c *gin.Context, err error) {
	var (
		nf *services.NotFoundError
		ve *services.ValidationError
		pe *services.PersistenceError
	)
	switch {
	case errors.As(err, &nf):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &pe):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// queryLimit parses ?limit=, falling back to def for missing or bad values.
func queryLimit(c *gin.Context, def int) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil || n <= 0 {
		return def
	}
	return n
}
