package controllers

import (
	"net/http"

	"firstbites/services"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	Sessions *services.SessionManager
}

func NewUserController(sm *services.SessionManager) *UserController {
	return &UserController{Sessions: sm}
}

// GET /user/profile
func (uc *UserController) GetProfile(c *gin.Context) {
	t, ok := tracker(c, uc.Sessions)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, t.Profile())
}

// PUT /user/profile
func (uc *UserController) UpdateProfile(c *gin.Context) {
	var input services.ProfileUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, ok := tracker(c, uc.Sessions)
	if !ok {
		return
	}
	u, err := t.UpdateProfile(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// POST /session/refresh
func (uc *UserController) Refresh(c *gin.Context) {
	t, ok := tracker(c, uc.Sessions)
	if !ok {
		return
	}
	if err := t.RefreshData(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t.Summary())
}

// POST /session/logout
func (uc *UserController) Logout(c *gin.Context) {
	uid, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	uc.Sessions.Close(uid)
	c.Status(http.StatusNoContent)
}

// DELETE /user
func (uc *UserController) DeleteAccount(c *gin.Context) {
	uid, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	if err := uc.Sessions.DeleteAccount(c.Request.Context(), uid); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
