package controllers

import (
	"net/http"

	"firstbites/services"

	"github.com/gin-gonic/gin"
)

type NotificationController struct {
	Sessions  *services.SessionManager
	Push      *services.PushService
	Reminders *services.ReminderService
}

func NewNotificationController(sm *services.SessionManager, ps *services.PushService, rs *services.ReminderService) *NotificationController {
	return &NotificationController{Sessions: sm, Push: ps, Reminders: rs}
}

type toggleReq struct {
	Enabled bool `json:"enabled"`
}

// POST /user/notifications/toggle
func (nc *NotificationController) Toggle(c *gin.Context) {
	var req toggleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	t, ok := tracker(c, nc.Sessions)
	if !ok {
		return
	}

	// devices first, then the profile flags the dispatchers consult
	if nc.Push != nil {
		if err := nc.Push.SetEnabled(c.Request.Context(), t.UserID(), req.Enabled); err != nil {
			respondError(c, err)
			return
		}
	}
	enabled := req.Enabled
	if _, err := t.UpdateProfile(c.Request.Context(), services.ProfileUpdate{
		MilestoneAlerts: &enabled,
		ReminderAlerts:  &enabled,
	}); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "notifications updated",
		"enabled": req.Enabled,
	})
}

// GET /user/notifications?limit=20
func (nc *NotificationController) History(c *gin.Context) {
	if nc.Push == nil {
		c.JSON(http.StatusOK, []any{})
		return
	}
	list, err := nc.Push.History(c.Request.Context(), c.GetUint("userID"), queryLimit(c, 20))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// POST /reminders/maintenance
func (nc *NotificationController) SendMaintenance(c *gin.Context) {
	t, ok := tracker(c, nc.Sessions)
	if !ok {
		return
	}
	res, err := nc.Reminders.SendMaintenance(c.Request.Context(), t)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
