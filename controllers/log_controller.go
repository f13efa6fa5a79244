package controllers

import (
	"net/http"

	"firstbites/services"
	"firstbites/utils"

	"github.com/gin-gonic/gin"
)

type LogController struct {
	Sessions *services.SessionManager
}

func NewLogController(sm *services.SessionManager) *LogController {
	return &LogController{Sessions: sm}
}

type logFoodRequest struct {
	services.LogFoodInput
	// Symptoms, when given, decide the severity and are kept in the notes.
	Symptoms []string `json:"symptoms"`
}

// POST /logs
func (lc *LogController) Create(c *gin.Context) {
	var body logFoodRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, ok := tracker(c, lc.Sessions)
	if !ok {
		return
	}

	in := body.LogFoodInput
	if len(body.Symptoms) > 0 {
		in.Severity = utils.Severity(body.Symptoms)
		in.Notes = utils.EncodeSymptomNotes(body.Symptoms, in.Notes)
		in.HasReaction = true
	}

	res, err := t.LogFood(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// GET /logs/recent?limit=10
func (lc *LogController) Recent(c *gin.Context) {
	t, ok := tracker(c, lc.Sessions)
	if !ok {
		return
	}
	entries := t.GetRecentLogs(queryLimit(c, 10))
	out := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		symptoms, note := utils.ExtractSymptoms(e.Notes)
		out = append(out, gin.H{
			"log":      e,
			"symptoms": symptoms,
			"note":     note,
		})
	}
	c.JSON(http.StatusOK, out)
}

// PATCH /logs/:id
func (lc *LogController) Update(c *gin.Context) {
	var body services.LogUpdate
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, ok := tracker(c, lc.Sessions)
	if !ok {
		return
	}
	l, err := t.UpdateLog(c.Request.Context(), c.Param("id"), body)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

// DELETE /logs/:id
func (lc *LogController) Delete(c *gin.Context) {
	t, ok := tracker(c, lc.Sessions)
	if !ok {
		return
	}
	if err := t.DeleteLog(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
