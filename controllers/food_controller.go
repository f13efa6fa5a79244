package controllers

import (
	"net/http"
	"strconv"

	"firstbites/services"

	"github.com/gin-gonic/gin"
)

type FoodController struct {
	Sessions   *services.SessionManager
	Recognizer *services.RecognitionService
}

func NewFoodController(sm *services.SessionManager, rec *services.RecognitionService) *FoodController {
	return &FoodController{Sessions: sm, Recognizer: rec}
}

// GET /foods
func (fc *FoodController) List(c *gin.Context) {
	t, ok := tracker(c, fc.Sessions)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, t.GetFoodsWithStates())
}

// GET /foods/:id
func (fc *FoodController) Get(c *gin.Context) {
	t, ok := tracker(c, fc.Sessions)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid food id"})
		return
	}
	f, err := t.GetFoodWithState(uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

// GET /foods/allergens
func (fc *FoodController) Allergens(c *gin.Context) {
	t, ok := tracker(c, fc.Sessions)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"foods":    t.GetAllergenFoods(),
		"families": t.GetAllergenFamilies(),
	})
}

// GET /foods/suggestions?limit=5
func (fc *FoodController) Suggestions(c *gin.Context) {
	t, ok := tracker(c, fc.Sessions)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, t.GetNextSuggestions(queryLimit(c, 5)))
}

// GET /foods/maintenance
func (fc *FoodController) Maintenance(c *gin.Context) {
	t, ok := tracker(c, fc.Sessions)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, t.GetAllergenMaintenanceNeeded())
}

// GET /progress
func (fc *FoodController) Progress(c *gin.Context) {
	t, ok := tracker(c, fc.Sessions)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, t.Summary())
}

// POST /foods/recognize  { "image_base64": "data:…"}
func (fc *FoodController) Recognize(c *gin.Context) {
	if fc.Recognizer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "food recognition is not configured"})
		return
	}
	var req struct {
		ImageBase64 string `json:"image_base64" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	t, ok := tracker(c, fc.Sessions)
	if !ok {
		return
	}
	foods, err := fc.Recognizer.Recognize(c.Request.Context(), req.ImageBase64, t.Foods())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, foods)
}
