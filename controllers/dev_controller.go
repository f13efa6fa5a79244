// controllers/dev_controller.go
package controllers

import (
	"net/http"
	"time"

	"firstbites/services"
	"firstbites/utils"

	"github.com/gin-gonic/gin"
)

// DevController backs the /dev routes, mounted outside production only.
type DevController struct {
	Dispatcher services.Dispatcher
	Uploader   services.ImageUploader
	JWTSecret  string
}

func NewDevController(d services.Dispatcher, up services.ImageUploader, secret string) *DevController {
	return &DevController{Dispatcher: d, Uploader: up, JWTSecret: secret}
}

type devTokenReq struct {
	UserID uint   `json:"user_id" binding:"required"`
	Email  string `json:"email"`
}

// POST /dev/token
func (d *DevController) IssueToken(c *gin.Context) {
	var req devTokenReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tok, err := utils.GenerateJWT(d.JWTSecret, req.UserID, req.Email, 24*time.Hour)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": tok})
}

type pushReq struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// POST /dev/push
func (d *DevController) PushTest(c *gin.Context) {
	uid, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	if d.Dispatcher == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no notification channel configured"})
		return
	}

	var req pushReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// sane defaults for quick tests
	if req.Title == "" {
		req.Title = "Test alert 🔔"
	}
	if req.Body == "" {
		req.Body = "This is only a test."
	}

	err := d.Dispatcher.Dispatch(c.Request.Context(), services.Notification{
		UserID: uid,
		Title:  req.Title,
		Body:   req.Body,
		Type:   "test",
	})
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type devUploadRequest struct {
	ImageBase64 string `json:"image_base64" binding:"required"`
}

// POST /dev/upload
func (d *DevController) UploadImage(c *gin.Context) {
	if d.Uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "uploads are not configured"})
		return
	}
	var req devUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	// Static path for dev
	url, err := d.Uploader.UploadBase64Image(c.Request.Context(), req.ImageBase64, "general/dev-upload")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload failed", "detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}
