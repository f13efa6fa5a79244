package routes

import (
	"net/http"
	"time"

	"firstbites/controllers"
	"firstbites/middlewares"
	"firstbites/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Deps are the long-lived services the HTTP layer is built on. Push,
// Recognizer, Dispatcher, Uploader and Registry may be nil when the feature
// is not configured.
type Deps struct {
	JWTSecret  string
	Sessions   *services.SessionManager
	Push       *services.PushService
	Reminders  *services.ReminderService
	Recognizer *services.RecognitionService
	Dispatcher services.Dispatcher
	Uploader   services.ImageUploader
	Hub        *services.RealtimeHub
	Registry   *prometheus.Registry
	Logger     *zap.SugaredLogger

	// DevRoutes mounts /dev for local testing.
	DevRoutes bool
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middlewares.RequestLogger(d.Logger))
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		body := gin.H{"status": "ok", "sessions": d.Sessions.Active()}
		if d.Hub != nil {
			body["connections"] = d.Hub.Connections()
		}
		c.JSON(http.StatusOK, body)
	})
	if d.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{
			ErrorHandling: promhttp.HTTPErrorOnError,
		})))
	}

	foodCtrl := controllers.NewFoodController(d.Sessions, d.Recognizer)
	logCtrl := controllers.NewLogController(d.Sessions)
	userCtrl := controllers.NewUserController(d.Sessions)
	deviceCtrl := controllers.NewDeviceController(d.Push)
	notifCtrl := controllers.NewNotificationController(d.Sessions, d.Push, d.Reminders)

	auth := middlewares.AuthMiddleware(d.JWTSecret)

	foods := r.Group("/foods")
	foods.Use(auth)
	{
		foods.GET("", foodCtrl.List)
		foods.GET("/allergens", foodCtrl.Allergens)
		foods.GET("/suggestions", foodCtrl.Suggestions)
		foods.GET("/maintenance", foodCtrl.Maintenance)
		foods.GET("/:id", foodCtrl.Get)
		foods.POST("/recognize", foodCtrl.Recognize)
	}

	logs := r.Group("/logs")
	logs.Use(auth)
	{
		logs.POST("", logCtrl.Create)
		logs.GET("/recent", logCtrl.Recent)
		logs.PATCH("/:id", logCtrl.Update)
		logs.DELETE("/:id", logCtrl.Delete)
	}

	api := r.Group("/")
	api.Use(auth)
	{
		api.GET("/progress", foodCtrl.Progress)

		api.GET("/user/profile", userCtrl.GetProfile)
		api.PUT("/user/profile", userCtrl.UpdateProfile)
		api.DELETE("/user", userCtrl.DeleteAccount)
		api.POST("/user/notifications/toggle", notifCtrl.Toggle)
		api.GET("/user/notifications", notifCtrl.History)

		api.POST("/session/refresh", userCtrl.Refresh)
		api.POST("/session/logout", userCtrl.Logout)

		api.POST("/devices", deviceCtrl.Register)
		api.POST("/reminders/maintenance", notifCtrl.SendMaintenance)
	}

	if d.DevRoutes {
		devCtrl := controllers.NewDevController(d.Dispatcher, d.Uploader, d.JWTSecret)
		dev := r.Group("/dev")
		dev.POST("/token", devCtrl.IssueToken)
		dev.POST("/push", auth, devCtrl.PushTest)
		dev.POST("/upload", auth, devCtrl.UploadImage)
	}

	if d.Hub != nil {
		rtCtrl := controllers.NewRealtimeController(d.Hub)
		r.GET("/ws/events", auth, rtCtrl.EventsWS)
	}

	return r
}
