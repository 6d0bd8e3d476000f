package routes

import (
	"nomify/controllers"
	"nomify/middlewares"

	"github.com/gin-gonic/gin"
)

// Deps carries the controllers that need wired services.
type Deps struct {
	Analysis *controllers.AnalysisController
	Vision   *controllers.VisionController
	Realtime *controllers.RealtimeController
	Devices  *controllers.DeviceController
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.Default()

	// Public auth routes
	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
		auth.POST("/verify-mfa", controllers.VerifyMFA)
		auth.POST("/forgot-password", controllers.ForgotPassword)
		auth.POST("/reset-password", controllers.ResetPassword)
	}

	// Vision analysis endpoint consumed by the photo resolver
	r.POST("/vision/analyze", d.Vision.AnalyzeFoodImage)

	// Protected routes
	api := r.Group("/")
	api.Use(middlewares.AuthMiddleware())
	{
		api.GET("/profile/allergens", controllers.GetAllergenProfile)
		api.PUT("/profile/allergens", controllers.UpdateAllergenProfile)

		api.POST("/analysis/text", d.Analysis.AnalyzeText)
		api.POST("/analysis/photo", d.Analysis.AnalyzePhoto)
		api.POST("/analysis/barcode", d.Analysis.AnalyzeBarcode)
		api.GET("/analysis/state", d.Analysis.State)

		api.GET("/ws/pipeline", d.Realtime.PipelineWS)

		api.GET("/alerts", controllers.ListAlerts)
		api.POST("/devices", d.Devices.Register)
		api.POST("/devices/notifications/toggle", controllers.ToggleNotifications)
	}

	return r
}
