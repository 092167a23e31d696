package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/gardenia-app/gardenia-api/controllers"
)

// Controllers bundles every handler group the router mounts.
type Controllers struct {
	Auth     *controllers.AuthController
	User     *controllers.UserController
	Garden   *controllers.GardenController
	Note     *controllers.NoteController
	Post     *controllers.PostController
	Plant    *controllers.PlantInfoController
	Identify *controllers.IdentifyController
}

// SetupRoutes mounts the API on the engine.
func SetupRoutes(router *gin.Engine, ctrl Controllers) {
	protected := ctrl.Auth.AuthMiddleware()

	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/register", ctrl.Auth.Register)
		authRoutes.POST("/token", ctrl.Auth.Token)
		authRoutes.POST("/refresh", ctrl.Auth.Refresh)
		authRoutes.POST("/password-reset-request", ctrl.Auth.PasswordResetRequest)
		authRoutes.GET("/password-reset", ctrl.Auth.PasswordResetForm)
		authRoutes.POST("/password-reset", ctrl.Auth.PasswordReset)

		authRoutes.GET("/me", protected, ctrl.User.GetMe)
		authRoutes.PUT("/me", protected, ctrl.User.UpdateMe)
		authRoutes.DELETE("/me", protected, ctrl.User.DeleteMe)
	}

	gardenRoutes := router.Group("/gardens", protected)
	{
		gardenRoutes.POST("", ctrl.Garden.Create)
		gardenRoutes.GET("", ctrl.Garden.List)
		gardenRoutes.GET("/:id", ctrl.Garden.Get)
		gardenRoutes.PUT("/:id", ctrl.Garden.Update)
		gardenRoutes.DELETE("/:id", ctrl.Garden.Delete)
		gardenRoutes.PUT("/:id/image", ctrl.Garden.UploadGardenImage)

		gardenRoutes.POST("/:id/plants", ctrl.Garden.AddPlant)
		gardenRoutes.GET("/:id/plants", ctrl.Garden.ListPlants)
		gardenRoutes.GET("/:id/plants/:plantID", ctrl.Garden.GetPlant)
		gardenRoutes.PUT("/:id/plants/:plantID", ctrl.Garden.UpdatePlant)
		gardenRoutes.DELETE("/:id/plants/:plantID", ctrl.Garden.DeletePlant)
		gardenRoutes.PUT("/:id/plants/:plantID/image", ctrl.Garden.UploadPlantImage)
	}

	plantRoutes := router.Group("/plants", protected)
	{
		plantRoutes.POST("/:id/notes", ctrl.Note.Create)
		plantRoutes.GET("/:id/notes", ctrl.Note.List)
		plantRoutes.PUT("/:id/notes/:noteID", ctrl.Note.Update)
	}

	router.GET("/wikipedia/:scientificName", protected, ctrl.Plant.Wikipedia)

	postRoutes := router.Group("/posts", protected)
	{
		postRoutes.POST("", ctrl.Post.Create)
		postRoutes.GET("", ctrl.Post.List)
		postRoutes.GET("/:id", ctrl.Post.Get)
		postRoutes.PUT("/:id", ctrl.Post.Update)
		postRoutes.DELETE("/:id", ctrl.Post.Delete)
	}

	identifyRoutes := router.Group("/identify", protected)
	{
		identifyRoutes.POST("", ctrl.Identify.Identify)
	}
}
