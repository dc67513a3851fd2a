package routes

import (
	"os"
	"servicehub-backend/config"
	"servicehub-backend/controllers"
	"servicehub-backend/models"
	"servicehub-backend/utils"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	r := gin.Default()

	origins := []string{"http://localhost:3000", "http://localhost:5173"}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		origins = strings.Split(env, ",")
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(config.RequestLogger())

	authLimiter := utils.NewRateLimiter(5, 10)

	users := r.Group("/api/users")
	{
		users.POST("/register", authLimiter.Middleware(), controllers.Register)
		users.POST("/login", authLimiter.Middleware(), controllers.Login)

		users.Use(utils.AuthMiddleware())
		users.GET("/profile", controllers.GetProfile)
		users.PUT("/profile", controllers.UpdateProfile)
		users.GET("/profile/:id", controllers.GetPublicProfile)
		users.GET("/all-providers", controllers.GetAllProviders)
		users.GET("/filter", controllers.FilterProvidersByTags)
		users.GET("/random-tags", controllers.GetRandomTags)
		users.POST("/:id/rate", utils.RequireRole(models.RoleClient), controllers.RateProvider)
	}

	services := r.Group("/api/services")
	services.Use(utils.AuthMiddleware())
	{
		services.GET("/my-services", utils.RequireRole(models.RoleProvider), controllers.GetProviderServices)
		services.POST("/service", utils.RequireRole(models.RoleProvider), controllers.CreateService)
		services.GET("", controllers.GetAllServices)
		services.GET("/category/:category", controllers.GetServicesByCategory)
		services.GET("/price", controllers.GetServicesByPriceRange)
		services.GET("/rating/:rating", controllers.GetServicesByRating)
		services.GET("/keyword/:keyword", controllers.GetServicesByKeyword)
		services.GET("/availability/:available", controllers.GetServicesByAvailability)
		services.GET("/:id", controllers.GetService)
		services.PUT("/:id", utils.RequireRole(models.RoleProvider), controllers.UpdateService)
		services.DELETE("/:id", utils.RequireRole(models.RoleProvider), controllers.DeleteService)
		services.POST("/:id/reviews", utils.RequireRole(models.RoleClient), controllers.AddReview)
	}

	appointments := r.Group("/api/appointments")
	appointments.Use(utils.AuthMiddleware())
	{
		appointments.POST("", utils.RequireRole(models.RoleClient), controllers.CreateAppointment)
		appointments.GET("/pending", controllers.GetPendingAppointments)
		appointments.GET("/confirmed", controllers.GetConfirmedAppointments)
		appointments.GET("/all", controllers.GetClientAppointments)
		appointments.PATCH("/confirm/:id", controllers.ConfirmAppointment)
		appointments.PUT("/:id", controllers.UpdateAppointment)
		appointments.DELETE("/:id", controllers.DeleteAppointment)
	}

	return r
}
