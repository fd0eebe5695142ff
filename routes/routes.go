package routes

import (
	"net/http"

	"github.com/Govind-619/DomainDesk/controllers"
	"github.com/Govind-619/DomainDesk/middleware"
	"github.com/Govind-619/DomainDesk/utils"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies are the handlers and collaborators the router mounts
type Dependencies struct {
	Auth          *controllers.AuthController
	Projects      *controllers.ProjectController
	Renewals      *controllers.RenewalController
	Customers     *controllers.CustomerController
	Authenticator middleware.Authenticator
	// Gatherer backs GET /metrics; nil serves the default registry.
	Gatherer prometheus.Gatherer
	// CORSOrigins limits browser access; empty allows any origin.
	CORSOrigins []string
}

// SetupRouter initializes and returns the Gin router with all routes
func SetupRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(utils.RequestIDMiddleware())
	router.Use(utils.LoggerMiddleware())
	router.Use(utils.RecoveryMiddleware())
	router.Use(utils.CORSMiddleware(deps.CORSOrigins))
	router.Use(utils.SecurityHeadersMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := router.Group("/" + utils.APIVersion)
	{
		api.POST("/auth/login", deps.Auth.Login)

		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(deps.Authenticator))
		{
			initProjectRoutes(protected, deps)
			initCustomerRoutes(protected, deps)
		}
	}

	utils.LogInfo("Routes registered")
	return router
}

func initProjectRoutes(router *gin.RouterGroup, deps Dependencies) {
	projects := router.Group("/projects")
	{
		projects.POST("", deps.Projects.CreateProject)
		projects.GET("/:id", deps.Projects.GetProject)
		projects.PATCH("/:id", deps.Projects.UpdateProject)

		// Renewal
		projects.POST("/:id/renew/initiate", deps.Renewals.InitiateRenewal)
		projects.POST("/:id/renew/confirm", deps.Renewals.ConfirmRenewal)
	}
}

func initCustomerRoutes(router *gin.RouterGroup, deps Dependencies) {
	customers := router.Group("/customers")
	{
		customers.POST("", deps.Customers.CreateCustomer)
		customers.GET("/:id", deps.Customers.GetCustomer)
		customers.PATCH("/:id", deps.Customers.UpdateCustomer)
		customers.DELETE("/:id", deps.Customers.DeleteCustomer)
	}
}
