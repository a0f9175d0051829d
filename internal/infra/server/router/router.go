// Package router sets up the HTTP routing for the application.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/finance-tracker/eventcore/internal/integration/entrypoint/controller"
	"github.com/finance-tracker/eventcore/internal/integration/entrypoint/middleware"
)

// Router holds the Gin engine and controller dependencies.
type Router struct {
	engine              *gin.Engine
	healthController    *controller.HealthController
	expenseController   *controller.ExpenseController
	incomeController    *controller.IncomeController
	dashboardController *controller.DashboardController
	adviceController    *controller.AdviceController
	authMiddleware      *middleware.AuthMiddleware
	adviceRateLimiter   *middleware.RateLimiter
}

// NewRouter creates a new router instance with all dependencies.
func NewRouter(
	healthController *controller.HealthController,
	expenseController *controller.ExpenseController,
	incomeController *controller.IncomeController,
	dashboardController *controller.DashboardController,
	adviceController *controller.AdviceController,
	authMiddleware *middleware.AuthMiddleware,
	adviceRateLimiter *middleware.RateLimiter,
) *Router {
	return &Router{
		healthController:    healthController,
		expenseController:   expenseController,
		incomeController:    incomeController,
		dashboardController: dashboardController,
		adviceController:    adviceController,
		authMiddleware:      authMiddleware,
		adviceRateLimiter:   adviceRateLimiter,
	}
}

// Setup configures and returns the Gin engine with all routes.
func (r *Router) Setup(environment string) *gin.Engine {
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else if environment == "test" {
		gin.SetMode(gin.TestMode)
	}

	// Default middleware: logger and recovery
	r.engine = gin.Default()

	r.setupHealthRoutes()
	r.setupAPIRoutes()

	return r.engine
}

// setupHealthRoutes configures health check endpoints.
func (r *Router) setupHealthRoutes() {
	r.engine.GET("/health", r.healthController.Check)
}

// setupAPIRoutes configures the main API routes.
func (r *Router) setupAPIRoutes() {
	v1 := r.engine.Group("/api/v1")
	v1.Use(r.authMiddleware.Authenticate())
	{
		expenses := v1.Group("/expenses")
		{
			expenses.POST("", r.expenseController.Create)
			expenses.DELETE("", r.expenseController.Delete)
		}

		incomes := v1.Group("/incomes")
		{
			incomes.POST("", r.incomeController.Create)
			incomes.DELETE("", r.incomeController.Delete)
		}

		v1.GET("/dashboard", r.dashboardController.GetDashboard)
		v1.GET("/aggregates", r.dashboardController.GetAggregates)

		v1.POST("/advice", r.adviceRateLimiter.Middleware(), r.adviceController.Ask)
	}
}
