// Package router assembles the HTTP surface of the API server.
package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "smartspend/internal/docs" // swagger docs
	"smartspend/internal/handlers"
	"smartspend/internal/middleware"
	"smartspend/internal/services"
)

// Deps carries everything the routes are wired to.
type Deps struct {
	Users    services.UserServicer
	Expenses services.ExpenseServicer
	Budgets  services.BudgetServicer
	Audit    services.AuditServicer
	Tokens   *middleware.TokenManager

	// Location is the time zone the default month is computed in.
	Location *time.Location

	// Clock supplies the current time for default periods. Nil means
	// time.Now; it should match the clock given to the budget service.
	Clock func() time.Time

	// CORSAllowOrigins enables CORS for the listed origins when non-empty.
	CORSAllowOrigins []string

	// InternalAPIKey guards /internal; empty disables those endpoints.
	InternalAPIKey string

	// Registry receives the HTTP metrics and is served on /metrics. A nil
	// registry gets a fresh one.
	Registry *prometheus.Registry
}

// New builds the gin engine with every route attached.
func New(deps Deps) (*gin.Engine, error) {
	if deps.Registry == nil {
		deps.Registry = prometheus.NewRegistry()
	}
	httpMetrics, err := middleware.NewHTTPMetrics(deps.Registry)
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogging())
	r.Use(middleware.Metrics(httpMetrics))
	r.Use(middleware.ErrorHandler())

	if len(deps.CORSAllowOrigins) > 0 {
		corsConfig := cors.Config{
			AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Length", "Content-Type", "Authorization", middleware.APIKeyHeader},
			ExposeHeaders: []string{"X-Request-ID"},
			MaxAge:        12 * time.Hour,
		}
		if len(deps.CORSAllowOrigins) == 1 && deps.CORSAllowOrigins[0] == "*" {
			corsConfig.AllowAllOrigins = true
		} else {
			corsConfig.AllowOrigins = deps.CORSAllowOrigins
			corsConfig.AllowCredentials = true
		}
		r.Use(cors.New(corsConfig))
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authHandler := handlers.NewAuthHandler(deps.Users, deps.Audit, deps.Tokens)
	categoryHandler := handlers.NewCategoryHandler()
	expenseHandler := handlers.NewExpenseHandler(deps.Expenses, deps.Budgets, deps.Audit, deps.Location, deps.Clock)
	budgetHandler := handlers.NewBudgetHandler(deps.Budgets, deps.Audit, deps.Location, deps.Clock)
	internalHandler := handlers.NewInternalHandler(deps.Budgets)

	v1 := r.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Tokens))

	protected.GET("/profile", authHandler.GetProfile)
	protected.GET("/categories", categoryHandler.GetCategories)

	expenses := protected.Group("/expenses")
	expenses.GET("", expenseHandler.GetExpenses)
	expenses.POST("", expenseHandler.CreateExpense)
	expenses.GET("/stats", expenseHandler.GetExpenseStats)
	expenses.GET("/:id", expenseHandler.GetExpense)
	expenses.PUT("/:id", expenseHandler.UpdateExpense)
	expenses.DELETE("/:id", expenseHandler.DeleteExpense)

	budgets := protected.Group("/budgets")
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.POST("", budgetHandler.SetBudget)
	budgets.GET("/alerts", budgetHandler.GetAlerts)
	budgets.GET("/history", budgetHandler.GetBudgetHistory)
	budgets.POST("/cleanup", budgetHandler.CleanupDuplicates)
	budgets.DELETE("/reset", budgetHandler.ResetBudgets)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)

	internal := r.Group("/internal")
	internal.Use(middleware.APIKeyMiddleware(deps.InternalAPIKey))
	internal.POST("/budgets/cleanup", internalHandler.CleanupAllBudgets)

	return r, nil
}
