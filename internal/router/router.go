// Package router assembles the gin engine: middleware, services, handlers
// and the /api/v1 route table.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "cashflow/internal/docs" // swagger docs
	apperrors "cashflow/internal/errors"
	"cashflow/internal/fx"
	"cashflow/internal/handlers"
	"cashflow/internal/middleware"
	"cashflow/internal/models"
	"cashflow/internal/services"
)

// Deps carries what the router needs to build the service graph.
type Deps struct {
	DB           *gorm.DB
	Rates        fx.RateSource
	Tokens       *middleware.TokenManager
	BaseCurrency models.Currency
	Parallelism  int
	CORSOrigins  string
	OpsAPIKey    string
}

// New builds the HTTP engine.
func New(d Deps) *gin.Engine {
	if d.Parallelism <= 0 {
		d.Parallelism = services.DefaultAggregationParallelism
	}
	if d.BaseCurrency == "" {
		d.BaseCurrency = models.CurrencyCAD
	}

	// Services
	userService := services.NewUserService(d.DB, d.BaseCurrency)
	accountService := services.NewAccountService(d.DB)
	categoryService := services.NewCategoryService(d.DB)
	transactionService := services.NewTransactionService(d.DB, accountService, categoryService)
	budgetService := services.NewBudgetService(d.DB)
	dashboardService := services.NewDashboardService(d.DB, d.Rates, d.Parallelism)
	projectionService := services.NewProjectionService(d.DB, d.Rates, d.Parallelism)
	auditService := services.NewAuditService(d.DB)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, d.Tokens)
	accountHandler := handlers.NewAccountHandler(accountService, auditService)
	categoryHandler := handlers.NewCategoryHandler(categoryService, auditService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, auditService)
	budgetHandler := handlers.NewBudgetHandler(budgetService, auditService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	projectionHandler := handlers.NewProjectionHandler(projectionService)
	opsHandler := handlers.NewOpsHandler(d.Rates)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS(d.CORSOrigins))

	router.NoRoute(func(c *gin.Context) {
		middleware.WriteError(c, apperrors.ErrNotFound)
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(d.Tokens, userService))

	protected.GET("/auth/me", authHandler.Me)

	accounts := protected.Group("/accounts")
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.GetUserAccounts)
	accounts.GET("/:id", accountHandler.GetAccountByID)
	accounts.PUT("/:id", accountHandler.UpdateAccount)
	accounts.DELETE("/:id", accountHandler.DeleteAccount)
	accounts.GET("/:id/balance", accountHandler.GetAccountBalance)

	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetUserCategories)
	categories.GET("/:id", categoryHandler.GetCategoryByID)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetUserTransactions)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/:id", budgetHandler.GetBudget)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)
	budgets.GET("/:id/progress", budgetHandler.GetBudgetProgress)

	dashboard := protected.Group("/dashboard")
	dashboard.GET("/overview", dashboardHandler.GetOverview)
	dashboard.GET("/trends", dashboardHandler.GetTrends)
	dashboard.GET("/category-breakdown", dashboardHandler.GetCategoryBreakdown)
	dashboard.GET("/total-cash", dashboardHandler.GetTotalCash)

	protected.GET("/projections", projectionHandler.GetProjections)

	// Operator routes
	ops := v1.Group("/ops")
	ops.Use(middleware.OpsAuthMiddleware(d.OpsAPIKey))
	ops.GET("/rates", opsHandler.GetRates)

	return router
}
