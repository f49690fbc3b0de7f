// Package server assembles the HTTP router from handlers and middleware.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "finboard/internal/docs" // swagger docs
	"finboard/internal/handlers"
	"finboard/internal/metrics"
	"finboard/internal/middleware"
	"finboard/internal/services"
)

// Deps holds everything the router needs.
type Deps struct {
	Stocks    services.StockServicer
	Favorites services.FavoriteServicer
	Portfolio services.PortfolioServicer
	Audit     services.AuditServicer

	// Metrics and Gatherer may be nil, in which case /metrics is not mounted.
	Metrics       *metrics.Metrics
	Gatherer      prometheus.Gatherer
	MetricsAPIKey string
}

// NewRouter builds the Gin engine with every route of the API.
func NewRouter(d Deps) *gin.Engine {
	stockHandler := handlers.NewStockHandler(d.Stocks)
	favoriteHandler := handlers.NewFavoriteHandler(d.Favorites, d.Audit)
	portfolioHandler := handlers.NewPortfolioHandler(d.Portfolio, d.Audit)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.Metrics(d.Metrics))
	router.Use(middleware.ErrorHandler())
	router.Use(cors())
	router.NoRoute(middleware.NoRoute)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if d.Gatherer != nil {
		router.GET("/metrics",
			middleware.APIKeyAuth(d.MetricsAPIKey),
			gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})),
		)
	}

	v1 := router.Group("/api/v1")

	// Quotes are public; a signed-in caller additionally gets favorite and
	// portfolio flags.
	stocks := v1.Group("/stocks")
	stocks.GET("/suggest", stockHandler.Suggest)
	stocks.GET("/:ticker/history", stockHandler.GetHistory)
	optional := stocks.Group("", middleware.OptionalAuth())
	optional.GET("/search", stockHandler.Search)
	optional.GET("/:ticker", stockHandler.GetStock)

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/dashboard", favoriteHandler.Dashboard)

	favorites := protected.Group("/favorites")
	favorites.GET("", favoriteHandler.ListFavorites)
	favorites.POST("/toggle", favoriteHandler.ToggleFavorite)

	portfolio := protected.Group("/portfolio")
	portfolio.GET("", portfolioHandler.GetPortfolio)
	portfolio.POST("", portfolioHandler.AddToPortfolio)

	return router
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
