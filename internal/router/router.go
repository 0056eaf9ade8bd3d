package router

import (
	"github.com/credvault/cvs/internal/handler"
	"github.com/credvault/cvs/internal/ledger"
	"github.com/gin-gonic/gin"
)

func Setup(l *ledger.Ledger, store ledger.Store, storageDriver string) *gin.Engine {
	r := gin.New()

	// 中间件
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// API路由组
	api := r.Group("/api")
	{
		// 健康检查
		healthHandler := handler.NewHealthHandler(store, storageDriver)
		api.GET("/health", healthHandler.Health)
		api.GET("/health/detailed", healthHandler.HealthDetailed)

		// 活动相关路由
		campaignHandler := handler.NewCampaignHandler(l)
		campaigns := api.Group("/campaigns")
		{
			campaigns.POST("", campaignHandler.CreateCampaign)
			campaigns.GET("", campaignHandler.GetCampaigns)
			campaigns.GET("/:id", campaignHandler.GetCampaign)
			campaigns.DELETE("/:id", campaignHandler.CancelCampaign)
			campaigns.POST("/:id/support", campaignHandler.SupportCampaign)
			campaigns.GET("/:id/receipts", campaignHandler.GetCampaignReceipts)
			campaigns.GET("/:id/receipts/:address", campaignHandler.HasReceipt)
			campaigns.GET("/:id/stats", campaignHandler.GetCampaignStats)
		}

		// 创作者相关路由
		creatorHandler := handler.NewCreatorHandler(l)
		creators := api.Group("/creators")
		{
			creators.POST("", creatorHandler.UpsertCreator)
			creators.GET("", creatorHandler.GetCreators)
			creators.GET("/:address", creatorHandler.GetCreator)
		}
	}

	return r
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
