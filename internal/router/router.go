package router

import (
	"github.com/blues/sfl/internal/config"
	"github.com/blues/sfl/internal/handler"
	"github.com/blues/sfl/internal/ledger"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

func Setup(l *ledger.Ledger, db *gorm.DB, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	// 中间件
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "sealed-funding-ledger",
		})
	})

	// prometheus 指标
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API版本组
	v1 := r.Group("/api/v1")
	{
		// 活动相关路由
		campaignHandler := handler.NewCampaignHandler(l)
		contributionHandler := handler.NewContributionHandler(l)
		decryptionHandler := handler.NewDecryptionHandler(l)
		refundHandler := handler.NewRefundHandler(l)
		campaigns := v1.Group("/campaigns")
		{
			campaigns.POST("", campaignHandler.CreateCampaign)
			campaigns.GET("", campaignHandler.GetCampaigns)
			campaigns.GET("/:id", campaignHandler.GetCampaign)
			campaigns.GET("/:id/contributions", campaignHandler.GetCampaignContributions)
			campaigns.GET("/:id/contributions/:contributor", contributionHandler.GetContribution)
			campaigns.POST("/:id/contributions", contributionHandler.Contribute)
			campaigns.POST("/:id/reveal", decryptionHandler.RequestReveal)
			campaigns.POST("/:id/refund", refundHandler.Refund)
			campaigns.POST("/:id/timeout-refund", refundHandler.TimeoutRefund)
			campaigns.POST("/:id/withdraw", refundHandler.Withdraw)
		}

		// 网关回调路由，需要网关身份头
		gw := v1.Group("/gateway", handler.GatewayAuthMiddleware())
		{
			gw.POST("/decryption/success", decryptionHandler.DecryptionSuccess)
			gw.POST("/decryption/failure", decryptionHandler.DecryptionFailure)
		}
		v1.GET("/requests/:requestId", decryptionHandler.GetRequest)

		// 平台运营路由
		platformHandler := handler.NewPlatformHandler(l)
		v1.POST("/fees/withdraw", platformHandler.WithdrawFees)
		v1.GET("/fees", platformHandler.GetFeePool)
		v1.PUT("/platform/gateway", platformHandler.SetGateway)
		v1.GET("/platform/stats", platformHandler.GetStats)

		// 审计事件查询
		eventHandler := handler.NewEventHandler(db)
		v1.GET("/events", eventHandler.GetEvents)
	}

	return r
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-Gateway-Address")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
