package main

import (
	"log"

	"github.com/blues/sfl/internal/config"
	"github.com/blues/sfl/internal/database"
	"github.com/blues/sfl/internal/event"
	"github.com/blues/sfl/internal/gateway"
	"github.com/blues/sfl/internal/ledger"
	"github.com/blues/sfl/internal/logger"
	"github.com/blues/sfl/internal/router"
	"github.com/blues/sfl/internal/task"
	"github.com/blues/sfl/internal/treasury"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化日志
	if err := logger.Init(logger.Options{
		Level:  cfg.Log.Level,
		Output: cfg.Log.Output,
		File:   cfg.Log.File,
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// 初始化审计事件库
	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// 初始化事件下游
	sink, err := event.NewSink(db, cfg.Platform.EventPoolSize)
	if err != nil {
		log.Fatalf("Failed to initialize event sink: %v", err)
	}
	defer sink.Close()

	// 平台身份
	if !common.IsHexAddress(cfg.Platform.Operator) {
		log.Fatalf("Invalid operator address: %q", cfg.Platform.Operator)
	}
	operator := common.HexToAddress(cfg.Platform.Operator)
	var gatewayAddr common.Address
	if cfg.Platform.Gateway != "" {
		if !common.IsHexAddress(cfg.Platform.Gateway) {
			log.Fatalf("Invalid gateway address: %q", cfg.Platform.Gateway)
		}
		gatewayAddr = common.HexToAddress(cfg.Platform.Gateway)
	}

	// 初始化账本
	l, err := ledger.New(operator, gatewayAddr, ledger.Deps{
		Treasury: treasury.NewClient(cfg.Platform.TreasuryUrl),
		Notifier: gateway.NewClient(cfg.Platform.GatewayNotifyUrl),
		Emitter:  sink,
	})
	if err != nil {
		log.Fatalf("Failed to initialize ledger: %v", err)
	}

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化路由
	r := router.Setup(l, db, cfg)

	// 启动定时任务
	manager := task.Start(l, cfg)
	defer manager.Stop()

	// 启动服务器
	logger.Info("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
