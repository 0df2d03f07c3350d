package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/SlpAus/reaction-game-backend/api"
	"github.com/SlpAus/reaction-game-backend/internal/platform/config"
	"github.com/SlpAus/reaction-game-backend/internal/platform/database"
	"github.com/SlpAus/reaction-game-backend/internal/platform/health"
	"github.com/SlpAus/reaction-game-backend/internal/platform/logging"
	"github.com/SlpAus/reaction-game-backend/internal/platform/shutdown"
	"github.com/SlpAus/reaction-game-backend/internal/platform/startup"
	"github.com/SlpAus/reaction-game-backend/pkg/lifecycle"
	"github.com/SlpAus/reaction-game-backend/pkg/token"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	// 1. 加载配置并初始化日志
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("加载配置失败")
	}
	logging.Setup(cfg.Log)

	if err := token.Configure(cfg.Auth.JWTSecret, cfg.Auth.Issuer); err != nil {
		logrus.WithError(err).Fatal("初始化令牌校验失败")
	}

	// 2. 连接存储
	database.InitDB(cfg.Database)
	if err := database.InitRedis(cfg.Redis); err != nil {
		// Redis只是缓存，连不上时降级为直接读数据库
		logrus.WithError(err).Warn("Redis不可用，排行榜缓存关闭")
	}

	// 3. 迁移表结构并同步成就目录
	if err := startup.InitializeApplication(database.DB, cfg); err != nil {
		logrus.WithError(err).Fatal("应用初始化失败，无法启动")
	}

	// 4. 启动后台健康检查
	background := lifecycle.NewManager("background")
	checker, err := health.NewChecker(context.Background(), startup.HandleRedisRecovery)
	if err != nil {
		logrus.WithError(err).Warn("Redis健康检查器未启动")
	}
	if checker != nil {
		if err := background.Go("redis-health", checker.Run); err != nil {
			logrus.WithError(err).Fatal("注册后台服务失败")
		}
	}

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(gin.Recovery(), logging.GinLogger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.Cors.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", logging.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", logging.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api.SetupRoutes(r, checker, cfg.Server.RateLimit)

	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	serverErr := make(chan error, 1)
	go func() {
		logrus.WithField("address", cfg.Server.Address).Info("服务器已准备就绪，开始监听")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	shutdown.NewCoordinator(background).ListenForSignalsAndShutdown(server, serverErr)
}
