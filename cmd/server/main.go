package main

import (
	"context"
	"log"

	"filetrace/internal/api"
	"filetrace/internal/middleware"
	"filetrace/internal/repository"
	"filetrace/internal/service"
	"filetrace/pkg/config"
	"filetrace/pkg/db"
	"filetrace/pkg/logger"
	"filetrace/pkg/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	// 初始化配置
	if err := config.Init(); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	if err := logger.InitLogger(config.GlobalConfig.Log.Level, config.GlobalConfig.Log.Production); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// 初始化数据库连接
	if err := db.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// 初始化对象存储客户端
	store, err := storage.NewS3Storage(context.Background(), config.GlobalConfig.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize object storage: %v", err)
	}

	// 组装仓库和服务
	userRepo := repository.NewUserRepository()
	fileRepo := repository.NewFileRepository()
	shareRepo := repository.NewShareGrantRepository()
	auditRepo := repository.NewAuditLogRepository()

	auditService := service.NewAuditService(auditRepo, fileRepo, userRepo)
	authService := service.NewAuthService(userRepo)
	fileService := service.NewFileService(fileRepo, shareRepo, store, auditService)
	shareService := service.NewShareService(shareRepo, fileRepo, userRepo, auditService)
	accessService := service.NewShareAccessService(shareRepo, fileRepo, store, auditService)

	authHandler := api.NewAuthHandler(authService)
	fileHandler := api.NewFileHandler(fileService)
	shareHandler := api.NewShareHandler(shareService, accessService)
	auditHandler := api.NewAuditHandler(auditService)

	// 创建Gin引擎
	r := gin.New()
	r.Use(middleware.GinZapLogger(), gin.Recovery())

	// 公开路由
	r.POST("/api/auth/register", authHandler.Register)
	r.POST("/api/auth/login", authHandler.Login)

	// 分享的公开访问端点：匿名可用，已登录用户的身份会进入审计
	public := r.Group("/api/share", middleware.OptionalAuthMiddleware())
	{
		public.GET("/:token", shareHandler.PreviewShare)
		public.POST("/:token/download", shareHandler.ConsumeShare)
	}

	// 受保护的路由
	protected := r.Group("/api", middleware.AuthMiddleware())
	{
		protected.POST("/files", fileHandler.CreateFile)
		protected.GET("/files", fileHandler.ListFiles)
		protected.GET("/files/:file_id", fileHandler.GetFile)
		protected.GET("/files/:file_id/download", fileHandler.DownloadFile)
		protected.PUT("/files/:file_id/name", fileHandler.RenameFile)
		protected.DELETE("/files/:file_id", fileHandler.DeleteFile)

		protected.POST("/shares", shareHandler.CreateShare)
		protected.GET("/files/:file_id/shares", shareHandler.ListShares)
		protected.DELETE("/shares/:share_id", shareHandler.RevokeShare)
		protected.DELETE("/files/:file_id/shares", shareHandler.RevokeAllShares)

		protected.GET("/files/:file_id/audit", auditHandler.ListFileAudit)
	}

	// 启动服务器
	if err := r.Run(config.GlobalConfig.Server.Addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
