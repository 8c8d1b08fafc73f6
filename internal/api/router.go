package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"meal-planner/internal/api/handlers/health"
	plansHandler "meal-planner/internal/api/handlers/plans"
	shoppingHandler "meal-planner/internal/api/handlers/shopping"
	"meal-planner/internal/api/middleware"
	"meal-planner/internal/core/draft"
	"meal-planner/internal/core/imagesearch"
	"meal-planner/internal/core/pending"
	"meal-planner/internal/core/persist"
	"meal-planner/internal/core/recommend"
	"meal-planner/internal/core/shopping"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// 超時設置
	timeoutDuration = 60 * time.Second
	// 請求體大小限制 (1MB)
	maxBodySize = 1 << 20
)

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, cacheManager *recommend.CacheManager, draftStore *draft.Store) (*gin.Engine, error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// 創建路由引擎
	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New()) // 自動生成請求 ID

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(maxBodySize))

	// 請求去重
	router.Use(middleware.Deduplication(cfg))

	// 速率限制
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	common.LogInfo("Initializing services",
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.Bool("recommender_enabled", cfg.Recommender.Enabled),
		zap.String("model", cfg.Recommender.Model),
		zap.Duration("timeout", timeoutDuration),
	)

	// 初始化合併推薦服務
	mergeService := recommend.NewService(cfg, recommend.NewOpenRouterClient(cfg), cacheManager)
	if mergeService == nil {
		common.LogError("Failed to initialize merge service")
		return nil, fmt.Errorf("failed to initialize merge service")
	}

	// 初始化儲存服務客戶端
	persistClient := persist.NewClient(cfg)
	if persistClient == nil {
		common.LogError("Failed to initialize persistence client")
		return nil, fmt.Errorf("failed to initialize persistence client")
	}

	// 初始化待儲存項目存放區
	pendingStore := pending.NewStore(persistClient)

	// 初始化圖片搜尋服務
	imageService := imagesearch.NewService(cfg, imagesearch.NewPexelsClient(cfg))

	// 初始化採買清單服務
	shoppingSvc := shopping.NewService(cfg, persistClient, mergeService, imageService, pendingStore)
	if shoppingSvc == nil {
		common.LogError("Failed to initialize shopping service")
		return nil, fmt.Errorf("failed to initialize shopping service")
	}

	common.LogInfo("Services initialized successfully",
		zap.Bool("cache_manager_initialized", cacheManager != nil),
		zap.Bool("draft_store_initialized", draftStore != nil),
		zap.String("environment", cfg.App.Env),
	)

	// 全局中間件：設置超時和服務
	router.Use(func(c *gin.Context) {
		// 設置請求超時
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()

		// 創建新的請求上下文
		req := c.Request.WithContext(ctx)
		c.Request = req

		// 設置配置
		c.Set("config", cfg)

		// 處理請求
		c.Next()

		// 檢查是否超時
		if ctx.Err() == context.DeadlineExceeded {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", c.GetHeader("X-Request-ID")),
				zap.Duration("timeout", timeoutDuration),
			)
			c.JSON(http.StatusGatewayTimeout, gin.H{
				"error": "Request timeout",
				"code":  "REQUEST_TIMEOUT",
				"details": gin.H{
					"timeout": timeoutDuration.String(),
				},
			})
			c.Abort()
			return
		}
	})

	// 健康檢查路由
	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	// API 路由組
	api := router.Group("/api/v1")
	{
		shoppingHandlerInstance := shoppingHandler.NewHandler(shoppingSvc, pendingStore)

		// 採買清單相關路由
		shoppingGroup := api.Group("/shopping")
		{
			// 整合後的採買清單
			shoppingGroup.GET("/:event_id", shoppingHandlerInstance.HandleList)

			// 待儲存項目
			shoppingGroup.POST("/:event_id/items", shoppingHandlerInstance.HandleAddItem)
			shoppingGroup.DELETE("/:event_id/items/:item_id", shoppingHandlerInstance.HandleRemoveItem)

			// 批次儲存
			shoppingGroup.POST("/:event_id/save", shoppingHandlerInstance.HandleSaveAll)
		}

		// 規則式合併預覽，無狀態
		api.POST("/merge/preview", shoppingHandlerInstance.HandleMergePreview)

		// 菜單草稿相關路由，只在草稿儲存啟用時註冊
		if draftStore != nil {
			plansHandlerInstance := plansHandler.NewHandler(draftStore)

			plansGroup := api.Group("/plans")
			{
				plansGroup.PUT("/:plan_id/draft", plansHandlerInstance.HandleSaveDraft)
				plansGroup.GET("/:plan_id/draft", plansHandlerInstance.HandleGetDraft)
				plansGroup.GET("/:plan_id/draft/watch", plansHandlerInstance.HandleWatchDraft)
			}
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
		zap.Bool("merge_service_initialized", mergeService != nil),
		zap.Bool("cache_manager_initialized", cacheManager != nil),
		zap.Duration("timeout", timeoutDuration),
		zap.Int64("max_body_size", maxBodySize),
	)

	return router, nil
}
