package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-hotdesk-reservation/internal/api"
	"github.com/sanosuguru/go-hotdesk-reservation/internal/api/handler"
	appmw "github.com/sanosuguru/go-hotdesk-reservation/internal/api/middleware"
	"github.com/sanosuguru/go-hotdesk-reservation/internal/application"
	"github.com/sanosuguru/go-hotdesk-reservation/internal/config"
	"github.com/sanosuguru/go-hotdesk-reservation/internal/infrastructure/postgres"
	"github.com/sanosuguru/go-hotdesk-reservation/internal/infrastructure/queue"
	redisinfra "github.com/sanosuguru/go-hotdesk-reservation/internal/infrastructure/redis"
	"github.com/sanosuguru/go-hotdesk-reservation/internal/pkg/logger"
	"github.com/sanosuguru/go-hotdesk-reservation/internal/pkg/metrics"
	"github.com/sanosuguru/go-hotdesk-reservation/internal/worker"
)

func main() {
	// .env があれば読み込む（なければ無視）
	_ = godotenv.Load()

	cfg := config.Load()

	env := os.Getenv("APP_ENV")
	logger.Set(logger.NewLogger(env))
	defer logger.Sync()

	m := metrics.Init()

	// PostgreSQL接続
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("データベース接続失敗", zap.Error(err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := postgres.Ping(ctx, db); err != nil {
		cancel()
		logger.Fatal("データベース疎通確認失敗", zap.Error(err))
	}
	cancel()

	if err := postgres.RunMigrations(db.DB, cfg.Database.MigrationsPath); err != nil {
		logger.Fatal("マイグレーション失敗", zap.Error(err))
	}

	// Redis接続（任意。接続できない場合はロックとキャッシュなしで継続）
	var lockManager redisinfra.LockManagerInterface
	var occupancyCache *redisinfra.OccupancyCache
	redisClient := redisinfra.NewClient(&cfg.Redis)
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := redisinfra.Ping(pingCtx, redisClient); err != nil {
		logger.Warn("Redis接続失敗、ロックとキャッシュを無効化", zap.Error(err))
		redisClient.Close()
	} else {
		lockManager = redisinfra.NewLockManager(redisClient)
		occupancyCache = redisinfra.NewOccupancyCache(redisClient)
		defer redisClient.Close()
	}
	pingCancel()

	// イベント発行（任意。URL未設定なら無効）
	var publisher application.EventPublisher
	if cfg.Queue.URL != "" {
		pub, err := queue.NewPublisher(cfg.Queue.URL)
		if err != nil {
			logger.Warn("メッセージブローカー接続失敗、イベント発行を無効化", zap.Error(err))
		} else {
			publisher = pub
			defer pub.Close()
		}
	}

	// リポジトリ
	txManager := postgres.NewTxManager(db)
	seatRepo := postgres.NewSeatRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	clusterRepo := postgres.NewClusterRepository(db)
	userRepo := postgres.NewUserRepository(db)

	// サービス
	bookingService := application.NewBookingService(txManager, bookingRepo, seatRepo, lockManager, occupancyCache, publisher)
	seatService := application.NewSeatService(txManager, seatRepo, clusterRepo, bookingRepo)
	clusterService := application.NewClusterService(clusterRepo, seatRepo)
	userService := application.NewUserService(userRepo)

	// ハンドラー
	healthHandler := handler.NewHealthHandler()
	bookingHandler := handler.NewBookingHandler(bookingService)
	seatHandler := handler.NewSeatHandler(seatService)
	clusterHandler := handler.NewClusterHandler(clusterService)
	userHandler := handler.NewUserHandler(userService)

	// Echo設定
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	appmw.SetupMiddleware(e)
	e.Use(appmw.PrometheusMiddleware(m))

	// 公開エンドポイント
	e.GET("/health", healthHandler.Check)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), appmw.MetricsBasicAuth())

	// 認証必須API
	apiGroup := e.Group("/api", appmw.JWTIdentity(cfg.Auth.JWTSecret))

	apiGroup.GET("/me", userHandler.Me)

	apiGroup.GET("/seats", seatHandler.List)
	apiGroup.GET("/seats/:id", seatHandler.GetByID)

	apiGroup.GET("/availability", bookingHandler.CheckAvailability)
	apiGroup.POST("/bookings", bookingHandler.Create)
	apiGroup.POST("/bookings/bulk", bookingHandler.CreateBulk)
	apiGroup.DELETE("/bookings/:id", bookingHandler.Cancel)
	apiGroup.GET("/bookings/mine", bookingHandler.GetMine)
	apiGroup.GET("/dates/:date/bookings", bookingHandler.GetByDate)
	apiGroup.GET("/dates/:date/occupancy", bookingHandler.CountByDate)

	apiGroup.GET("/clusters", clusterHandler.List)
	apiGroup.GET("/clusters/:id", clusterHandler.GetByID)

	// 管理者専用API
	admin := apiGroup.Group("/admin", appmw.RequireAdmin())
	admin.POST("/seats", seatHandler.Create)
	admin.PATCH("/seats/:id", seatHandler.Update)
	admin.DELETE("/seats/:id", seatHandler.Delete)
	admin.PUT("/seats/:id/blocked", seatHandler.SetBlocked)
	admin.PUT("/seats/:id/long-term", seatHandler.SetLongTerm)
	admin.POST("/clusters", clusterHandler.Create)
	admin.PUT("/clusters/:id", clusterHandler.Update)
	admin.DELETE("/clusters/:id", clusterHandler.Delete)
	admin.GET("/users", userHandler.List)
	admin.PUT("/users/:id/role", userHandler.SetRole)

	// 長期予約の期限監視ワーカー
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	expirer := worker.NewLongTermExpirer(seatService, cfg.Worker.LongTermSweepInterval)
	go expirer.Start(workerCtx)

	// サーバー起動
	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()

	// シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("サーバーをシャットダウンしています...")

	expirer.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("サーバーシャットダウンエラー", zap.Error(err))
	}

	logger.Info("サーバーが正常にシャットダウンしました")
}
