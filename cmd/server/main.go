package main

import (
	"fmt"

	"go.uber.org/zap"

	"routtie/internal/config"
	"routtie/internal/handler"
	"routtie/internal/httpserver"
	"routtie/internal/kv"
	"routtie/internal/notify"
	"routtie/internal/repository"
	"routtie/internal/service"
	"routtie/internal/store"
	"routtie/pkg/db"
	"routtie/pkg/logger"
	"routtie/pkg/mq"
	redisclient "routtie/pkg/redis"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting routtie server...",
		zap.String("db_host", cfg.DB.Host),
		zap.Int("db_port", cfg.DB.Port),
		zap.String("mq_url", cfg.MQ.URL),
	)

	// DB
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()

	// Redis
	rdb := redisclient.NewRedisClient(cfg.Redis)
	defer rdb.Close()

	// MQ Publisher
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Failed to init MQ publisher", zap.Error(err))
	}
	defer publisher.Close()

	// Repositories
	userRepo := repository.NewUserRepository(dbConn)
	docRepo := repository.NewRoutineDocumentRepository(dbConn, log)

	// Services
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret)

	// One store per signed-in user: scoped fallback keys, per-store reminder
	// scheduler (CancelAll must not cross users).
	stores := store.NewManager(func(userID int) *store.Store {
		fallback := kv.NewRedisStore(rdb, fmt.Sprintf("routtie:user:%d", userID))
		scheduler := notify.NewScheduler(publisher, userID, log)
		return store.New(docRepo, fallback, scheduler, log)
	}, log)
	defer stores.Close()

	// Handlers
	authHandler := handler.NewAuthHandler(authService, stores)
	routineHandler := handler.NewRoutineHandler(stores)

	// Router
	router := httpserver.NewRouter(authHandler, routineHandler, dbConn, publisher, cfg.JWT.Secret)

	if err := router.Run(cfg.Server.Port); err != nil {
		log.Fatal("server start failed", zap.Error(err))
	}
}
