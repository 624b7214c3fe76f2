package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"techorbit/config"
	"techorbit/internal/api"
	"techorbit/internal/auth"
	"techorbit/internal/broker"
	"techorbit/internal/redisclient"
	"techorbit/internal/service"
	"techorbit/internal/store"
	"techorbit/internal/util"
	"techorbit/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting techorbit API")

	tp, err := util.InitTracer("techorbit", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	db, err := store.NewStore(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	log.Println("Database ready")

	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Redis connected")

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder)
	defer producer.Close()
	log.Println("Kafka producer initialized")

	eventPublisher := broker.NewEventPublisher(producer)

	tokens := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	couponService := service.NewCouponService()
	paymentService := service.NewPaymentService(
		cfg.Payment.CardDelay, cfg.Payment.UPIDelay, cfg.Payment.CODDelay)
	userService := service.NewUserService(db, tokens)
	catalogService := service.NewCatalogService(db)
	orderService := service.NewOrderService(db, redisClient, eventPublisher, couponService, paymentService)
	reviewService := service.NewReviewService(db)
	wishlistService := service.NewWishlistService(db)
	notificationService := service.NewNotificationService(db, redisClient)
	statsService := service.NewStatsService(db)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	orderConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder, cfg.Kafka.ConsumerGroup)
	notificationWorker := worker.NewNotificationWorker(orderConsumer, db, notificationService)
	go func() {
		if err := notificationWorker.Start(workerCtx); err != nil {
			log.Printf("Notification worker error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(
		userService, catalogService, orderService, reviewService,
		wishlistService, notificationService, couponService, statsService,
		redisClient, tokens)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	notificationWorker.Stop()

	log.Println("Server exited")
}
