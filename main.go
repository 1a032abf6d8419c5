package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"autodeel/config"
	"autodeel/cron"
	"autodeel/database"
	paymentRepoPkg "autodeel/database/repository/payment"
	priceSchemeRepoPkg "autodeel/database/repository/pricescheme"
	reservationRepoPkg "autodeel/database/repository/reservation"
	userRepoPkg "autodeel/database/repository/user"
	"autodeel/handlers"
	"autodeel/middleware"
	"autodeel/routes"
	"autodeel/services/bunq"
	"autodeel/services/payment"
	"autodeel/services/reservation"
	"autodeel/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	resRepo := reservationRepoPkg.NewMongoReservationRepo()
	payRepo := paymentRepoPkg.NewMongoPaymentRepo()
	schemeRepo := priceSchemeRepoPkg.NewMongoPriceSchemeRepo()
	userRepo := userRepoPkg.NewMongoUserRepo()

	if _, err := schemeRepo.EnsureDefault(); err != nil {
		logger.Sugar().Fatalf("main: failed to seed default price scheme: %v", err)
	}

	// bunq gateway client. The handshake runs lazily on first use, so a
	// misconfigured gateway does not block startup.
	bunqClient := bunq.NewClient(bunq.Config{
		APIKey:          config.AppConfig.BunqAPIKey,
		ClientPublicKey: config.AppConfig.BunqClientPublicKey,
		PrivateKey:      config.AppConfig.BunqPrivateKey,
		AccountID:       config.AppConfig.BunqAccountID,
		BaseURL:         config.AppConfig.BunqAPIBaseURL,
		RedirectURL:     config.AppConfig.PaymentRedirectURL,
	}, logger)

	// services.
	reservationService := &reservation.DefaultReservationService{
		Repo:        resRepo,
		PaymentRepo: payRepo,
		SchemeRepo:  schemeRepo,
		UserRepo:    userRepo,
		Logger:      logger,
	}

	paymentService := &payment.DefaultPaymentService{
		Repo:           payRepo,
		UserRepo:       userRepo,
		ReservationSvc: reservationService,
		Gateway:        bunqClient,
		Cache:          utils.GetCacheClient(),
		Logger:         logger,
		RedirectURL:    config.AppConfig.PaymentRedirectURL,
	}

	// Background reconciliation: one worker drains sync tasks, read
	// endpoints enqueue them fire-and-forget, a schedule covers quiet hours.
	cron.InitSyncWorker(paymentService, logger)
	enqueuer := cron.NewEnqueuer()
	defer enqueuer.Close()
	scheduler := cron.StartScheduler(enqueuer, logger)
	defer scheduler.Stop()

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		Auth:         handlers.NewAuthHandler(userRepo),
		Reservations: handlers.NewReservationHandler(reservationService),
		Payments: handlers.NewPaymentHandler(paymentService, func() {
			cron.EnqueueStatusSync(enqueuer, logger)
		}),
		PriceSchemes: handlers.NewPriceSchemeHandler(schemeRepo),
		Bunq:         handlers.NewBunqHandler(bunqClient),
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
