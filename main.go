package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"appointly/config"
	"appointly/cron"
	"appointly/database"
	appointmentRepo "appointly/database/repository/appointment"
	availabilityRepo "appointly/database/repository/availability"
	providerRepo "appointly/database/repository/provider"
	"appointly/handlers"
	"appointly/metrics"
	"appointly/middleware"
	"appointly/routes"
	"appointly/services/availability"
	"appointly/services/booking"
	"appointly/services/cancellation"
	"appointly/services/notification"
	"appointly/services/payment"
	"appointly/services/realtime"
	"appointly/services/tasks"
	"appointly/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer func() { _ = logger.Sync() }()
	cfg := config.AppConfig
	loc := cfg.Location()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	database.InitDB()
	utils.InitRedis()
	db := database.Database()

	// repositories.
	availRepo := availabilityRepo.NewMongoAvailabilityRepo(db)
	apptRepo := appointmentRepo.NewMongoAppointmentRepo(db)
	provRepo := providerRepo.NewMongoProviderRepo(db)
	ensureIndexes(rootCtx, logger, availRepo, apptRepo, provRepo)

	bookingMetrics := metrics.NewBookingMetrics(nil)

	// collaborators.
	var gateway payment.Gateway
	if cfg.StripeKey != "" {
		gateway = payment.NewStripeGateway(cfg.StripeKey, cfg.PaymentCurrency, logger)
	} else {
		logger.Warn("STRIPE_KEY is empty, payments and refunds are disabled")
	}

	var notifier notification.NotificationService = notification.NoopNotificationService{}
	fcm, err := utils.FirebaseMessaging(rootCtx)
	switch {
	case err != nil:
		logger.Fatal("main: failed to initialize firebase messaging", zap.Error(err))
	case fcm != nil:
		notifier = notification.NewFCMNotificationService(fcm, logger)
	default:
		logger.Warn("FIREBASE_CREDENTIALS_PATH is empty, push notifications are disabled")
	}

	queueClient := asynq.NewClient(utils.QueueRedisOpt())
	defer queueClient.Close()

	// services.
	availabilityService := &availability.DefaultAvailabilityService{
		Availability: availRepo,
		Appointments: apptRepo,
		Providers:    provRepo,
		Location:     loc,
		HorizonDays:  cfg.BookingHorizonDays,
		Logger:       logger,
	}

	bookingService := &booking.DefaultBookingService{
		Availability: availabilityService,
		Appointments: apptRepo,
		Sessions:     &booking.SessionStore{Client: utils.GetSessionClient(), TTL: cfg.BookingSessionTTL},
		Locks:        &booking.DayLocker{Client: utils.GetLockClient(), TTL: cfg.BookingLockTTL},
		Payments:     gateway,
		Notifier:     notifier,
		Metrics:      bookingMetrics,
		Logger:       logger,
		Location:     loc,
		Currency:     cfg.PaymentCurrency,
	}

	cancellationService := &cancellation.DefaultCancellationService{
		Appointments: apptRepo,
		Quotes:       &cancellation.RedisQuoteStore{Client: utils.GetSessionClient()},
		Policy:       cancellation.NoticePolicy{NoticeHours: cfg.CancellationNoticeHours},
		Payments:     gateway,
		RefundQueue:  &tasks.AsynqRefundQueue{Client: queueClient},
		Notifier:     notifier,
		Metrics:      bookingMetrics,
		Logger:       logger,
	}

	broadcaster := realtime.NewBroadcaster(availabilityService, logger, availRepo, apptRepo)
	if err := broadcaster.Start(rootCtx); err != nil {
		// Change streams need a replica set; without one the stream endpoint fails.
		logger.Warn("main: realtime updates unavailable", zap.Error(err))
	}

	var worker *asynq.Server
	if gateway != nil {
		worker = cron.InitRefundWorker(utils.QueueRedisOpt(), cron.RefundWorkerDeps{
			Payments:     gateway,
			Appointments: apptRepo,
			Metrics:      bookingMetrics,
			Logger:       logger,
		})
	}

	utils.StartHealthMonitor(rootCtx, time.Minute,
		map[string]*redis.Client{"sessions": utils.GetSessionClient(), "locks": utils.GetLockClient()},
		func(ctx context.Context) error { return database.MongoClient.Ping(ctx, nil) },
	)

	// Create the Gin router.
	router := gin.New()
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin))

	routes.RegisterRoutes(router, &handlers.HandlerBundle{
		Availability: handlers.NewAvailabilityHandler(availabilityService, broadcaster, bookingMetrics),
		Booking:      handlers.NewBookingHandler(bookingService, bookingService),
		Cancellation: handlers.NewCancellationHandler(cancellationService),
	})

	srv := &http.Server{
		Addr:    "0.0.0.0:" + cfg.AppPort,
		Handler: router,
	}

	logger.Info("starting server", zap.String("addr", srv.Addr), zap.String("timezone", loc.String()))
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("main: server failed to start", zap.Error(err))
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("main: server is shutting down...")

	// Ends realtime streams so open SSE connections can finish.
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}
	if worker != nil {
		worker.Shutdown()
	}
	if err := database.Disconnect(ctx); err != nil {
		logger.Error("main: failed to disconnect from MongoDB", zap.Error(err))
	}
	logger.Info("main: server stopped gracefully")
}

type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

func ensureIndexes(ctx context.Context, logger *zap.Logger, repos ...indexer) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	for _, r := range repos {
		if err := r.EnsureIndexes(ctx); err != nil {
			logger.Fatal("main: failed to create indexes", zap.Error(err))
		}
	}
}
