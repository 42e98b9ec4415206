package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"traceaq/config"
	"traceaq/cron"
	"traceaq/database"
	orderRepo "traceaq/database/repository/order"
	paymentMethodRepo "traceaq/database/repository/paymentmethod"
	userRepoPkg "traceaq/database/repository/user"
	"traceaq/handlers"
	"traceaq/middleware"
	"traceaq/routes"
	"traceaq/services/checkout"
	"traceaq/services/notification"
	"traceaq/services/order"
	"traceaq/services/payment"
	"traceaq/services/user"
	"traceaq/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

type repositories struct {
	users          userRepoPkg.UserRepository
	orders         orderRepo.OrderRepository
	paymentMethods paymentMethodRepo.PaymentMethodRepository
}

// buildRepositories picks the backend named by DATABASE_DRIVER. Postgres tables are
// created when missing.
func buildRepositories(ctx context.Context, logger *zap.Logger) repositories {
	if config.AppConfig.DatabaseDriver == database.DriverPostgres {
		users := userRepoPkg.NewPostgresUserRepo(database.PostgresDB)
		orders := orderRepo.NewPostgresOrderRepo(database.PostgresDB)
		methods := paymentMethodRepo.NewPostgresPaymentMethodRepo(database.PostgresDB)
		for name, ensure := range map[string]func(context.Context) error{
			"users":           users.EnsureTable,
			"orders":          orders.EnsureTable,
			"payment_methods": methods.EnsureTable,
		} {
			if err := ensure(ctx); err != nil {
				logger.Fatal("main: failed to create table", zap.String("table", name), zap.Error(err))
			}
		}
		return repositories{users: users, orders: orders, paymentMethods: methods}
	}

	db := database.MongoDatabase()
	return repositories{
		users:          userRepoPkg.NewMongoUserRepo(db),
		orders:         orderRepo.NewMongoOrderRepo(db),
		paymentMethods: paymentMethodRepo.NewMongoPaymentMethodRepo(db),
	}
}

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer func() { _ = logger.Sync() }()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	database.InitDB()
	utils.InitRedis()

	rootCtx, stopMonitors := context.WithCancel(context.Background())
	defer stopMonitors()
	repos := buildRepositories(rootCtx, logger)

	tokens, err := utils.NewTokenIssuer(config.AppConfig.JWTSecret)
	if err != nil {
		logger.Fatal("main: invalid auth configuration", zap.Error(err))
	}

	// Mail queue and its worker.
	queue := asynq.NewClient(cron.QueueRedisOpt())
	defer queue.Close()
	mailer := notification.NewQueueMailer(queue, logger)
	mailWorker := cron.InitMailWorker(notification.LogSender{Logger: logger}, logger)

	// services.
	userService := user.NewUserService(
		repos.users,
		tokens,
		utils.NewRedisKV(utils.GetAuthCacheClient()),
		mailer,
		config.SessionTTL(),
		logger,
	)
	orderService := order.NewOrderService(repos.orders, repos.paymentMethods, logger)
	paymentService := payment.NewStripePaymentService(config.AppConfig.StripeKey, nil, logger)

	checkoutService := checkout.NewCheckoutService(
		checkout.NewRedisSessionStore(utils.GetSessionCacheClient(), config.CheckoutSessionTTL()),
		userService,
		paymentService,
		orderService,
		mailer,
		checkout.Pricing{
			PriceID:   config.AppConfig.StripePriceID,
			UnitPrice: config.AppConfig.UnitPrice,
			Currency:  config.AppConfig.Currency,
		},
		logger,
	)

	utils.StartHealthMonitor(rootCtx, utils.RedisClients(), database.Ping)

	// Assemble the handler bundle.
	handlerBundle := handlers.NewHandlerBundle(
		userService,
		handlers.NewCheckoutHandler(checkoutService, logger),
		handlers.NewOrderHandler(orderService, logger),
		handlers.NewPaymentHandler(paymentService, config.AppConfig.StripePriceID, logger),
		handlers.NewAuthHandler(userService, config.AppConfig.CookieSecure, logger),
		handlers.NewHealthHandler(utils.GetHealthStatus),
	)

	// Create the Gin router.
	router := gin.New()
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))
	routes.RegisterRoutes(router, handlerBundle, routes.AllowedOrigins(config.AppConfig.AllowedOrigins))

	srv := &http.Server{
		Addr:              ":" + config.AppConfig.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server is running", zap.String("port", config.AppConfig.AppPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	mailWorker.Shutdown()
	stopMonitors()
	database.Close(ctx)
	logger.Info("Server exiting")
}
