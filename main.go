package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wearero-api/cache"
	"wearero-api/config"
	"wearero-api/controllers"
	"wearero-api/middleware"
	"wearero-api/payments"
	"wearero-api/routes"
	"wearero-api/services"
	"wearero-api/storage"
	"wearero-api/store"
	"wearero-api/utils"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// cartLockTTL bounds how long a crashed holder can keep a cart locked in Redis
const cartLockTTL = 10 * time.Second

func newLogger(cfg *config.Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	if cfg.IsProd {
		log.SetFormatter(&logrus.JSONFormatter{})
		log.SetLevel(logrus.InfoLevel)
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

func main() {
	cfg := config.LoadConfig()
	log := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tokens, err := utils.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		log.WithError(err).Fatal("JWT_SECRET must be set")
	}

	// Connect to MongoDB
	client, err := store.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.WithError(err).Fatal("mongo unavailable")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.WithError(err).Error("mongo disconnect")
		}
	}()
	db := client.Database(cfg.MongoDB)
	if err := store.EnsureIndexes(ctx, db); err != nil {
		log.WithError(err).Fatal("could not create indexes")
	}
	log.WithField("database", cfg.MongoDB).Info("connected to MongoDB")

	var products store.ProductStore = store.NewMongoProducts(db)
	users := store.NewMongoUsers(db)
	carts := store.NewMongoCarts(db)
	orders := store.NewMongoOrders(db)

	checks := map[string]controllers.HealthCheck{
		"mongo": func(ctx context.Context) error { return client.Ping(ctx, nil) },
	}

	// Redis is optional: it adds the product cache and cross-instance cart locks
	var locker services.Locker = services.NewLocalLocker()
	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.WithError(err).Fatal("redis unavailable")
		}
		defer rdb.Close()
		products = cache.NewProductCache(products, rdb, log)
		locker = cache.NewRedisLocker(rdb, cartLockTTL)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		log.WithField("addr", cfg.RedisAddr).Info("connected to Redis")
	} else {
		log.Warn("REDIS_ADDR not set: product cache disabled, cart locks are per-process")
	}

	var processor services.PaymentProcessor
	if cfg.PaymentsEnabled() {
		sp, err := payments.NewStripeProcessor(cfg.StripeSecretKey, cfg.Currency)
		if err != nil {
			log.WithError(err).Fatal("stripe setup failed")
		}
		processor = sp
	} else {
		log.Warn("STRIPE_SECRET_KEY not set: payment intents disabled")
	}

	var verifier controllers.WebhookVerifier
	if cfg.StripeWebhookSecret != "" {
		wv, err := payments.NewWebhookVerifier(cfg.StripeWebhookSecret)
		if err != nil {
			log.WithError(err).Fatal("stripe webhook setup failed")
		}
		verifier = wv
	} else {
		log.Warn("STRIPE_WEBHOOK_SECRET not set: payment webhook disabled")
	}

	var uploader controllers.Uploader
	if cfg.UploadsEnabled() {
		mu, err := storage.NewMinioUploader(ctx, storage.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
			PublicURL: cfg.MinioPublicURL,
		}, log)
		if err != nil {
			log.WithError(err).Fatal("minio unavailable")
		}
		uploader = mu
	} else {
		log.Warn("MinIO not configured: image uploads disabled")
	}

	var mailer services.Mailer
	if cfg.SendgridAPIKey != "" {
		es, err := utils.NewEmailService(cfg.SendgridAPIKey, cfg.EmailSender, log)
		if err != nil {
			log.WithError(err).Fatal("email setup failed")
		}
		mailer = es
	} else {
		log.Warn("SENDGRID_API_KEY not set: order confirmation emails disabled")
	}

	// Initialize services and controllers
	catalog := services.NewCatalogService(products, log)
	cartService := services.NewCartService(products, carts, locker, log)
	identity := services.NewIdentityService(users, products, carts, cartService, tokens, log)
	orderService := services.NewOrderService(orders, carts, users, mailer, log)
	checkout := services.NewCheckoutService(products, processor, log)

	router := mux.NewRouter()
	router.Use(middleware.AccessLog(log))
	routes.RegisterRoutes(router, middleware.NewAuth(tokens), routes.Controllers{
		User:     controllers.NewUserController(identity, log),
		Product:  controllers.NewProductController(catalog, log),
		Cart:     controllers.NewCartController(cartService, log),
		Order:    controllers.NewOrderController(orderService, log),
		Checkout: controllers.NewCheckoutController(checkout, orderService, verifier, log),
		Upload:   controllers.NewUploadController(uploader, log),
		Health:   controllers.NewHealthController(checks, log),
	})

	handler := handlers.CORS(
		handlers.AllowedOrigins(cfg.CORSOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type", "Stripe-Signature"}),
		handlers.AllowCredentials(),
	)(router)
	handler = handlers.RecoveryHandler(
		handlers.RecoveryLogger(log),
		handlers.PrintRecoveryStack(!cfg.IsProd),
	)(handler)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("server is running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
