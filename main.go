package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/zeppex/mvp-sub001/clock"
	"github.com/zeppex/mvp-sub001/config"
	"github.com/zeppex/mvp-sub001/controllers"
	"github.com/zeppex/mvp-sub001/database"
	"github.com/zeppex/mvp-sub001/kafka"
	"github.com/zeppex/mvp-sub001/middleware"
	"github.com/zeppex/mvp-sub001/models"
	"github.com/zeppex/mvp-sub001/repository"
	"github.com/zeppex/mvp-sub001/routes"
	"github.com/zeppex/mvp-sub001/services"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("[PaymentOrderService] Failed to load config: ", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("[PaymentOrderService] Failed to initialize logger: ", err)
	}
	defer logger.Sync()

	store := repository.NewOrderStore()
	clk := clock.NewSystem()

	var terminals services.TerminalDirectory
	if cfg.MerchantServiceURL != "" {
		terminals = services.NewTerminalClient(cfg.MerchantServiceURL)
	} else {
		static := services.NewStaticTerminalDirectory(parseDevTerminals(cfg.DevTerminals)...)
		if cfg.DevTerminals == "" {
			logger.Warn("no merchant registry configured and DEV_TERMINALS empty; order creation will fail terminal resolution")
		}
		terminals = static
	}

	var events services.OrderEventPublisher
	if cfg.KafkaBrokers != "" {
		producer := kafka.NewOrderEventProducer(strings.Split(cfg.KafkaBrokers, ","), cfg.KafkaTopic)
		defer producer.Close()
		events = producer
	}

	var archive services.OrderArchiver
	if cfg.HasPostgres() {
		db, err := database.ConnectPostgres(database.PostgresConfig{
			User:     cfg.PostgresUser,
			Password: cfg.PostgresPassword,
			DB:       cfg.PostgresDB,
			Host:     cfg.PostgresHost,
			Port:     cfg.PostgresPort,
			SSLMode:  cfg.PostgresSSLMode,
			TimeZone: cfg.PostgresTimeZone,
		}, logger, &models.ArchivedOrder{})
		if err != nil {
			log.Fatal("[PaymentOrderService] Failed to connect audit DB: ", err)
		}
		defer database.Close(db)
		archive = repository.NewGormOrderArchive(db)
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			logger.Warn("redis unavailable, falling back to in-process rate limiter", zap.Error(err))
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	engine := services.NewOrderService(store, terminals, clk, cfg.OrderTTL, cfg.DefaultCurrency, events, archive, logger)
	queries := services.NewOrderQueryService(store, engine, clk)
	sweeper := services.NewExpirySweeper(store, engine, clk, cfg.SweepInterval, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sweeper.Run(ctx)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger), cors.Default())

	oc := &controllers.OrderController{
		Orders:        engine,
		Queries:       queries,
		PublicBaseURL: cfg.PublicBaseURL,
		Logger:        logger,
	}
	routes.RegisterOrderRoutes(r, oc, routes.Middlewares{
		Merchant: middleware.MerchantAuth(cfg.JWTSecret),
		Service:  middleware.ServiceAuth(cfg.ServiceToken),
		Public:   middleware.RateLimit(rdb, cfg.RateLimit, cfg.RateLimitWindow),
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}

	go func() {
		logger.Info("payment order service listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("[PaymentOrderService] Server failed: ", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// parseDevTerminals reads the posId:branchId:merchantId development seed list.
func parseDevTerminals(raw string) []models.Terminal {
	var out []models.Terminal
	for _, item := range strings.Split(raw, ",") {
		parts := strings.Split(strings.TrimSpace(item), ":")
		if len(parts) != 3 {
			continue
		}
		out = append(out, models.Terminal{PosID: parts[0], BranchID: parts[1], MerchantID: parts[2]})
	}
	return out
}
