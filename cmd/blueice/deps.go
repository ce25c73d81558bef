package main

import (
	"github.com/fekuna/blueice-inventory-service/config"
	"github.com/fekuna/blueice-inventory-service/internal/auth"
	"github.com/fekuna/blueice-inventory-service/internal/inventory"
	"github.com/fekuna/blueice-inventory-service/internal/product"
	"github.com/fekuna/blueice-inventory-service/internal/route"
	"github.com/fekuna/blueice-inventory-service/internal/route/sequence"
	"github.com/fekuna/blueice-inventory-service/internal/wallet"
	"github.com/fekuna/blueice-inventory-service/pkg/broker"
	"github.com/fekuna/blueice-inventory-service/pkg/cache"
	"github.com/fekuna/blueice-inventory-service/pkg/logger"
	"github.com/fekuna/blueice-inventory-service/pkg/metrics"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	invRepoPkg "github.com/fekuna/blueice-inventory-service/internal/inventory/repository"
	invUCPkg "github.com/fekuna/blueice-inventory-service/internal/inventory/usecase"

	prodRepoPkg "github.com/fekuna/blueice-inventory-service/internal/product/repository"
	prodUCPkg "github.com/fekuna/blueice-inventory-service/internal/product/usecase"

	walletRepoPkg "github.com/fekuna/blueice-inventory-service/internal/wallet/repository"
	walletUCPkg "github.com/fekuna/blueice-inventory-service/internal/wallet/usecase"

	routeRepoPkg "github.com/fekuna/blueice-inventory-service/internal/route/repository"
	routeUCPkg "github.com/fekuna/blueice-inventory-service/internal/route/usecase"
)

// deps is everything a command needs, built from one configuration.
type deps struct {
	DB       *sqlx.DB
	Redis    *cache.RedisClient
	Consumer *broker.KafkaConsumer
	Producer *broker.KafkaProducer
	Metrics  *metrics.Registry

	ProductUC   product.UseCase
	InventoryUC inventory.UseCase
	WalletUC    wallet.UseCase
	RouteUC     route.UseCase
}

// buildDeps connects to Postgres (required), Redis and Kafka (both optional).
// withKafka is false for one-shot commands that neither consume nor publish.
func buildDeps(cfg *config.Config, appLogger logger.ZapLogger, withKafka bool) (*deps, error) {
	policy, err := route.ParseUnlocatedPolicy(cfg.Route.UnlocatedPolicy)
	if err != nil {
		return nil, err
	}

	// 1. Database
	db, err := connectPostgres(cfg)
	if err != nil {
		return nil, err
	}
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	d := &deps{DB: db, Metrics: metrics.NewRegistry()}

	// 2. Redis: stats cache and route lock. The interfaces stay nil without it.
	var (
		statsCache inventory.Cache
		locker     route.Locker
	)
	if cfg.Redis.Addr != "" {
		redisClient, err := cache.NewRedisClient(&cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			appLogger.Warn("Could not connect to Redis, running without stats cache and route lock", zap.Error(err))
		} else {
			d.Redis = redisClient
			statsCache = redisClient
			locker = redisClient
			appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
		}
	}

	// 3. Kafka: order events in, movement events out.
	var publisher inventory.EventPublisher
	if withKafka && len(cfg.Kafka.Brokers) > 0 {
		d.Consumer = broker.NewConsumer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.OrdersTopic,
			GroupID: cfg.Kafka.GroupID,
		})
		d.Producer = broker.NewProducer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.MovementsTopic,
		})
		publisher = d.Producer
		appLogger.Info("Kafka configured",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("orders_topic", cfg.Kafka.OrdersTopic),
			zap.String("movements_topic", cfg.Kafka.MovementsTopic),
		)
	}

	// 4. Repositories and usecases
	d.ProductUC = prodUCPkg.NewProductUseCase(prodRepoPkg.NewPGRepository(db), statsCache, appLogger)
	d.InventoryUC = invUCPkg.NewInventoryUseCase(
		invRepoPkg.NewPGRepository(db),
		statsCache,
		publisher,
		auth.NewRoleAuthorizer(cfg.Inventory.AdminRoles),
		d.Metrics,
		appLogger,
		invUCPkg.Options{
			MaxRetries:   cfg.Inventory.MaxRetries,
			RetryBackoff: cfg.Inventory.RetryBackoff,
			StatsTTL:     cfg.Inventory.StatsCacheTTL,
		},
	)
	d.WalletUC = walletUCPkg.NewWalletUseCase(walletRepoPkg.NewPGRepository(db), statsCache, d.Metrics, appLogger)
	d.RouteUC = routeUCPkg.NewRouteUseCase(routeRepoPkg.NewPGRepository(db), locker, d.Metrics, appLogger, routeUCPkg.Options{
		DefaultOrigin:   sequence.Point{Lat: cfg.Route.DefaultLat, Lng: cfg.Route.DefaultLng},
		UnlocatedPolicy: policy,
	})

	return d, nil
}

func (d *deps) Close() {
	if d.Consumer != nil {
		_ = d.Consumer.Close()
	}
	if d.Producer != nil {
		_ = d.Producer.Close()
	}
	if d.Redis != nil {
		_ = d.Redis.Close()
	}
	_ = d.DB.Close()
}
