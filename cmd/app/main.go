package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/travelstore/api"
	"github.com/Domenick1991/travelstore/config"
	"github.com/Domenick1991/travelstore/internal/bootstrap"
	"github.com/Domenick1991/travelstore/internal/cache"
	"github.com/Domenick1991/travelstore/internal/kafka"
	"github.com/Domenick1991/travelstore/internal/realtime"
	"github.com/Domenick1991/travelstore/internal/repository"
	"github.com/Domenick1991/travelstore/internal/service/auth"
	"github.com/Domenick1991/travelstore/internal/service/catalog"
	"github.com/Domenick1991/travelstore/internal/service/checkout"
	"github.com/Domenick1991/travelstore/internal/service/purchases"
	"github.com/Domenick1991/travelstore/internal/service/reservations"
	"github.com/Domenick1991/travelstore/internal/session"
	"github.com/Domenick1991/travelstore/internal/storage"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var mongoClient *mongo.Client
	if cfg.Database.Driver == config.DriverMongo || cfg.Storage.Driver == config.StorageGridFS {
		mongoClient, err = repository.ConnectMongo(ctx, cfg.Database.MongoURI)
		if err != nil {
			log.Fatalf("%v", err)
		}
		defer mongoClient.Disconnect(context.Background())
	}

	store, closeStore, err := openDocumentStore(ctx, cfg, mongoClient)
	if err != nil {
		log.Fatalf("open document store: %v", err)
	}
	defer closeStore()

	blobs, err := openBlobStore(cfg, mongoClient)
	if err != nil {
		log.Fatalf("open blob store: %v", err)
	}

	redisClient := cache.NewRedisClient(cfg.Redis)
	defer redisClient.Close()
	redisCache := cache.NewRedisCache(
		redisClient,
		time.Duration(cfg.Catalog.CacheTTLSeconds)*time.Second,
		time.Duration(cfg.Cart.TTLMinutes)*time.Minute,
	)
	hub := realtime.NewHub(redisClient)

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	tracker := session.NewTracker()
	tracker.Subscribe(func(e session.Event) {
		log.Printf("session %s: %s user=%s role=%s", e.Session.ID, e.Kind, e.Session.UserID, e.Session.Role)
	})

	packageRepo := repository.NewPackageRepository(store)
	purchaseRepo := repository.NewPurchaseRepository(store)
	reservationRepo := repository.NewReservationRepository(store)
	userRepo := repository.NewUserRepository(store)

	authService := auth.NewAuthService(
		userRepo,
		tracker,
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute,
		cfg.Auth.BcryptCost,
	)
	if err := authService.EnsureAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		log.Fatalf("seed admin: %v", err)
	}

	catalogService := catalog.NewCatalogService(packageRepo, redisCache, blobs)
	checkoutService := checkout.NewCheckoutService(
		redisCache,
		packageRepo,
		purchaseRepo,
		reservationRepo,
		checkout.WithEvents(producer, cfg.Kafka.StoreEventsTopic),
		checkout.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		checkout.WithNotifier(hub),
	)
	reservationService := reservations.NewReservationService(
		reservationRepo,
		purchaseRepo,
		reservations.WithEvents(producer, cfg.Kafka.StoreEventsTopic),
		reservations.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		reservations.WithNotifier(hub),
	)
	purchaseService := purchases.NewPurchaseService(purchaseRepo, userRepo, packageRepo)

	if err := api.RegisterValidators(); err != nil {
		log.Fatalf("register validators: %v", err)
	}
	router := api.NewRouter(api.Services{
		Auth:         authService,
		Catalog:      catalogService,
		Checkout:     checkoutService,
		Purchases:    purchaseService,
		Reservations: reservationService,
		Realtime:     hub,
		Blobs:        blobs,
		Locker:       redisCache,
		Health: map[string]api.HealthCheck{
			"redis": func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
			"kafka": producer.CheckConnection,
		},
	})

	if err := bootstrap.Run(ctx, cfg, router); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func openDocumentStore(ctx context.Context, cfg *config.Config, mongoClient *mongo.Client) (repository.DocumentStore, func(), error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		store := repository.NewPGDocumentStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, pool.Close, nil
	case config.DriverMongo:
		return repository.NewMongoDocumentStore(mongoClient.Database(cfg.Database.MongoName)), func() {}, nil
	case config.DriverFirestore:
		store, err := repository.NewFirestoreDocumentStore(ctx, cfg.Database.FirestoreProject, cfg.Database.FirestoreCredentials)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				log.Printf("close firestore: %v", err)
			}
		}, nil
	default:
		log.Printf("WARNING: using in-memory document store, data is lost on restart")
		return repository.NewMemoryDocumentStore(), func() {}, nil
	}
}

func openBlobStore(cfg *config.Config, mongoClient *mongo.Client) (storage.BlobStore, error) {
	if cfg.Storage.Driver == config.StorageGridFS {
		return storage.NewGridFSStore(mongoClient.Database(cfg.Database.MongoName), cfg.Storage.PublicBaseURL), nil
	}
	return storage.NewFSStore(cfg.Storage.Dir, cfg.Storage.PublicBaseURL)
}
