package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"vintagefeed/internal/catalog"
	"vintagefeed/internal/config"
	"vintagefeed/internal/crawler"
	"vintagefeed/internal/db"
	"vintagefeed/internal/ingest"
	"vintagefeed/internal/lock"
	"vintagefeed/internal/migration"
	"vintagefeed/internal/model"
	"vintagefeed/internal/observability"
	"vintagefeed/internal/repository"
)

// go run ./cmd/ingest
// go run ./cmd/ingest -migrate -store=golden-age
// go run ./cmd/ingest -list=golden-age
func main() {
	storeKey := flag.String("store", "", "sync only the store with this slug or name")
	migrate := flag.Bool("migrate", false, "run database migrations before syncing")
	listSlug := flag.String("list", "", "print the classified catalog of a store and exit")
	flag.Parse()

	cfg := config.Load()
	log, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := openRepository(ctx, cfg, *migrate, log)
	if err != nil {
		log.Fatal("open catalog database", zap.Error(err))
	}
	defer closeRepo()

	locker, closeLocker := newLocker(ctx, cfg, log)
	defer closeLocker()

	svc := catalog.NewService(repo, locker, log)
	out := json.NewEncoder(os.Stdout)

	if *listSlug != "" {
		products, err := svc.ListClassified(ctx, *listSlug)
		if err != nil {
			log.Fatal("list catalog", zap.String("slug", *listSlug), zap.Error(err))
		}
		for _, p := range products {
			_ = out.Encode(p)
		}
		return
	}

	stores, err := config.LoadStores(cfg.StoresFile)
	if err != nil {
		log.Fatal("load stores", zap.String("file", cfg.StoresFile), zap.Error(err))
	}
	if *storeKey != "" {
		s, ok := config.FindStore(stores, *storeKey)
		if !ok {
			log.Fatal("store not configured", zap.String("store", *storeKey))
		}
		stores = []model.StoreConfig{s}
	}

	observability.Start(cfg.MetricsPort, log)

	runner := ingest.NewRunner(svc, crawler.Options{Timeout: cfg.FeedTimeout}, log, cfg.WorkerCount)
	log.Info("ingest started", zap.Int("stores", len(stores)), zap.Int("workers", cfg.WorkerCount))
	reports := runner.SyncAll(ctx, stores)
	for _, rep := range reports {
		_ = out.Encode(rep)
	}
	log.Info("ingest finished", zap.Int("stores", len(reports)))

	if ingest.Failed(reports) {
		_ = log.Sync()
		os.Exit(1)
	}
}

func openRepository(ctx context.Context, cfg *config.Config, migrate bool, log *zap.Logger) (repository.CatalogRepository, func(), error) {
	if db.IsSQLite(cfg.DatabaseURL) {
		conn, err := db.OpenSQLite(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if migrate {
			log.Info("sqlite schema is applied on open; nothing to migrate")
		}
		return repository.NewSQLCatalogRepository(conn), func() { _ = conn.Close() }, nil
	}

	if migrate {
		sqlDB, err := db.New(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		err = migration.Run(sqlDB)
		_ = sqlDB.Close()
		if err != nil {
			return nil, nil, err
		}
		log.Info("migrations applied")
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return &repository.PgCatalogRepository{DB: pool}, pool.Close, nil
}

func newLocker(ctx context.Context, cfg *config.Config, log *zap.Logger) (lock.Locker, func()) {
	if cfg.RedisURL == "" {
		return lock.NewLocalLocker(), func() {}
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatal("parse REDIS_URL", zap.Error(err))
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal("ping redis", zap.Error(err))
	}
	return lock.NewRedisLocker(client, cfg.SyncLockTTL), func() { _ = client.Close() }
}
