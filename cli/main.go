package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/rogerio-castellano/inventory-shell/internal/config"
	"github.com/rogerio-castellano/inventory-shell/internal/db"
	"github.com/rogerio-castellano/inventory-shell/internal/logger"
	"github.com/rogerio-castellano/inventory-shell/internal/redissvc"
	"github.com/rogerio-castellano/inventory-shell/internal/repo"
	"github.com/rogerio-castellano/inventory-shell/internal/shell"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		log := logger.New(config.Log{Level: "error", Pretty: true})
		log.Error().Err(err).Msg("invalid configuration")
		return 1
	}
	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	products, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Str("driver", cfg.Store.Driver).Msg("could not connect to store")
		return 1
	}
	defer closeStore()

	if cfg.Redis.Addr != "" {
		rdb, err := db.ConnectRedis(ctx, cfg.Redis.Addr)
		if err != nil {
			log.Error().Err(err).Msg("could not connect to redis")
			return 1
		}
		defer rdb.Close()
		products = repo.NewCachedProductRepository(products, redissvc.NewRedisService(rdb, cfg.Redis.TTL), log)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("report cache enabled")
	}

	mode, err := repo.ParseUpdateMode(cfg.Store.UpdateMode)
	if err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		return 1
	}

	sh := shell.New(products, os.Stdin, os.Stdout, log, shell.Settings{
		Timeout:    cfg.Store.Timeout,
		UpdateMode: mode,
	})
	if err := sh.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Info().Msg("interrupted")
			return 0
		}
		log.Error().Err(err).Msg("session ended with error")
		return 1
	}
	return 0
}

// openStore connects to the configured backend. The returned func releases
// the connection.
func openStore(ctx context.Context, cfg config.Config, log zerolog.Logger) (repo.ProductRepository, func(), error) {
	switch cfg.Store.Driver {
	case config.DriverMongo:
		client, err := db.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Warn().Err(err).Msg("mongo disconnect failed")
				return
			}
			log.Debug().Msg("mongo connection closed")
		}

		r := repo.NewMongoProductRepository(client.Database(cfg.Store.Database).Collection(cfg.Store.Collection))
		ictx, cancel := context.WithTimeout(ctx, cfg.Store.Timeout)
		defer cancel()
		if index, err := r.EnsureIndexes(ictx); err != nil {
			log.Warn().Err(err).Msg("could not ensure indexes")
		} else {
			log.Debug().Str("index", index).Msg("index ready")
		}
		log.Info().Str("database", cfg.Store.Database).Str("collection", cfg.Store.Collection).Msg("connected to mongo")
		return r, closeFn, nil

	case config.DriverPostgres:
		database, err := db.ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := database.Close(); err != nil {
				log.Warn().Err(err).Msg("postgres close failed")
			}
		}

		r := repo.NewPostgresProductRepository(database)
		sctx, cancel := context.WithTimeout(ctx, cfg.Store.Timeout)
		defer cancel()
		if err := r.EnsureSchema(sctx); err != nil {
			closeFn()
			return nil, nil, err
		}
		log.Info().Msg("connected to postgres")
		return r, closeFn, nil

	default:
		log.Warn().Msg("using in-memory store, data is lost on exit")
		return repo.NewInMemoryProductRepository(), func() {}, nil
	}
}
