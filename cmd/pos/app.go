package main

import (
	"context"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"syntra-pos/config"
	"syntra-pos/internal/database"
	"syntra-pos/internal/events"
	"syntra-pos/internal/gateway/health"
	cashHandler "syntra-pos/internal/services/cash/handler"
	catalogHandler "syntra-pos/internal/services/catalog/handler"
	inventoryHandler "syntra-pos/internal/services/inventory/handler"
	posHandler "syntra-pos/internal/services/pos/handler"
	tablesHandler "syntra-pos/internal/services/tables/handler"
	"syntra-pos/internal/store"
	"syntra-pos/internal/store/memory"
	"syntra-pos/internal/store/postgres"
)

type services struct {
	store     store.Store
	catalog   *catalogHandler.CatalogHandler
	cash      *cashHandler.CashHandler
	inventory *inventoryHandler.InventoryHandler
	tables    *tablesHandler.TablesHandler
	pos       *posHandler.POSHandler
	monitor   *health.Monitor
}

// buildServices wires every service over st. A nil redis client falls back to
// log-only events and an uncached catalog.
func buildServices(cfg config.Config, st store.Store, rdb *redis.Client) *services {
	var (
		cache     catalogHandler.Cache = catalogHandler.NopCache{}
		publisher events.Publisher     = events.LogPublisher{}
		printer   events.Printer       = events.LogPrinter{}
	)

	monitor := health.NewMonitor()
	monitor.Add("store", st)
	if rdb != nil {
		cache = catalogHandler.NewRedisCache(rdb)
		publisher = events.NewRedisPublisher(rdb)
		printer = events.NewRedisPrinter(rdb)
		monitor.Add("redis", health.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}))
	}

	s := &services{
		store:     st,
		catalog:   catalogHandler.NewCatalogHandler(st, cache, cfg.POS.CatalogCacheTTL),
		cash:      cashHandler.NewCashHandler(st),
		inventory: inventoryHandler.NewInventoryHandler(st),
		tables:    tablesHandler.NewTablesHandler(st),
		monitor:   monitor,
	}
	s.pos = posHandler.NewPOSHandler(posHandler.Deps{
		Store:         st,
		Catalog:       s.catalog,
		Stock:         s.inventory,
		Shifts:        s.cash,
		Publisher:     publisher,
		Printer:       printer,
		AutoOpenShift: cfg.POS.AutoOpenShift,
	})
	return s
}

// openStore returns the configured store and a cleanup func.
func openStore(cfg config.Config, inMemory, demo bool) (store.Store, func(), error) {
	if inMemory {
		st := memory.New()
		if demo {
			seedDemo(st)
		}
		log.Warn("using in-memory store, data is lost on exit")
		return st, func() {}, nil
	}

	if cfg.DB.DSN == "" {
		return nil, nil, errors.New("POS_DSN is not set")
	}
	db, err := database.NewConnection(cfg.DB.DSN)
	if err != nil {
		return nil, nil, err
	}
	if err := database.MigratePOSDB(db); err != nil {
		return nil, nil, errors.Wrap(err, "failed to migrate POS database")
	}
	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return postgres.New(db), cleanup, nil
}

// openRedis connects to redis. In memory mode an unreachable redis is tolerated.
func openRedis(ctx context.Context, cfg config.Config, optional bool) (*redis.Client, error) {
	rdb, err := config.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		if optional {
			log.WithError(err).Warn("redis unavailable, events are logged only")
			return nil, nil
		}
		return nil, err
	}
	return rdb, nil
}
