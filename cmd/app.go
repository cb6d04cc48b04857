package cmd

import (
	"context"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"perpus/api"
	"perpus/catalog"
	"perpus/circulation"
	"perpus/clock"
	"perpus/config"
	"perpus/events"
	"perpus/log"
	"perpus/repository"
	"perpus/report"
)

// app holds the wired services of one process.
type app struct {
	cfg         config.Config
	db          *gorm.DB
	redis       *redis.Client
	clock       clock.Clock
	borrowings  repository.BorrowingRepository
	books       *catalog.Books
	inventory   *catalog.Inventory
	coordinator *circulation.Coordinator
	reports     *report.Service
	listener    *events.Listener
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	logger := log.GetLogger(ctx)
	clk, err := clock.Load(cfg.Report.Timezone)
	if err != nil {
		return nil, err
	}
	db, err := repository.InitDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, db: db, clock: clk}
	bookRepo := repository.NewBookRepo(db)
	a.borrowings = repository.NewBorrowingRepo(db)
	inventoryRepo := repository.NewInventoryRepo(db)

	cache := report.NoCache()
	publisher := events.Nop()
	if cfg.Redis.Enabled {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err = a.redis.Ping(ctx).Err(); err != nil {
			a.close()
			return nil, err
		}
		cache = report.NewRedisCache(a.redis, cfg.Report.CacheTTL)
		publisher = events.NewRedisPublisher(a.redis)
	}
	a.reports = report.NewService(bookRepo, a.borrowings, inventoryRepo, clk, cache)
	// Local invalidation keeps this process consistent even when the
	// broadcast is lost; the listener covers the other instances.
	publisher = events.Fanout(events.PublisherFunc(a.reports.Handle), publisher)
	if a.redis != nil {
		a.listener = events.NewListener(a.redis, events.LogHandler, a.reports.Handle)
	}

	var scope repository.Scope
	if cfg.Workflow.Transactional {
		scope = repository.NewTxScope(db)
	} else {
		logger.Warnln("workflow runs without transactions, failures are undone by compensation")
		scope = repository.NewDirectScope(repository.Stores{Books: bookRepo, Borrowings: a.borrowings})
	}

	a.books = catalog.NewBooks(bookRepo, scope, publisher)
	a.inventory = catalog.NewInventory(inventoryRepo, publisher)
	a.coordinator = circulation.NewCoordinator(scope, clk, publisher)
	return a, nil
}

func (a *app) handler() *api.Handler {
	return api.NewHandler(a.books, a.inventory, a.coordinator, a.borrowings, a.reports, a.clock)
}

func (a *app) close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
