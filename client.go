package recipe

import (
	"context"
	"errors"
	"io"

	"github.com/emrgen/recipe/internal/cache"
	"github.com/emrgen/recipe/internal/config"
	"github.com/emrgen/recipe/internal/jobs"
	"github.com/emrgen/recipe/internal/partition"
	"github.com/emrgen/recipe/internal/queue"
	"github.com/emrgen/recipe/internal/service"
	"github.com/emrgen/recipe/internal/store"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Client interface {
	io.Closer
	Recipes() *service.RecipeService
	// Migrate creates the sentinel partition.
	Migrate(ctx context.Context) error
	Janitor() *jobs.PartitionJanitor
}

type client struct {
	cnf     *config.Config
	db      *gorm.DB
	namer   partition.Namer
	dir     *partition.GormDirectory
	store   *store.GormStore
	recipes *service.RecipeService
	closers []io.Closer
}

// NewClient opens the database and the optional redis and kafka connections
// described by cnf.
func NewClient(cnf *config.Config) (Client, error) {
	db, err := config.GetDb(cnf)
	if err != nil {
		return nil, err
	}

	c := &client{
		cnf:   cnf,
		db:    db,
		namer: cnf.Namer(),
		store: store.NewGormStore(db),
	}
	c.dir = partition.NewGormDirectory(db, c.namer)

	opts := []service.Option{service.WithFanOut(cnf.Partition.FanOut)}

	if cnf.LocationHints {
		hints := cache.NewRedisLocationCache(cnf.Redis.Addr, cnf.Redis.Password, cnf.Redis.DB, cnf.Redis.TTL)
		if err := hints.Ping(context.Background()); err != nil {
			logrus.Warnf("redis at %s is not reachable, location hints disabled: %v", cnf.Redis.Addr, err)
			_ = hints.Close()
		} else {
			c.closers = append(c.closers, hints)
			opts = append(opts, service.WithLocationCache(hints))
		}
	}

	if cnf.Kafka.Brokers != "" {
		q, err := queue.NewKafkaQueue(cnf.Kafka.Brokers, cnf.Kafka.Topic)
		if err != nil {
			_ = c.Close()
			return nil, err
		}
		c.closers = append(c.closers, q)
		opts = append(opts, service.WithQueue(q))
	}

	c.recipes = service.NewRecipeService(c.namer, c.dir, c.store, opts...)

	return c, nil
}

func (c *client) Recipes() *service.RecipeService {
	return c.recipes
}

func (c *client) Migrate(ctx context.Context) error {
	return c.store.Migrate(ctx, c.namer.Name(c.namer.Sentinel()))
}

func (c *client) Janitor() *jobs.PartitionJanitor {
	return jobs.NewPartitionJanitor(c.namer, c.dir, c.cnf.JanitorSchedule)
}

func (c *client) Close() error {
	var errs []error
	for _, closer := range c.closers {
		errs = append(errs, closer.Close())
	}
	if sqlDB, err := c.db.DB(); err == nil {
		errs = append(errs, sqlDB.Close())
	}

	return errors.Join(errs...)
}
