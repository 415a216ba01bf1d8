// Package adapters selects and assembles the configured reading source.
package adapters

import (
	"context"

	"glucosedash/internal/adapters/mongodb"
	"glucosedash/internal/adapters/sheet"
	"glucosedash/internal/cache"
	"glucosedash/internal/config"
	"glucosedash/internal/ports"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// NewReadingSource builds the sheet or mongo source named by cfg.Source.Type,
// wrapped in the Redis cache when one is configured. The returned close
// function releases every connection that was opened.
func NewReadingSource(ctx context.Context, log *zap.SugaredLogger, cfg *config.Config) (ports.ReadingSource, func(context.Context), error) {
	var (
		source  ports.ReadingSource
		closers []func(context.Context)
	)
	closeAll := func(ctx context.Context) {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i](ctx)
		}
	}

	switch cfg.Source.Type {
	case config.SourceMongo:
		mongoDB, err := mongodb.NewMongoDB(ctx, cfg.Mongo.URI, cfg.Mongo.Name)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func(ctx context.Context) {
			if err := mongoDB.Close(ctx); err != nil {
				log.Warnw("failed to disconnect from MongoDB", "error", err)
			}
		})
		source = mongodb.NewReadingRepository(mongoDB)
		log.Infow("using mongo reading source", "database", cfg.Mongo.Name)
	case config.SourceSheet:
		source = sheet.NewClient(log, sheet.ClientOptions{
			URL:           cfg.Source.CSVURL,
			Timeout:       cfg.Source.Timeout,
			RatePerMinute: cfg.Source.RatePerMinute,
			DateLayout:    cfg.Source.DateLayout,
			Location:      cfg.Source.Location(),
		})
		log.Infow("using sheet reading source", "url", cfg.Source.CSVURL)
	default:
		return nil, nil, errors.Errorf("unknown source type %q", cfg.Source.Type)
	}

	if cfg.Redis.Enabled() {
		client, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			closeAll(ctx)
			return nil, nil, err
		}
		closers = append(closers, func(context.Context) {
			if err := client.Close(); err != nil {
				log.Warnw("failed to close Redis client", "error", err)
			}
		})
		source = cache.NewCachedSource(log, client, source, cfg.Redis.Key, cfg.Redis.TTL)
		log.Infow("reading cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.TTL)
	}

	return source, closeAll, nil
}
