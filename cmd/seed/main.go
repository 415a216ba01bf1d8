package main

import (
	"context"
	"flag"
	"math"
	"math/rand"
	"time"

	"glucosedash/internal/adapters/mongodb"
	"glucosedash/internal/cache"
	"glucosedash/internal/config"
	"glucosedash/internal/domain"

	"go.uber.org/zap"
)

// slot is one routine measurement of the day and its typical value.
type slot struct {
	clock    string
	hour     int
	minute   int
	period   string
	baseline float64
}

var slots = []slot{
	{"07:00", 7, 0, "Jejum", 100},
	{"09:30", 9, 30, "Após café", 150},
	{"12:00", 12, 0, "Antes do almoço", 105},
	{"14:00", 14, 0, "Após almoço", 165},
	{"18:30", 18, 30, "Antes do jantar", 110},
	{"20:30", 20, 30, "Após jantar", 170},
	{"03:00", 3, 0, "Madrugada", 90},
}

func main() {
	days := flag.Int("days", 30, "number of past days to generate")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	flag.Parse()

	ctx := context.Background()

	logger, _ := zap.NewProduction()
	log := logger.Sugar()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalw("failed to load config", "error", err)
	}

	mongoDB, err := mongodb.NewMongoDB(ctx, cfg.Mongo.URI, cfg.Mongo.Name)
	if err != nil {
		log.Fatalw("failed to connect to MongoDB", "error", err)
	}
	defer mongoDB.Close(ctx)

	err = mongodb.SetUpCollections(ctx, mongoDB.Database)
	if err != nil {
		log.Fatalw("failed to set up collections", "error", err)
	}

	readingRepo := mongodb.NewReadingRepository(mongoDB)

	rng := rand.New(rand.NewSource(*seed))
	loc := cfg.Source.Location()
	today := time.Now().In(loc)
	startDate := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, -*days)

	readings := make([]domain.Reading, 0, *days*len(slots))
	for day := 0; day < *days; day++ {
		date := startDate.AddDate(0, 0, day)
		for _, s := range slots {
			// Skip roughly one measurement in six, as real logs have gaps.
			if rng.Intn(6) == 0 {
				continue
			}
			readings = append(readings, domain.Reading{
				Date:    date,
				Time:    s.clock,
				Period:  s.period,
				Glucose: syntheticGlucose(rng, s.baseline),
			})
		}
	}

	saved, err := readingRepo.SaveReadings(ctx, readings)
	if err != nil {
		log.Fatalw("failed to save readings", "error", err)
	}

	log.Infow("seeded readings", "days", *days, "saved", saved)

	if cfg.Redis.Enabled() {
		client, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalw("failed to connect to Redis", "error", err)
		}
		defer client.Close()

		cached := cache.NewCachedSource(log, client, readingRepo, cfg.Redis.Key, cfg.Redis.TTL)
		if err := cached.Invalidate(ctx); err != nil {
			log.Fatalw("failed to invalidate reading cache", "error", err)
		}
		log.Infow("invalidated reading cache", "key", cfg.Redis.Key)
	}
}

func syntheticGlucose(rng *rand.Rand, baseline float64) float64 {
	v := baseline + rng.NormFloat64()*25
	return math.Max(45, math.Round(v))
}
