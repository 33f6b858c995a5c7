package app

import (
	"time"

	"github.com/yungbote/daybook/internal/pkg/logger"
	"github.com/yungbote/daybook/internal/utils"
)

type Config struct {
	Port string

	// SweepGrace is how long a tombstoned entity is kept before the
	// sweeper may purge it.
	SweepGrace time.Duration

	// ReconcileParallelism bounds concurrent entry reconciliations in
	// batch ingestion.
	ReconcileParallelism int

	RedisAddr    string
	AggregateTTL time.Duration
	OtelService  string
	OtelVersion  string
	Environment  string
}

func LoadConfig(log *logger.Logger) Config {
	graceHours := utils.GetEnvAsInt("SWEEP_GRACE_HOURS", 72, log)
	aggTTLSeconds := utils.GetEnvAsInt("AGGREGATE_CACHE_TTL", 300, log)
	return Config{
		Port:                 utils.GetEnv("PORT", "8080", log),
		SweepGrace:           time.Duration(graceHours) * time.Hour,
		ReconcileParallelism: utils.GetEnvAsInt("RECONCILE_PARALLELISM", 4, log),
		RedisAddr:            utils.GetEnv("REDIS_ADDR", "", log),
		AggregateTTL:         time.Duration(aggTTLSeconds) * time.Second,
		OtelService:          utils.GetEnv("OTEL_SERVICE_NAME", "daybook", log),
		OtelVersion:          utils.GetEnv("SERVICE_VERSION", "dev", log),
		Environment:          utils.GetEnv("ENVIRONMENT", "development", log),
	}
}
