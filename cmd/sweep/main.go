// One-shot sweep pass, meant for cron. Tombstones zero-reference
// entities and purges tombstones older than SWEEP_GRACE_HOURS.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/yungbote/daybook/internal/app"
	"github.com/yungbote/daybook/internal/data/repos"
	"github.com/yungbote/daybook/internal/db"
	"github.com/yungbote/daybook/internal/pkg/logger"
	"github.com/yungbote/daybook/internal/sweeper"
)

func main() {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg := app.LoadConfig(log)

	dbService, err := db.NewService(log)
	if err != nil {
		log.Error("Store init failed", "error", err)
		os.Exit(1)
	}
	conn := dbService.DB()

	set := repos.NewSet(conn, log)
	sw := sweeper.New(conn, set, cfg.SweepGrace, log)

	result, err := sw.Sweep(context.Background())
	if err != nil {
		log.Error("Sweep failed", "error", err)
		os.Exit(1)
	}

	tombstoned, purged := 0, 0
	for _, n := range result.Tombstoned {
		tombstoned += n
	}
	for _, n := range result.Purged {
		purged += n
	}
	log.Info("Sweep finished",
		"tombstoned", tombstoned,
		"purged", purged,
		"skipped", result.Skipped,
		"grace", cfg.SweepGrace.String(),
	)
}
