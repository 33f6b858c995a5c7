package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yungbote/daybook/internal/pkg/logger"
	"github.com/yungbote/daybook/internal/types"
	"github.com/yungbote/daybook/internal/utils"
)

type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewService opens the relational store. DB_DRIVER selects sqlite (the
// default for a single-user archive) or postgres.
func NewService(log *logger.Logger) (*Service, error) {
	serviceLog := log.With("service", "DBService")

	driver := utils.GetEnv("DB_DRIVER", "sqlite", log)
	var (
		db  *gorm.DB
		err error
	)
	switch driver {
	case "postgres":
		host := utils.GetEnv("POSTGRES_HOST", "localhost", log)
		port := utils.GetEnv("POSTGRES_PORT", "5432", log)
		user := utils.GetEnv("POSTGRES_USER", "postgres", log)
		password := utils.GetEnv("POSTGRES_PASSWORD", "", log)
		name := utils.GetEnv("POSTGRES_NAME", "daybook", log)
		dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, name)
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			DisableForeignKeyConstraintWhenMigrating: true,
		})
		if err == nil {
			err = db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error
		}
	case "sqlite":
		path := utils.GetEnv("SQLITE_PATH", "daybook.db", log)
		db, err = gorm.Open(sqlite.Open(path+"?_foreign_keys=on"), &gorm.Config{})
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", driver)
	}
	if err != nil {
		serviceLog.Error("Failed to connect to store", "driver", driver, "error", err)
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}
	serviceLog.Info("Connected to store", "driver", driver)

	return &Service{db: db, log: serviceLog}, nil
}

func (s *Service) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...")
	if err := AutoMigrate(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	return nil
}

func (s *Service) DB() *gorm.DB {
	return s.db
}

// AutoMigrate migrates every table. Shared with the test helpers.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.Entry{},

		&types.Person{},
		&types.City{},
		&types.Location{},
		&types.Event{},
		&types.Tag{},
		&types.Theme{},
		&types.Poem{},
		&types.PoemVersion{},
		&types.ReferenceSource{},
		&types.Reference{},
		&types.NarratedDate{},
		&types.Scene{},
		&types.Thread{},
		&types.Arc{},
		&types.Motif{},
		&types.MotifInstance{},

		&types.EntryPerson{},
		&types.EntryCity{},
		&types.EntryLocation{},
		&types.EntryEvent{},
		&types.EntryTag{},
		&types.EntryTheme{},
		&types.EntryNarratedDate{},
		&types.EntryPoem{},
		&types.ScenePerson{},
		&types.SceneNarratedDate{},
		&types.ThreadEntry{},
		&types.ArcEntry{},

		&types.MergeFingerprint{},
	)
}
