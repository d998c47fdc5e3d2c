package database

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/s/courseMarket/internal/config"
)

// Connect открывает хранилище локального кэша записей.
// SQLite — файл рядом с сервисом, PostgreSQL — общий для нескольких инстансов.
func Connect(cfg *config.Config, log *slog.Logger) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	if cfg.LogLevel <= slog.LevelDebug {
		gormCfg.Logger = logger.Default.LogMode(logger.Info)
	}

	if cfg.CacheDriver == config.CacheDriverSQLite {
		db, err := gorm.Open(sqlite.Open(cfg.SQLitePath), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("открытие SQLite %s: %w", cfg.SQLitePath, err)
		}
		log.Info("Хранилище кэша открыто", slog.String("driver", "sqlite"), slog.String("path", cfg.SQLitePath))
		return db, nil
	}

	var db *gorm.DB
	var err error

	// Попытки подключения (Docker-база иногда «просыпается» пару секунд)
	for i := 0; i < 5; i++ {
		db, err = gorm.Open(postgres.Open(cfg.DatabaseURL), gormCfg)
		if err == nil {
			log.Info("Хранилище кэша открыто", slog.String("driver", "postgres"))
			return db, nil
		}

		log.Warn("Попытка подключения к БД не удалась, ждем...",
			slog.Int("attempt", i+1),
			slog.String("error", err.Error()),
		)
		time.Sleep(2 * time.Second)
	}

	return nil, fmt.Errorf("не удалось подключиться к БД после нескольких попыток: %w", err)
}
