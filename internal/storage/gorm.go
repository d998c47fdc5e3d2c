package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/s/courseMarket/internal/models"
)

// GormKV — хранилище поверх таблицы kv_entries (SQLite или PostgreSQL).
type GormKV struct {
	db *gorm.DB
}

func NewGormKV(db *gorm.DB) *GormKV {
	return &GormKV{db: db}
}

func (s *GormKV) Get(ctx context.Context, key string) ([]byte, error) {
	var entry models.KVEntry
	err := s.db.WithContext(ctx).Where(map[string]interface{}{"key": key}).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("чтение ключа %q: %w", key, err)
	}
	return []byte(entry.Value), nil
}

// Set ищет запись по ключу: если нашли — обновляем значение, иначе создаём.
func (s *GormKV) Set(ctx context.Context, key string, value []byte) error {
	db := s.db.WithContext(ctx)

	var existing models.KVEntry
	result := db.Where(map[string]interface{}{"key": key}).First(&existing)

	switch {
	case result.Error == nil:
		// --- Запись есть: обновляем ---
		err := db.Model(&existing).Updates(map[string]interface{}{
			"value":      datatypes.JSON(value),
			"updated_at": time.Now().UTC(),
		}).Error
		if err != nil {
			return fmt.Errorf("обновление ключа %q: %w", key, err)
		}
		return nil

	case errors.Is(result.Error, gorm.ErrRecordNotFound):
		// --- Записи нет: создаём ---
		entry := models.KVEntry{Key: key, Value: datatypes.JSON(value), UpdatedAt: time.Now().UTC()}
		if err := db.Create(&entry).Error; err != nil {
			return fmt.Errorf("создание ключа %q: %w", key, err)
		}
		return nil

	default:
		return fmt.Errorf("чтение ключа %q: %w", key, result.Error)
	}
}

func (s *GormKV) Remove(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where(map[string]interface{}{"key": key}).Delete(&models.KVEntry{}).Error; err != nil {
		return fmt.Errorf("удаление ключа %q: %w", key, err)
	}
	return nil
}
