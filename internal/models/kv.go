package models

import (
	"time"

	"gorm.io/datatypes"
)

// KVEntry — строка долговременного хранилища ключ/значение
// (замена localStorage браузера, ключи вида "enrollments:<email>").
type KVEntry struct {
	Key       string         `gorm:"primaryKey;size:320"`
	Value     datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}

func (KVEntry) TableName() string {
	return "kv_entries"
}
