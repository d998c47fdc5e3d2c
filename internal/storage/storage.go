// Пакет storage — долговременное хранилище ключ/значение.
// Заменяет localStorage браузера: значения — JSON, без версионирования схемы.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound — ключ отсутствует в хранилище.
var ErrNotFound = errors.New("ключ не найден")

// KV — минимальный интерфейс хранилища, чтобы технологию можно было подменить
// (gorm в проде, память в тестах).
type KV interface {
	// Get возвращает значение ключа или ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set создаёт или перезаписывает значение ключа.
	Set(ctx context.Context, key string, value []byte) error
	// Remove удаляет ключ. Отсутствующий ключ — не ошибка.
	Remove(ctx context.Context, key string) error
}
