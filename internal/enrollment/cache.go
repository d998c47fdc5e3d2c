// Пакет enrollment — согласование записей на курсы между бэкендом
// и локальным кэшем (бывший localStorage браузера).
package enrollment

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"slices"

	"github.com/s/courseMarket/internal/storage"
)

// cacheKeyPrefix — формат ключа "enrollments:<userEmail>" сохранён как есть.
const cacheKeyPrefix = "enrollments:"

func cacheKey(email string) string {
	return cacheKeyPrefix + email
}

// LocalCache — долговременный список id курсов, на которые пользователь,
// по мнению клиента, записан. Не синхронизируется с бэкендом.
//
// Все операции глотают ошибки хранилища: кэш не на критическом пути и
// не должен блокировать основное действие. Ошибки только логируются.
// Блокировок между процессами нет — последняя запись побеждает.
type LocalCache struct {
	kv     storage.KV
	logger *slog.Logger
}

func NewLocalCache(kv storage.KV, logger *slog.Logger) *LocalCache {
	return &LocalCache{
		kv:     kv,
		logger: logger.With(slog.String("component", "local_enrollment_cache")),
	}
}

// Add идемпотентно добавляет courseID в набор пользователя и сразу сохраняет.
func (c *LocalCache) Add(ctx context.Context, email, courseID string) {
	if email == "" || courseID == "" {
		return
	}
	ids, state := c.read(ctx, email)
	switch state {
	case readFailed:
		// Хранилище недоступно: не затираем то, что там лежит
		return
	case readCorrupt:
		// Нечитаемое значение перезаписываем с нуля
		ids = nil
	}
	if slices.Contains(ids, courseID) {
		return
	}
	c.write(ctx, email, append(ids, courseID), "add")
}

// Remove идемпотентно удаляет courseID из набора пользователя.
func (c *LocalCache) Remove(ctx context.Context, email, courseID string) {
	if email == "" || courseID == "" {
		return
	}
	ids, state := c.read(ctx, email)
	if state != readOK || !slices.Contains(ids, courseID) {
		return
	}
	ids = slices.DeleteFunc(ids, func(id string) bool { return id == courseID })
	c.write(ctx, email, ids, "remove")
}

// List возвращает id курсов в порядке добавления; пустой срез, если нет ничего.
func (c *LocalCache) List(ctx context.Context, email string) []string {
	if email == "" {
		return []string{}
	}
	ids, state := c.read(ctx, email)
	if state != readOK || ids == nil {
		return []string{}
	}
	return ids
}

// Contains — есть ли courseID в кэше пользователя.
func (c *LocalCache) Contains(ctx context.Context, email, courseID string) bool {
	return slices.Contains(c.List(ctx, email), courseID)
}

type readState int

const (
	readOK      readState = iota // значение прочитано или ключа нет
	readFailed                   // ошибка хранилища
	readCorrupt                  // битый JSON
)

func (c *LocalCache) read(ctx context.Context, email string) ([]string, readState) {
	raw, err := c.kv.Get(ctx, cacheKey(email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, readOK
		}
		localCacheErrors.WithLabelValues("read").Inc()
		c.logger.Warn("Не удалось прочитать локальный кэш записей",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
		return nil, readFailed
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		localCacheErrors.WithLabelValues("decode").Inc()
		c.logger.Warn("Локальный кэш записей повреждён",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
		return nil, readCorrupt
	}
	return dedupe(ids), readOK
}

func (c *LocalCache) write(ctx context.Context, email string, ids []string, op string) {
	if ids == nil {
		ids = []string{}
	}
	raw, err := json.Marshal(ids)
	if err == nil {
		err = c.kv.Set(ctx, cacheKey(email), raw)
	}
	if err != nil {
		localCacheErrors.WithLabelValues(op).Inc()
		c.logger.Warn("Не удалось сохранить локальный кэш записей",
			slog.String("email", email),
			slog.String("op", op),
			slog.String("error", err.Error()),
		)
	}
}

// dedupe убирает повторы, сохраняя порядок первого появления.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
