package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/s/courseMarket/internal/marketplace"
	"github.com/s/courseMarket/internal/models"
)

// Уровни уведомления (toast) для SPA
const (
	LevelSuccess = "success"
	LevelWarning = "warning"
	LevelError   = "error"
)

const maxBodyBytes = 1 << 20

// Notification — ответ мутирующих ручек, SPA показывает его как toast.
type Notification struct {
	OK      bool   `json:"ok"`
	Level   string `json:"level"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Не удалось записать JSON-ответ", slog.String("error", err.Error()))
	}
}

func Notify(w http.ResponseWriter, status int, level, message string, data any) {
	WriteJSON(w, status, Notification{
		OK:      level != LevelError,
		Level:   level,
		Message: message,
		Data:    data,
	})
}

func JSONError(w http.ResponseWriter, status int, message string) {
	Notify(w, status, LevelError, message, nil)
}

// UpstreamError переводит ошибку бэкенда в ответ: 404 остаётся 404,
// остальное — 502 с сообщением о сбое загрузки.
func (h *Handler) UpstreamError(w http.ResponseWriter, err error, message string) {
	if marketplace.IsNotFound(err) {
		JSONError(w, http.StatusNotFound, "Не найдено")
		return
	}
	h.Logger.Warn(message, slog.String("error", err.Error()))
	JSONError(w, http.StatusBadGateway, message)
}

// DecodeJSON читает тело запроса в dst и прогоняет его через валидатор.
// Ошибку можно сразу отдавать клиенту через BadRequest.
func (h *Handler) DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return errors.New("Некорректный JSON")
	}
	if err := h.Validate.Struct(dst); err != nil {
		return errors.New(validationMessage(err))
	}
	return nil
}

// validationMessage собирает ошибки валидатора в одну строку вида
// "rating: gte=1; comment: required".
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field(), rule))
	}
	return "Ошибка валидации: " + strings.Join(parts, "; ")
}

// nonNil — пустой срез вместо null в JSON.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// topReviews — не больше limit отзывов с оценкой от 4, сначала новые.
func topReviews(reviews []models.Review, limit int) []models.Review {
	out := make([]models.Review, 0, limit)
	for _, rv := range reviews {
		if rv.Rating >= 4 {
			out = append(out, rv)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].CreatedAt, out[j].CreatedAt
		if a == nil || b == nil {
			return a != nil
		}
		return a.After(*b)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
