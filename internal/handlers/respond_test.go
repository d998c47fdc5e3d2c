package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s/courseMarket/internal/models"
)

func TestNotify(t *testing.T) {
	rec := httptest.NewRecorder()
	Notify(rec, http.StatusAccepted, LevelWarning, "Запись сохранена локально", map[string]string{"status": "pending_sync"})

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	var n Notification
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&n))
	assert.True(t, n.OK, "warning is still a non-failure")
	assert.Equal(t, LevelWarning, n.Level)

	rec = httptest.NewRecorder()
	JSONError(rec, http.StatusBadRequest, "плохо")
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&n))
	assert.False(t, n.OK)
	assert.Equal(t, LevelError, n.Level)
}

func TestValidationMessage_UsesJSONNames(t *testing.T) {
	v := models.NewValidator()
	err := v.Struct(models.ReviewInput{Rating: 9})
	require.Error(t, err)

	msg := validationMessage(err)
	assert.Contains(t, msg, "rating: lte=5")
	assert.Contains(t, msg, "comment: required")
}

func TestTopReviews(t *testing.T) {
	at := func(d int) *time.Time {
		ts := time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
		return &ts
	}
	reviews := []models.Review{
		{ID: "old", Rating: 5, CreatedAt: at(1)},
		{ID: "bad", Rating: 3, CreatedAt: at(9)},
		{ID: "new", Rating: 4, CreatedAt: at(5)},
		{ID: "undated", Rating: 5},
	}

	top := topReviews(reviews, 2)
	require.Len(t, top, 2)
	assert.Equal(t, "new", top[0].ID)
	assert.Equal(t, "old", top[1].ID)

	assert.Empty(t, topReviews(nil, 6))
	assert.NotNil(t, topReviews(nil, 6))
}
