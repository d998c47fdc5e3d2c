package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s/courseMarket/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, 5*time.Second, 1, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestListEnrollments_SendsEmailAndDecodes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/enrollments", r.URL.Path)
		assert.Equal(t, "student@example.com", r.URL.Query().Get("email"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		writeJSON(w, http.StatusOK, []map[string]any{
			{"courseId": "1", "userEmail": "student@example.com", "progressPercent": 40},
		})
	})

	records, err := client.ListEnrollments(context.Background(), "student@example.com")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "1", records[0].CourseID)
	assert.Equal(t, 40, records[0].ProgressPercent)
}

func TestEnroll_AlreadyEnrolledIsRecognized(t *testing.T) {
	for _, msg := range []string{"Already enrolled", "User already enrolled in this course"} {
		t.Run(msg, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				var body map[string]string
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, "7", body["courseId"])
				assert.Equal(t, "student@example.com", body["userEmail"])
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
			})

			_, err := client.Enroll(context.Background(), "student@example.com", "7")
			require.Error(t, err)
			assert.True(t, IsAlreadyEnrolled(err))
		})
	}
}

func TestEnroll_OtherErrorIsNotAlreadyEnrolled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Course is closed"})
	})

	_, err := client.Enroll(context.Background(), "student@example.com", "7")
	require.Error(t, err)
	assert.False(t, IsAlreadyEnrolled(err))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Course is closed", apiErr.Message)
}

func TestNonJSONErrorBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, "<html>Cannot GET /courses/x</html>")
	})

	_, err := client.GetCourse(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Not Found", apiErr.Message)
	assert.Empty(t, apiErr.ErrorField)
}

func TestNonJSONSuccessBodyDecodesToZeroValue(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, "ok")
	})

	courses, err := client.ListCourses(context.Background())
	require.NoError(t, err)
	assert.Empty(t, courses)
}

func TestGetRetriedOnceOn5xx(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream"})
			return
		}
		writeJSON(w, http.StatusOK, []models.Course{{ID: "1", Title: "Go"}})
	})

	courses, err := client.ListCourses(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestTransportErrorsGoThroughSlog(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	var buf bytes.Buffer
	client := New(url, time.Second, 1, slog.New(slog.NewJSONHandler(&buf, nil)))

	_, err := client.ListCourses(context.Background())
	require.Error(t, err)
	assert.Contains(t, buf.String(), `"level":"ERROR"`)
	assert.Contains(t, buf.String(), `"component":"marketplace_client"`)
}

func TestWritesAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "down"})
	})

	_, err := client.Enroll(context.Background(), "student@example.com", "1")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())

	err = client.UpdateProgress(context.Background(), models.ProgressUpdate{CourseID: "1", UserEmail: "student@example.com", ProgressPercent: 10})
	require.Error(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCheckEnrollment(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/enrollments/check", r.URL.Path)
		assert.Equal(t, "3", r.URL.Query().Get("courseId"))
		writeJSON(w, http.StatusOK, map[string]bool{"enrolled": true})
	})

	ok, err := client.CheckEnrollment(context.Background(), "student@example.com", "3")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUnenroll_UsesQueryParams(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/enrollments", r.URL.Path)
		assert.Equal(t, "student@example.com", r.URL.Query().Get("email"))
		assert.Equal(t, "5", r.URL.Query().Get("courseId"))
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.Unenroll(context.Background(), "student@example.com", "5"))
}

func TestCreateCourse_KeepsInputWhenBodyEmpty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.WriteHeader(http.StatusCreated)
	})

	created, err := client.CreateCourse(context.Background(), models.Course{Title: "Go basics"})
	require.NoError(t, err)
	assert.Equal(t, "Go basics", created.Title)
}

func TestCreateCourse_ServerFieldsWin(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]any{"id": "42", "title": "Go basics"})
	})

	created, err := client.CreateCourse(context.Background(), models.Course{Title: "Go basics", Price: 10})
	require.NoError(t, err)
	assert.Equal(t, "42", created.ID)
	assert.Equal(t, float64(10), created.Price)
}

func TestFindUser(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, []models.User{
			{ID: "1", Email: "instructor@example.com", Role: "instructor"},
			{ID: "2", Email: "admin@example.com", Role: "admin"},
		})
	})

	user, err := client.FindUser(context.Background(), "ADMIN@example.com")
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Role)

	_, err = client.FindUser(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIsJSON(t *testing.T) {
	assert.True(t, isJSON("application/json"))
	assert.True(t, isJSON("application/json; charset=utf-8"))
	assert.True(t, isJSON("application/problem+json"))
	assert.False(t, isJSON("text/html"))
	assert.False(t, isJSON(""))
}
