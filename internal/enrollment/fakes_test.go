package enrollment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/s/courseMarket/internal/marketplace"
	"github.com/s/courseMarket/internal/models"
	"github.com/s/courseMarket/internal/storage"
)

var errBackendDown = errors.New("connection refused")

// fakeBackend — бэкенд в памяти, каждое поле задаёт ответ одного эндпоинта.
type fakeBackend struct {
	mu sync.Mutex

	records     []models.EnrollmentRecord
	listErr     error
	catalog     []models.Course
	catalogErr  error
	enrollErr   error
	unenrollErr error
	progressErr error
	checked     bool
	checkErr    error

	enrollCalls   int
	unenrollCalls int
	catalogCalls  int
	progressSent  []models.ProgressUpdate
}

func (f *fakeBackend) ListEnrollments(_ context.Context, _ string) ([]models.EnrollmentRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return slices.Clone(f.records), nil
}

func (f *fakeBackend) Enroll(_ context.Context, email, courseID string) (*models.EnrollmentRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enrollCalls++
	if f.enrollErr != nil {
		return nil, f.enrollErr
	}
	return &models.EnrollmentRecord{CourseID: courseID, UserEmail: email}, nil
}

func (f *fakeBackend) Unenroll(_ context.Context, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unenrollCalls++
	return f.unenrollErr
}

func (f *fakeBackend) CheckEnrollment(_ context.Context, _, _ string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.checked, f.checkErr
}

func (f *fakeBackend) UpdateProgress(_ context.Context, update models.ProgressUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.progressSent = append(f.progressSent, update)
	return f.progressErr
}

func (f *fakeBackend) ListCourses(_ context.Context) ([]models.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.catalogCalls++
	if f.catalogErr != nil {
		return nil, f.catalogErr
	}
	return slices.Clone(f.catalog), nil
}

// brokenKV — хранилище, которое всегда падает.
type brokenKV struct{}

func (brokenKV) Get(context.Context, string) ([]byte, error) { return nil, errors.New("disk full") }
func (brokenKV) Set(context.Context, string, []byte) error   { return errors.New("disk full") }
func (brokenKV) Remove(context.Context, string) error        { return errors.New("disk full") }

// flakyKV — хранилище в памяти, чей Get падает заданное число раз.
type flakyKV struct {
	*storage.MemoryKV
	mu       sync.Mutex
	getFails int
}

func (f *flakyKV) failNextGets(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getFails = n
}

func (f *flakyKV) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	if f.getFails > 0 {
		f.getFails--
		f.mu.Unlock()
		return nil, errors.New("database is locked")
	}
	f.mu.Unlock()
	return f.MemoryKV.Get(ctx, key)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func alreadyEnrolled(msg string) error {
	return &marketplace.APIError{StatusCode: 400, ErrorField: msg, Message: msg}
}

type fixture struct {
	backend *fakeBackend
	kv      *storage.MemoryKV
	cache   *LocalCache
	views   *Views
	rec     *Reconciler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		backend: &fakeBackend{},
		kv:      storage.NewMemoryKV(),
		views:   NewViews(16, time.Minute),
	}
	f.cache = NewLocalCache(f.kv, discardLogger())
	f.rec = NewReconciler(f.backend, f.cache, f.views, models.NewValidator(), discardLogger())
	return f
}

func catalog(ids ...string) []models.Course {
	out := make([]models.Course, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.Course{ID: id, Title: "Курс " + id})
	}
	return out
}
