package enrollment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/s/courseMarket/internal/marketplace"
	"github.com/s/courseMarket/internal/models"
)

var (
	// ErrInvalidInput — пустой email или id курса.
	ErrInvalidInput = errors.New("не указан пользователь или курс")
	// ErrInvalidProgress — прогресс вне диапазона 0-100, запрос не отправлялся.
	ErrInvalidProgress = errors.New("прогресс должен быть от 0 до 100")
)

// Source — откуда взят список "Мои курсы".
type Source string

const (
	SourceServer Source = "server"
	SourceLocal  Source = "local"
)

// Status — итог записи на курс, который видит пользователь.
type Status string

const (
	StatusEnrolled        Status = "enrolled"
	StatusAlreadyEnrolled Status = "already_enrolled"
	// StatusPendingSync — бэкенд отказал, запись сохранена только локально.
	StatusPendingSync Status = "pending_sync"
)

// Backend — то, что нужно согласователю от REST-бэкенда.
// Реализуется *marketplace.Client.
type Backend interface {
	ListEnrollments(ctx context.Context, email string) ([]models.EnrollmentRecord, error)
	Enroll(ctx context.Context, email, courseID string) (*models.EnrollmentRecord, error)
	Unenroll(ctx context.Context, email, courseID string) error
	CheckEnrollment(ctx context.Context, email, courseID string) (bool, error)
	UpdateProgress(ctx context.Context, update models.ProgressUpdate) error
	ListCourses(ctx context.Context) ([]models.Course, error)
}

// Resolution — итоговый список "Мои курсы".
// При Source == server заполнен Records (как вернул бэкенд),
// при Source == local — Courses (id из кэша, найденные в каталоге).
type Resolution struct {
	Source  Source
	Records []models.EnrollmentRecord
	Courses []models.Course
}

// MarshalJSON отдаёт только поле своего источника и всегда массивом:
// {"source":"server","records":[...]} или {"source":"local","courses":[...]}.
func (r Resolution) MarshalJSON() ([]byte, error) {
	if r.Source == SourceServer {
		records := r.Records
		if records == nil {
			records = []models.EnrollmentRecord{}
		}
		return json.Marshal(struct {
			Source  Source                    `json:"source"`
			Records []models.EnrollmentRecord `json:"records"`
		}{r.Source, records})
	}

	courses := r.Courses
	if courses == nil {
		courses = []models.Course{}
	}
	return json.Marshal(struct {
		Source  Source          `json:"source"`
		Courses []models.Course `json:"courses"`
	}{r.Source, courses})
}

// CourseIDs — id курсов в отображаемом порядке.
func (r Resolution) CourseIDs() []string {
	if r.Source == SourceServer {
		ids := make([]string, 0, len(r.Records))
		for _, rec := range r.Records {
			ids = append(ids, rec.CourseID)
		}
		return ids
	}
	ids := make([]string, 0, len(r.Courses))
	for _, c := range r.Courses {
		ids = append(ids, c.ID)
	}
	return ids
}

// Len — сколько курсов в списке.
func (r Resolution) Len() int {
	if r.Source == SourceServer {
		return len(r.Records)
	}
	return len(r.Courses)
}

// without возвращает копию без courseID.
func (r Resolution) without(courseID string) Resolution {
	out := Resolution{Source: r.Source}
	for _, rec := range r.Records {
		if rec.CourseID != courseID {
			out.Records = append(out.Records, rec)
		}
	}
	for _, c := range r.Courses {
		if c.ID != courseID {
			out.Courses = append(out.Courses, c)
		}
	}
	return out
}

// Outcome — результат Enroll.
type Outcome struct {
	Status  Status `json:"status"`
	Message string `json:"message"`
	// Cause — причина отказа бэкенда для StatusPendingSync
	Cause error `json:"-"`
}

// Reconciler — единая точка записи / отписки / построения списка курсов.
type Reconciler struct {
	backend  Backend
	cache    *LocalCache
	views    *Views
	validate *validator.Validate
	logger   *slog.Logger
}

func NewReconciler(backend Backend, cache *LocalCache, views *Views, validate *validator.Validate, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		backend:  backend,
		cache:    cache,
		views:    views,
		validate: validate,
		logger:   logger.With(slog.String("component", "enrollment_reconciler")),
	}
}

// Resolve строит список "Мои курсы".
//
// Непустой ответ бэкенда возвращается как есть, кэш не читается и не
// объединяется с ним (всё или ничего). Только пустой или упавший ответ
// включает запасной путь: id из кэша сопоставляются с каталогом, порядок —
// как в каталоге, несуществующие id отбрасываются.
func (r *Reconciler) Resolve(ctx context.Context, email string) (Resolution, error) {
	if email == "" {
		return Resolution{}, ErrInvalidInput
	}

	records, err := r.backend.ListEnrollments(ctx, email)
	if err == nil && len(records) > 0 {
		res := Resolution{Source: SourceServer, Records: records}
		resolutionsTotal.WithLabelValues(string(SourceServer)).Inc()
		r.views.Store(email, res)
		return res, nil
	}
	if err != nil {
		r.logger.Warn("Бэкенд не вернул записи, используем локальный кэш",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
	}

	cached := r.cache.List(ctx, email)
	res := Resolution{Source: SourceLocal, Courses: []models.Course{}}
	if len(cached) > 0 {
		catalog, catErr := r.backend.ListCourses(ctx)
		if catErr != nil {
			resolutionsTotal.WithLabelValues("failed").Inc()
			return Resolution{}, fmt.Errorf("загрузка каталога для локальных записей: %w", catErr)
		}
		res.Courses = resolveCached(cached, catalog)
	}

	resolutionsTotal.WithLabelValues(string(SourceLocal)).Inc()
	r.views.Store(email, res)
	return res, nil
}

// resolveCached оставляет курсы каталога, чей id есть в кэше, в порядке каталога.
func resolveCached(cached []string, catalog []models.Course) []models.Course {
	want := make(map[string]struct{}, len(cached))
	for _, id := range cached {
		want[id] = struct{}{}
	}
	out := make([]models.Course, 0, len(cached))
	for _, c := range catalog {
		if _, ok := want[c.ID]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Enroll записывает пользователя на курс.
//
// Успех бэкенда и любая ошибка, кроме "уже записан", добавляют курс в
// локальный кэш. Ошибка бэкенда не скрывается: возвращается
// StatusPendingSync, чтобы интерфейс показал предупреждение.
func (r *Reconciler) Enroll(ctx context.Context, email, courseID string) (Outcome, error) {
	if email == "" || courseID == "" {
		return Outcome{}, ErrInvalidInput
	}

	_, err := r.backend.Enroll(ctx, email, courseID)
	switch {
	case err == nil:
		r.cache.Add(ctx, email, courseID)
		r.views.Forget(email)
		enrollOutcomesTotal.WithLabelValues(string(StatusEnrolled)).Inc()
		return Outcome{Status: StatusEnrolled, Message: "Вы записаны на курс"}, nil

	case marketplace.IsAlreadyEnrolled(err):
		enrollOutcomesTotal.WithLabelValues(string(StatusAlreadyEnrolled)).Inc()
		return Outcome{Status: StatusAlreadyEnrolled, Message: "Вы уже записаны на этот курс"}, nil

	default:
		r.logger.Warn("Бэкенд отклонил запись, сохраняем локально",
			slog.String("email", email),
			slog.String("course_id", courseID),
			slog.String("error", err.Error()),
		)
		r.cache.Add(ctx, email, courseID)
		r.views.Forget(email)
		enrollOutcomesTotal.WithLabelValues(string(StatusPendingSync)).Inc()
		return Outcome{
			Status:  StatusPendingSync,
			Message: "Запись сохранена локально и ожидает синхронизации",
			Cause:   err,
		}, nil
	}
}

// Unenroll отписывает пользователя. Кэш и отображаемый список меняются
// только после успеха бэкенда, оптимистичного удаления нет.
func (r *Reconciler) Unenroll(ctx context.Context, email, courseID string) error {
	if email == "" || courseID == "" {
		return ErrInvalidInput
	}
	if err := r.backend.Unenroll(ctx, email, courseID); err != nil {
		return fmt.Errorf("отписка от курса %s: %w", courseID, err)
	}
	r.cache.Remove(ctx, email, courseID)
	r.views.Prune(email, courseID)
	return nil
}

// UpdateProgress проверяет границы 0-100 до сетевого вызова, затем один PUT.
func (r *Reconciler) UpdateProgress(ctx context.Context, email, courseID string, percent int) error {
	update := models.ProgressUpdate{CourseID: courseID, UserEmail: email, ProgressPercent: percent}
	if err := r.validate.Struct(update); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				if fe.StructField() == "ProgressPercent" {
					return ErrInvalidProgress
				}
			}
		}
		return ErrInvalidInput
	}
	if err := r.backend.UpdateProgress(ctx, update); err != nil {
		return fmt.Errorf("обновление прогресса курса %s: %w", courseID, err)
	}
	return nil
}

// IsEnrolled — проверка для страницы курса: сначала бэкенд, при ошибке
// или отрицательном ответе — локальный кэш.
func (r *Reconciler) IsEnrolled(ctx context.Context, email, courseID string) bool {
	if email == "" || courseID == "" {
		return false
	}
	ok, err := r.backend.CheckEnrollment(ctx, email, courseID)
	if err == nil && ok {
		return true
	}
	if err != nil {
		r.logger.Debug("Проверка записи на бэкенде не удалась",
			slog.String("course_id", courseID),
			slog.String("error", err.Error()),
		)
	}
	return r.cache.Contains(ctx, email, courseID)
}

// Displayed — текущий отображаемый список пользователя (без обращения к бэкенду).
func (r *Reconciler) Displayed(email string) (Resolution, bool) {
	return r.views.Get(email)
}
