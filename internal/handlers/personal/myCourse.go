// Пакет personal — "Мои курсы": список, запись, отписка, прогресс.
package personal

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/s/courseMarket/internal/enrollment"
	"github.com/s/courseMarket/internal/handlers"
)

type Service struct {
	handlers.Handler
}

// ==========================================
// GET /api/my/enrollments
// ==========================================
func (s *Service) GetEnrollmentsAPI(w http.ResponseWriter, r *http.Request) {
	id, _ := s.CurrentIdentity(r)

	res, err := s.Enrollments.Resolve(r.Context(), id.Email)
	if err != nil {
		s.Logger.Warn("Не удалось построить список курсов",
			slog.String("email", id.Email),
			slog.String("error", err.Error()),
		)
		handlers.JSONError(w, http.StatusBadGateway, "Не удалось загрузить ваши курсы")
		return
	}
	handlers.WriteJSON(w, http.StatusOK, res)
}

// ==========================================
// POST /api/enroll {courseId}
// ==========================================
func (s *Service) SubmitEnrollment(w http.ResponseWriter, r *http.Request) {
	id, _ := s.CurrentIdentity(r)

	var input struct {
		CourseID string `json:"courseId" validate:"required"`
	}
	if err := s.DecodeJSON(r, &input); err != nil {
		handlers.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := s.Enrollments.Enroll(r.Context(), id.Email, input.CourseID)
	if err != nil {
		handlers.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch out.Status {
	case enrollment.StatusEnrolled:
		handlers.Notify(w, http.StatusCreated, handlers.LevelSuccess, out.Message, out)
	case enrollment.StatusAlreadyEnrolled:
		handlers.Notify(w, http.StatusOK, handlers.LevelSuccess, out.Message, out)
	default:
		handlers.Notify(w, http.StatusAccepted, handlers.LevelWarning, out.Message, out)
	}
}

// ==========================================
// DELETE /api/my/enrollments/{courseId}
// ==========================================
func (s *Service) DeleteEnrollmentAPI(w http.ResponseWriter, r *http.Request) {
	id, _ := s.CurrentIdentity(r)
	courseID := mux.Vars(r)["courseId"]

	if err := s.Enrollments.Unenroll(r.Context(), id.Email, courseID); err != nil {
		if errors.Is(err, enrollment.ErrInvalidInput) {
			handlers.JSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.Logger.Warn("Отписка не удалась",
			slog.String("course_id", courseID),
			slog.String("error", err.Error()),
		)
		handlers.JSONError(w, http.StatusBadGateway, "Не удалось отписаться от курса")
		return
	}

	// Отдаём уже показанный список без курса, без повторного запроса
	var data any
	if shown, ok := s.Enrollments.Displayed(id.Email); ok {
		data = shown
	}
	handlers.Notify(w, http.StatusOK, handlers.LevelSuccess, "Вы отписались от курса", data)
}

// ==========================================
// PUT /api/my/enrollments/{courseId}/progress {progressPercent}
// ==========================================
func (s *Service) UpdateProgressAPI(w http.ResponseWriter, r *http.Request) {
	id, _ := s.CurrentIdentity(r)
	courseID := mux.Vars(r)["courseId"]

	var input struct {
		ProgressPercent *int `json:"progressPercent" validate:"required"`
	}
	if err := s.DecodeJSON(r, &input); err != nil {
		handlers.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	err := s.Enrollments.UpdateProgress(r.Context(), id.Email, courseID, *input.ProgressPercent)
	switch {
	case err == nil:
		handlers.Notify(w, http.StatusOK, handlers.LevelSuccess, "Прогресс сохранён", map[string]any{
			"courseId":        courseID,
			"progressPercent": *input.ProgressPercent,
		})
	case errors.Is(err, enrollment.ErrInvalidProgress), errors.Is(err, enrollment.ErrInvalidInput):
		handlers.JSONError(w, http.StatusBadRequest, err.Error())
	default:
		s.Logger.Warn("Не удалось обновить прогресс",
			slog.String("course_id", courseID),
			slog.String("error", err.Error()),
		)
		handlers.JSONError(w, http.StatusBadGateway, "Не удалось сохранить прогресс")
	}
}
