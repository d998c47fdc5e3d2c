// Пакет instructor — управление своими курсами (кабинет преподавателя).
package instructor

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/s/courseMarket/internal/handlers"
	"github.com/s/courseMarket/internal/models"
)

type Service struct {
	handlers.Handler
}

// ==========================================
// 1. GET /api/instructor/courses (Свои курсы)
// 2. POST /api/instructor/courses (Создание)
// ==========================================
func (s *Service) HandleCoursesAPI(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.getCourses(w, r)
	case http.MethodPost:
		s.createCourse(w, r)
	default:
		handlers.JSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// ==========================================
// 3. PUT /api/instructor/courses/{id} (Обновление)
// 4. DELETE /api/instructor/courses/{id} (Удаление)
// ==========================================
func (s *Service) HandleCourseByIDAPI(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	switch r.Method {
	case http.MethodPut:
		s.updateCourse(w, r, id)
	case http.MethodDelete:
		s.deleteCourse(w, r, id)
	default:
		handlers.JSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// -------------------------------------------------------------------------
// Вспомогательные функции (Логика)
// -------------------------------------------------------------------------

func (s *Service) getCourses(w http.ResponseWriter, r *http.Request) {
	user, _ := s.CurrentIdentity(r)

	courses, err := s.Market.ListCourses(r.Context())
	if err != nil {
		s.UpstreamError(w, err, "Не удалось загрузить курсы")
		return
	}

	own := make([]models.Course, 0)
	for _, c := range courses {
		if strings.EqualFold(c.InstructorEmail, user.Email) {
			own = append(own, c)
		}
	}
	handlers.WriteJSON(w, http.StatusOK, own)
}

func (s *Service) createCourse(w http.ResponseWriter, r *http.Request) {
	user, _ := s.CurrentIdentity(r)

	var input models.CourseInput
	if err := s.DecodeJSON(r, &input); err != nil {
		handlers.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	course := models.Course{
		InstructorName:  user.DisplayName,
		InstructorEmail: user.Email,
	}
	input.Apply(&course)

	created, err := s.Market.CreateCourse(r.Context(), course)
	if err != nil {
		s.Logger.Warn("Ошибка бэкенда при создании курса", slog.String("error", err.Error()))
		handlers.JSONError(w, http.StatusBadGateway, "Не удалось создать курс")
		return
	}

	handlers.Notify(w, http.StatusCreated, handlers.LevelSuccess, "Курс создан", created)
}

func (s *Service) updateCourse(w http.ResponseWriter, r *http.Request, id string) {
	course, ok := s.ownedCourse(w, r, id)
	if !ok {
		return
	}

	var input models.CourseInput
	if err := s.DecodeJSON(r, &input); err != nil {
		handlers.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	input.Apply(course)

	updated, err := s.Market.UpdateCourse(r.Context(), id, *course)
	if err != nil {
		s.UpstreamError(w, err, "Не удалось обновить курс")
		return
	}

	handlers.Notify(w, http.StatusOK, handlers.LevelSuccess, "Курс обновлён", updated)
}

func (s *Service) deleteCourse(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := s.ownedCourse(w, r, id); !ok {
		return
	}

	if err := s.Market.DeleteCourse(r.Context(), id); err != nil {
		s.UpstreamError(w, err, "Не удалось удалить курс")
		return
	}

	handlers.Notify(w, http.StatusOK, handlers.LevelSuccess, "Курс удалён", nil)
}

// ownedCourse загружает курс и проверяет, что он принадлежит вошедшему
// преподавателю (админу можно всё). Ответ об ошибке уже записан, если ok == false.
func (s *Service) ownedCourse(w http.ResponseWriter, r *http.Request, id string) (*models.Course, bool) {
	user, _ := s.CurrentIdentity(r)

	course, err := s.Market.GetCourse(r.Context(), id)
	if err != nil {
		s.UpstreamError(w, err, "Не удалось загрузить курс")
		return nil, false
	}

	if user.Role != models.RoleAdmin && !strings.EqualFold(course.InstructorEmail, user.Email) {
		handlers.JSONError(w, http.StatusForbidden, "Это не ваш курс")
		return nil, false
	}
	return course, true
}
