package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/s/courseMarket/internal/handlers"
	"github.com/s/courseMarket/internal/handlers/admin"
	"github.com/s/courseMarket/internal/handlers/instructor"
	"github.com/s/courseMarket/internal/handlers/personal"
	"github.com/s/courseMarket/internal/middleware"
	"github.com/s/courseMarket/internal/models"
)

// NewRouter собирает все маршруты приложения.
func NewRouter(h *handlers.Handler) *mux.Router {
	personalService := &personal.Service{Handler: *h}
	instructorService := &instructor.Service{Handler: *h}
	adminService := admin.Service{Handler: *h}

	userOnly := middleware.RequireUser(h)
	instructorOnly := middleware.RequiredRole(h, models.RoleInstructor, models.RoleAdmin)
	adminOnly := middleware.RequiredRole(h, models.RoleAdmin)

	r := mux.NewRouter()
	r.Use(middleware.Metrics())

	// --- Служебные ---
	r.HandleFunc("/health/live", h.HandleLive).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// --- Вход ---
	r.HandleFunc("/auth/google/login", h.HandleGoogleLogin).Methods("GET")
	r.HandleFunc("/auth/google/callback", h.HandleGoogleCallback).Methods("GET")
	r.HandleFunc("/logout", h.HandleLogout).Methods("GET", "POST")
	r.HandleFunc("/api/me", h.HandleMe).Methods("GET")

	// --- Публичные маршруты ---
	r.HandleFunc("/api/home", h.HandleHome).Methods("GET")
	r.HandleFunc("/api/courses", h.HandleCourses).Methods("GET")
	r.HandleFunc("/api/courses/{id}", h.HandleCourse).Methods("GET")
	r.HandleFunc("/api/courses/{id}/reviews", h.GetReviewsAPI).Methods("GET")

	// --- Мои курсы ---
	r.HandleFunc("/api/my/enrollments", userOnly(personalService.GetEnrollmentsAPI)).Methods("GET")
	r.HandleFunc("/api/enroll", userOnly(personalService.SubmitEnrollment)).Methods("POST")
	r.HandleFunc("/api/my/enrollments/{courseId}", userOnly(personalService.DeleteEnrollmentAPI)).Methods("DELETE")
	r.HandleFunc("/api/my/enrollments/{courseId}/progress", userOnly(personalService.UpdateProgressAPI)).Methods("PUT")

	// --- Кабинет студента ---
	r.HandleFunc("/api/my/progress", userOnly(h.HandleMyProgress)).Methods("GET")
	r.HandleFunc("/api/my/certificates", userOnly(h.HandleMyCertificates)).Methods("GET")

	// --- Отзывы и заметки ---
	r.HandleFunc("/api/courses/{id}/reviews", userOnly(h.AddReviewAPI)).Methods("POST")
	r.HandleFunc("/api/reviews/{id}", userOnly(h.DeleteReviewAPI)).Methods("DELETE")
	r.HandleFunc("/api/courses/{id}/notes", userOnly(h.GetNotesAPI)).Methods("GET")
	r.HandleFunc("/api/courses/{id}/notes", userOnly(h.AddNoteAPI)).Methods("POST")
	r.HandleFunc("/api/notes/{id}", userOnly(h.DeleteNoteAPI)).Methods("DELETE")

	// --- Преподаватель ---
	r.HandleFunc("/api/instructor/courses", instructorOnly(instructorService.HandleCoursesAPI)).Methods("GET", "POST")
	r.HandleFunc("/api/instructor/courses/{id}", instructorOnly(instructorService.HandleCourseByIDAPI)).Methods("PUT", "DELETE")

	// --- Админ ---
	r.HandleFunc("/api/admin/users", adminOnly(adminService.GetUsersAPI)).Methods("GET")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		handlers.JSONError(w, http.StatusNotFound, "Маршрут не найден")
	})

	return r
}
