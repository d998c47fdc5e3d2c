package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

// HandleCourses — GET /api/courses?category=&q=: каталог с простым фильтром.
func (h *Handler) HandleCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.Market.ListCourses(r.Context())
	if err != nil {
		h.UpstreamError(w, err, "Не удалось загрузить курсы")
		return
	}

	category := strings.TrimSpace(r.URL.Query().Get("category"))
	query := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
	if category == "" && query == "" {
		WriteJSON(w, http.StatusOK, nonNil(courses))
		return
	}

	filtered := courses[:0]
	for _, c := range courses {
		if category != "" && !strings.EqualFold(c.Category, category) {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(c.Title+" "+c.Description), query) {
			continue
		}
		filtered = append(filtered, c)
	}
	WriteJSON(w, http.StatusOK, nonNil(filtered))
}

// HandleCourse — GET /api/courses/{id}: карточка курса и признак записи.
func (h *Handler) HandleCourse(w http.ResponseWriter, r *http.Request) {
	courseID := mux.Vars(r)["id"]
	course, err := h.Market.GetCourse(r.Context(), courseID)
	if err != nil {
		h.UpstreamError(w, err, "Не удалось загрузить курс")
		return
	}

	id, isAuth := h.CurrentIdentity(r)
	enrolled := false
	if isAuth {
		enrolled = h.Enrollments.IsEnrolled(r.Context(), id.Email, courseID)
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"course":   course,
		"isAuth":   isAuth,
		"enrolled": enrolled,
	})
}
