package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"sync"

	"github.com/gorilla/mux"

	"github.com/s/courseMarket/internal/models"
)

// fakeMarket — REST-бэкенд маркетплейса в памяти.
type fakeMarket struct {
	mu sync.Mutex

	courses     []models.Course
	enrollments map[string][]models.EnrollmentRecord
	reviews     []models.Review
	notes       []models.Note
	users       []models.User

	enrollError  string
	enrollDown   bool
	listDown     bool
	unenrollDown bool

	progressCalls int
	lastProgress  models.ProgressUpdate
	nextID        int
}

func newFakeMarket() *fakeMarket {
	return &fakeMarket{enrollments: make(map[string][]models.EnrollmentRecord)}
}

func (f *fakeMarket) id() string {
	f.nextID++
	return fmt.Sprintf("gen-%d", f.nextID)
}

func respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func (f *fakeMarket) handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/courses", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		respond(w, http.StatusOK, f.courses)
	}).Methods("GET")

	r.HandleFunc("/courses", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		var c models.Course
		_ = json.NewDecoder(r.Body).Decode(&c)
		c.ID = f.id()
		f.courses = append(f.courses, c)
		respond(w, http.StatusCreated, c)
	}).Methods("POST")

	r.HandleFunc("/courses/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		id := mux.Vars(r)["id"]
		i := slices.IndexFunc(f.courses, func(c models.Course) bool { return c.ID == id })
		if i < 0 {
			respond(w, http.StatusNotFound, map[string]string{"error": "Course not found"})
			return
		}
		switch r.Method {
		case http.MethodGet:
			respond(w, http.StatusOK, f.courses[i])
		case http.MethodPut:
			var c models.Course
			_ = json.NewDecoder(r.Body).Decode(&c)
			c.ID = id
			f.courses[i] = c
			respond(w, http.StatusOK, c)
		case http.MethodDelete:
			f.courses = slices.Delete(f.courses, i, i+1)
			w.WriteHeader(http.StatusNoContent)
		}
	}).Methods("GET", "PUT", "DELETE")

	r.HandleFunc("/enrollments", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.listDown {
			respond(w, http.StatusInternalServerError, map[string]string{"error": "db down"})
			return
		}
		records := f.enrollments[r.URL.Query().Get("email")]
		if records == nil {
			records = []models.EnrollmentRecord{}
		}
		respond(w, http.StatusOK, records)
	}).Methods("GET")

	r.HandleFunc("/enrollments", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.enrollError != "" {
			respond(w, http.StatusBadRequest, map[string]string{"error": f.enrollError})
			return
		}
		if f.enrollDown {
			respond(w, http.StatusServiceUnavailable, map[string]string{"error": "maintenance"})
			return
		}
		var body models.EnrollmentRecord
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.enrollments[body.UserEmail] = append(f.enrollments[body.UserEmail], body)
		respond(w, http.StatusCreated, body)
	}).Methods("POST")

	r.HandleFunc("/enrollments", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.unenrollDown {
			respond(w, http.StatusInternalServerError, map[string]string{"error": "db down"})
			return
		}
		email, courseID := r.URL.Query().Get("email"), r.URL.Query().Get("courseId")
		f.enrollments[email] = slices.DeleteFunc(f.enrollments[email], func(e models.EnrollmentRecord) bool {
			return e.CourseID == courseID
		})
		w.WriteHeader(http.StatusNoContent)
	}).Methods("DELETE")

	r.HandleFunc("/enrollments/check", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		courseID := r.URL.Query().Get("courseId")
		enrolled := slices.ContainsFunc(f.enrollments[r.URL.Query().Get("email")], func(e models.EnrollmentRecord) bool {
			return e.CourseID == courseID
		})
		respond(w, http.StatusOK, map[string]bool{"enrolled": enrolled})
	}).Methods("GET")

	r.HandleFunc("/enrollments/progress", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.progressCalls++
		_ = json.NewDecoder(r.Body).Decode(&f.lastProgress)
		respond(w, http.StatusOK, map[string]bool{"ok": true})
	}).Methods("PUT")

	r.HandleFunc("/reviews", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		courseID := r.URL.Query().Get("courseId")
		out := []models.Review{}
		for _, rv := range f.reviews {
			if courseID == "" || rv.CourseID == courseID {
				out = append(out, rv)
			}
		}
		respond(w, http.StatusOK, out)
	}).Methods("GET")

	r.HandleFunc("/reviews", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		var rv models.Review
		_ = json.NewDecoder(r.Body).Decode(&rv)
		rv.ID = f.id()
		f.reviews = append(f.reviews, rv)
		respond(w, http.StatusCreated, rv)
	}).Methods("POST")

	r.HandleFunc("/reviews/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		id := mux.Vars(r)["id"]
		f.reviews = slices.DeleteFunc(f.reviews, func(rv models.Review) bool { return rv.ID == id })
		w.WriteHeader(http.StatusNoContent)
	}).Methods("DELETE")

	r.HandleFunc("/notes", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		email, courseID := r.URL.Query().Get("email"), r.URL.Query().Get("courseId")
		out := []models.Note{}
		for _, n := range f.notes {
			if n.UserEmail == email && (courseID == "" || n.CourseID == courseID) {
				out = append(out, n)
			}
		}
		respond(w, http.StatusOK, out)
	}).Methods("GET")

	r.HandleFunc("/notes", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		var n models.Note
		_ = json.NewDecoder(r.Body).Decode(&n)
		n.ID = f.id()
		f.notes = append(f.notes, n)
		respond(w, http.StatusCreated, n)
	}).Methods("POST")

	r.HandleFunc("/notes/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		id := mux.Vars(r)["id"]
		f.notes = slices.DeleteFunc(f.notes, func(n models.Note) bool { return n.ID == id })
		w.WriteHeader(http.StatusNoContent)
	}).Methods("DELETE")

	r.HandleFunc("/users", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		respond(w, http.StatusOK, f.users)
	}).Methods("GET")

	r.HandleFunc("/progress", func(w http.ResponseWriter, _ *http.Request) {
		respond(w, http.StatusOK, []models.ProgressEntry{
			{CourseID: "1", ProgressPercent: 100},
			{CourseID: "2", ProgressPercent: 50},
		})
	}).Methods("GET")

	r.HandleFunc("/certificates", func(w http.ResponseWriter, _ *http.Request) {
		respond(w, http.StatusOK, nil)
	}).Methods("GET")

	return r
}

// fakeAuth — провайдер входа, который сразу отдаёт заданную личность.
type fakeAuth struct {
	mu       sync.Mutex
	identity models.Identity
}

func (a *fakeAuth) AuthCodeURL(state string) string {
	return "https://accounts.example.com/auth?state=" + state
}

func (a *fakeAuth) Exchange(_ context.Context, code string) (models.Identity, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if code == "" {
		return models.Identity{}, fmt.Errorf("empty code")
	}
	return a.identity, nil
}

func (a *fakeAuth) set(id models.Identity) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.identity = id
}

func (f *fakeMarket) progress() (int, models.ProgressUpdate) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.progressCalls, f.lastProgress
}
