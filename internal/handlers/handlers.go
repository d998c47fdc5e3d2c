package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/s/courseMarket/internal/enrollment"
	"github.com/s/courseMarket/internal/marketplace"
	"github.com/s/courseMarket/internal/models"
)

const sessionName = "session"

// Ключи значений в cookie-сессии
const (
	sessionKeyEmail   = "email"
	sessionKeyName    = "name"
	sessionKeyPicture = "picture_url"
	sessionKeyRole    = "role"
	sessionKeyState   = "oauth_state"
)

// Authenticator — внешний провайдер входа (Google).
type Authenticator interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (models.Identity, error)
}

type Handler struct {
	Market      *marketplace.Client
	Enrollments *enrollment.Reconciler
	Store       sessions.Store
	// Auth == nil — вход через Google не настроен
	Auth     Authenticator
	Validate *validator.Validate
	Logger   *slog.Logger
}

func NewHandler(market *marketplace.Client, enrollments *enrollment.Reconciler, store sessions.Store, auth Authenticator, logger *slog.Logger) *Handler {
	return &Handler{
		Market:      market,
		Enrollments: enrollments,
		Store:       store,
		Auth:        auth,
		Validate:    models.NewValidator(),
		Logger:      logger.With(slog.String("component", "handlers")),
	}
}

type identityKey struct{}

// WithIdentity кладёт вошедшего пользователя в контекст запроса.
func WithIdentity(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// CurrentIdentity возвращает вошедшего пользователя: из контекста
// (если его положил middleware) или из сессии.
func (h *Handler) CurrentIdentity(r *http.Request) (models.Identity, bool) {
	if id, ok := r.Context().Value(identityKey{}).(models.Identity); ok {
		return id, true
	}

	session, err := h.Store.Get(r, sessionName)
	if err != nil {
		return models.Identity{}, false
	}
	email := toString(session.Values[sessionKeyEmail])
	if email == "" {
		return models.Identity{}, false
	}
	return models.Identity{
		Email:       email,
		DisplayName: toString(session.Values[sessionKeyName]),
		PhotoURL:    toString(session.Values[sessionKeyPicture]),
		Role:        models.NormalizeRole(toString(session.Values[sessionKeyRole])),
	}, true
}

func toString(v interface{}) string {
	s, _ := v.(string)
	return s
}

// HandleHome — GET /api/home: каталог и свежие хорошие отзывы.
func (h *Handler) HandleHome(w http.ResponseWriter, r *http.Request) {
	courses, err := h.Market.ListCourses(r.Context())
	if err != nil {
		h.UpstreamError(w, err, "Не удалось загрузить курсы")
		return
	}

	// Отзывы — не главное на странице, без них она всё равно рендерится
	reviews, err := h.Market.ListReviews(r.Context(), "")
	if err != nil {
		h.Logger.Warn("Не удалось загрузить отзывы для главной", slog.String("error", err.Error()))
	}

	id, isAuth := h.CurrentIdentity(r)
	WriteJSON(w, http.StatusOK, map[string]any{
		"isAuth":  isAuth,
		"user":    identityOrNil(id, isAuth),
		"courses": nonNil(courses),
		"reviews": topReviews(reviews, 6),
	})
}

// HandleMe — GET /api/me: текущий пользователь или isAuth=false.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	id, ok := h.CurrentIdentity(r)
	WriteJSON(w, http.StatusOK, map[string]any{
		"isAuth":        ok,
		"user":          identityOrNil(id, ok),
		"googleEnabled": h.Auth != nil,
	})
}

func identityOrNil(id models.Identity, ok bool) *models.Identity {
	if !ok {
		return nil
	}
	return &id
}

// HandleGoogleLogin — редирект на Google со случайным state в сессии.
func (h *Handler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	if h.Auth == nil {
		JSONError(w, http.StatusServiceUnavailable, "Вход через Google не настроен")
		return
	}

	state := uuid.NewString()
	session, _ := h.Store.Get(r, sessionName)
	session.Values[sessionKeyState] = state
	if err := session.Save(r, w); err != nil {
		h.Logger.Error("Не удалось сохранить сессию", slog.String("error", err.Error()))
		JSONError(w, http.StatusInternalServerError, "Ошибка сессии")
		return
	}

	http.Redirect(w, r, h.Auth.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// HandleGoogleCallback проверяет state, меняет код на личность,
// подтягивает роль из списка пользователей бэкенда и пишет всё в сессию.
func (h *Handler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.Auth == nil {
		JSONError(w, http.StatusServiceUnavailable, "Вход через Google не настроен")
		return
	}

	session, _ := h.Store.Get(r, sessionName)
	expected := toString(session.Values[sessionKeyState])
	if expected == "" || r.URL.Query().Get("state") != expected {
		JSONError(w, http.StatusUnauthorized, "Некорректный state")
		return
	}
	delete(session.Values, sessionKeyState)

	id, err := h.Auth.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		h.Logger.Warn("Ошибка входа через Google", slog.String("error", err.Error()))
		JSONError(w, http.StatusBadRequest, "Не удалось войти через Google")
		return
	}
	id.Role = h.lookupRole(r.Context(), id.Email)

	session.Values[sessionKeyEmail] = id.Email
	session.Values[sessionKeyName] = id.DisplayName
	session.Values[sessionKeyPicture] = id.PhotoURL
	session.Values[sessionKeyRole] = id.Role
	if err := session.Save(r, w); err != nil {
		h.Logger.Error("Не удалось сохранить сессию", slog.String("error", err.Error()))
		JSONError(w, http.StatusInternalServerError, "Ошибка сессии")
		return
	}

	h.Logger.Info("Пользователь вошёл", slog.String("email", id.Email), slog.String("role", id.Role))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// lookupRole — роль из GET /users; неизвестный пользователь или ошибка — student.
func (h *Handler) lookupRole(ctx context.Context, email string) string {
	user, err := h.Market.FindUser(ctx, email)
	if err != nil {
		if !errors.Is(err, marketplace.ErrNotFound) {
			h.Logger.Warn("Не удалось получить роль пользователя",
				slog.String("email", email),
				slog.String("error", err.Error()),
			)
		}
		return models.RoleStudent
	}
	return models.NormalizeRole(user.Role)
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	session, _ := h.Store.Get(r, sessionName)
	session.Values = map[interface{}]interface{}{}
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		h.Logger.Warn("Не удалось удалить сессию", slog.String("error", err.Error()))
	}
	if r.Method == http.MethodPost {
		Notify(w, http.StatusOK, LevelSuccess, "Вы вышли из аккаунта", nil)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleLive — GET /health/live.
func (h *Handler) HandleLive(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
