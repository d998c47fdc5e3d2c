package middleware

import (
	"net/http"
	"slices"

	"github.com/s/courseMarket/internal/handlers"
)

// RequireUser пропускает только вошедших пользователей и кладёт
// их личность в контекст запроса.
func RequireUser(h *handlers.Handler) func(next http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			id, ok := h.CurrentIdentity(r)
			if !ok {
				handlers.JSONError(w, http.StatusUnauthorized, "Войдите, чтобы продолжить")
				return
			}
			next.ServeHTTP(w, r.WithContext(handlers.WithIdentity(r.Context(), id)))
		}
	}
}

// RequiredRole создает Middleware, требующее одну из ролей.
// Роль берётся из сессии (её записывает вход через Google).
func RequiredRole(h *handlers.Handler, roles ...string) func(next http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return RequireUser(h)(func(w http.ResponseWriter, r *http.Request) {
			id, _ := h.CurrentIdentity(r)
			if !slices.Contains(roles, id.Role) {
				handlers.JSONError(w, http.StatusForbidden, "Недостаточно прав")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
