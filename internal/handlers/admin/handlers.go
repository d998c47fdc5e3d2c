// Пакет admin — ручки для администратора.
package admin

import (
	"net/http"
	"strings"

	"github.com/s/courseMarket/internal/handlers"
	"github.com/s/courseMarket/internal/models"
)

type Service struct {
	handlers.Handler
}

// GetUsersAPI — GET /api/admin/users?role=&q=: пользователи бэкенда.
func (serv Service) GetUsersAPI(w http.ResponseWriter, r *http.Request) {
	users, err := serv.Market.ListUsers(r.Context())
	if err != nil {
		serv.UpstreamError(w, err, "Не удалось загрузить пользователей")
		return
	}

	role := strings.TrimSpace(r.URL.Query().Get("role"))
	query := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))

	out := make([]models.User, 0, len(users))
	for _, u := range users {
		u.Role = models.NormalizeRole(u.Role)
		if role != "" && u.Role != role {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(u.Email+" "+u.Name), query) {
			continue
		}
		out = append(out, u)
	}

	handlers.WriteJSON(w, http.StatusOK, map[string]any{
		"users": out,
		"total": len(out),
	})
}
