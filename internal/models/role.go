package models

// Роли пользователей маркетплейса (поле role в GET /users).
const (
	RoleGuest      = ""
	RoleStudent    = "student"
	RoleInstructor = "instructor"
	RoleAdmin      = "admin"
)

// NormalizeRole возвращает известную роль или RoleStudent для всего остального.
func NormalizeRole(role string) string {
	switch role {
	case RoleStudent, RoleInstructor, RoleAdmin:
		return role
	default:
		return RoleStudent
	}
}
