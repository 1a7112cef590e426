package models

// RoleAdmin - единственная повышенная роль; пустая роль означает обычного пользователя
const RoleAdmin = "admin"

// User представляет пользователя, email - естественный ключ
type User struct {
	ID    int64  `json:"_id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role,omitempty"`
}

// IsAdmin сообщает, есть ли у пользователя роль администратора
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
