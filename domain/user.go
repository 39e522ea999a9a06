package domain

type User struct {
	ID             int64  `json:"id" db:"id"`
	Username       string `json:"username" db:"username"`
	HashedPassword string `json:"-" db:"hashed_password"`
	Role           Role   `json:"role" db:"role"`
}

// IsAdmin reports whether the user may manage other accounts.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
