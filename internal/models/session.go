package models

import "time"

// UserType distinguishes employees from administrators.
type UserType string

const (
	UserTypeEmployee UserType = "Employee"
	UserTypeAdmin    UserType = "Admin"
)

// Session is the logged-in user as persisted under the "user" key.
type Session struct {
	ID        string    `json:"-"`
	Type      UserType  `json:"type"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// IsEmployee reports whether the session belongs to an employee.
func (s Session) IsEmployee() bool {
	return s.Type == UserTypeEmployee
}
