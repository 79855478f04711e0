package model

// User is an account in the Users collection. Passwords are stored as-is,
// matching the layout the presentation layer already persists; the services
// strip the field before returning an account to callers.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
}
