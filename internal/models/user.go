package models

// User represents a registered community member. Users are created at
// registration, mutated by profile edits and never hard-deleted.
type User struct {
	ID       string `json:"id,omitempty"`
	UID      string `json:"uid"` // auth identity
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Photo    string `json:"photo,omitempty"`
	Points   int    `json:"points"`

	CreatedAt string `json:"createdAt,omitempty"`
}
