package models

// User represents an account entity used for authentication and ownership
// checks. PasswordHash must always hold a bcrypt digest, never plaintext.
type User struct {
	// UserID is the internal unique identifier of the user.
	// It is not exposed via JSON and is used only at the persistence layer.
	UserID int64 `json:"-"`

	// Login is the unique user login identifier.
	// Typically used during authentication.
	Login string `json:"login"`

	// Name is the optional display name of the user.
	Name string `json:"name"`

	// PasswordHash stores the bcrypt digest of the user's password.
	// It never leaves the server process.
	PasswordHash string `json:"-"`
}

// TableName returns the name of the database table
// associated with the User model.
func (u User) TableName() string {
	return "users"
}
