package domain

// User represents a stored account record. The id is assigned by the
// database on insert and never changes afterwards.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
