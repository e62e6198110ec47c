package domain

type User struct {
	ID        string `db:"id" json:"id"`
	Email     string `db:"email" json:"email"`
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
	Hash      string `db:"password_hash" json:"-"`
	IsAdmin   bool   `db:"is_admin" json:"is_admin"`
	CreatedAt string `db:"created_at" json:"created_at"`
}
