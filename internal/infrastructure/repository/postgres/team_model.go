package postgres

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

type teamTableModel struct {
	Name          string         `db:"name"`
	Bracket       string         `db:"bracket"`
	Members       pq.StringArray `db:"members"`
	ActiveVersion sql.NullString `db:"active_version"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

type teamInsertModel struct {
	Name          string         `db:"name"`
	Bracket       string         `db:"bracket"`
	Members       pq.StringArray `db:"members"`
	ActiveVersion *string        `db:"active_version"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

type userTableModel struct {
	Username     string         `db:"username"`
	Email        sql.NullString `db:"email"`
	PasswordHash string         `db:"password_hash"`
	Role         string         `db:"role"`
	Team         sql.NullString `db:"team_name"`
	CreatedAt    time.Time      `db:"created_at"`
}

type userInsertModel struct {
	Username     string    `db:"username"`
	Email        *string   `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Role         string    `db:"role"`
	Team         *string   `db:"team_name"`
	CreatedAt    time.Time `db:"created_at"`
}
