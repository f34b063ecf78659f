package db

import (
	"database/sql"
	"files-bot/models"

	_ "github.com/mattn/go-sqlite3"
)

// DB is a wrapper around sql.DB holding the bot's user registry
type DB struct {
	*sql.DB
}

// NewDB creates a new database connection
func NewDB(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

// InitDB initializes the database with required tables
func (db *DB) InitDB() error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY,
		username TEXT,
		first_name TEXT,
		last_name TEXT,
		is_admin BOOLEAN DEFAULT 0
	);
	`

	_, err := db.Exec(query)
	return err
}

// SaveUser saves or updates a user in the database
func (db *DB) SaveUser(user *models.User) error {
	query := `
	INSERT INTO users (id, username, first_name, last_name, is_admin)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		username = excluded.username,
		first_name = excluded.first_name,
		last_name = excluded.last_name,
		is_admin = excluded.is_admin
	`

	_, err := db.Exec(query, user.ID, user.Username, user.FirstName, user.LastName, user.IsAdmin)
	return err
}

// GetUser retrieves a user by ID, returning nil when it is not registered
func (db *DB) GetUser(id int64) (*models.User, error) {
	query := `SELECT id, username, first_name, last_name, is_admin FROM users WHERE id = ?`

	var user models.User
	err := db.QueryRow(query, id).Scan(
		&user.ID, &user.Username, &user.FirstName, &user.LastName, &user.IsAdmin,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// ListUsers returns every registered user ordered by ID
func (db *DB) ListUsers() ([]models.User, error) {
	rows, err := db.Query(`SELECT id, username, first_name, last_name, is_admin FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Username, &user.FirstName, &user.LastName, &user.IsAdmin); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// SetUserAdmin sets a user's admin status
func (db *DB) SetUserAdmin(id int64, isAdmin bool) error {
	query := `UPDATE users SET is_admin = ? WHERE id = ?`
	_, err := db.Exec(query, isAdmin, id)
	return err
}

// UpdateAdminStatuses makes the admin flag of every user match admins
func (db *DB) UpdateAdminStatuses(admins map[string]bool) (err error) {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	if _, err = tx.Exec(`UPDATE users SET is_admin = 0`); err != nil {
		return err
	}
	for username, isAdmin := range admins {
		if !isAdmin || username == "" {
			continue
		}
		if _, err = tx.Exec(`UPDATE users SET is_admin = 1 WHERE username = ?`, username); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}
