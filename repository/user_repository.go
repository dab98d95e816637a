package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"Bt1Arena/model"

	"github.com/go-sql-driver/mysql"
)

var (
	// ErrDuplicateUsername 用户名已存在
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrDuplicateEmail 邮箱已存在
	ErrDuplicateEmail = errors.New("email already exists")
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	CreateUser(user *model.User) (int64, error)
	GetUserByID(id int64) (*model.User, error)
	GetUserByUsername(username string) (*model.User, error)
	GetUserByEmail(email string) (*model.User, error)
	GetUserByIdentifier(identifier string) (*model.User, error)
	UpdateProfile(userID int64, displayName, bio sql.NullString) error
	UpdateAvatar(userID int64, avatar sql.NullString) error
	UpdateEmail(userID int64, email string) error
	UpdatePasswordHash(userID int64, passwordHash string) error
	SetOnlineStatus(userID int64, online bool) error
	DeleteUser(userID int64) error
}

// mysqlUserRepository implements UserRepository for MySQL.
type mysqlUserRepository struct {
	db *sql.DB
}

// NewMySQLUserRepository creates a new mysqlUserRepository.
func NewMySQLUserRepository(db *sql.DB) UserRepository {
	return &mysqlUserRepository{db: db}
}

const userColumns = "id, username, email, display_name, avatar, bio, password_hash, is_online, created_at, updated_at"

func (r *mysqlUserRepository) scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.DisplayName, &user.Avatar,
		&user.Bio, &user.PasswordHash, &user.IsOnline, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // User not found
		}
		return nil, fmt.Errorf("failed to scan user row: %w", err)
	}
	return user, nil
}

// CreateUser adds a new user to the database. The uniqueness of username and
// email is enforced atomically by the database; a violation maps to
// ErrDuplicateUsername or ErrDuplicateEmail.
func (r *mysqlUserRepository) CreateUser(user *model.User) (int64, error) {
	query := "INSERT INTO users (username, email, display_name, avatar, bio, password_hash, is_online) VALUES (?, ?, ?, ?, ?, ?, ?)"
	stmt, err := r.db.Prepare(query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare create user statement: %w", err)
	}
	defer stmt.Close()

	res, err := stmt.Exec(user.Username, user.Email, user.DisplayName, user.Avatar, user.Bio, user.PasswordHash, user.IsOnline)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			// 根据冲突的索引区分用户名和邮箱
			if strings.Contains(mysqlErr.Message, "email") {
				return 0, ErrDuplicateEmail
			}
			return 0, ErrDuplicateUsername
		}
		return 0, fmt.Errorf("failed to execute create user statement: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for user: %w", err)
	}
	return id, nil
}

// GetUserByID retrieves a user by their ID.
func (r *mysqlUserRepository) GetUserByID(id int64) (*model.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE id = ?"
	return r.scanUser(r.db.QueryRow(query, id))
}

// GetUserByUsername retrieves a user by their username.
func (r *mysqlUserRepository) GetUserByUsername(username string) (*model.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE username = ?"
	return r.scanUser(r.db.QueryRow(query, username))
}

// GetUserByEmail retrieves a user by their email address.
func (r *mysqlUserRepository) GetUserByEmail(email string) (*model.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE email = ?"
	return r.scanUser(r.db.QueryRow(query, email))
}

// GetUserByIdentifier looks a user up by email or username, for login.
func (r *mysqlUserRepository) GetUserByIdentifier(identifier string) (*model.User, error) {
	if strings.Contains(identifier, "@") {
		return r.GetUserByEmail(identifier)
	}
	return r.GetUserByUsername(identifier)
}

// UpdateProfile persists display name and bio. Invalid (null) values clear the fields.
func (r *mysqlUserRepository) UpdateProfile(userID int64, displayName, bio sql.NullString) error {
	query := "UPDATE users SET display_name = ?, bio = ?, updated_at = NOW() WHERE id = ?"
	if _, err := r.db.Exec(query, displayName, bio, userID); err != nil {
		return fmt.Errorf("failed to update profile for user %d: %w", userID, err)
	}
	return nil
}

// UpdateAvatar moves the avatar pointer. A null value clears it.
func (r *mysqlUserRepository) UpdateAvatar(userID int64, avatar sql.NullString) error {
	query := "UPDATE users SET avatar = ?, updated_at = NOW() WHERE id = ?"
	if _, err := r.db.Exec(query, avatar, userID); err != nil {
		return fmt.Errorf("failed to update avatar for user %d: %w", userID, err)
	}
	return nil
}

// UpdateEmail changes the account email. A uniqueness violation maps to ErrDuplicateEmail.
func (r *mysqlUserRepository) UpdateEmail(userID int64, email string) error {
	query := "UPDATE users SET email = ?, updated_at = NOW() WHERE id = ?"
	if _, err := r.db.Exec(query, email, userID); err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to update email for user %d: %w", userID, err)
	}
	return nil
}

// UpdatePasswordHash stores a new password hash.
func (r *mysqlUserRepository) UpdatePasswordHash(userID int64, passwordHash string) error {
	query := "UPDATE users SET password_hash = ?, updated_at = NOW() WHERE id = ?"
	if _, err := r.db.Exec(query, passwordHash, userID); err != nil {
		return fmt.Errorf("failed to update password for user %d: %w", userID, err)
	}
	return nil
}

// SetOnlineStatus flips the is_online flag.
func (r *mysqlUserRepository) SetOnlineStatus(userID int64, online bool) error {
	query := "UPDATE users SET is_online = ? WHERE id = ?"
	if _, err := r.db.Exec(query, online, userID); err != nil {
		return fmt.Errorf("failed to set online status for user %d: %w", userID, err)
	}
	return nil
}

// DeleteUser removes the user row. The settings row cascades at the database level.
func (r *mysqlUserRepository) DeleteUser(userID int64) error {
	query := "DELETE FROM users WHERE id = ?"
	if _, err := r.db.Exec(query, userID); err != nil {
		return fmt.Errorf("failed to delete user %d: %w", userID, err)
	}
	return nil
}
