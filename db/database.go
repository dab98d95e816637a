package db

import (
	"database/sql"
	"fmt"
	"log"

	"Bt1Arena/config"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

var DB *sql.DB

// ConnectDB establishes a connection to the database.
func ConnectDB(cfg *config.Config) error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	var err error
	DB, err = sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	if err = DB.Ping(); err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Successfully connected to the database.")
	return nil
}

// InitDB initializes the database schema, creating tables if they don't exist.
func InitDB() error {
	if err := createUsersTable(); err != nil {
		return err
	}
	if err := createUserSettingsTable(); err != nil {
		return err
	}

	log.Println("Database initialization completed.")
	return nil
}

func createUsersTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id INT AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(20) NOT NULL UNIQUE,
		email VARCHAR(255) NOT NULL UNIQUE,
		display_name VARCHAR(50),
		avatar VARCHAR(767),
		bio TEXT,
		password_hash VARCHAR(255) NOT NULL,
		is_online BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	);
	`
	_, err := DB.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}
	log.Println("Users table initialized successfully (or already exists).")
	return nil
}

func createUserSettingsTable() error {
	// user_settings 与 users 一对一，级联删除
	query := `
	CREATE TABLE IF NOT EXISTS user_settings (
		user_id INT PRIMARY KEY,
		accent_color CHAR(7) NOT NULL DEFAULT '#ff6b9d',
		background_color CHAR(7) NOT NULL DEFAULT '#1a1a2e',
		card_color CHAR(7) NOT NULL DEFAULT '#16213e',
		text_color CHAR(7) NOT NULL DEFAULT '#e5e5e5',
		sound_enabled BOOLEAN NOT NULL DEFAULT TRUE,
		music_volume INT NOT NULL DEFAULT 50,
		sfx_volume INT NOT NULL DEFAULT 50,
		show_online_status BOOLEAN NOT NULL DEFAULT TRUE,
		show_match_history BOOLEAN NOT NULL DEFAULT TRUE,
		allow_friend_requests BOOLEAN NOT NULL DEFAULT TRUE,
		email_notifications BOOLEAN NOT NULL DEFAULT TRUE,
		game_invite_notifications BOOLEAN NOT NULL DEFAULT TRUE,
		CONSTRAINT fk_user_settings FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);
	`
	_, err := DB.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create user_settings table: %w", err)
	}

	log.Println("User settings table initialized successfully (or already exists).")
	return nil
}
