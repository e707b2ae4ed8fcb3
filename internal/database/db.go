package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to MySQL and verifies the connection.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the tables this service needs when they do not exist
// yet.  It is safe to call on every startup.  The booking->facility foreign
// key uses RESTRICT so a facility with bookings cannot be deleted.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			name          VARCHAR(100) NOT NULL,
			email         VARCHAR(150) NOT NULL,
			username      VARCHAR(100) NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			role          VARCHAR(50)  NOT NULL DEFAULT 'USER',
			is_active     BOOLEAN      NOT NULL DEFAULT TRUE,
			last_login    DATETIME     NULL,
			created_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			UNIQUE KEY uq_users_email (email),
			UNIQUE KEY uq_users_username (username)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS facilities (
			id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			name       VARCHAR(150)  NOT NULL,
			location   VARCHAR(255)  NOT NULL,
			capacity   INT UNSIGNED  NOT NULL DEFAULT 0,
			type       VARCHAR(50)   NOT NULL DEFAULT 'ROOM',
			created_at DATETIME      NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME      NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			UNIQUE KEY uq_facilities_name (name)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS bookings (
			id           BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			reference    CHAR(36)        NOT NULL,
			facility_id  BIGINT UNSIGNED NOT NULL,
			requester_id VARCHAR(100)    NOT NULL,
			booking_date DATE            NOT NULL,
			start_time   TIME            NOT NULL,
			end_time     TIME            NOT NULL,
			status       VARCHAR(20)     NOT NULL DEFAULT 'CONFIRMED',
			notes        TEXT            NULL,
			created_at   DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at   DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			UNIQUE KEY uq_bookings_reference (reference),
			KEY idx_bookings_slot (facility_id, booking_date, status, start_time),
			KEY idx_bookings_requester (requester_id),
			CONSTRAINT fk_bookings_facility FOREIGN KEY (facility_id)
				REFERENCES facilities (id) ON DELETE RESTRICT
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	}
	for _, q := range stmts {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
