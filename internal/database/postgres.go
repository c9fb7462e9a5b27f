package database

import (
	"database/sql"
	"fmt"

	"property-catalog/internal/config"

	_ "github.com/lib/pq"
)

type DB struct {
	conn *sql.DB
}

func NewDB(cfg config.DatabaseConfig) (*DB, error) {
	pg := cfg.Postgres
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		pg.Host, pg.Port, pg.User, pg.Password, pg.Database, pg.SSLMode)

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	conn.SetConnMaxLifetime(cfg.GetConnMaxLifetime())

	return &DB{conn: conn}, nil
}

// NewDBFromConn wraps an already opened connection pool.
func NewDBFromConn(conn *sql.DB) *DB {
	return &DB{conn: conn}
}

func (db *DB) Conn() *sql.DB {
	return db.conn
}

func (db *DB) Close() error {
	return db.conn.Close()
}

// InitSchema creates the catalog tables if they don't exist
func (db *DB) InitSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS properties (
		id BIGSERIAL PRIMARY KEY,
		title VARCHAR(200) NOT NULL,
		description VARCHAR(1000) NOT NULL,
		address VARCHAR(500) NOT NULL,
		city VARCHAR(100) NOT NULL,
		district VARCHAR(100) NOT NULL,

		-- Filter fields
		price NUMERIC(18, 2) NOT NULL,
		area NUMERIC(10, 2) NOT NULL,
		bedrooms INTEGER NOT NULL,
		bathrooms INTEGER NOT NULL,
		type_id SMALLINT NOT NULL,
		status_id SMALLINT NOT NULL,

		created_at TIMESTAMP(6) NOT NULL,
		updated_at TIMESTAMP(6) NOT NULL,
		is_deleted BOOLEAN NOT NULL DEFAULT FALSE
	);

	CREATE TABLE IF NOT EXISTS property_images (
		id BIGSERIAL PRIMARY KEY,
		property_id BIGINT NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
		url VARCHAR(500) NOT NULL,
		alt_text VARCHAR(200),
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP(6) NOT NULL
	);

	-- Create indexes for filtering
	CREATE INDEX IF NOT EXISTS idx_properties_created_at ON properties(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_properties_city ON properties(city);
	CREATE INDEX IF NOT EXISTS idx_properties_district ON properties(district);
	CREATE INDEX IF NOT EXISTS idx_properties_price ON properties(price);
	CREATE INDEX IF NOT EXISTS idx_properties_type_id ON properties(type_id);
	CREATE INDEX IF NOT EXISTS idx_properties_status_id ON properties(status_id);
	CREATE INDEX IF NOT EXISTS idx_properties_is_deleted ON properties(is_deleted);
	CREATE INDEX IF NOT EXISTS idx_property_images_property_id ON property_images(property_id, sort_order);
	`
	_, err := db.conn.Exec(query)
	return err
}
