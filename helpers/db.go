package helpers

import (
	"database/sql"
	"fmt"

	"github.com/golang/glog"

	// Registers the postgres driver
	_ "github.com/lib/pq"
)

// DBConfig stores the connection information used by OpenDBConnection to
// establish a connection to the database
type DBConfig struct {
	Host     string
	Port     int64
	Database string
	Username string
	Password string
	SSLMode  string
}

// DSN returns the lib/pq connection string for the config
func (c DBConfig) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf(
		"user=%s dbname=%s host=%s port=%d password=%s sslmode=%s",
		c.Username,
		c.Database,
		c.Host,
		c.Port,
		c.Password,
		sslMode,
	)
}

// OpenDBConnection establishes and pings a connection pool to the database
func OpenDBConnection(c DBConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", c.DSN())
	if err != nil {
		return nil, fmt.Errorf("Database connection failed: %v", err.Error())
	}

	err = db.Ping()
	if err != nil {
		db.Close()
		return nil, err
	}

	// Snapshots are saved by a single goroutine, a handful of connections is
	// plenty and leaves room for other clients of the database
	db.SetMaxOpenConns(4)

	if glog.V(2) {
		glog.Infof("Connected to database %s on %s:%d", c.Database, c.Host, c.Port)
	}

	return db, nil
}

// GetTransaction will begin and then return a transaction on db
func GetTransaction(db *sql.DB) (*sql.Tx, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("Could not start a transaction: %v", err.Error())
	}

	return tx, err
}
