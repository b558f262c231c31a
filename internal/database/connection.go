package database

import (
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

var (
	dbMu     sync.RWMutex
	activeDB *sqlx.DB
	dbStack  []*sqlx.DB
)

// Open connects to the configured database and installs the connection as
// the process-wide handle. The caller owns the returned handle and should
// Close it on shutdown.
func Open(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect(DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("database connect: %w", err)
	}

	dbMu.Lock()
	activeDB = db
	dbMu.Unlock()
	return db, nil
}

// Get returns the active database connection.
func Get() (*sqlx.DB, error) {
	dbMu.RLock()
	defer dbMu.RUnlock()
	if activeDB == nil {
		return nil, fmt.Errorf("no database connection available")
	}
	return activeDB, nil
}

// SetDB injects a connection for tests. Use ResetDB to restore the previous
// value; calls nest via a stack so tests do not interfere with each other.
func SetDB(db *sqlx.DB) {
	dbMu.Lock()
	dbStack = append(dbStack, activeDB)
	activeDB = db
	dbMu.Unlock()
}

// ResetDB restores the connection saved by the matching SetDB call.
func ResetDB() {
	dbMu.Lock()
	if n := len(dbStack); n > 0 {
		activeDB = dbStack[n-1]
		dbStack = dbStack[:n-1]
	} else {
		activeDB = nil
	}
	dbMu.Unlock()
}

// DSN assembles a connection string for the active driver.
func DSN(host string, port int, user, password, name, sslMode string) string {
	switch {
	case IsMySQL():
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true", user, password, host, port, name)
	case IsSQLite():
		if name == "" {
			return ":memory:"
		}
		return name
	default:
		if sslMode == "" {
			sslMode = "disable"
		}
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			host, port, user, password, name, sslMode)
	}
}
