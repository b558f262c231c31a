package database

import (
	"os"
	"strings"
)

// GetDriver returns the active database driver name. Tests may force a
// driver via TEST_DB_DRIVER without touching the real configuration.
func GetDriver() string {
	driver := os.Getenv("TEST_DB_DRIVER")
	if driver == "" {
		driver = os.Getenv("DB_DRIVER")
	}
	if driver == "" {
		driver = "postgres"
	}
	return strings.ToLower(driver)
}

// IsPostgreSQL returns true if using PostgreSQL.
func IsPostgreSQL() bool {
	driver := GetDriver()
	return driver == "postgres" || driver == "postgresql"
}

// IsMySQL returns true if using MySQL/MariaDB.
func IsMySQL() bool {
	driver := GetDriver()
	return driver == "mysql" || driver == "mariadb"
}

// IsSQLite returns true if using SQLite (local development and CLI tooling).
func IsSQLite() bool {
	driver := GetDriver()
	return driver == "sqlite" || driver == "sqlite3"
}

// DriverName maps the configured driver to the name registered with
// database/sql.
func DriverName() string {
	switch {
	case IsMySQL():
		return "mysql"
	case IsSQLite():
		return "sqlite3"
	default:
		return "postgres"
	}
}
