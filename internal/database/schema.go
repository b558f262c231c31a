package database

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// autoIncrementPK returns the dialect-specific auto-increment primary key
// column definition.
func autoIncrementPK() string {
	switch {
	case IsMySQL():
		return "INT NOT NULL AUTO_INCREMENT PRIMARY KEY"
	case IsSQLite():
		return "INTEGER PRIMARY KEY AUTOINCREMENT"
	default:
		return "SERIAL PRIMARY KEY"
	}
}

// Migrate creates the application tables if they do not exist. It is safe to
// run on every start; existing tables are left untouched.
func Migrate(db *sqlx.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS invoice (
			invoice_id INTEGER NOT NULL PRIMARY KEY,
			pmc_name VARCHAR(200) NOT NULL DEFAULT '',
			vendor_name VARCHAR(200) NOT NULL DEFAULT '',
			vendor_account_no VARCHAR(100) NOT NULL DEFAULT '',
			site_id INTEGER,
			site_name VARCHAR(200) NOT NULL DEFAULT '',
			posting_date TIMESTAMP,
			invoice_date TIMESTAMP,
			received_date TIMESTAMP,
			due_date TIMESTAMP,
			current_charges DECIMAL(18,2) NOT NULL DEFAULT 0,
			prior_balance DECIMAL(18,2) NOT NULL DEFAULT 0,
			prior_balance_calculated INTEGER,
			late_fee_amount DECIMAL(18,2) NOT NULL DEFAULT 0,
			total_amount_due DECIMAL(18,2) NOT NULL DEFAULT 0,
			has_cont_bfs INTEGER,
			account_type VARCHAR(50) NOT NULL DEFAULT '',
			ip_service VARCHAR(50) NOT NULL DEFAULT '',
			historical INTEGER NOT NULL DEFAULT 0,
			invoice_status VARCHAR(50) NOT NULL DEFAULT '',
			status INTEGER NOT NULL DEFAULT 0,
			root_cause1 INTEGER,
			root_cause2 INTEGER,
			credit_method INTEGER,
			exp_date_to_credit TIMESTAMP,
			request_status INTEGER,
			invoice_source INTEGER,
			waiver_status INTEGER,
			approved_amount DECIMAL(18,2),
			declined_reason INTEGER,
			remarks TEXT,
			notes TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS notice (
			id INTEGER NOT NULL PRIMARY KEY,
			notice_id INTEGER,
			invoice_id INTEGER,
			cds_entry_sequence_id INTEGER,
			unit_no VARCHAR(50) NOT NULL DEFAULT '',
			account_type VARCHAR(50) NOT NULL DEFAULT '',
			vendor_account_no VARCHAR(100) NOT NULL DEFAULT '',
			vendor_name VARCHAR(200) NOT NULL DEFAULT '',
			site_id INTEGER,
			site_name VARCHAR(200) NOT NULL DEFAULT '',
			pmc_name VARCHAR(200) NOT NULL DEFAULT '',
			variance_amount DECIMAL(18,2) NOT NULL DEFAULT 0,
			prior_balance DECIMAL(18,2) NOT NULL DEFAULT 0,
			impact_amount DECIMAL(18,2) NOT NULL DEFAULT 0,
			impact_date TIMESTAMP,
			posting_date TIMESTAMP,
			notice_date TIMESTAMP,
			insert_date TIMESTAMP,
			processor_name VARCHAR(200) NOT NULL DEFAULT '',
			notice_status VARCHAR(50) NOT NULL DEFAULT '',
			notice_type VARCHAR(50) NOT NULL DEFAULT '',
			status INTEGER NOT NULL DEFAULT 0,
			resolution_status INTEGER,
			change_reason INTEGER,
			remarks TEXT
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS work_detail (
			work_id %s,
			invoice_id INTEGER,
			notice_id INTEGER,
			user_id INTEGER,
			user_name VARCHAR(200),
			created_by INTEGER,
			create_date TIMESTAMP,
			modified_by INTEGER,
			modified_date TIMESTAMP
		)`, autoIncrementPK()),
		`CREATE TABLE IF NOT EXISTS ref_detail (
			ref_code_id INTEGER NOT NULL PRIMARY KEY,
			entity_name VARCHAR(100) NOT NULL DEFAULT '',
			entity_value VARCHAR(200) NOT NULL DEFAULT '',
			parent_root_cause_id INTEGER NOT NULL DEFAULT 0
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	// MySQL has no CREATE INDEX IF NOT EXISTS, so re-runs surface the
	// duplicate-name error instead; that is the only error tolerated here.
	indexes := []struct{ name, ddl string }{
		{"idx_work_detail_invoice", "CREATE INDEX idx_work_detail_invoice ON work_detail (invoice_id)"},
		{"idx_work_detail_notice", "CREATE INDEX idx_work_detail_notice ON work_detail (notice_id)"},
		{"idx_work_detail_user", "CREATE INDEX idx_work_detail_user ON work_detail (user_id)"},
		{"idx_invoice_population", "CREATE INDEX idx_invoice_population ON invoice (prior_balance_calculated)"},
	}
	for _, idx := range indexes {
		ddl := idx.ddl
		if !IsMySQL() {
			ddl = strings.Replace(ddl, "CREATE INDEX", "CREATE INDEX IF NOT EXISTS", 1)
		}
		if _, err := db.Exec(ddl); err != nil {
			if IsMySQL() && strings.Contains(err.Error(), "Duplicate key name") {
				continue
			}
			return fmt.Errorf("migrate index %s: %w", idx.name, err)
		}
	}
	return nil
}
