package repository

import (
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/disputeq-io/disputeq/internal/database"
	"github.com/disputeq-io/disputeq/internal/models"
)

// SQLStore implements Store on a relational database. Queries are written
// with ? bindvars and rebound for the active driver.
type SQLStore struct {
	db *sqlx.DB
}

var _ Store = (*SQLStore)(nil)

// NewSQLStore creates a store on the given connection. When db is nil the
// process-wide connection is used, which lets tests inject one via
// database.SetDB.
func NewSQLStore(db *sqlx.DB) *SQLStore {
	if db == nil {
		db, _ = database.Get()
	}
	return &SQLStore{db: db}
}

// castText wraps a column in the dialect's cast-to-text so numeric ids can
// be matched with LIKE.
func castText(expr string) string {
	if database.IsMySQL() {
		return "CAST(" + expr + " AS CHAR)"
	}
	return "CAST(" + expr + " AS TEXT)"
}

// invoiceFilter appends the grid filter predicates common to both invoice
// populations.
func invoiceFilter(f models.Filter, conds []string, args []interface{}) ([]string, []interface{}) {
	if f.InvoiceID != "" {
		conds = append(conds, castText("i.invoice_id")+" LIKE ?")
		args = append(args, "%"+f.InvoiceID+"%")
	}
	if f.SiteName != "" {
		conds = append(conds, "LOWER(i.site_name) LIKE LOWER(?)")
		args = append(args, "%"+f.SiteName+"%")
	}
	if f.AccountNo != "" {
		conds = append(conds, "LOWER(i.vendor_account_no) LIKE LOWER(?)")
		args = append(args, "%"+f.AccountNo+"%")
	}
	if len(f.PMCs) > 0 {
		conds = append(conds, "i.pmc_name IN (?)")
		args = append(args, f.PMCs)
	}
	return conds, args
}

// expand runs a query through sqlx.In so slice arguments become IN lists,
// then rebinds the placeholders for the active driver.
func (s *SQLStore) expand(query string, args []interface{}) (string, []interface{}, error) {
	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return "", nil, err
	}
	return s.db.Rebind(query), args, nil
}

func joinSets(sets []string) string {
	return strings.Join(sets, ", ")
}

func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(conds, " AND ")
}
