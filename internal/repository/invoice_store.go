package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/disputeq-io/disputeq/internal/models"
)

// Invoice population predicates. PriorBalanceCalculated discriminates the
// two queues that share the invoice table.
const (
	lateFeePopulation = "i.prior_balance_calculated IS NULL"
	pastDuePopulation = "i.prior_balance_calculated IS NOT NULL"
)

const invoiceJoin = "FROM invoice i LEFT JOIN work_detail wd ON wd.invoice_id = i.invoice_id"

// invoiceRow carries an invoice plus the reviewer from the ownership ledger.
type invoiceRow struct {
	models.Invoice
	UserName *string `db:"user_name"`
}

// queryInvoices runs the shared filtered/sorted/paginated invoice query.
// The count is taken over the filtered population before paging. When
// assigned is true the query is scoped to the reviewer in f.UserID;
// otherwise f.IsAssignedData switches between the open queue and the
// everything-assigned view.
func (s *SQLStore) queryInvoices(ctx context.Context, f models.Filter, population string, sortCols map[string]string, assigned bool) ([]invoiceRow, int, error) {
	f.Normalize()

	conds := []string{population}
	var args []interface{}
	if assigned {
		conds = append(conds, "wd.user_id = ?")
		args = append(args, f.UserID)
	} else if f.IsAssignedData {
		conds = append(conds, "wd.user_id IS NOT NULL")
	} else {
		conds = append(conds, "wd.user_id IS NULL")
	}
	conds, args = invoiceFilter(f, conds, args)
	where := whereClause(conds)

	countQuery, countArgs, err := s.expand("SELECT COUNT(*) "+invoiceJoin+" "+where, args)
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := s.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count invoices: %w", err)
	}

	order := orderBy(sortCols, "i.invoice_id", f.SortColumn, f.SortDirection)
	listQuery := fmt.Sprintf("SELECT i.*, wd.user_name %s %s %s LIMIT ? OFFSET ?", invoiceJoin, where, order)
	listArgs := append(append([]interface{}{}, args...), f.PageSize, f.Offset())
	listQuery, listArgs, err = s.expand(listQuery, listArgs)
	if err != nil {
		return nil, 0, err
	}

	var rows []invoiceRow
	if err := s.db.SelectContext(ctx, &rows, listQuery, listArgs...); err != nil {
		return nil, 0, fmt.Errorf("list invoices: %w", err)
	}
	return rows, total, nil
}

// SearchLateFees serves the late-fee grid.
func (s *SQLStore) SearchLateFees(ctx context.Context, f models.Filter) ([]models.LateFee, int, error) {
	rows, total, err := s.queryInvoices(ctx, f, lateFeePopulation, lateFeeSortColumns, false)
	if err != nil {
		return nil, 0, err
	}
	out := make([]models.LateFee, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToLateFee(rows[i].UserName))
	}
	return out, total, nil
}

// AssignedLateFees serves a reviewer's late-fee worklist.
func (s *SQLStore) AssignedLateFees(ctx context.Context, f models.Filter) ([]models.LateFee, int, error) {
	rows, total, err := s.queryInvoices(ctx, f, lateFeePopulation, lateFeeSortColumns, true)
	if err != nil {
		return nil, 0, err
	}
	out := make([]models.LateFee, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToLateFee(rows[i].UserName))
	}
	return out, total, nil
}

// SearchPastDues serves the past-due grid.
func (s *SQLStore) SearchPastDues(ctx context.Context, f models.Filter) ([]models.PastDue, int, error) {
	rows, total, err := s.queryInvoices(ctx, f, pastDuePopulation, pastDueSortColumns, false)
	if err != nil {
		return nil, 0, err
	}
	out := make([]models.PastDue, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToPastDue(rows[i].UserName))
	}
	return out, total, nil
}

// AssignedPastDues serves a reviewer's past-due worklist.
func (s *SQLStore) AssignedPastDues(ctx context.Context, f models.Filter) ([]models.PastDue, int, error) {
	rows, total, err := s.queryInvoices(ctx, f, pastDuePopulation, pastDueSortColumns, true)
	if err != nil {
		return nil, 0, err
	}
	out := make([]models.PastDue, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToPastDue(rows[i].UserName))
	}
	return out, total, nil
}

// AssignInvoices takes ownership of a batch of invoices for one reviewer.
// Each invoice gets a ledger row and moves to StatusAssigned. The batch is
// all-or-nothing: an invoice already owned by another reviewer aborts the
// whole transaction with a ConflictError. A stale ledger row with no
// reviewer is reclaimed in place.
func (s *SQLStore) AssignInvoices(ctx context.Context, req models.AssignRequest) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin assign: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, id := range req.IDs {
		var existing struct {
			WorkID int  `db:"work_id"`
			UserID *int `db:"user_id"`
		}
		err := tx.GetContext(ctx, &existing,
			tx.Rebind("SELECT work_id, user_id FROM work_detail WHERE invoice_id = ?"), id)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			_, err = tx.ExecContext(ctx,
				tx.Rebind(`INSERT INTO work_detail (invoice_id, user_id, user_name, created_by, create_date)
					VALUES (?, ?, ?, ?, ?)`),
				id, req.UserID, req.UserName, req.AssignerID, now)
			if err != nil {
				return fmt.Errorf("insert work detail: %w", err)
			}
		case err != nil:
			return fmt.Errorf("check work detail: %w", err)
		case existing.UserID != nil:
			return &ConflictError{ItemID: id}
		default:
			_, err = tx.ExecContext(ctx,
				tx.Rebind(`UPDATE work_detail SET user_id = ?, user_name = ?, modified_by = ?, modified_date = ?
					WHERE work_id = ?`),
				req.UserID, req.UserName, req.AssignerID, now, existing.WorkID)
			if err != nil {
				return fmt.Errorf("reclaim work detail: %w", err)
			}
		}

		if _, err := tx.ExecContext(ctx,
			tx.Rebind("UPDATE invoice SET status = ? WHERE invoice_id = ?"),
			models.StatusAssigned, id); err != nil {
			return fmt.Errorf("mark invoice assigned: %w", err)
		}
	}
	return tx.Commit()
}

// UnassignInvoices releases a batch of invoices. Missing ledger rows are
// not an error; the status still moves to StatusUnassignedAfterReview.
func (s *SQLStore) UnassignInvoices(ctx context.Context, req models.UnassignRequest) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin unassign: %w", err)
	}
	defer tx.Rollback()

	for _, id := range req.IDs {
		if _, err := tx.ExecContext(ctx,
			tx.Rebind("DELETE FROM work_detail WHERE invoice_id = ?"), id); err != nil {
			return fmt.Errorf("delete work detail: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			tx.Rebind("UPDATE invoice SET status = ? WHERE invoice_id = ?"),
			models.StatusUnassignedAfterReview, id); err != nil {
			return fmt.Errorf("mark invoice unassigned: %w", err)
		}
	}
	return tx.Commit()
}

// updateInvoice applies the SET clauses to one invoice in the given
// population and reports whether a row was hit.
func (s *SQLStore) updateInvoice(ctx context.Context, id int, population string, sets []string, args []interface{}) (bool, error) {
	sets = append(sets, "status = ?")
	args = append(args, models.StatusResolvedPendingReview)
	args = append(args, id)

	// No table alias here: SQLite rejects aliases in UPDATE.
	query := s.db.Rebind(fmt.Sprintf("UPDATE invoice SET %s WHERE invoice_id = ? AND %s",
		joinSets(sets), strings.ReplaceAll(population, "i.", "")))
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("update invoice: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// fetchInvoice reloads one invoice with its reviewer.
func (s *SQLStore) fetchInvoice(ctx context.Context, id int, population string) (*invoiceRow, error) {
	var row invoiceRow
	query := s.db.Rebind(fmt.Sprintf("SELECT i.*, wd.user_name %s WHERE i.invoice_id = ? AND %s",
		invoiceJoin, population))
	if err := s.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}
	return &row, nil
}

// UpdateLateFee applies a partial resolution update to one late-fee
// invoice. Nil request fields are untouched; the status always moves to
// StatusResolvedPendingReview. Returns (nil, false, nil) when the invoice
// does not exist in the late-fee population.
func (s *SQLStore) UpdateLateFee(ctx context.Context, req models.UpdateLateFee) (*models.LateFee, bool, error) {
	id, err := strconv.Atoi(req.InvoiceID)
	if err != nil {
		return nil, false, fmt.Errorf("invalid invoice id %q: %w", req.InvoiceID, err)
	}

	var sets []string
	var args []interface{}
	setIfInt := func(col string, v *int) {
		if v != nil {
			sets = append(sets, col+" = ?")
			args = append(args, *v)
		}
	}
	setIfInt("root_cause1", req.RootCause1)
	setIfInt("root_cause2", req.RootCause2)
	setIfInt("credit_method", req.CreditMethod)
	if req.ExpDateToCredit != nil {
		sets = append(sets, "exp_date_to_credit = ?")
		args = append(args, *req.ExpDateToCredit)
	}
	setIfInt("request_status", req.RequestStatus)
	setIfInt("invoice_source", req.InvoiceSource)
	setIfInt("waiver_status", req.WaiverStatus)
	if req.ApprovedAmount != nil {
		sets = append(sets, "approved_amount = ?")
		args = append(args, *req.ApprovedAmount)
	}
	setIfInt("declined_reason", req.DeclinedReason)
	if req.Remarks != nil {
		sets = append(sets, "remarks = ?")
		args = append(args, *req.Remarks)
	}

	hit, err := s.updateInvoice(ctx, id, lateFeePopulation, sets, args)
	if err != nil || !hit {
		return nil, false, err
	}
	row, err := s.fetchInvoice(ctx, id, lateFeePopulation)
	if err != nil {
		return nil, false, err
	}
	fee := row.ToLateFee(row.UserName)
	return &fee, true, nil
}

// UpdatePastDue applies a partial resolution update to one past-due
// invoice.
func (s *SQLStore) UpdatePastDue(ctx context.Context, req models.UpdatePastDue) (*models.PastDue, bool, error) {
	id, err := strconv.Atoi(req.InvoiceID)
	if err != nil {
		return nil, false, fmt.Errorf("invalid invoice id %q: %w", req.InvoiceID, err)
	}

	var sets []string
	var args []interface{}
	if req.RootCause1 != nil {
		sets = append(sets, "root_cause1 = ?")
		args = append(args, *req.RootCause1)
	}
	if req.RootCause2 != nil {
		sets = append(sets, "root_cause2 = ?")
		args = append(args, *req.RootCause2)
	}
	if req.Notes != nil {
		sets = append(sets, "notes = ?")
		args = append(args, *req.Notes)
	}

	hit, err := s.updateInvoice(ctx, id, pastDuePopulation, sets, args)
	if err != nil || !hit {
		return nil, false, err
	}
	row, err := s.fetchInvoice(ctx, id, pastDuePopulation)
	if err != nil {
		return nil, false, err
	}
	due := row.ToPastDue(row.UserName)
	return &due, true, nil
}

// AllLateFees returns the whole late-fee population for export.
func (s *SQLStore) AllLateFees(ctx context.Context) ([]models.LateFee, error) {
	var rows []invoiceRow
	query := fmt.Sprintf("SELECT i.*, wd.user_name %s WHERE %s ORDER BY i.invoice_id ASC",
		invoiceJoin, lateFeePopulation)
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list late fees: %w", err)
	}
	out := make([]models.LateFee, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToLateFee(rows[i].UserName))
	}
	return out, nil
}

// AllPastDues returns the whole past-due population for export.
func (s *SQLStore) AllPastDues(ctx context.Context) ([]models.PastDue, error) {
	var rows []invoiceRow
	query := fmt.Sprintf("SELECT i.*, wd.user_name %s WHERE %s ORDER BY i.invoice_id ASC",
		invoiceJoin, pastDuePopulation)
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list past dues: %w", err)
	}
	out := make([]models.PastDue, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToPastDue(rows[i].UserName))
	}
	return out, nil
}
