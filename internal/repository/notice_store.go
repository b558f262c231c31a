package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/disputeq-io/disputeq/internal/models"
)

const noticeJoin = "FROM notice n LEFT JOIN work_detail wd ON wd.notice_id = n.id"

type noticeRow struct {
	models.Notice
	UserName *string `db:"user_name"`
}

// queryNotices mirrors queryInvoices for the notice table. The invoice-id
// and account filters match against the notice's correlation fields.
func (s *SQLStore) queryNotices(ctx context.Context, f models.Filter, assigned bool) ([]noticeRow, int, error) {
	f.Normalize()

	var conds []string
	var args []interface{}
	if assigned {
		conds = append(conds, "wd.user_id = ?")
		args = append(args, f.UserID)
	} else if f.IsAssignedData {
		conds = append(conds, "wd.user_id IS NOT NULL")
	} else {
		conds = append(conds, "wd.user_id IS NULL")
	}
	if f.InvoiceID != "" {
		conds = append(conds, castText("n.invoice_id")+" LIKE ?")
		args = append(args, "%"+f.InvoiceID+"%")
	}
	if f.SiteName != "" {
		conds = append(conds, "LOWER(n.site_name) LIKE LOWER(?)")
		args = append(args, "%"+f.SiteName+"%")
	}
	if f.AccountNo != "" {
		conds = append(conds, "LOWER(n.vendor_account_no) LIKE LOWER(?)")
		args = append(args, "%"+f.AccountNo+"%")
	}
	if len(f.PMCs) > 0 {
		conds = append(conds, "n.pmc_name IN (?)")
		args = append(args, f.PMCs)
	}
	where := whereClause(conds)

	countQuery, countArgs, err := s.expand("SELECT COUNT(*) "+noticeJoin+" "+where, args)
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := s.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count notices: %w", err)
	}

	order := orderBy(noticeSortColumns, "n.id", f.SortColumn, f.SortDirection)
	listQuery := fmt.Sprintf("SELECT n.*, wd.user_name %s %s %s LIMIT ? OFFSET ?", noticeJoin, where, order)
	listArgs := append(append([]interface{}{}, args...), f.PageSize, f.Offset())
	listQuery, listArgs, err = s.expand(listQuery, listArgs)
	if err != nil {
		return nil, 0, err
	}

	var rows []noticeRow
	if err := s.db.SelectContext(ctx, &rows, listQuery, listArgs...); err != nil {
		return nil, 0, fmt.Errorf("list notices: %w", err)
	}
	return rows, total, nil
}

// SearchNotices serves the notice grid.
func (s *SQLStore) SearchNotices(ctx context.Context, f models.Filter) ([]models.NoticeItem, int, error) {
	rows, total, err := s.queryNotices(ctx, f, false)
	if err != nil {
		return nil, 0, err
	}
	out := make([]models.NoticeItem, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToItem(rows[i].UserName))
	}
	return out, total, nil
}

// AssignedNotices serves a reviewer's notice worklist.
func (s *SQLStore) AssignedNotices(ctx context.Context, f models.Filter) ([]models.NoticeItem, int, error) {
	rows, total, err := s.queryNotices(ctx, f, true)
	if err != nil {
		return nil, 0, err
	}
	out := make([]models.NoticeItem, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToItem(rows[i].UserName))
	}
	return out, total, nil
}

// AssignNotices takes ownership of a batch of notices, with the same
// all-or-nothing and conflict semantics as AssignInvoices.
func (s *SQLStore) AssignNotices(ctx context.Context, req models.AssignRequest) error {
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
			tx.Rebind("SELECT work_id, user_id FROM work_detail WHERE notice_id = ?"), id)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			_, err = tx.ExecContext(ctx,
				tx.Rebind(`INSERT INTO work_detail (notice_id, user_id, user_name, created_by, create_date)
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
			tx.Rebind("UPDATE notice SET status = ? WHERE id = ?"),
			models.StatusAssigned, id); err != nil {
			return fmt.Errorf("mark notice assigned: %w", err)
		}
	}
	return tx.Commit()
}

// UnassignNotices releases a batch of notices.
func (s *SQLStore) UnassignNotices(ctx context.Context, req models.UnassignRequest) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin unassign: %w", err)
	}
	defer tx.Rollback()

	for _, id := range req.IDs {
		if _, err := tx.ExecContext(ctx,
			tx.Rebind("DELETE FROM work_detail WHERE notice_id = ?"), id); err != nil {
			return fmt.Errorf("delete work detail: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			tx.Rebind("UPDATE notice SET status = ? WHERE id = ?"),
			models.StatusUnassignedAfterReview, id); err != nil {
			return fmt.Errorf("mark notice unassigned: %w", err)
		}
	}
	return tx.Commit()
}

// UpdateNotice applies a partial resolution update to one notice. Returns
// (nil, false, nil) when the notice does not exist.
func (s *SQLStore) UpdateNotice(ctx context.Context, req models.UpdateNotice) (*models.NoticeItem, bool, error) {
	id, err := strconv.Atoi(req.ID)
	if err != nil {
		return nil, false, fmt.Errorf("invalid notice id %q: %w", req.ID, err)
	}

	sets := []string{"status = ?"}
	args := []interface{}{models.StatusResolvedPendingReview}
	if req.ResolutionStatus != nil {
		sets = append(sets, "resolution_status = ?")
		args = append(args, *req.ResolutionStatus)
	}
	if req.ChangeReason != nil {
		sets = append(sets, "change_reason = ?")
		args = append(args, *req.ChangeReason)
	}
	if req.Remarks != nil {
		sets = append(sets, "remarks = ?")
		args = append(args, *req.Remarks)
	}
	args = append(args, id)

	query := s.db.Rebind(fmt.Sprintf("UPDATE notice SET %s WHERE id = ?", joinSets(sets)))
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("update notice: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, false, err
	} else if n == 0 {
		return nil, false, nil
	}

	var row noticeRow
	fetch := s.db.Rebind("SELECT n.*, wd.user_name " + noticeJoin + " WHERE n.id = ?")
	if err := s.db.GetContext(ctx, &row, fetch, id); err != nil {
		return nil, false, err
	}
	item := row.ToItem(row.UserName)
	return &item, true, nil
}

// AllNotices returns the whole notice population for export.
func (s *SQLStore) AllNotices(ctx context.Context) ([]models.NoticeItem, error) {
	var rows []noticeRow
	query := "SELECT n.*, wd.user_name " + noticeJoin + " ORDER BY n.id ASC"
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list notices: %w", err)
	}
	out := make([]models.NoticeItem, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToItem(rows[i].UserName))
	}
	return out, nil
}
