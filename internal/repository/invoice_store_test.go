package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/disputeq-io/disputeq/internal/models"
)

func newMockStore(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSQLStore(sqlx.NewDb(db, "sqlmock")), mock
}

func TestSearchLateFeesQueriesOpenQueue(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT COUNT(*) FROM invoice i LEFT JOIN work_detail wd ON wd.invoice_id = i.invoice_id "+
			"WHERE i.prior_balance_calculated IS NULL AND wd.user_id IS NULL")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT i.*, wd.user_name FROM invoice i LEFT JOIN work_detail wd ON wd.invoice_id = i.invoice_id "+
			"WHERE i.prior_balance_calculated IS NULL AND wd.user_id IS NULL "+
			"ORDER BY i.invoice_id ASC LIMIT ? OFFSET ?")).
		WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"invoice_id", "pmc_name", "site_name", "status", "user_name"}).
			AddRow(101, "Alpha", "Riverside", 0, nil).
			AddRow(102, "Beta", "Hilltop", 0, nil))

	fees, total, err := store.SearchLateFees(context.Background(), models.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, fees, 2)
	assert.Equal(t, "101", fees[0].InvoiceID)
	assert.Nil(t, fees[0].UserName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchLateFeesAppliesFiltersAndSort(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT COUNT(*) FROM invoice i LEFT JOIN work_detail wd ON wd.invoice_id = i.invoice_id "+
			"WHERE i.prior_balance_calculated IS NULL AND wd.user_id IS NOT NULL "+
			"AND LOWER(i.site_name) LIKE LOWER(?) AND i.pmc_name IN (?, ?)")).
		WithArgs("%river%", "Alpha", "Beta").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT i.*, wd.user_name FROM invoice i LEFT JOIN work_detail wd ON wd.invoice_id = i.invoice_id "+
			"WHERE i.prior_balance_calculated IS NULL AND wd.user_id IS NOT NULL "+
			"AND LOWER(i.site_name) LIKE LOWER(?) AND i.pmc_name IN (?, ?) "+
			"ORDER BY i.pmc_name DESC, i.invoice_id ASC LIMIT ? OFFSET ?")).
		WithArgs("%river%", "Alpha", "Beta", 5, 5).
		WillReturnRows(sqlmock.NewRows([]string{"invoice_id", "pmc_name", "site_name", "status", "user_name"}).
			AddRow(103, "Beta", "Riverview", 25000, "jdoe"))

	fees, total, err := store.SearchLateFees(context.Background(), models.Filter{
		Page: 2, PageSize: 5,
		SiteName:       "river",
		PMCs:           []string{"Alpha", "Beta"},
		IsAssignedData: true,
		SortColumn:     "pmcName",
		SortDirection:  "desc",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, fees, 1)
	require.NotNil(t, fees[0].UserName)
	assert.Equal(t, "jdoe", *fees[0].UserName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignedLateFeesScopesToReviewer(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT COUNT(*) FROM invoice i LEFT JOIN work_detail wd ON wd.invoice_id = i.invoice_id "+
			"WHERE i.prior_balance_calculated IS NULL AND wd.user_id = ?")).
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	mock.ExpectQuery("SELECT i\\..*").
		WithArgs(42, 10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"invoice_id"}))

	fees, total, err := store.AssignedLateFees(context.Background(), models.Filter{UserID: 42})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, fees)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignInvoicesCreatesLedgerAndMarksAssigned(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT work_id, user_id FROM work_detail WHERE invoice_id = ?")).
		WithArgs(101).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO work_detail (invoice_id, user_id, user_name, created_by, create_date) VALUES (?, ?, ?, ?, ?)")).
		WithArgs(101, 42, "jdoe", 9, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE invoice SET status = ? WHERE invoice_id = ?")).
		WithArgs(models.StatusAssigned, 101).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.AssignInvoices(context.Background(), models.AssignRequest{
		AssignerID: 9, UserID: 42, UserName: "jdoe", IDs: []int{101},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignInvoicesConflictRollsBack(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT work_id, user_id FROM work_detail WHERE invoice_id = ?")).
		WithArgs(101).
		WillReturnRows(sqlmock.NewRows([]string{"work_id", "user_id"}).AddRow(5, 7))
	mock.ExpectRollback()

	err := store.AssignInvoices(context.Background(), models.AssignRequest{
		UserID: 42, UserName: "jdoe", IDs: []int{101},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAlreadyAssigned))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignInvoicesReclaimsStaleLedgerRow(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT work_id, user_id FROM work_detail WHERE invoice_id = ?")).
		WithArgs(101).
		WillReturnRows(sqlmock.NewRows([]string{"work_id", "user_id"}).AddRow(5, nil))
	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE work_detail SET user_id = ?, user_name = ?, modified_by = ?, modified_date = ? WHERE work_id = ?")).
		WithArgs(42, "jdoe", 9, sqlmock.AnyArg(), 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE invoice SET status = ? WHERE invoice_id = ?")).
		WithArgs(models.StatusAssigned, 101).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.AssignInvoices(context.Background(), models.AssignRequest{
		AssignerID: 9, UserID: 42, UserName: "jdoe", IDs: []int{101},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUnassignInvoicesTolerantOfMissingLedger(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(
		"DELETE FROM work_detail WHERE invoice_id = ?")).
		WithArgs(101).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE invoice SET status = ? WHERE invoice_id = ?")).
		WithArgs(models.StatusUnassignedAfterReview, 101).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.UnassignInvoices(context.Background(), models.UnassignRequest{IDs: []int{101}})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateLateFeeSetsOnlyProvidedFields(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE invoice SET root_cause1 = ?, remarks = ?, status = ? "+
			"WHERE invoice_id = ? AND prior_balance_calculated IS NULL")).
		WithArgs(101, "waived", models.StatusResolvedPendingReview, 500).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT i.*, wd.user_name FROM invoice i LEFT JOIN work_detail wd ON wd.invoice_id = i.invoice_id "+
			"WHERE i.invoice_id = ? AND i.prior_balance_calculated IS NULL")).
		WithArgs(500).
		WillReturnRows(sqlmock.NewRows([]string{"invoice_id", "status", "root_cause1", "remarks", "user_name"}).
			AddRow(500, models.StatusResolvedPendingReview, 101, "waived", "rev"))

	remarks := "waived"
	fee, found, err := store.UpdateLateFee(context.Background(), models.UpdateLateFee{
		InvoiceID:  "500",
		RootCause1: intPtr(101),
		Remarks:    &remarks,
	})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, models.StatusResolvedPendingReview, fee.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateLateFeeMissingRow(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("UPDATE invoice SET .*").
		WillReturnResult(sqlmock.NewResult(0, 0))

	fee, found, err := store.UpdateLateFee(context.Background(), models.UpdateLateFee{InvoiceID: "999"})
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, fee)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateLateFeeRejectsNonNumericID(t *testing.T) {
	store, _ := newMockStore(t)

	_, _, err := store.UpdateLateFee(context.Background(), models.UpdateLateFee{InvoiceID: "abc"})
	require.Error(t, err)
}

func TestPmcsLateFeeQuery(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT DISTINCT pmc_name FROM invoice WHERE prior_balance_calculated IS NULL AND pmc_name <> '' ORDER BY pmc_name ASC")).
		WillReturnRows(sqlmock.NewRows([]string{"pmc_name"}).AddRow("Alpha").AddRow("Beta"))

	pmcs, err := store.Pmcs(context.Background(), "latefee")
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "Beta"}, pmcs)
	require.NoError(t, mock.ExpectationsWereMet())
}
