package repository

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/disputeq-io/disputeq/internal/models"
)

func seedLateFees(t *testing.T, store *MemoryStore, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		store.AddInvoice(models.Invoice{
			InvoiceID:       1000 + i,
			PMCName:         "PMC " + strconv.Itoa(i%3),
			SiteName:        "Site " + strconv.Itoa(i),
			VendorAccountNo: "ACC-" + strconv.Itoa(i),
			LateFeeAmount:   float64(i) * 1.5,
		})
	}
}

func intPtr(v int) *int { return &v }

func TestSearchLateFeesTotalCountIndependentOfPaging(t *testing.T) {
	store := NewMemoryStore()
	seedLateFees(t, store, 25)
	ctx := context.Background()

	_, total1, err := store.SearchLateFees(ctx, models.Filter{Page: 1, PageSize: 10})
	require.NoError(t, err)
	page3, total3, err := store.SearchLateFees(ctx, models.Filter{Page: 3, PageSize: 10})
	require.NoError(t, err)

	assert.Equal(t, 25, total1)
	assert.Equal(t, total1, total3)
	assert.Len(t, page3, 5)

	// A page past the end is empty but the count still covers the
	// whole filtered population.
	beyond, totalBeyond, err := store.SearchLateFees(ctx, models.Filter{Page: 9, PageSize: 10})
	require.NoError(t, err)
	assert.Empty(t, beyond)
	assert.Equal(t, 25, totalBeyond)
}

func TestSearchLateFeesPagesNeverOverlap(t *testing.T) {
	store := NewMemoryStore()
	seedLateFees(t, store, 12)
	ctx := context.Background()

	seen := make(map[string]bool)
	for p := 1; p <= 3; p++ {
		fees, _, err := store.SearchLateFees(ctx, models.Filter{Page: p, PageSize: 5})
		require.NoError(t, err)
		for _, f := range fees {
			assert.False(t, seen[f.InvoiceID], "invoice %s appeared twice", f.InvoiceID)
			seen[f.InvoiceID] = true
		}
	}
	assert.Len(t, seen, 12)
}

func TestSearchLateFeesFilters(t *testing.T) {
	store := NewMemoryStore()
	store.AddInvoice(models.Invoice{InvoiceID: 1, PMCName: "Alpha", SiteName: "Riverside Plaza", VendorAccountNo: "A-100"})
	store.AddInvoice(models.Invoice{InvoiceID: 2, PMCName: "Beta", SiteName: "Hilltop", VendorAccountNo: "B-200"})
	store.AddInvoice(models.Invoice{InvoiceID: 31, PMCName: "Alpha", SiteName: "Riverview", VendorAccountNo: "A-300"})
	ctx := context.Background()

	fees, total, err := store.SearchLateFees(ctx, models.Filter{SiteName: "river"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, fees, 2)

	fees, total, err = store.SearchLateFees(ctx, models.Filter{PMCs: []string{"Beta"}})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "2", fees[0].InvoiceID)

	// Partial id match.
	_, total, err = store.SearchLateFees(ctx, models.Filter{InvoiceID: "3"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestSearchExcludesOtherPopulation(t *testing.T) {
	store := NewMemoryStore()
	store.AddInvoice(models.Invoice{InvoiceID: 1})
	store.AddInvoice(models.Invoice{InvoiceID: 2, PriorBalanceCalculated: intPtr(1)})
	ctx := context.Background()

	fees, total, err := store.SearchLateFees(ctx, models.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "1", fees[0].InvoiceID)

	dues, total, err := store.SearchPastDues(ctx, models.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "2", dues[0].InvoiceID)
}

func TestAssignMovesInvoiceOutOfOpenQueue(t *testing.T) {
	store := NewMemoryStore()
	seedLateFees(t, store, 3)
	ctx := context.Background()

	err := store.AssignInvoices(ctx, models.AssignRequest{
		AssignerID: 9, UserID: 42, UserName: "jdoe", IDs: []int{1001},
	})
	require.NoError(t, err)

	open, total, err := store.SearchLateFees(ctx, models.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	for _, f := range open {
		assert.NotEqual(t, "1001", f.InvoiceID)
	}

	mine, total, err := store.AssignedLateFees(ctx, models.Filter{UserID: 42})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, mine, 1)
	assert.Equal(t, "1001", mine[0].InvoiceID)
	assert.Equal(t, models.StatusAssigned, mine[0].Status)
	require.NotNil(t, mine[0].UserName)
	assert.Equal(t, "jdoe", *mine[0].UserName)

	wd, ok := store.WorkDetailFor(1001)
	require.True(t, ok)
	require.NotNil(t, wd.CreatedBy)
	assert.Equal(t, 9, *wd.CreatedBy)
	require.NoError(t, wd.Validate())
}

func TestAssignConflictRollsBackWholeBatch(t *testing.T) {
	store := NewMemoryStore()
	seedLateFees(t, store, 3)
	ctx := context.Background()

	require.NoError(t, store.AssignInvoices(ctx, models.AssignRequest{
		AssignerID: 1, UserID: 7, UserName: "first", IDs: []int{1002},
	}))

	err := store.AssignInvoices(ctx, models.AssignRequest{
		AssignerID: 1, UserID: 8, UserName: "second", IDs: []int{1001, 1002},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAlreadyAssigned))

	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, 1002, conflict.ItemID)

	// Nothing from the failed batch took effect: 1001 is still open and
	// 1002 still belongs to the first reviewer.
	_, total, err := store.SearchLateFees(ctx, models.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	wd, ok := store.WorkDetailFor(1002)
	require.True(t, ok)
	assert.Equal(t, 7, *wd.UserID)
}

func TestUnassignIsIdempotent(t *testing.T) {
	store := NewMemoryStore()
	seedLateFees(t, store, 2)
	ctx := context.Background()

	require.NoError(t, store.AssignInvoices(ctx, models.AssignRequest{
		UserID: 5, UserName: "x", IDs: []int{1001},
	}))
	require.NoError(t, store.UnassignInvoices(ctx, models.UnassignRequest{IDs: []int{1001}}))
	// Releasing an item with no ledger row is not an error.
	require.NoError(t, store.UnassignInvoices(ctx, models.UnassignRequest{IDs: []int{1001, 1002}}))

	_, ok := store.WorkDetailFor(1001)
	assert.False(t, ok)

	fees, total, err := store.SearchLateFees(ctx, models.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	for _, f := range fees {
		assert.Equal(t, models.StatusUnassignedAfterReview, f.Status)
	}
}

func TestAssignUpdateUnassignLifecycle(t *testing.T) {
	store := NewMemoryStore()
	store.AddInvoice(models.Invoice{InvoiceID: 500, PMCName: "Alpha"})
	ctx := context.Background()

	require.NoError(t, store.AssignInvoices(ctx, models.AssignRequest{
		AssignerID: 1, UserID: 2, UserName: "rev", IDs: []int{500},
	}))

	remarks := "waived per policy"
	fee, found, err := store.UpdateLateFee(ctx, models.UpdateLateFee{
		InvoiceID:  "500",
		RootCause1: intPtr(101),
		Remarks:    &remarks,
	})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, models.StatusResolvedPendingReview, fee.Status)
	require.NotNil(t, fee.RootCause1)
	assert.Equal(t, 101, *fee.RootCause1)
	// Fields not in the request keep their values.
	assert.Nil(t, fee.RootCause2)
	require.NotNil(t, fee.UserName)
	assert.Equal(t, "rev", *fee.UserName)

	require.NoError(t, store.UnassignInvoices(ctx, models.UnassignRequest{IDs: []int{500}}))
	fees, _, err := store.SearchLateFees(ctx, models.Filter{})
	require.NoError(t, err)
	require.Len(t, fees, 1)
	assert.Equal(t, models.StatusUnassignedAfterReview, fees[0].Status)
	// The resolution fields survive the release.
	require.NotNil(t, fees[0].RootCause1)
	assert.Equal(t, 101, *fees[0].RootCause1)
}

func TestUpdateMissingRowReportsNotFound(t *testing.T) {
	store := NewMemoryStore()
	store.AddInvoice(models.Invoice{InvoiceID: 1, PriorBalanceCalculated: intPtr(1)})
	ctx := context.Background()

	fee, found, err := store.UpdateLateFee(ctx, models.UpdateLateFee{InvoiceID: "999"})
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, fee)

	// An invoice in the wrong population is also not found.
	fee, found, err = store.UpdateLateFee(ctx, models.UpdateLateFee{InvoiceID: "1"})
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, fee)

	due, found, err := store.UpdatePastDue(ctx, models.UpdatePastDue{InvoiceID: "404"})
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, due)

	item, found, err := store.UpdateNotice(ctx, models.UpdateNotice{ID: "404"})
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, item)
}

func TestNoticeLifecycle(t *testing.T) {
	store := NewMemoryStore()
	invID := 77
	store.AddNotice(models.Notice{ID: 1, InvoiceID: &invID, PMCName: "Gamma", SiteName: "Lakeside"})
	store.AddNotice(models.Notice{ID: 2, PMCName: "Delta"})
	ctx := context.Background()

	items, total, err := store.SearchNotices(ctx, models.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, "77", items[0].InvoiceID)

	require.NoError(t, store.AssignNotices(ctx, models.AssignRequest{
		UserID: 3, UserName: "nrev", IDs: []int{1},
	}))
	mine, total, err := store.AssignedNotices(ctx, models.Filter{UserID: 3})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, models.StatusAssigned, mine[0].Status)

	reason := 12
	item, found, err := store.UpdateNotice(ctx, models.UpdateNotice{ID: "1", ChangeReason: &reason})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, models.StatusResolvedPendingReview, item.Status)
	require.NotNil(t, item.ChangeReason)
	assert.Equal(t, 12, *item.ChangeReason)

	require.NoError(t, store.UnassignNotices(ctx, models.UnassignRequest{IDs: []int{1}}))
	open, total, err := store.SearchNotices(ctx, models.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, models.StatusUnassignedAfterReview, open[0].Status)
}

func TestPmcsPerPopulation(t *testing.T) {
	store := NewMemoryStore()
	store.AddInvoice(models.Invoice{InvoiceID: 1, PMCName: "LateOnly"})
	store.AddInvoice(models.Invoice{InvoiceID: 2, PMCName: "PastOnly", PriorBalanceCalculated: intPtr(1)})
	store.AddInvoice(models.Invoice{InvoiceID: 3, PMCName: ""})
	store.AddNotice(models.Notice{ID: 1, PMCName: "NoticeOnly"})
	ctx := context.Background()

	late, err := store.Pmcs(ctx, "latefee")
	require.NoError(t, err)
	assert.Equal(t, []string{"LateOnly"}, late)

	past, err := store.Pmcs(ctx, "pastdue")
	require.NoError(t, err)
	assert.Equal(t, []string{"PastOnly"}, past)

	notice, err := store.Pmcs(ctx, "notice")
	require.NoError(t, err)
	assert.Equal(t, []string{"NoticeOnly"}, notice)
}
