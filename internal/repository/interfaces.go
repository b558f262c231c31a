package repository

import (
	"context"

	"github.com/disputeq-io/disputeq/internal/models"
)

// Store is the persistence facade for the dispute queues. Search* serves
// the open-queue grids (filtered, sorted, paginated, with a total count
// over the filtered population before paging). Assigned* serves a
// reviewer's personal worklist. Update* returns (nil, false, nil) when the
// target row does not exist.
type Store interface {
	SearchLateFees(ctx context.Context, f models.Filter) ([]models.LateFee, int, error)
	AssignedLateFees(ctx context.Context, f models.Filter) ([]models.LateFee, int, error)
	SearchPastDues(ctx context.Context, f models.Filter) ([]models.PastDue, int, error)
	AssignedPastDues(ctx context.Context, f models.Filter) ([]models.PastDue, int, error)
	SearchNotices(ctx context.Context, f models.Filter) ([]models.NoticeItem, int, error)
	AssignedNotices(ctx context.Context, f models.Filter) ([]models.NoticeItem, int, error)

	AssignInvoices(ctx context.Context, req models.AssignRequest) error
	UnassignInvoices(ctx context.Context, req models.UnassignRequest) error
	AssignNotices(ctx context.Context, req models.AssignRequest) error
	UnassignNotices(ctx context.Context, req models.UnassignRequest) error

	UpdateLateFee(ctx context.Context, req models.UpdateLateFee) (*models.LateFee, bool, error)
	UpdatePastDue(ctx context.Context, req models.UpdatePastDue) (*models.PastDue, bool, error)
	UpdateNotice(ctx context.Context, req models.UpdateNotice) (*models.NoticeItem, bool, error)

	AllLateFees(ctx context.Context) ([]models.LateFee, error)
	AllPastDues(ctx context.Context) ([]models.PastDue, error)
	AllNotices(ctx context.Context) ([]models.NoticeItem, error)

	Pmcs(ctx context.Context, pageType string) ([]string, error)
	MapRootCauses(ctx context.Context) ([]models.RootCauseGroup, error)
	AllRefDetails(ctx context.Context) (map[int]string, error)
}
