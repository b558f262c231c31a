package models

import "time"

// Filter carries the search parameters posted by the grid pages. The same
// shape serves the open-queue and assigned views; the assigned view reads
// UserID, the open view reads IsAssignedData.
type Filter struct {
	Page           int      `json:"page"`
	PageSize       int      `json:"pageSize"`
	UserID         int      `json:"userId"`
	InvoiceID      string   `json:"invoiceId"`
	SiteName       string   `json:"siteName"`
	PMCs           []string `json:"pmcs"`
	AccountNo      string   `json:"accountNo"`
	IsAssignedData bool     `json:"isAssignedData"`
	SortColumn     string   `json:"sortColumn"`
	SortDirection  string   `json:"sortDirection"`
}

// Normalize applies pagination defaults. Pages are one-based; a
// non-positive page means the first page.
func (f *Filter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 10
	}
}

// Offset returns the row offset for the normalized page.
func (f *Filter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// AssignRequest assigns a batch of item ids to a reviewer.
type AssignRequest struct {
	AssignerID int    `json:"assignerId"`
	UserID     int    `json:"userId"`
	IDs        []int  `json:"invoiceIds"`
	UserName   string `json:"userName"`
}

// UnassignRequest releases a batch of item ids.
type UnassignRequest struct {
	IDs []int `json:"invoiceIds"`
}

// UpdateLateFee carries a partial update for a late-fee invoice. Nil fields
// are left untouched.
type UpdateLateFee struct {
	InvoiceID       string     `json:"invoiceId"`
	RootCause1      *int       `json:"rootCause1"`
	RootCause2      *int       `json:"rootCause2"`
	CreditMethod    *int       `json:"creditMethod"`
	ExpDateToCredit *time.Time `json:"expDateToCredit"`
	RequestStatus   *int       `json:"requestStatus"`
	InvoiceSource   *int       `json:"invoiceSource"`
	WaiverStatus    *int       `json:"waiverStatus"`
	ApprovedAmount  *float64   `json:"approvedAmount"`
	DeclinedReason  *int       `json:"declinedReason"`
	Remarks         *string    `json:"remarks"`
}

// UpdatePastDue carries a partial update for a past-due invoice.
type UpdatePastDue struct {
	InvoiceID  string  `json:"invoiceId"`
	RootCause1 *int    `json:"rootCause1"`
	RootCause2 *int    `json:"rootCause2"`
	Notes      *string `json:"notes"`
}

// UpdateNotice carries a partial update for a dispute notice.
type UpdateNotice struct {
	ID               string  `json:"id"`
	ResolutionStatus *int    `json:"resolutionStatus"`
	ChangeReason     *int    `json:"changeReason"`
	Remarks          *string `json:"remarks"`
}
