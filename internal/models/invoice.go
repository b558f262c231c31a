package models

import (
	"strconv"
	"time"
)

// Invoice is a row in the invoice table. Invoices are written by the
// ingestion pipeline; this service only mutates the status and resolution
// fields. PriorBalanceCalculated discriminates the two invoice populations:
// NULL = late-fee queue, non-NULL = past-due queue.
type Invoice struct {
	InvoiceID             int        `json:"invoice_id" db:"invoice_id"`
	PMCName               string     `json:"pmc_name" db:"pmc_name"`
	VendorName            string     `json:"vendor_name" db:"vendor_name"`
	VendorAccountNo       string     `json:"vendor_account_no" db:"vendor_account_no"`
	SiteID                *int       `json:"site_id,omitempty" db:"site_id"`
	SiteName              string     `json:"site_name" db:"site_name"`
	PostingDate           *time.Time `json:"posting_date,omitempty" db:"posting_date"`
	InvoiceDate           *time.Time `json:"invoice_date,omitempty" db:"invoice_date"`
	ReceivedDate          *time.Time `json:"received_date,omitempty" db:"received_date"`
	DueDate               *time.Time `json:"due_date,omitempty" db:"due_date"`
	CurrentCharges        float64    `json:"current_charges" db:"current_charges"`
	PriorBalance          float64    `json:"prior_balance" db:"prior_balance"`
	PriorBalanceCalculated *int      `json:"prior_balance_calculated,omitempty" db:"prior_balance_calculated"`
	LateFeeAmount         float64    `json:"late_fee_amount" db:"late_fee_amount"`
	TotalAmountDue        float64    `json:"total_amount_due" db:"total_amount_due"`
	HasContBFs            *int       `json:"has_cont_bfs,omitempty" db:"has_cont_bfs"`
	AccountType           string     `json:"account_type" db:"account_type"`
	IPService             string     `json:"ip_service" db:"ip_service"`
	Historical            int        `json:"historical" db:"historical"`
	InvoiceStatus         string     `json:"invoice_status" db:"invoice_status"`
	Status                int        `json:"status" db:"status"`

	// Resolution fields, written by the update engine.
	RootCause1      *int       `json:"root_cause1,omitempty" db:"root_cause1"`
	RootCause2      *int       `json:"root_cause2,omitempty" db:"root_cause2"`
	CreditMethod    *int       `json:"credit_method,omitempty" db:"credit_method"`
	ExpDateToCredit *time.Time `json:"exp_date_to_credit,omitempty" db:"exp_date_to_credit"`
	RequestStatus   *int       `json:"request_status,omitempty" db:"request_status"`
	InvoiceSource   *int       `json:"invoice_source,omitempty" db:"invoice_source"`
	WaiverStatus    *int       `json:"waiver_status,omitempty" db:"waiver_status"`
	ApprovedAmount  *float64   `json:"approved_amount,omitempty" db:"approved_amount"`
	DeclinedReason  *int       `json:"declined_reason,omitempty" db:"declined_reason"`
	Remarks         *string    `json:"remarks,omitempty" db:"remarks"`
	Notes           *string    `json:"notes,omitempty" db:"notes"`
}

// LateFee is the read projection for the late-fee queue: invoice fields
// flattened with the assigned reviewer, ids rendered as strings for the
// grid consumer. Never written back to the store.
type LateFee struct {
	InvoiceID       string     `json:"invoiceId"`
	PMCName         string     `json:"pmcName"`
	SiteName        string     `json:"siteName"`
	VendorName      string     `json:"vendorName"`
	VendorAccountNo string     `json:"vendorAccountNo"`
	PostingDate     *time.Time `json:"postingDate,omitempty"`
	InvoiceDate     *time.Time `json:"invoiceDate,omitempty"`
	ReceivedDate    *time.Time `json:"receivedDate,omitempty"`
	DueDate         *time.Time `json:"dueDate,omitempty"`
	CurrentCharges  float64    `json:"currentCharges"`
	LateFeeAmount   float64    `json:"lateFeeAmount"`
	TotalAmountDue  float64    `json:"totalAmountDue"`
	Status          int        `json:"status"`
	RootCause1      *int       `json:"rootCause1,omitempty"`
	RootCause2      *int       `json:"rootCause2,omitempty"`
	CreditMethod    *int       `json:"creditMethod,omitempty"`
	ExpDateToCredit *time.Time `json:"expDateToCredit,omitempty"`
	RequestStatus   *int       `json:"requestStatus,omitempty"`
	InvoiceSource   *int       `json:"invoiceSource,omitempty"`
	WaiverStatus    *int       `json:"waiverStatus,omitempty"`
	ApprovedAmount  *float64   `json:"approvedAmount,omitempty"`
	DeclinedReason  *int       `json:"declinedReason,omitempty"`
	Remarks         *string    `json:"remarks,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
	UserName        *string    `json:"userName,omitempty"` // assigned reviewer, from work_detail
}

// PastDue is the read projection for the past-due queue.
type PastDue struct {
	InvoiceID       string     `json:"invoiceId"`
	PMCName         string     `json:"pmcName"`
	SiteName        string     `json:"siteName"`
	VendorName      string     `json:"vendorName"`
	VendorAccountNo string     `json:"vendorAccountNo"`
	InvoiceDate     *time.Time `json:"invoiceDate,omitempty"`
	ReceivedDate    *time.Time `json:"receivedDate,omitempty"`
	CurrentCharges  float64    `json:"currentCharges"`
	PriorBalance    float64    `json:"priorBalance"`
	LateFeeAmount   float64    `json:"lateFeeAmount"`
	HasContBFs      *int       `json:"hasContBfs,omitempty"`
	AccountType     string     `json:"accountType"`
	Status          int        `json:"status"`
	RootCause1      *int       `json:"rootCause1,omitempty"`
	RootCause2      *int       `json:"rootCause2,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
	UserName        *string    `json:"userName,omitempty"`
}

// ToLateFee flattens an invoice and its (possibly absent) reviewer into the
// late-fee projection.
func (i *Invoice) ToLateFee(userName *string) LateFee {
	return LateFee{
		InvoiceID:       strconv.Itoa(i.InvoiceID),
		PMCName:         i.PMCName,
		SiteName:        i.SiteName,
		VendorName:      i.VendorName,
		VendorAccountNo: i.VendorAccountNo,
		PostingDate:     i.PostingDate,
		InvoiceDate:     i.InvoiceDate,
		ReceivedDate:    i.ReceivedDate,
		DueDate:         i.DueDate,
		CurrentCharges:  i.CurrentCharges,
		LateFeeAmount:   i.LateFeeAmount,
		TotalAmountDue:  i.TotalAmountDue,
		Status:          i.Status,
		RootCause1:      i.RootCause1,
		RootCause2:      i.RootCause2,
		CreditMethod:    i.CreditMethod,
		ExpDateToCredit: i.ExpDateToCredit,
		RequestStatus:   i.RequestStatus,
		InvoiceSource:   i.InvoiceSource,
		WaiverStatus:    i.WaiverStatus,
		ApprovedAmount:  i.ApprovedAmount,
		DeclinedReason:  i.DeclinedReason,
		Remarks:         i.Remarks,
		Notes:           i.Notes,
		UserName:        userName,
	}
}

// ToPastDue flattens an invoice into the past-due projection.
func (i *Invoice) ToPastDue(userName *string) PastDue {
	return PastDue{
		InvoiceID:       strconv.Itoa(i.InvoiceID),
		PMCName:         i.PMCName,
		SiteName:        i.SiteName,
		VendorName:      i.VendorName,
		VendorAccountNo: i.VendorAccountNo,
		InvoiceDate:     i.InvoiceDate,
		ReceivedDate:    i.ReceivedDate,
		CurrentCharges:  i.CurrentCharges,
		PriorBalance:    i.PriorBalance,
		LateFeeAmount:   i.LateFeeAmount,
		HasContBFs:      i.HasContBFs,
		AccountType:     i.AccountType,
		Status:          i.Status,
		RootCause1:      i.RootCause1,
		RootCause2:      i.RootCause2,
		Notes:           i.Notes,
		UserName:        userName,
	}
}
