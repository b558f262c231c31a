package models

import (
	"strconv"
	"time"
)

// Notice is a row in the notice table: a dispute notice raised against an
// invoice. NoticeID/InvoiceID correlate back to the upstream systems.
type Notice struct {
	ID                 int        `json:"id" db:"id"`
	NoticeID           *int       `json:"notice_id,omitempty" db:"notice_id"`
	InvoiceID          *int       `json:"invoice_id,omitempty" db:"invoice_id"`
	CdsEntrySequenceID *int       `json:"cds_entry_sequence_id,omitempty" db:"cds_entry_sequence_id"`
	UnitNo             string     `json:"unit_no" db:"unit_no"`
	AccountType        string     `json:"account_type" db:"account_type"`
	VendorAccountNo    string     `json:"vendor_account_no" db:"vendor_account_no"`
	VendorName         string     `json:"vendor_name" db:"vendor_name"`
	SiteID             *int       `json:"site_id,omitempty" db:"site_id"`
	SiteName           string     `json:"site_name" db:"site_name"`
	PMCName            string     `json:"pmc_name" db:"pmc_name"`
	VarianceAmount     float64    `json:"variance_amount" db:"variance_amount"`
	PriorBalance       float64    `json:"prior_balance" db:"prior_balance"`
	ImpactAmount       float64    `json:"impact_amount" db:"impact_amount"`
	ImpactDate         *time.Time `json:"impact_date,omitempty" db:"impact_date"`
	PostingDate        *time.Time `json:"posting_date,omitempty" db:"posting_date"`
	NoticeDate         *time.Time `json:"notice_date,omitempty" db:"notice_date"`
	InsertDate         *time.Time `json:"insert_date,omitempty" db:"insert_date"`
	ProcessorName      string     `json:"processor_name" db:"processor_name"`
	NoticeStatus       string     `json:"notice_status" db:"notice_status"`
	NoticeType         string     `json:"notice_type" db:"notice_type"`
	Status             int        `json:"status" db:"status"`

	// Resolution fields, written by the update engine.
	ResolutionStatus *int    `json:"resolution_status,omitempty" db:"resolution_status"`
	ChangeReason     *int    `json:"change_reason,omitempty" db:"change_reason"`
	Remarks          *string `json:"remarks,omitempty" db:"remarks"`
}

// NoticeItem is the read projection for the notice queue.
type NoticeItem struct {
	ID               int        `json:"id"`
	NoticeID         *int       `json:"noticeId,omitempty"`
	InvoiceID        string     `json:"invoiceId"`
	UnitNo           string     `json:"unitNo"`
	AccountType      string     `json:"accountType"`
	VendorAccountNo  string     `json:"vendorAccountNo"`
	VendorName       string     `json:"vendorName"`
	SiteName         string     `json:"siteName"`
	PMCName          string     `json:"pmcName"`
	VarianceAmount   float64    `json:"varianceAmount"`
	PriorBalance     float64    `json:"priorBalance"`
	ImpactAmount     float64    `json:"impactAmount"`
	ImpactDate       *time.Time `json:"impactDate,omitempty"`
	PostingDate      *time.Time `json:"postingDate,omitempty"`
	NoticeDate       *time.Time `json:"noticeDate,omitempty"`
	ProcessorName    string     `json:"processorName"`
	NoticeStatus     string     `json:"noticeStatus"`
	NoticeType       string     `json:"noticeType"`
	Status           int        `json:"status"`
	ResolutionStatus *int       `json:"resolutionStatus,omitempty"`
	ChangeReason     *int       `json:"changeReason,omitempty"`
	Remarks          *string    `json:"remarks,omitempty"`
	UserName         *string    `json:"userName,omitempty"`
}

// ToItem flattens a notice and its (possibly absent) reviewer into the
// notice projection.
func (n *Notice) ToItem(userName *string) NoticeItem {
	invoiceID := ""
	if n.InvoiceID != nil {
		invoiceID = strconv.Itoa(*n.InvoiceID)
	}
	return NoticeItem{
		ID:               n.ID,
		NoticeID:         n.NoticeID,
		InvoiceID:        invoiceID,
		UnitNo:           n.UnitNo,
		AccountType:      n.AccountType,
		VendorAccountNo:  n.VendorAccountNo,
		VendorName:       n.VendorName,
		SiteName:         n.SiteName,
		PMCName:          n.PMCName,
		VarianceAmount:   n.VarianceAmount,
		PriorBalance:     n.PriorBalance,
		ImpactAmount:     n.ImpactAmount,
		ImpactDate:       n.ImpactDate,
		PostingDate:      n.PostingDate,
		NoticeDate:       n.NoticeDate,
		ProcessorName:    n.ProcessorName,
		NoticeStatus:     n.NoticeStatus,
		NoticeType:       n.NoticeType,
		Status:           n.Status,
		ResolutionStatus: n.ResolutionStatus,
		ChangeReason:     n.ChangeReason,
		Remarks:          n.Remarks,
		UserName:         userName,
	}
}
