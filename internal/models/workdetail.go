package models

import (
	"fmt"
	"time"
)

// WorkDetail is the ownership ledger: one row links a reviewer to exactly
// one work item, via InvoiceID or NoticeID but never both. At most one row
// exists per item at any time.
type WorkDetail struct {
	WorkID       int        `json:"work_id" db:"work_id"`
	InvoiceID    *int       `json:"invoice_id,omitempty" db:"invoice_id"`
	NoticeID     *int       `json:"notice_id,omitempty" db:"notice_id"`
	UserID       *int       `json:"user_id,omitempty" db:"user_id"`
	UserName     *string    `json:"user_name,omitempty" db:"user_name"`
	CreatedBy    *int       `json:"created_by,omitempty" db:"created_by"`
	CreateDate   *time.Time `json:"create_date,omitempty" db:"create_date"`
	ModifiedBy   *int       `json:"modified_by,omitempty" db:"modified_by"`
	ModifiedDate *time.Time `json:"modified_date,omitempty" db:"modified_date"`
}

// Validate checks the InvoiceID-XOR-NoticeID invariant.
func (w *WorkDetail) Validate() error {
	if w.InvoiceID == nil && w.NoticeID == nil {
		return fmt.Errorf("work detail must reference an invoice or a notice")
	}
	if w.InvoiceID != nil && w.NoticeID != nil {
		return fmt.Errorf("work detail cannot reference both an invoice and a notice")
	}
	return nil
}
