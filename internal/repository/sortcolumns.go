package repository

import (
	"fmt"
	"strings"
)

// Sort allowlists per grid. Keys are the camelCase column names the grids
// post; values are the underlying columns. Anything not listed falls back
// to the identity column so a hand-crafted request can never inject SQL.
var lateFeeSortColumns = map[string]string{
	"invoiceId":       "i.invoice_id",
	"pmcName":         "i.pmc_name",
	"siteName":        "i.site_name",
	"vendorName":      "i.vendor_name",
	"vendorAccountNo": "i.vendor_account_no",
	"postingDate":     "i.posting_date",
	"invoiceDate":     "i.invoice_date",
	"receivedDate":    "i.received_date",
	"dueDate":         "i.due_date",
	"currentCharges":  "i.current_charges",
	"lateFeeAmount":   "i.late_fee_amount",
	"totalAmountDue":  "i.total_amount_due",
	"status":          "i.status",
	"userName":        "wd.user_name",
}

var pastDueSortColumns = map[string]string{
	"invoiceId":       "i.invoice_id",
	"pmcName":         "i.pmc_name",
	"siteName":        "i.site_name",
	"vendorName":      "i.vendor_name",
	"vendorAccountNo": "i.vendor_account_no",
	"invoiceDate":     "i.invoice_date",
	"receivedDate":    "i.received_date",
	"currentCharges":  "i.current_charges",
	"priorBalance":    "i.prior_balance",
	"lateFeeAmount":   "i.late_fee_amount",
	"accountType":     "i.account_type",
	"status":          "i.status",
	"userName":        "wd.user_name",
}

var noticeSortColumns = map[string]string{
	"id":              "n.id",
	"noticeId":        "n.notice_id",
	"invoiceId":       "n.invoice_id",
	"unitNo":          "n.unit_no",
	"vendorName":      "n.vendor_name",
	"vendorAccountNo": "n.vendor_account_no",
	"siteName":        "n.site_name",
	"pmcName":         "n.pmc_name",
	"varianceAmount":  "n.variance_amount",
	"priorBalance":    "n.prior_balance",
	"impactAmount":    "n.impact_amount",
	"impactDate":      "n.impact_date",
	"postingDate":     "n.posting_date",
	"noticeDate":      "n.notice_date",
	"noticeStatus":    "n.notice_status",
	"noticeType":      "n.notice_type",
	"status":          "n.status",
	"userName":        "wd.user_name",
}

// orderBy builds a deterministic ORDER BY clause. Unknown columns sort by
// the identity column ascending; every ordering gets the identity column as
// a stable tiebreaker so pages never overlap.
func orderBy(allowed map[string]string, identity, column, direction string) string {
	col, ok := allowed[column]
	if !ok {
		return fmt.Sprintf("ORDER BY %s ASC", identity)
	}
	dir := "ASC"
	if strings.EqualFold(direction, "desc") {
		dir = "DESC"
	}
	if col == identity {
		return fmt.Sprintf("ORDER BY %s %s", col, dir)
	}
	return fmt.Sprintf("ORDER BY %s %s, %s ASC", col, dir, identity)
}
