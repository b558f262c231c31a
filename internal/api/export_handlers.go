package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func deref[T any](p *T) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func fmtDate(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Format("2006-01-02")
}

// writeWorkbook streams a single-sheet workbook built from header and row
// data.
func writeWorkbook(c *gin.Context, filename string, headers []string, rows [][]interface{}) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", xlsxContentType)
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		c.Error(err)
	}
}

// handleExportLateFees exports the whole late-fee population.
// ?format=json|xlsx, default json.
func (r *Router) handleExportLateFees(c *gin.Context) {
	fees, err := r.store.AllLateFees(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if c.DefaultQuery("format", "json") != "xlsx" {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": fees})
		return
	}

	headers := []string{"Invoice ID", "PMC", "Site", "Vendor", "Account No",
		"Invoice Date", "Due Date", "Current Charges", "Late Fee", "Total Due",
		"Status", "Reviewer"}
	rows := make([][]interface{}, 0, len(fees))
	for _, fee := range fees {
		rows = append(rows, []interface{}{
			fee.InvoiceID, fee.PMCName, fee.SiteName, fee.VendorName, fee.VendorAccountNo,
			fmtDate(fee.InvoiceDate), fmtDate(fee.DueDate), fee.CurrentCharges,
			fee.LateFeeAmount, fee.TotalAmountDue, fee.Status, deref(fee.UserName),
		})
	}
	writeWorkbook(c, "latefees.xlsx", headers, rows)
}

// handleExportPastDues exports the whole past-due population.
func (r *Router) handleExportPastDues(c *gin.Context) {
	dues, err := r.store.AllPastDues(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if c.DefaultQuery("format", "json") != "xlsx" {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": dues})
		return
	}

	headers := []string{"Invoice ID", "PMC", "Site", "Vendor", "Account No",
		"Invoice Date", "Current Charges", "Prior Balance", "Late Fee",
		"Account Type", "Status", "Reviewer"}
	rows := make([][]interface{}, 0, len(dues))
	for _, due := range dues {
		rows = append(rows, []interface{}{
			due.InvoiceID, due.PMCName, due.SiteName, due.VendorName, due.VendorAccountNo,
			fmtDate(due.InvoiceDate), due.CurrentCharges, due.PriorBalance,
			due.LateFeeAmount, due.AccountType, due.Status, deref(due.UserName),
		})
	}
	writeWorkbook(c, "pastdues.xlsx", headers, rows)
}

// handleExportNotices exports the whole notice population.
func (r *Router) handleExportNotices(c *gin.Context) {
	items, err := r.store.AllNotices(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if c.DefaultQuery("format", "json") != "xlsx" {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": items})
		return
	}

	headers := []string{"ID", "Notice ID", "Invoice ID", "Unit", "Vendor",
		"Account No", "Site", "PMC", "Variance", "Prior Balance", "Impact",
		"Notice Date", "Type", "Status", "Reviewer"}
	rows := make([][]interface{}, 0, len(items))
	for _, item := range items {
		rows = append(rows, []interface{}{
			item.ID, deref(item.NoticeID), item.InvoiceID, item.UnitNo, item.VendorName,
			item.VendorAccountNo, item.SiteName, item.PMCName, item.VarianceAmount,
			item.PriorBalance, item.ImpactAmount, fmtDate(item.NoticeDate),
			item.NoticeType, item.Status, deref(item.UserName),
		})
	}
	writeWorkbook(c, "notices.xlsx", headers, rows)
}
