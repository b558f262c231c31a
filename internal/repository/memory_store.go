package repository

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/disputeq-io/disputeq/internal/models"
)

// MemoryStore is an in-memory Store for tests and local development. It
// mirrors the SQL store's semantics, including conflict handling and the
// stable identity ordering.
type MemoryStore struct {
	mu            sync.RWMutex
	invoices      map[int]*models.Invoice
	notices       map[int]*models.Notice
	workByInvoice map[int]*models.WorkDetail
	workByNotice  map[int]*models.WorkDetail
	refDetails    []models.RefDetail
	nextWorkID    int
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		invoices:      make(map[int]*models.Invoice),
		notices:       make(map[int]*models.Notice),
		workByInvoice: make(map[int]*models.WorkDetail),
		workByNotice:  make(map[int]*models.WorkDetail),
		nextWorkID:    1,
	}
}

// AddInvoice seeds an invoice.
func (m *MemoryStore) AddInvoice(inv models.Invoice) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invoices[inv.InvoiceID] = &inv
}

// AddNotice seeds a notice.
func (m *MemoryStore) AddNotice(n models.Notice) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notices[n.ID] = &n
}

// AddRefDetail seeds a reference-catalog entry.
func (m *MemoryStore) AddRefDetail(d models.RefDetail) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refDetails = append(m.refDetails, d)
}

// WorkDetailFor returns the ledger row for an invoice, if any.
func (m *MemoryStore) WorkDetailFor(invoiceID int) (*models.WorkDetail, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	wd, ok := m.workByInvoice[invoiceID]
	if !ok {
		return nil, false
	}
	cp := *wd
	return &cp, true
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func matchesPMC(pmcs []string, name string) bool {
	if len(pmcs) == 0 {
		return true
	}
	for _, p := range pmcs {
		if p == name {
			return true
		}
	}
	return false
}

func (m *MemoryStore) invoiceMatches(inv *models.Invoice, f models.Filter) bool {
	if f.InvoiceID != "" && !strings.Contains(strconv.Itoa(inv.InvoiceID), f.InvoiceID) {
		return false
	}
	if f.SiteName != "" && !containsFold(inv.SiteName, f.SiteName) {
		return false
	}
	if f.AccountNo != "" && !containsFold(inv.VendorAccountNo, f.AccountNo) {
		return false
	}
	return matchesPMC(f.PMCs, inv.PMCName)
}

// collectInvoices applies population, assignment scope and grid filters
// under the read lock, returning matching invoices in identity order.
func (m *MemoryStore) collectInvoices(f models.Filter, pastDue, assigned bool) []*models.Invoice {
	var out []*models.Invoice
	for _, inv := range m.invoices {
		if pastDue != (inv.PriorBalanceCalculated != nil) {
			continue
		}
		wd := m.workByInvoice[inv.InvoiceID]
		owned := wd != nil && wd.UserID != nil
		if assigned {
			if !owned || *wd.UserID != f.UserID {
				continue
			}
		} else if f.IsAssignedData != owned {
			continue
		}
		if !m.invoiceMatches(inv, f) {
			continue
		}
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InvoiceID < out[j].InvoiceID })
	return out
}

func sortInvoices(rows []*models.Invoice, column, direction string) {
	desc := strings.EqualFold(direction, "desc")
	var less func(a, b *models.Invoice) bool
	switch column {
	case "pmcName":
		less = func(a, b *models.Invoice) bool { return a.PMCName < b.PMCName }
	case "siteName":
		less = func(a, b *models.Invoice) bool { return a.SiteName < b.SiteName }
	case "vendorName":
		less = func(a, b *models.Invoice) bool { return a.VendorName < b.VendorName }
	case "currentCharges":
		less = func(a, b *models.Invoice) bool { return a.CurrentCharges < b.CurrentCharges }
	case "lateFeeAmount":
		less = func(a, b *models.Invoice) bool { return a.LateFeeAmount < b.LateFeeAmount }
	case "status":
		less = func(a, b *models.Invoice) bool { return a.Status < b.Status }
	case "invoiceId":
		less = func(a, b *models.Invoice) bool { return a.InvoiceID < b.InvoiceID }
	default:
		// Unknown column: keep identity order.
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if desc {
			return less(rows[j], rows[i])
		}
		return less(rows[i], rows[j])
	})
}

func page[T any](rows []T, f models.Filter) []T {
	off := f.Offset()
	if off >= len(rows) {
		return nil
	}
	end := off + f.PageSize
	if end > len(rows) {
		end = len(rows)
	}
	return rows[off:end]
}

func (m *MemoryStore) invoiceUserName(id int) *string {
	if wd := m.workByInvoice[id]; wd != nil {
		return wd.UserName
	}
	return nil
}

func (m *MemoryStore) queryLateFees(f models.Filter, assigned bool) ([]models.LateFee, int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f.Normalize()
	rows := m.collectInvoices(f, false, assigned)
	sortInvoices(rows, f.SortColumn, f.SortDirection)
	total := len(rows)
	out := make([]models.LateFee, 0, f.PageSize)
	for _, inv := range page(rows, f) {
		out = append(out, inv.ToLateFee(m.invoiceUserName(inv.InvoiceID)))
	}
	return out, total
}

func (m *MemoryStore) queryPastDues(f models.Filter, assigned bool) ([]models.PastDue, int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f.Normalize()
	rows := m.collectInvoices(f, true, assigned)
	sortInvoices(rows, f.SortColumn, f.SortDirection)
	total := len(rows)
	out := make([]models.PastDue, 0, f.PageSize)
	for _, inv := range page(rows, f) {
		out = append(out, inv.ToPastDue(m.invoiceUserName(inv.InvoiceID)))
	}
	return out, total
}

func (m *MemoryStore) SearchLateFees(_ context.Context, f models.Filter) ([]models.LateFee, int, error) {
	fees, total := m.queryLateFees(f, false)
	return fees, total, nil
}

func (m *MemoryStore) AssignedLateFees(_ context.Context, f models.Filter) ([]models.LateFee, int, error) {
	fees, total := m.queryLateFees(f, true)
	return fees, total, nil
}

func (m *MemoryStore) SearchPastDues(_ context.Context, f models.Filter) ([]models.PastDue, int, error) {
	dues, total := m.queryPastDues(f, false)
	return dues, total, nil
}

func (m *MemoryStore) AssignedPastDues(_ context.Context, f models.Filter) ([]models.PastDue, int, error) {
	dues, total := m.queryPastDues(f, true)
	return dues, total, nil
}

func (m *MemoryStore) noticeMatches(n *models.Notice, f models.Filter) bool {
	if f.InvoiceID != "" {
		if n.InvoiceID == nil || !strings.Contains(strconv.Itoa(*n.InvoiceID), f.InvoiceID) {
			return false
		}
	}
	if f.SiteName != "" && !containsFold(n.SiteName, f.SiteName) {
		return false
	}
	if f.AccountNo != "" && !containsFold(n.VendorAccountNo, f.AccountNo) {
		return false
	}
	return matchesPMC(f.PMCs, n.PMCName)
}

func (m *MemoryStore) queryNoticeItems(f models.Filter, assigned bool) ([]models.NoticeItem, int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f.Normalize()
	var rows []*models.Notice
	for _, n := range m.notices {
		wd := m.workByNotice[n.ID]
		owned := wd != nil && wd.UserID != nil
		if assigned {
			if !owned || *wd.UserID != f.UserID {
				continue
			}
		} else if f.IsAssignedData != owned {
			continue
		}
		if !m.noticeMatches(n, f) {
			continue
		}
		rows = append(rows, n)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	total := len(rows)
	out := make([]models.NoticeItem, 0, f.PageSize)
	for _, n := range page(rows, f) {
		var userName *string
		if wd := m.workByNotice[n.ID]; wd != nil {
			userName = wd.UserName
		}
		out = append(out, n.ToItem(userName))
	}
	return out, total
}

func (m *MemoryStore) SearchNotices(_ context.Context, f models.Filter) ([]models.NoticeItem, int, error) {
	items, total := m.queryNoticeItems(f, false)
	return items, total, nil
}

func (m *MemoryStore) AssignedNotices(_ context.Context, f models.Filter) ([]models.NoticeItem, int, error) {
	items, total := m.queryNoticeItems(f, true)
	return items, total, nil
}

// assign implements the shared assignment transaction over one of the two
// ledgers. Validation runs before any mutation so a conflict leaves the
// store untouched.
func (m *MemoryStore) assign(ledger map[int]*models.WorkDetail, req models.AssignRequest, invoice bool) error {
	for _, id := range req.IDs {
		if wd, ok := ledger[id]; ok && wd.UserID != nil {
			return &ConflictError{ItemID: id}
		}
	}
	now := time.Now().UTC()
	for _, id := range req.IDs {
		id := id
		userID := req.UserID
		userName := req.UserName
		assigner := req.AssignerID
		if wd, ok := ledger[id]; ok {
			wd.UserID = &userID
			wd.UserName = &userName
			wd.ModifiedBy = &assigner
			wd.ModifiedDate = &now
		} else {
			wd := &models.WorkDetail{
				WorkID:     m.nextWorkID,
				UserID:     &userID,
				UserName:   &userName,
				CreatedBy:  &assigner,
				CreateDate: &now,
			}
			if invoice {
				wd.InvoiceID = &id
			} else {
				wd.NoticeID = &id
			}
			m.nextWorkID++
			ledger[id] = wd
		}
		if invoice {
			if inv, ok := m.invoices[id]; ok {
				inv.Status = models.StatusAssigned
			}
		} else if n, ok := m.notices[id]; ok {
			n.Status = models.StatusAssigned
		}
	}
	return nil
}

func (m *MemoryStore) AssignInvoices(_ context.Context, req models.AssignRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.assign(m.workByInvoice, req, true)
}

func (m *MemoryStore) AssignNotices(_ context.Context, req models.AssignRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.assign(m.workByNotice, req, false)
}

func (m *MemoryStore) UnassignInvoices(_ context.Context, req models.UnassignRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range req.IDs {
		delete(m.workByInvoice, id)
		if inv, ok := m.invoices[id]; ok {
			inv.Status = models.StatusUnassignedAfterReview
		}
	}
	return nil
}

func (m *MemoryStore) UnassignNotices(_ context.Context, req models.UnassignRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range req.IDs {
		delete(m.workByNotice, id)
		if n, ok := m.notices[id]; ok {
			n.Status = models.StatusUnassignedAfterReview
		}
	}
	return nil
}

func (m *MemoryStore) UpdateLateFee(_ context.Context, req models.UpdateLateFee) (*models.LateFee, bool, error) {
	id, err := strconv.Atoi(req.InvoiceID)
	if err != nil {
		return nil, false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invoices[id]
	if !ok || inv.PriorBalanceCalculated != nil {
		return nil, false, nil
	}
	if req.RootCause1 != nil {
		inv.RootCause1 = req.RootCause1
	}
	if req.RootCause2 != nil {
		inv.RootCause2 = req.RootCause2
	}
	if req.CreditMethod != nil {
		inv.CreditMethod = req.CreditMethod
	}
	if req.ExpDateToCredit != nil {
		inv.ExpDateToCredit = req.ExpDateToCredit
	}
	if req.RequestStatus != nil {
		inv.RequestStatus = req.RequestStatus
	}
	if req.InvoiceSource != nil {
		inv.InvoiceSource = req.InvoiceSource
	}
	if req.WaiverStatus != nil {
		inv.WaiverStatus = req.WaiverStatus
	}
	if req.ApprovedAmount != nil {
		inv.ApprovedAmount = req.ApprovedAmount
	}
	if req.DeclinedReason != nil {
		inv.DeclinedReason = req.DeclinedReason
	}
	if req.Remarks != nil {
		inv.Remarks = req.Remarks
	}
	inv.Status = models.StatusResolvedPendingReview
	fee := inv.ToLateFee(m.invoiceUserName(id))
	return &fee, true, nil
}

func (m *MemoryStore) UpdatePastDue(_ context.Context, req models.UpdatePastDue) (*models.PastDue, bool, error) {
	id, err := strconv.Atoi(req.InvoiceID)
	if err != nil {
		return nil, false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invoices[id]
	if !ok || inv.PriorBalanceCalculated == nil {
		return nil, false, nil
	}
	if req.RootCause1 != nil {
		inv.RootCause1 = req.RootCause1
	}
	if req.RootCause2 != nil {
		inv.RootCause2 = req.RootCause2
	}
	if req.Notes != nil {
		inv.Notes = req.Notes
	}
	inv.Status = models.StatusResolvedPendingReview
	due := inv.ToPastDue(m.invoiceUserName(id))
	return &due, true, nil
}

func (m *MemoryStore) UpdateNotice(_ context.Context, req models.UpdateNotice) (*models.NoticeItem, bool, error) {
	id, err := strconv.Atoi(req.ID)
	if err != nil {
		return nil, false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notices[id]
	if !ok {
		return nil, false, nil
	}
	if req.ResolutionStatus != nil {
		n.ResolutionStatus = req.ResolutionStatus
	}
	if req.ChangeReason != nil {
		n.ChangeReason = req.ChangeReason
	}
	if req.Remarks != nil {
		n.Remarks = req.Remarks
	}
	n.Status = models.StatusResolvedPendingReview
	var userName *string
	if wd := m.workByNotice[id]; wd != nil {
		userName = wd.UserName
	}
	item := n.ToItem(userName)
	return &item, true, nil
}

func (m *MemoryStore) AllLateFees(_ context.Context) ([]models.LateFee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var rows []*models.Invoice
	for _, inv := range m.invoices {
		if inv.PriorBalanceCalculated == nil {
			rows = append(rows, inv)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].InvoiceID < rows[j].InvoiceID })
	out := make([]models.LateFee, 0, len(rows))
	for _, inv := range rows {
		out = append(out, inv.ToLateFee(m.invoiceUserName(inv.InvoiceID)))
	}
	return out, nil
}

func (m *MemoryStore) AllPastDues(_ context.Context) ([]models.PastDue, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var rows []*models.Invoice
	for _, inv := range m.invoices {
		if inv.PriorBalanceCalculated != nil {
			rows = append(rows, inv)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].InvoiceID < rows[j].InvoiceID })
	out := make([]models.PastDue, 0, len(rows))
	for _, inv := range rows {
		out = append(out, inv.ToPastDue(m.invoiceUserName(inv.InvoiceID)))
	}
	return out, nil
}

func (m *MemoryStore) AllNotices(_ context.Context) ([]models.NoticeItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var rows []*models.Notice
	for _, n := range m.notices {
		rows = append(rows, n)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	out := make([]models.NoticeItem, 0, len(rows))
	for _, n := range rows {
		var userName *string
		if wd := m.workByNotice[n.ID]; wd != nil {
			userName = wd.UserName
		}
		out = append(out, n.ToItem(userName))
	}
	return out, nil
}

func (m *MemoryStore) Pmcs(_ context.Context, pageType string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[string]bool)
	var pmcs []string
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			pmcs = append(pmcs, name)
		}
	}
	switch pageType {
	case "notice":
		for _, n := range m.notices {
			add(n.PMCName)
		}
	case "latefee":
		for _, inv := range m.invoices {
			if inv.PriorBalanceCalculated == nil {
				add(inv.PMCName)
			}
		}
	default:
		for _, inv := range m.invoices {
			if inv.PriorBalanceCalculated != nil {
				add(inv.PMCName)
			}
		}
	}
	sort.Strings(pmcs)
	return pmcs, nil
}

func (m *MemoryStore) MapRootCauses(_ context.Context) ([]models.RootCauseGroup, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	details := append([]models.RefDetail(nil), m.refDetails...)
	sort.Slice(details, func(i, j int) bool { return details[i].RefCodeID < details[j].RefCodeID })
	return GroupRootCauses(details), nil
}

func (m *MemoryStore) AllRefDetails(_ context.Context) (map[int]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return CatalogMap(m.refDetails), nil
}
