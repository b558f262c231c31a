package repository

import (
	"context"
	"fmt"

	"github.com/disputeq-io/disputeq/internal/models"
)

// Pmcs returns the distinct PMC names present in the given queue, for the
// grid filter dropdowns. pageType "latefee" reads the late-fee population,
// "notice" the notice table, anything else the past-due population.
func (s *SQLStore) Pmcs(ctx context.Context, pageType string) ([]string, error) {
	var query string
	switch pageType {
	case "latefee":
		query = "SELECT DISTINCT pmc_name FROM invoice WHERE prior_balance_calculated IS NULL AND pmc_name <> '' ORDER BY pmc_name ASC"
	case "notice":
		query = "SELECT DISTINCT pmc_name FROM notice WHERE pmc_name <> '' ORDER BY pmc_name ASC"
	default:
		query = "SELECT DISTINCT pmc_name FROM invoice WHERE prior_balance_calculated IS NOT NULL AND pmc_name <> '' ORDER BY pmc_name ASC"
	}

	var pmcs []string
	if err := s.db.SelectContext(ctx, &pmcs, query); err != nil {
		return nil, fmt.Errorf("list pmcs: %w", err)
	}
	return pmcs, nil
}

// MapRootCauses groups the secondary root causes under their primary cause.
// Entries whose parent is the 0 sentinel are top-level codes, not children,
// and are excluded. Groups and children keep catalog (id) order.
func (s *SQLStore) MapRootCauses(ctx context.Context) ([]models.RootCauseGroup, error) {
	var details []models.RefDetail
	query := "SELECT ref_code_id, entity_name, entity_value, parent_root_cause_id FROM ref_detail ORDER BY ref_code_id ASC"
	if err := s.db.SelectContext(ctx, &details, query); err != nil {
		return nil, fmt.Errorf("list ref details: %w", err)
	}
	return GroupRootCauses(details), nil
}

// AllRefDetails returns the code-to-label catalog. The 0 -> "" entry is
// always present so consumers can render unset codes as blank.
func (s *SQLStore) AllRefDetails(ctx context.Context) (map[int]string, error) {
	var details []models.RefDetail
	query := "SELECT ref_code_id, entity_name, entity_value, parent_root_cause_id FROM ref_detail ORDER BY ref_code_id ASC"
	if err := s.db.SelectContext(ctx, &details, query); err != nil {
		return nil, fmt.Errorf("list ref details: %w", err)
	}
	return CatalogMap(details), nil
}

// GroupRootCauses builds the parent-ordered root-cause groups from a
// catalog slice.
func GroupRootCauses(details []models.RefDetail) []models.RootCauseGroup {
	index := make(map[int]int)
	var groups []models.RootCauseGroup
	for _, d := range details {
		if d.ParentRootCauseID == 0 {
			continue
		}
		i, ok := index[d.ParentRootCauseID]
		if !ok {
			i = len(groups)
			index[d.ParentRootCauseID] = i
			groups = append(groups, models.RootCauseGroup{ParentID: d.ParentRootCauseID})
		}
		groups[i].Causes = append(groups[i].Causes, d)
	}
	return groups
}

// CatalogMap flattens the catalog to id -> label with the 0 sentinel.
func CatalogMap(details []models.RefDetail) map[int]string {
	out := map[int]string{0: ""}
	for _, d := range details {
		out[d.RefCodeID] = d.EntityValue
	}
	return out
}
