package models

// RefDetail is a reference-catalog entry: a code with a display label and an
// optional parent grouping. ParentRootCauseID 0 is the "no parent" sentinel,
// so a code with parent 0 is not a root-cause child.
type RefDetail struct {
	RefCodeID         int    `json:"refCodeId" db:"ref_code_id"`
	EntityName        string `json:"entityName" db:"entity_name"`
	EntityValue       string `json:"entityValue" db:"entity_value"`
	ParentRootCauseID int    `json:"parentRootCauseId" db:"parent_root_cause_id"`
}

// RootCauseGroup is one primary root cause with its secondary causes, in
// catalog order.
type RootCauseGroup struct {
	ParentID int         `json:"parentId"`
	Causes   []RefDetail `json:"causes"`
}
