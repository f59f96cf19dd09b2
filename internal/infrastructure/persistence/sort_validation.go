package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// ObligationSortFields contains allowed sort fields for obligations
var ObligationSortFields = map[string]bool{
	"id":                true,
	"created_at":        true,
	"updated_at":        true,
	"sequence_number":   true,
	"counterparty_id":   true,
	"counterparty_name": true,
	"status":            true,
	"original_amount":   true,
	"settled_amount":    true,
	"remaining_amount":  true,
	"issue_date":        true,
	"due_date":          true,
	"settlement_date":   true,
	"category":          true,
}

// SaleSortFields contains allowed sort fields for sales
var SaleSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"sale_number":   true,
	"customer_id":   true,
	"customer_name": true,
	"status":        true,
	"total":         true,
	"issue_date":    true,
	"due_date":      true,
	"finalized_at":  true,
}

// CounterpartySortFields contains allowed sort fields for counterparties
var CounterpartySortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"kind":       true,
	"document":   true,
}
