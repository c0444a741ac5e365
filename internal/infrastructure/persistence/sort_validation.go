package persistence

import (
	"strings"
)

// ValidateSortOrder normalizes the sort direction to ASC or DESC.
// Anything that is not ASC, in any casing, becomes DESC.
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "ASC") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField checks a user-supplied sort column against a
// whitelist. The column name ends up interpolated into ORDER BY, so
// nothing outside the whitelist may pass; invalid or empty input falls
// back to defaultField.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// auditColumns exist on every persisted entity.
var auditColumns = []string{"id", "created_at", "updated_at"}

// sortFields builds a whitelist from the shared audit columns plus the
// entity's own sortable columns.
func sortFields(entityColumns ...string) map[string]bool {
	m := make(map[string]bool, len(auditColumns)+len(entityColumns))
	for _, c := range auditColumns {
		m[c] = true
	}
	for _, c := range entityColumns {
		m[c] = true
	}
	return m
}

// TransactionSortFields contains allowed sort fields for transactions
var TransactionSortFields = sortFields(
	"description", "amount", "type", "status", "occurred_at",
	"payment_method", "category_id", "fiscal_book_id",
	"counterparty_name", "counterparty_tax_id",
)

// FiscalBookSortFields contains allowed sort fields for fiscal books
var FiscalBookSortFields = sortFields("name", "year", "status", "closed_at")

// CategorySortFields contains allowed sort fields for categories
var CategorySortFields = sortFields("name", "type", "active")

// CompanySortFields contains allowed sort fields for companies
var CompanySortFields = sortFields(
	"cnpj", "name", "corporate_name", "trade_name", "status",
)

// PersonSortFields contains allowed sort fields for persons
var PersonSortFields = sortFields("cpf", "full_name", "status")

// AttachmentSortFields contains allowed sort fields for transaction attachments
var AttachmentSortFields = sortFields(
	"transaction_id", "file_name", "file_size", "content_type",
)

// SnapshotSortFields contains allowed sort fields for balance snapshots
var SnapshotSortFields = sortFields("period_year", "period_month", "generated_at")
