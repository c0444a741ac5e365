package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/finbook/backend/internal/domain/ledger"
	"github.com/finbook/backend/internal/domain/shared"
	"github.com/finbook/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormTransactionRepository implements TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// FindByID finds a transaction by its ID
func (r *GormTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	var model models.TransactionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all transactions matching the filter
func (r *GormTransactionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]ledger.Transaction, error) {
	var transactionModels []models.TransactionModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.TransactionModel{}), filter)

	if err := query.Find(&transactionModels).Error; err != nil {
		return nil, err
	}

	return toDomainTransactions(transactionModels), nil
}

// FindByPeriod finds transactions whose date falls in [from, to)
func (r *GormTransactionRepository) FindByPeriod(ctx context.Context, from, to time.Time, filter shared.Filter) ([]ledger.Transaction, error) {
	var transactionModels []models.TransactionModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.TransactionModel{}).
			Where("occurred_at >= ? AND occurred_at < ?", from, to),
		filter,
	)

	if err := query.Find(&transactionModels).Error; err != nil {
		return nil, err
	}

	return toDomainTransactions(transactionModels), nil
}

// FindByFiscalBook finds transactions attached to a fiscal book
func (r *GormTransactionRepository) FindByFiscalBook(ctx context.Context, bookID uuid.UUID, filter shared.Filter) ([]ledger.Transaction, error) {
	var transactionModels []models.TransactionModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.TransactionModel{}).
			Where("fiscal_book_id = ?", bookID),
		filter,
	)

	if err := query.Find(&transactionModels).Error; err != nil {
		return nil, err
	}

	return toDomainTransactions(transactionModels), nil
}

// FindByCounterpartyEntity finds transactions linked to a canonical registry record
func (r *GormTransactionRepository) FindByCounterpartyEntity(ctx context.Context, entityID uuid.UUID, filter shared.Filter) ([]ledger.Transaction, error) {
	var transactionModels []models.TransactionModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.TransactionModel{}).
			Where("counterparty_entity_id = ?", entityID),
		filter,
	)

	if err := query.Find(&transactionModels).Error; err != nil {
		return nil, err
	}

	return toDomainTransactions(transactionModels), nil
}

// FindWithEmbeddedCounterparty finds all transactions that still carry a raw
// counterparty identifier, ordered by creation time. Relinking clears the
// embedded columns, so processed rows drop out of this set on their own.
func (r *GormTransactionRepository) FindWithEmbeddedCounterparty(ctx context.Context) ([]ledger.Transaction, error) {
	var transactionModels []models.TransactionModel
	if err := r.db.WithContext(ctx).
		Where("counterparty_tax_id <> ''").
		Order("created_at ASC").
		Find(&transactionModels).Error; err != nil {
		return nil, err
	}

	return toDomainTransactions(transactionModels), nil
}

// RelinkCounterparty points a transaction at a canonical registry record and
// clears the embedded tax ID, name and seller name in a single atomic update
func (r *GormTransactionRepository) RelinkCounterparty(ctx context.Context, id, entityID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.TransactionModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"counterparty_entity_id":   entityID,
			"counterparty_tax_id":      "",
			"counterparty_name":        "",
			"counterparty_seller_name": "",
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Save creates or updates a transaction
func (r *GormTransactionRepository) Save(ctx context.Context, transaction *ledger.Transaction) error {
	model := models.TransactionModelFromDomain(transaction)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete deletes a transaction
func (r *GormTransactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.TransactionModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts transactions matching the filter
func (r *GormTransactionRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.TransactionModel{})
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumByPeriod sums amounts of non-cancelled transactions in [from, to)
// grouped by transaction type. Transfers count toward the transaction
// count but not toward either total.
func (r *GormTransactionRepository) SumByPeriod(ctx context.Context, from, to time.Time) (ledger.PeriodTotals, error) {
	type totalsResult struct {
		Income           decimal.Decimal
		Expense          decimal.Decimal
		TransactionCount int64
	}

	var result totalsResult

	query := r.db.WithContext(ctx).Model(&models.TransactionModel{}).
		Select(`
			COALESCE(SUM(CASE WHEN type = ? THEN amount ELSE 0 END), 0) as income,
			COALESCE(SUM(CASE WHEN type = ? THEN amount ELSE 0 END), 0) as expense,
			COUNT(*) as transaction_count
		`, ledger.TransactionTypeIncome, ledger.TransactionTypeExpense).
		Where("occurred_at >= ? AND occurred_at < ?", from, to).
		Where("status <> ?", ledger.TransactionStatusCancelled)

	if err := query.Scan(&result).Error; err != nil {
		return ledger.PeriodTotals{}, err
	}

	return ledger.PeriodTotals{
		Income:           result.Income,
		Expense:          result.Expense,
		TransactionCount: result.TransactionCount,
	}, nil
}

// ExistsByFingerprint checks if a transaction with the same occurred date,
// amount and description already exists (import dedup)
func (r *GormTransactionRepository) ExistsByFingerprint(ctx context.Context, occurredAt time.Time, amount decimal.Decimal, description string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.TransactionModel{}).
		Where("occurred_at = ? AND amount = ? AND description = ?", occurredAt, amount, description).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies filter options to the query
func (r *GormTransactionRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply ordering
	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, TransactionSortFields, "occurred_at")
		query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		// Default ordering
		query = query.Order("occurred_at DESC, created_at DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormTransactionRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	// Apply search
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("description ILIKE ? OR counterparty_name ILIKE ? OR notes ILIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	// Apply additional filters
	for key, value := range filter.Filters {
		switch key {
		case "type":
			query = query.Where("type = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "payment_method":
			query = query.Where("payment_method = ?", value)
		case "category_id":
			query = query.Where("category_id = ?", value)
		case "fiscal_book_id":
			query = query.Where("fiscal_book_id = ?", value)
		case "counterparty_entity_id":
			query = query.Where("counterparty_entity_id = ?", value)
		case "occurred_from":
			query = query.Where("occurred_at >= ?", value)
		case "occurred_to":
			query = query.Where("occurred_at < ?", value)
		}
	}

	return query
}

// toDomainTransactions converts a slice of persistence models to domain entities
func toDomainTransactions(transactionModels []models.TransactionModel) []ledger.Transaction {
	transactions := make([]ledger.Transaction, len(transactionModels))
	for i, model := range transactionModels {
		transactions[i] = *model.ToDomain()
	}
	return transactions
}

// Ensure GormTransactionRepository implements TransactionRepository
var _ ledger.TransactionRepository = (*GormTransactionRepository)(nil)
