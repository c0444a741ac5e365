package persistence

import (
	"context"
	"errors"

	"github.com/finbook/backend/internal/domain/ledger"
	"github.com/finbook/backend/internal/domain/shared"
	"github.com/finbook/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormFiscalBookRepository implements FiscalBookRepository using GORM
type GormFiscalBookRepository struct {
	db *gorm.DB
}

// NewGormFiscalBookRepository creates a new GormFiscalBookRepository
func NewGormFiscalBookRepository(db *gorm.DB) *GormFiscalBookRepository {
	return &GormFiscalBookRepository{db: db}
}

// FindByID finds a fiscal book by its ID
func (r *GormFiscalBookRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.FiscalBook, error) {
	var model models.FiscalBookModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByYear finds all fiscal books for a calendar year
func (r *GormFiscalBookRepository) FindByYear(ctx context.Context, year int) ([]ledger.FiscalBook, error) {
	var bookModels []models.FiscalBookModel
	if err := r.db.WithContext(ctx).
		Where("year = ?", year).
		Order("name ASC").
		Find(&bookModels).Error; err != nil {
		return nil, err
	}

	books := make([]ledger.FiscalBook, len(bookModels))
	for i, model := range bookModels {
		books[i] = *model.ToDomain()
	}
	return books, nil
}

// FindAll finds all fiscal books matching the filter
func (r *GormFiscalBookRepository) FindAll(ctx context.Context, filter shared.Filter) ([]ledger.FiscalBook, error) {
	var bookModels []models.FiscalBookModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.FiscalBookModel{}), filter)

	if err := query.Find(&bookModels).Error; err != nil {
		return nil, err
	}

	books := make([]ledger.FiscalBook, len(bookModels))
	for i, model := range bookModels {
		books[i] = *model.ToDomain()
	}
	return books, nil
}

// Save creates or updates a fiscal book
func (r *GormFiscalBookRepository) Save(ctx context.Context, book *ledger.FiscalBook) error {
	model := models.FiscalBookModelFromDomain(book)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete deletes a fiscal book
func (r *GormFiscalBookRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.FiscalBookModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts fiscal books matching the filter
func (r *GormFiscalBookRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.FiscalBookModel{})
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormFiscalBookRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply ordering
	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, FiscalBookSortFields, "year")
		query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		// Default ordering
		query = query.Order("year DESC, name ASC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormFiscalBookRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	// Apply search
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", searchPattern, searchPattern)
	}

	// Apply additional filters
	for key, value := range filter.Filters {
		switch key {
		case "year":
			query = query.Where("year = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		}
	}

	return query
}

// Ensure GormFiscalBookRepository implements FiscalBookRepository
var _ ledger.FiscalBookRepository = (*GormFiscalBookRepository)(nil)
