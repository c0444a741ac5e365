package persistence

import (
	"context"
	"errors"

	"github.com/finbook/backend/internal/domain/registry"
	"github.com/finbook/backend/internal/domain/shared"
	"github.com/finbook/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPersonRepository implements PersonRepository using GORM
type GormPersonRepository struct {
	db *gorm.DB
}

// NewGormPersonRepository creates a new GormPersonRepository
func NewGormPersonRepository(db *gorm.DB) *GormPersonRepository {
	return &GormPersonRepository{db: db}
}

// FindByID finds a person by its ID
func (r *GormPersonRepository) FindByID(ctx context.Context, id uuid.UUID) (*registry.Person, error) {
	var model models.PersonModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCPF finds a person by CPF exactly as stored. For identified persons
// that is the formatted CPF; for anonymous persons it is the raw anonymized
// string.
func (r *GormPersonRepository) FindByCPF(ctx context.Context, cpf string) (*registry.Person, error) {
	if cpf == "" {
		return nil, shared.NewDomainError("INVALID_CPF", "CPF cannot be empty")
	}
	var model models.PersonModel
	if err := r.db.WithContext(ctx).
		Where("cpf = ?", cpf).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all persons matching the filter
func (r *GormPersonRepository) FindAll(ctx context.Context, filter shared.Filter) ([]registry.Person, error) {
	var personModels []models.PersonModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.PersonModel{}), filter)

	if err := query.Find(&personModels).Error; err != nil {
		return nil, err
	}

	return toDomainPersons(personModels), nil
}

// FindByStatus finds persons by status
func (r *GormPersonRepository) FindByStatus(ctx context.Context, status registry.PersonStatus, filter shared.Filter) ([]registry.Person, error) {
	var personModels []models.PersonModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.PersonModel{}).
			Where("status = ?", status),
		filter,
	)

	if err := query.Find(&personModels).Error; err != nil {
		return nil, err
	}

	return toDomainPersons(personModels), nil
}

// Save creates or updates a person
func (r *GormPersonRepository) Save(ctx context.Context, person *registry.Person) error {
	model := models.PersonModelFromDomain(person)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete deletes a person
func (r *GormPersonRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.PersonModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts persons matching the filter
func (r *GormPersonRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.PersonModel{})
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByCPF checks if a person with the given CPF exists
func (r *GormPersonRepository) ExistsByCPF(ctx context.Context, cpf string) (bool, error) {
	if cpf == "" {
		return false, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.PersonModel{}).
		Where("cpf = ?", cpf).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies filter options to the query
func (r *GormPersonRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply ordering
	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, PersonSortFields, "full_name")
		query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		// Default ordering
		query = query.Order("full_name ASC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormPersonRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	// Apply search
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("full_name ILIKE ? OR cpf ILIKE ?", searchPattern, searchPattern)
	}

	// Apply additional filters
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		}
	}

	return query
}

// toDomainPersons converts a slice of persistence models to domain entities
func toDomainPersons(personModels []models.PersonModel) []registry.Person {
	persons := make([]registry.Person, len(personModels))
	for i, model := range personModels {
		persons[i] = *model.ToDomain()
	}
	return persons
}

// Ensure GormPersonRepository implements PersonRepository
var _ registry.PersonRepository = (*GormPersonRepository)(nil)
