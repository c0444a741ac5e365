package ledger

import (
	"time"

	"github.com/finbook/backend/internal/domain/shared"
)

// CategoryType represents whether a category classifies income or expenses
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

// IsValid checks if the category type is valid
func (t CategoryType) IsValid() bool {
	switch t {
	case CategoryTypeIncome, CategoryTypeExpense:
		return true
	}
	return false
}

// String returns the string representation
func (t CategoryType) String() string {
	return string(t)
}

// Category classifies transactions (e.g. "Alimentação", "Salário").
// Categories are a flat list, unique by name within a type.
type Category struct {
	shared.BaseAggregateRoot
	Name        string
	Type        CategoryType
	Description string
	Color       string
	Active      bool
}

// NewCategory creates a new active category
func NewCategory(name string, categoryType CategoryType) (*Category, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_NAME", "Category name cannot exceed 100 characters")
	}
	if !categoryType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TYPE", "Category type is not valid")
	}

	return &Category{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Type:              categoryType,
		Active:            true,
	}, nil
}

// Update updates the category's editable fields
func (c *Category) Update(name, description, color string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot exceed 100 characters")
	}

	c.Name = name
	c.Description = description
	c.Color = color
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// Deactivate hides the category from selection without deleting it
func (c *Category) Deactivate() {
	if !c.Active {
		return
	}
	c.Active = false
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// Activate makes the category selectable again
func (c *Category) Activate() {
	if c.Active {
		return
	}
	c.Active = true
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}
