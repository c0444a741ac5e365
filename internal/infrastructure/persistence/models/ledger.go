package models

import (
	"time"

	"github.com/finbook/backend/internal/domain/ledger"
	"github.com/finbook/backend/internal/domain/shared"
	"github.com/finbook/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionModel is the persistence model for the Transaction aggregate root.
// The counterparty value object is flattened into four columns; rows whose
// counterparty_tax_id is non empty are the candidate set for the backfill.
type TransactionModel struct {
	AggregateModel
	Description            string                   `gorm:"type:varchar(500);not null"`
	Amount                 decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	Currency               valueobject.Currency     `gorm:"type:varchar(3);not null;default:'BRL'"`
	Type                   ledger.TransactionType   `gorm:"type:varchar(20);not null;index"`
	Status                 ledger.TransactionStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	OccurredAt             time.Time                `gorm:"not null;index"`
	PaymentMethod          ledger.PaymentMethod     `gorm:"type:varchar(20);not null;default:'other'"`
	CategoryID             *uuid.UUID               `gorm:"type:uuid;index"`
	FiscalBookID           *uuid.UUID               `gorm:"type:uuid;index"`
	CounterpartyEntityID   *uuid.UUID               `gorm:"type:uuid;index"`
	CounterpartyTaxID      string                   `gorm:"type:varchar(64);index"`
	CounterpartyName       string                   `gorm:"type:varchar(200)"`
	CounterpartySellerName string                   `gorm:"type:varchar(200)"`
	Notes                  string                   `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "transactions"
}

// ToDomain converts the persistence model to a domain Transaction entity.
func (m *TransactionModel) ToDomain() *ledger.Transaction {
	return &ledger.Transaction{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		Description:   m.Description,
		Amount:        m.Amount,
		Currency:      m.Currency,
		Type:          m.Type,
		Status:        m.Status,
		OccurredAt:    m.OccurredAt,
		PaymentMethod: m.PaymentMethod,
		CategoryID:    m.CategoryID,
		FiscalBookID:  m.FiscalBookID,
		Counterparty: ledger.Counterparty{
			EntityID:   m.CounterpartyEntityID,
			TaxID:      m.CounterpartyTaxID,
			Name:       m.CounterpartyName,
			SellerName: m.CounterpartySellerName,
		},
		Notes: m.Notes,
	}
}

// FromDomain populates the persistence model from a domain Transaction entity.
func (m *TransactionModel) FromDomain(t *ledger.Transaction) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.Description = t.Description
	m.Amount = t.Amount
	m.Currency = t.Currency
	m.Type = t.Type
	m.Status = t.Status
	m.OccurredAt = t.OccurredAt
	m.PaymentMethod = t.PaymentMethod
	m.CategoryID = t.CategoryID
	m.FiscalBookID = t.FiscalBookID
	m.CounterpartyEntityID = t.Counterparty.EntityID
	m.CounterpartyTaxID = t.Counterparty.TaxID
	m.CounterpartyName = t.Counterparty.Name
	m.CounterpartySellerName = t.Counterparty.SellerName
	m.Notes = t.Notes
}

// TransactionModelFromDomain creates a new persistence model from a domain Transaction entity.
func TransactionModelFromDomain(t *ledger.Transaction) *TransactionModel {
	m := &TransactionModel{}
	m.FromDomain(t)
	return m
}

// FiscalBookModel is the persistence model for the FiscalBook aggregate root.
type FiscalBookModel struct {
	AggregateModel
	Name        string                  `gorm:"type:varchar(200);not null"`
	Year        int                     `gorm:"not null;index"`
	Description string                  `gorm:"type:text"`
	Status      ledger.FiscalBookStatus `gorm:"type:varchar(20);not null;default:'open';index"`
	ClosedAt    *time.Time
}

// TableName returns the table name for GORM
func (FiscalBookModel) TableName() string {
	return "fiscal_books"
}

// ToDomain converts the persistence model to a domain FiscalBook entity.
func (m *FiscalBookModel) ToDomain() *ledger.FiscalBook {
	return &ledger.FiscalBook{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		Name:        m.Name,
		Year:        m.Year,
		Description: m.Description,
		Status:      m.Status,
		ClosedAt:    m.ClosedAt,
	}
}

// FromDomain populates the persistence model from a domain FiscalBook entity.
func (m *FiscalBookModel) FromDomain(b *ledger.FiscalBook) {
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	m.Name = b.Name
	m.Year = b.Year
	m.Description = b.Description
	m.Status = b.Status
	m.ClosedAt = b.ClosedAt
}

// FiscalBookModelFromDomain creates a new persistence model from a domain FiscalBook entity.
func FiscalBookModelFromDomain(b *ledger.FiscalBook) *FiscalBookModel {
	m := &FiscalBookModel{}
	m.FromDomain(b)
	return m
}

// CategoryModel is the persistence model for the Category aggregate root.
// Category names are unique within a type: "Alimentação" may exist once as
// an expense category and once as an income category.
type CategoryModel struct {
	AggregateModel
	Name        string              `gorm:"type:varchar(100);not null;uniqueIndex:idx_category_name_type,priority:1"`
	Type        ledger.CategoryType `gorm:"type:varchar(20);not null;uniqueIndex:idx_category_name_type,priority:2"`
	Description string              `gorm:"type:text"`
	Color       string              `gorm:"type:varchar(20)"`
	Active      bool                `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the persistence model to a domain Category entity.
func (m *CategoryModel) ToDomain() *ledger.Category {
	return &ledger.Category{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		Name:        m.Name,
		Type:        m.Type,
		Description: m.Description,
		Color:       m.Color,
		Active:      m.Active,
	}
}

// FromDomain populates the persistence model from a domain Category entity.
func (m *CategoryModel) FromDomain(c *ledger.Category) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.Name = c.Name
	m.Type = c.Type
	m.Description = c.Description
	m.Color = c.Color
	m.Active = c.Active
}

// CategoryModelFromDomain creates a new persistence model from a domain Category entity.
func CategoryModelFromDomain(c *ledger.Category) *CategoryModel {
	m := &CategoryModel{}
	m.FromDomain(c)
	return m
}

// TransactionAttachmentModel is the persistence model for transaction attachments.
// The file content itself lives in object storage under StorageKey.
type TransactionAttachmentModel struct {
	BaseModel
	TransactionID uuid.UUID `gorm:"type:uuid;not null;index"`
	FileName      string    `gorm:"type:varchar(255);not null"`
	FileSize      int64     `gorm:"not null"`
	ContentType   string    `gorm:"type:varchar(100)"`
	StorageKey    string    `gorm:"type:varchar(500);not null"`
}

// TableName returns the table name for GORM
func (TransactionAttachmentModel) TableName() string {
	return "transaction_attachments"
}

// ToDomain converts the persistence model to a domain TransactionAttachment entity.
func (m *TransactionAttachmentModel) ToDomain() *ledger.TransactionAttachment {
	return &ledger.TransactionAttachment{
		BaseEntity:    m.BaseModel.ToDomain(),
		TransactionID: m.TransactionID,
		FileName:      m.FileName,
		FileSize:      m.FileSize,
		ContentType:   m.ContentType,
		StorageKey:    m.StorageKey,
	}
}

// FromDomain populates the persistence model from a domain TransactionAttachment entity.
func (m *TransactionAttachmentModel) FromDomain(a *ledger.TransactionAttachment) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.TransactionID = a.TransactionID
	m.FileName = a.FileName
	m.FileSize = a.FileSize
	m.ContentType = a.ContentType
	m.StorageKey = a.StorageKey
}

// TransactionAttachmentModelFromDomain creates a new persistence model from a domain TransactionAttachment entity.
func TransactionAttachmentModelFromDomain(a *ledger.TransactionAttachment) *TransactionAttachmentModel {
	m := &TransactionAttachmentModel{}
	m.FromDomain(a)
	return m
}
