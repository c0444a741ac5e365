package models

import (
	"encoding/json"

	"github.com/finbook/backend/internal/domain/registry"
	"github.com/finbook/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// logger for model conversion errors (silent failures are logged for debugging)
var modelLogger = zap.L().Named("registry.models")

// CompanyModel is the persistence model for the Company aggregate root.
// The CNPJ is stored exactly as the domain holds it (formatted) and is
// globally unique: one row per legal entity.
type CompanyModel struct {
	AggregateModel
	CNPJ                   string                 `gorm:"type:varchar(20);not null;uniqueIndex"`
	Name                   string                 `gorm:"type:varchar(200);not null"`
	CorporateName          string                 `gorm:"type:varchar(200)"`
	TradeName              string                 `gorm:"type:varchar(200)"`
	AddressJSON            string                 `gorm:"column:address;type:jsonb;default:'{}'"`
	ContactsJSON           string                 `gorm:"column:contacts;type:jsonb;default:'{}'"`
	CorporateStructureJSON string                 `gorm:"column:corporate_structure;type:jsonb;default:'[]'"`
	Status                 registry.CompanyStatus `gorm:"type:varchar(20);not null;default:'active';index"`
}

// TableName returns the table name for GORM
func (CompanyModel) TableName() string {
	return "companies"
}

// ToDomain converts the persistence model to a domain Company entity.
func (m *CompanyModel) ToDomain() *registry.Company {
	company := &registry.Company{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		CNPJ:               m.CNPJ,
		Name:               m.Name,
		CorporateName:      m.CorporateName,
		TradeName:          m.TradeName,
		CorporateStructure: make([]registry.CorporatePartner, 0),
		Status:             m.Status,
	}

	if m.AddressJSON != "" && m.AddressJSON != "{}" {
		var address registry.Address
		if err := json.Unmarshal([]byte(m.AddressJSON), &address); err != nil {
			modelLogger.Warn("failed to parse address JSON",
				zap.String("cnpj", m.CNPJ),
				zap.String("raw_json", m.AddressJSON),
				zap.Error(err))
		} else {
			company.Address = address
		}
	}

	if m.ContactsJSON != "" && m.ContactsJSON != "{}" {
		var contacts registry.Contacts
		if err := json.Unmarshal([]byte(m.ContactsJSON), &contacts); err != nil {
			modelLogger.Warn("failed to parse contacts JSON",
				zap.String("cnpj", m.CNPJ),
				zap.String("raw_json", m.ContactsJSON),
				zap.Error(err))
		} else {
			company.Contacts = contacts
		}
	}

	if m.CorporateStructureJSON != "" && m.CorporateStructureJSON != "[]" {
		var partners []registry.CorporatePartner
		if err := json.Unmarshal([]byte(m.CorporateStructureJSON), &partners); err != nil {
			modelLogger.Warn("failed to parse corporate_structure JSON",
				zap.String("cnpj", m.CNPJ),
				zap.String("raw_json", m.CorporateStructureJSON),
				zap.Error(err))
		} else {
			company.CorporateStructure = partners
		}
	}

	return company
}

// FromDomain populates the persistence model from a domain Company entity.
func (m *CompanyModel) FromDomain(c *registry.Company) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.CNPJ = c.CNPJ
	m.Name = c.Name
	m.CorporateName = c.CorporateName
	m.TradeName = c.TradeName
	m.Status = c.Status

	if jsonBytes, err := json.Marshal(c.Address); err == nil {
		m.AddressJSON = string(jsonBytes)
	}
	if jsonBytes, err := json.Marshal(c.Contacts); err == nil {
		m.ContactsJSON = string(jsonBytes)
	}
	if c.CorporateStructure == nil {
		m.CorporateStructureJSON = "[]"
	} else if jsonBytes, err := json.Marshal(c.CorporateStructure); err == nil {
		m.CorporateStructureJSON = string(jsonBytes)
	}
}

// CompanyModelFromDomain creates a new persistence model from a domain Company entity.
func CompanyModelFromDomain(c *registry.Company) *CompanyModel {
	m := &CompanyModel{}
	m.FromDomain(c)
	return m
}

// PersonModel is the persistence model for the Person aggregate root.
// The CPF column holds the formatted CPF for identified persons and the
// raw anonymized string for anonymous ones; either way it is the unique
// key the backfill resolves against.
type PersonModel struct {
	AggregateModel
	CPF      string                `gorm:"type:varchar(64);not null;uniqueIndex"`
	FullName string                `gorm:"type:varchar(200);not null"`
	Status   registry.PersonStatus `gorm:"type:varchar(20);not null;default:'active';index"`
	Notes    string                `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PersonModel) TableName() string {
	return "persons"
}

// ToDomain converts the persistence model to a domain Person entity.
func (m *PersonModel) ToDomain() *registry.Person {
	return &registry.Person{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		CPF:      m.CPF,
		FullName: m.FullName,
		Status:   m.Status,
		Notes:    m.Notes,
	}
}

// FromDomain populates the persistence model from a domain Person entity.
func (m *PersonModel) FromDomain(p *registry.Person) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.CPF = p.CPF
	m.FullName = p.FullName
	m.Status = p.Status
	m.Notes = p.Notes
}

// PersonModelFromDomain creates a new persistence model from a domain Person entity.
func PersonModelFromDomain(p *registry.Person) *PersonModel {
	m := &PersonModel{}
	m.FromDomain(p)
	return m
}
