package registry

import (
	"strings"
	"time"

	"github.com/finbook/backend/internal/domain/shared"
)

// CompanyStatus represents the status of a company record
type CompanyStatus string

const (
	CompanyStatusActive   CompanyStatus = "active"
	CompanyStatusInactive CompanyStatus = "inactive"
)

// IsValid checks if the company status is valid
func (s CompanyStatus) IsValid() bool {
	switch s {
	case CompanyStatusActive, CompanyStatusInactive:
		return true
	}
	return false
}

// String returns the string representation
func (s CompanyStatus) String() string {
	return string(s)
}

// DefaultCountry is the country assumed for records created from
// transaction data that carries no address
const DefaultCountry = "Brasil"

// Address holds the physical address of a company.
// Records created by the counterparty backfill start with an empty
// skeleton (country only); users fill the rest in later.
type Address struct {
	Street     string `json:"street"`
	Number     string `json:"number"`
	Complement string `json:"complement"`
	District   string `json:"district"`
	City       string `json:"city"`
	State      string `json:"state"`
	ZipCode    string `json:"zip_code"`
	Country    string `json:"country"`
}

// Contacts holds the contact channels of a company
type Contacts struct {
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Website string `json:"website"`
}

// CorporatePartner is a member of a company's corporate structure
// (quadro societário), e.g. a partner, administrator or seller
type CorporatePartner struct {
	Name    string `json:"name"`
	Role    string `json:"role"`
	Country string `json:"country"`
}

// RoleSeller marks a corporate structure entry sourced from the seller
// name embedded in a transaction
const RoleSeller = "Vendedor"

// Company is a canonical company record, keyed by CNPJ.
// It is the aggregate root for company-related operations.
//
// Records arrive from two sources: user CRUD and the counterparty backfill.
// Backfilled records may carry an empty name and a checksum-invalid CNPJ;
// production data is dirty and grouping transactions under the identifier
// is still wanted, so the constructor only enforces shape limits.
type Company struct {
	shared.BaseAggregateRoot
	CNPJ               string
	Name               string
	CorporateName      string // razão social
	TradeName          string // nome fantasia
	Address            Address
	Contacts           Contacts
	CorporateStructure []CorporatePartner
	Status             CompanyStatus
}

// NewCompany creates a new company record.
// The name may be empty; the CNPJ may fail its checksum. Only blank or
// oversized identifiers are rejected.
func NewCompany(cnpj, name string) (*Company, error) {
	cnpj = strings.TrimSpace(cnpj)
	if cnpj == "" {
		return nil, shared.NewDomainError("INVALID_CNPJ", "CNPJ cannot be empty")
	}
	if len(cnpj) > 20 {
		return nil, shared.NewDomainError("INVALID_CNPJ", "CNPJ cannot exceed 20 characters")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Company name cannot exceed 200 characters")
	}

	company := &Company{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CNPJ:              cnpj,
		Name:              name,
		CorporateName:     name,
		TradeName:         name,
		Address:           Address{Country: DefaultCountry},
		Contacts:          Contacts{},
		Status:            CompanyStatusActive,
	}

	company.AddDomainEvent(NewCompanyCreatedEvent(company))

	return company, nil
}

// Update updates the company's names
func (c *Company) Update(name, corporateName, tradeName string) error {
	if len(name) > 200 || len(corporateName) > 200 || len(tradeName) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Company name cannot exceed 200 characters")
	}

	c.Name = name
	c.CorporateName = corporateName
	c.TradeName = tradeName
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewCompanyUpdatedEvent(c))

	return nil
}

// SetAddress replaces the company's address
func (c *Company) SetAddress(address Address) {
	if address.Country == "" {
		address.Country = DefaultCountry
	}
	c.Address = address
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// SetContacts replaces the company's contact channels
func (c *Company) SetContacts(contacts Contacts) {
	c.Contacts = contacts
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// AddPartner appends an entry to the corporate structure.
// Blank names are ignored; duplicates by name and role are not added twice.
func (c *Company) AddPartner(partner CorporatePartner) {
	partner.Name = strings.TrimSpace(partner.Name)
	if partner.Name == "" {
		return
	}
	if partner.Country == "" {
		partner.Country = DefaultCountry
	}
	for _, existing := range c.CorporateStructure {
		if existing.Name == partner.Name && existing.Role == partner.Role {
			return
		}
	}
	c.CorporateStructure = append(c.CorporateStructure, partner)
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// Activate sets the company status to active
func (c *Company) Activate() {
	if c.Status == CompanyStatusActive {
		return
	}
	c.Status = CompanyStatusActive
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// Deactivate sets the company status to inactive
func (c *Company) Deactivate() {
	if c.Status == CompanyStatusInactive {
		return
	}
	c.Status = CompanyStatusInactive
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// IsActive returns true if the company is active
func (c *Company) IsActive() bool {
	return c.Status == CompanyStatusActive
}
