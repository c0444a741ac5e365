package registry

import (
	"time"

	"github.com/finbook/backend/internal/domain/registry"
	"github.com/google/uuid"
)

// ===================== Company DTOs =====================

// CompanyResponse represents a company in API responses
type CompanyResponse struct {
	ID                 uuid.UUID                   `json:"id"`
	CNPJ               string                      `json:"cnpj"`
	Name               string                      `json:"name"`
	CorporateName      string                      `json:"corporate_name"`
	TradeName          string                      `json:"trade_name"`
	Address            registry.Address            `json:"address"`
	Contacts           registry.Contacts           `json:"contacts"`
	CorporateStructure []registry.CorporatePartner `json:"corporate_structure"`
	Status             string                      `json:"status"`
	CreatedAt          time.Time                   `json:"created_at"`
	UpdatedAt          time.Time                   `json:"updated_at"`
	Version            int                         `json:"version"`
}

// CreateCompanyRequest represents a request to create a company.
// User-created records require a checksum-valid CNPJ; only the backfill
// engine may register identifiers that fail validation.
type CreateCompanyRequest struct {
	CNPJ          string             `json:"cnpj" binding:"required,cnpj"`
	Name          string             `json:"name" binding:"omitempty,max=200"`
	CorporateName string             `json:"corporate_name" binding:"omitempty,max=200"`
	TradeName     string             `json:"trade_name" binding:"omitempty,max=200"`
	Address       *registry.Address  `json:"address"`
	Contacts      *registry.Contacts `json:"contacts"`
}

// UpdateCompanyRequest represents a request to update a company.
// Only non-nil fields are applied.
type UpdateCompanyRequest struct {
	Name          *string            `json:"name" binding:"omitempty,max=200"`
	CorporateName *string            `json:"corporate_name" binding:"omitempty,max=200"`
	TradeName     *string            `json:"trade_name" binding:"omitempty,max=200"`
	Address       *registry.Address  `json:"address"`
	Contacts      *registry.Contacts `json:"contacts"`
	Status        *string            `json:"status" binding:"omitempty,oneof=active inactive"`
}

// AddPartnerRequest represents a request to add a corporate structure entry
type AddPartnerRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=200"`
	Role    string `json:"role" binding:"omitempty,max=100"`
	Country string `json:"country" binding:"omitempty,max=100"`
}

// CompanyListFilter defines filtering options for company list queries
type CompanyListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// ToCompanyResponse converts a domain company to a response DTO
func ToCompanyResponse(company *registry.Company) CompanyResponse {
	return CompanyResponse{
		ID:                 company.ID,
		CNPJ:               company.CNPJ,
		Name:               company.Name,
		CorporateName:      company.CorporateName,
		TradeName:          company.TradeName,
		Address:            company.Address,
		Contacts:           company.Contacts,
		CorporateStructure: company.CorporateStructure,
		Status:             company.Status.String(),
		CreatedAt:          company.CreatedAt,
		UpdatedAt:          company.UpdatedAt,
		Version:            company.Version,
	}
}

// ToCompanyListResponses converts a list of domain companies to response DTOs
func ToCompanyListResponses(companies []registry.Company) []CompanyResponse {
	responses := make([]CompanyResponse, len(companies))
	for i := range companies {
		responses[i] = ToCompanyResponse(&companies[i])
	}
	return responses
}

// ===================== Person DTOs =====================

// PersonResponse represents a person in API responses
type PersonResponse struct {
	ID        uuid.UUID `json:"id"`
	CPF       string    `json:"cpf"`
	FullName  string    `json:"full_name"`
	Status    string    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"`
}

// CreatePersonRequest represents a request to create a person.
// User-created records require a checksum-valid CPF; anonymous records
// come from the backfill engine only.
type CreatePersonRequest struct {
	CPF      string `json:"cpf" binding:"required,cpf"`
	FullName string `json:"full_name" binding:"omitempty,max=200"`
	Notes    string `json:"notes" binding:"omitempty,max=1000"`
}

// UpdatePersonRequest represents a request to update a person.
// Only non-nil fields are applied.
type UpdatePersonRequest struct {
	FullName *string `json:"full_name" binding:"omitempty,min=1,max=200"`
	Notes    *string `json:"notes" binding:"omitempty,max=1000"`
}

// PersonListFilter defines filtering options for person list queries
type PersonListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=active anonymous"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// ToPersonResponse converts a domain person to a response DTO
func ToPersonResponse(person *registry.Person) PersonResponse {
	return PersonResponse{
		ID:        person.ID,
		CPF:       person.CPF,
		FullName:  person.FullName,
		Status:    person.Status.String(),
		Notes:     person.Notes,
		CreatedAt: person.CreatedAt,
		UpdatedAt: person.UpdatedAt,
		Version:   person.Version,
	}
}

// ToPersonListResponses converts a list of domain persons to response DTOs
func ToPersonListResponses(persons []registry.Person) []PersonResponse {
	responses := make([]PersonResponse, len(persons))
	for i := range persons {
		responses[i] = ToPersonResponse(&persons[i])
	}
	return responses
}
