package registry

import (
	"github.com/finbook/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constants
const (
	AggregateTypeCompany = "Company"
	AggregateTypePerson  = "Person"
)

// Event type constants
const (
	EventTypeCompanyCreated = "CompanyCreated"
	EventTypeCompanyUpdated = "CompanyUpdated"
	EventTypePersonCreated  = "PersonCreated"
	EventTypePersonUpdated  = "PersonUpdated"
)

// CompanyCreatedEvent is published when a new company record is created
type CompanyCreatedEvent struct {
	shared.BaseDomainEvent
	CompanyID uuid.UUID `json:"company_id"`
	CNPJ      string    `json:"cnpj"`
	Name      string    `json:"name"`
}

// NewCompanyCreatedEvent creates a new CompanyCreatedEvent
func NewCompanyCreatedEvent(company *Company) *CompanyCreatedEvent {
	return &CompanyCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCompanyCreated, AggregateTypeCompany, company.ID),
		CompanyID:       company.ID,
		CNPJ:            company.CNPJ,
		Name:            company.Name,
	}
}

// CompanyUpdatedEvent is published when a company record is updated
type CompanyUpdatedEvent struct {
	shared.BaseDomainEvent
	CompanyID uuid.UUID `json:"company_id"`
	CNPJ      string    `json:"cnpj"`
	Name      string    `json:"name"`
}

// NewCompanyUpdatedEvent creates a new CompanyUpdatedEvent
func NewCompanyUpdatedEvent(company *Company) *CompanyUpdatedEvent {
	return &CompanyUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCompanyUpdated, AggregateTypeCompany, company.ID),
		CompanyID:       company.ID,
		CNPJ:            company.CNPJ,
		Name:            company.Name,
	}
}

// PersonCreatedEvent is published when a new person record is created
type PersonCreatedEvent struct {
	shared.BaseDomainEvent
	PersonID uuid.UUID    `json:"person_id"`
	CPF      string       `json:"cpf"`
	FullName string       `json:"full_name"`
	Status   PersonStatus `json:"status"`
}

// NewPersonCreatedEvent creates a new PersonCreatedEvent
func NewPersonCreatedEvent(person *Person) *PersonCreatedEvent {
	return &PersonCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePersonCreated, AggregateTypePerson, person.ID),
		PersonID:        person.ID,
		CPF:             person.CPF,
		FullName:        person.FullName,
		Status:          person.Status,
	}
}

// PersonUpdatedEvent is published when a person record is updated
type PersonUpdatedEvent struct {
	shared.BaseDomainEvent
	PersonID uuid.UUID `json:"person_id"`
	FullName string    `json:"full_name"`
}

// NewPersonUpdatedEvent creates a new PersonUpdatedEvent
func NewPersonUpdatedEvent(person *Person) *PersonUpdatedEvent {
	return &PersonUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePersonUpdated, AggregateTypePerson, person.ID),
		PersonID:        person.ID,
		FullName:        person.FullName,
	}
}
