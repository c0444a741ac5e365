package registry

import (
	"strings"
	"time"

	"github.com/finbook/backend/internal/domain/shared"
)

// PersonStatus represents the status of a person record
type PersonStatus string

const (
	// PersonStatusActive is a person identified by a real CPF
	PersonStatusActive PersonStatus = "active"
	// PersonStatusAnonymous is a person created from an anonymized CPF;
	// the record exists only to group transactions under the mask
	PersonStatusAnonymous PersonStatus = "anonymous"
)

// IsValid checks if the person status is valid
func (s PersonStatus) IsValid() bool {
	switch s {
	case PersonStatusActive, PersonStatusAnonymous:
		return true
	}
	return false
}

// String returns the string representation
func (s PersonStatus) String() string {
	return string(s)
}

const (
	// DefaultPersonName is used when transaction data carries no usable name
	DefaultPersonName = "Nome não informado"
	// AnonymousPersonName is the fixed display name of anonymous records
	AnonymousPersonName = "Pessoa Anônima"
)

// Person is a canonical person record, keyed by CPF.
//
// For identified persons the CPF is stored formatted (000.000.000-00).
// For anonymous persons the CPF field holds the raw anonymized string
// exactly as it appeared in the transaction: the mask is the record's
// only identity and must round-trip unchanged.
type Person struct {
	shared.BaseAggregateRoot
	CPF      string
	FullName string
	Status   PersonStatus
	Notes    string
}

// NewPerson creates a new identified person record
func NewPerson(cpf, fullName string) (*Person, error) {
	cpf = strings.TrimSpace(cpf)
	if cpf == "" {
		return nil, shared.NewDomainError("INVALID_CPF", "CPF cannot be empty")
	}
	if len(cpf) > 20 {
		return nil, shared.NewDomainError("INVALID_CPF", "CPF cannot exceed 20 characters")
	}
	if fullName == "" {
		fullName = DefaultPersonName
	}
	if len(fullName) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Person name cannot exceed 200 characters")
	}

	person := &Person{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CPF:               cpf,
		FullName:          fullName,
		Status:            PersonStatusActive,
	}

	person.AddDomainEvent(NewPersonCreatedEvent(person))

	return person, nil
}

// NewAnonymousPerson creates a person record from an anonymized CPF.
// The masked value is stored verbatim. An empty name falls back to
// AnonymousPersonName.
func NewAnonymousPerson(maskedCPF, fullName string) (*Person, error) {
	maskedCPF = strings.TrimSpace(maskedCPF)
	if maskedCPF == "" {
		return nil, shared.NewDomainError("INVALID_CPF", "Anonymized CPF cannot be empty")
	}
	if len(maskedCPF) > 20 {
		return nil, shared.NewDomainError("INVALID_CPF", "Anonymized CPF cannot exceed 20 characters")
	}
	if fullName == "" {
		fullName = AnonymousPersonName
	}
	if len(fullName) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Person name cannot exceed 200 characters")
	}

	person := &Person{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CPF:               maskedCPF,
		FullName:          fullName,
		Status:            PersonStatusAnonymous,
	}

	person.AddDomainEvent(NewPersonCreatedEvent(person))

	return person, nil
}

// Update updates the person's name. Anonymous records are backfill-managed
// placeholders and cannot be edited.
func (p *Person) Update(fullName string) error {
	if p.Status == PersonStatusAnonymous {
		return shared.NewDomainError("INVALID_STATE", "Anonymous person records cannot be edited")
	}
	if fullName == "" {
		return shared.NewDomainError("INVALID_NAME", "Person name cannot be empty")
	}
	if len(fullName) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Person name cannot exceed 200 characters")
	}

	p.FullName = fullName
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewPersonUpdatedEvent(p))

	return nil
}

// SetNotes replaces the person's notes
func (p *Person) SetNotes(notes string) error {
	if len(notes) > 1000 {
		return shared.NewDomainError("INVALID_NOTES", "Notes cannot exceed 1000 characters")
	}
	p.Notes = notes
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// IsAnonymous returns true if this record was created from an anonymized CPF
func (p *Person) IsAnonymous() bool {
	return p.Status == PersonStatusAnonymous
}
