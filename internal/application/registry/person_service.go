package registry

import (
	"context"

	"github.com/finbook/backend/internal/domain/ledger"
	"github.com/finbook/backend/internal/domain/registry"
	"github.com/finbook/backend/internal/domain/shared"
	"github.com/finbook/backend/internal/domain/taxdoc"
	"github.com/google/uuid"
)

// PersonService handles person-related business operations
type PersonService struct {
	personRepo      registry.PersonRepository
	transactionRepo ledger.TransactionRepository
	validator       taxdoc.Validator
	eventPublisher  shared.EventPublisher
}

// NewPersonService creates a new PersonService
func NewPersonService(personRepo registry.PersonRepository, transactionRepo ledger.TransactionRepository) *PersonService {
	return &PersonService{
		personRepo:      personRepo,
		transactionRepo: transactionRepo,
		validator:       taxdoc.NewChecksumValidator(),
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *PersonService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new identified person. The CPF is stored formatted
// (000.000.000-00) so lookups match records created by the backfill.
func (s *PersonService) Create(ctx context.Context, req CreatePersonRequest) (*PersonResponse, error) {
	cpf := s.validator.FormatCPF(req.CPF)

	exists, err := s.personRepo.ExistsByCPF(ctx, cpf)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Person with this CPF already exists")
	}

	person, err := registry.NewPerson(cpf, req.FullName)
	if err != nil {
		return nil, err
	}

	if req.Notes != "" {
		if err := person.SetNotes(req.Notes); err != nil {
			return nil, err
		}
	}

	if err := s.personRepo.Save(ctx, person); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, person)

	response := ToPersonResponse(person)
	return &response, nil
}

// GetByID gets a person by ID
func (s *PersonService) GetByID(ctx context.Context, id uuid.UUID) (*PersonResponse, error) {
	person, err := s.personRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToPersonResponse(person)
	return &response, nil
}

// List lists persons with filtering and pagination
func (s *PersonService) List(ctx context.Context, filter PersonListFilter) ([]PersonResponse, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  "full_name",
		OrderDir: "asc",
		Search:   filter.Search,
		Filters:  map[string]interface{}{},
	}

	var persons []registry.Person
	var err error
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
		persons, err = s.personRepo.FindByStatus(ctx, registry.PersonStatus(filter.Status), domainFilter)
	} else {
		persons, err = s.personRepo.FindAll(ctx, domainFilter)
	}
	if err != nil {
		return nil, 0, err
	}

	total, err := s.personRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToPersonListResponses(persons), total, nil
}

// Update updates a person's editable fields
func (s *PersonService) Update(ctx context.Context, id uuid.UUID, req UpdatePersonRequest) (*PersonResponse, error) {
	person, err := s.personRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		if err := person.Update(*req.FullName); err != nil {
			return nil, err
		}
	}
	if req.Notes != nil {
		if err := person.SetNotes(*req.Notes); err != nil {
			return nil, err
		}
	}

	if err := s.personRepo.Save(ctx, person); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, person)

	response := ToPersonResponse(person)
	return &response, nil
}

// Delete deletes a person that no transaction is linked to
func (s *PersonService) Delete(ctx context.Context, id uuid.UUID) error {
	person, err := s.personRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.transactionRepo.Count(ctx, shared.Filter{
		Filters: map[string]interface{}{"counterparty_entity_id": person.ID},
	})
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.NewDomainError("PERSON_IN_USE", "Person has linked transactions and cannot be deleted")
	}

	return s.personRepo.Delete(ctx, id)
}

// publishEvents drains the aggregate's pending domain events onto the bus.
// Delivery failures never fail the registry operation; the bus logs them.
func (s *PersonService) publishEvents(ctx context.Context, person *registry.Person) {
	if s.eventPublisher == nil {
		return
	}
	if events := person.GetDomainEvents(); len(events) > 0 {
		_ = s.eventPublisher.Publish(ctx, events...)
	}
	person.ClearDomainEvents()
}
