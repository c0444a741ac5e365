package registry

import (
	"context"
	"strings"

	"github.com/finbook/backend/internal/domain/ledger"
	"github.com/finbook/backend/internal/domain/registry"
	"github.com/finbook/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CompanyService handles company-related business operations
type CompanyService struct {
	companyRepo     registry.CompanyRepository
	transactionRepo ledger.TransactionRepository
	eventPublisher  shared.EventPublisher
}

// NewCompanyService creates a new CompanyService
func NewCompanyService(companyRepo registry.CompanyRepository, transactionRepo ledger.TransactionRepository) *CompanyService {
	return &CompanyService{
		companyRepo:     companyRepo,
		transactionRepo: transactionRepo,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *CompanyService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new company
func (s *CompanyService) Create(ctx context.Context, req CreateCompanyRequest) (*CompanyResponse, error) {
	cnpj := strings.TrimSpace(req.CNPJ)

	exists, err := s.companyRepo.ExistsByCNPJ(ctx, cnpj)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Company with this CNPJ already exists")
	}

	company, err := registry.NewCompany(cnpj, req.Name)
	if err != nil {
		return nil, err
	}

	if req.CorporateName != "" || req.TradeName != "" {
		corporateName := company.CorporateName
		if req.CorporateName != "" {
			corporateName = req.CorporateName
		}
		tradeName := company.TradeName
		if req.TradeName != "" {
			tradeName = req.TradeName
		}
		if err := company.Update(company.Name, corporateName, tradeName); err != nil {
			return nil, err
		}
	}

	if req.Address != nil {
		company.SetAddress(*req.Address)
	}
	if req.Contacts != nil {
		company.SetContacts(*req.Contacts)
	}

	if err := s.companyRepo.Save(ctx, company); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, company)

	response := ToCompanyResponse(company)
	return &response, nil
}

// GetByID gets a company by ID
func (s *CompanyService) GetByID(ctx context.Context, id uuid.UUID) (*CompanyResponse, error) {
	company, err := s.companyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToCompanyResponse(company)
	return &response, nil
}

// GetByCNPJ gets a company by its CNPJ exactly as stored
func (s *CompanyService) GetByCNPJ(ctx context.Context, cnpj string) (*CompanyResponse, error) {
	company, err := s.companyRepo.FindByCNPJ(ctx, strings.TrimSpace(cnpj))
	if err != nil {
		return nil, err
	}
	response := ToCompanyResponse(company)
	return &response, nil
}

// List lists companies with filtering and pagination
func (s *CompanyService) List(ctx context.Context, filter CompanyListFilter) ([]CompanyResponse, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  "name",
		OrderDir: "asc",
		Search:   filter.Search,
		Filters:  map[string]interface{}{},
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}

	companies, err := s.companyRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.companyRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToCompanyListResponses(companies), total, nil
}

// Update updates a company's editable fields
func (s *CompanyService) Update(ctx context.Context, id uuid.UUID, req UpdateCompanyRequest) (*CompanyResponse, error) {
	company, err := s.companyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil || req.CorporateName != nil || req.TradeName != nil {
		name := company.Name
		if req.Name != nil {
			name = *req.Name
		}
		corporateName := company.CorporateName
		if req.CorporateName != nil {
			corporateName = *req.CorporateName
		}
		tradeName := company.TradeName
		if req.TradeName != nil {
			tradeName = *req.TradeName
		}
		if err := company.Update(name, corporateName, tradeName); err != nil {
			return nil, err
		}
	}

	if req.Address != nil {
		company.SetAddress(*req.Address)
	}
	if req.Contacts != nil {
		company.SetContacts(*req.Contacts)
	}

	if req.Status != nil {
		switch registry.CompanyStatus(*req.Status) {
		case registry.CompanyStatusActive:
			company.Activate()
		case registry.CompanyStatusInactive:
			company.Deactivate()
		}
	}

	if err := s.companyRepo.Save(ctx, company); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, company)

	response := ToCompanyResponse(company)
	return &response, nil
}

// AddPartner appends an entry to the company's corporate structure
func (s *CompanyService) AddPartner(ctx context.Context, id uuid.UUID, req AddPartnerRequest) (*CompanyResponse, error) {
	company, err := s.companyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	company.AddPartner(registry.CorporatePartner{
		Name:    req.Name,
		Role:    req.Role,
		Country: req.Country,
	})

	if err := s.companyRepo.Save(ctx, company); err != nil {
		return nil, err
	}

	response := ToCompanyResponse(company)
	return &response, nil
}

// Delete deletes a company that no transaction is linked to
func (s *CompanyService) Delete(ctx context.Context, id uuid.UUID) error {
	company, err := s.companyRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.transactionRepo.Count(ctx, shared.Filter{
		Filters: map[string]interface{}{"counterparty_entity_id": company.ID},
	})
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.NewDomainError("COMPANY_IN_USE", "Company has linked transactions and cannot be deleted")
	}

	return s.companyRepo.Delete(ctx, id)
}

// publishEvents drains the aggregate's pending domain events onto the bus.
// Delivery failures never fail the registry operation; the bus logs them.
func (s *CompanyService) publishEvents(ctx context.Context, company *registry.Company) {
	if s.eventPublisher == nil {
		return
	}
	if events := company.GetDomainEvents(); len(events) > 0 {
		_ = s.eventPublisher.Publish(ctx, events...)
	}
	company.ClearDomainEvents()
}
