package report

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/finbook/backend/internal/domain/ledger"
	"github.com/finbook/backend/internal/domain/registry"
	"github.com/finbook/backend/internal/domain/shared"
	"github.com/finbook/backend/internal/domain/snapshot"
	"github.com/finbook/backend/internal/infrastructure/reportpdf"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// statementPageSize is the repository page size used when collecting all
// transactions for a statement
const statementPageSize = 500

// StatementPDFResponse is a rendered statement ready for download
type StatementPDFResponse struct {
	FileName  string `json:"file_name"`
	PDFData   []byte `json:"-"`
	PageCount int    `json:"page_count"`
}

// FiscalBookReportService assembles ledger data into printable statements.
// Counterparty and category names are resolved at render time so the
// statement reflects the registry as it stands, not as it was when the
// transactions were recorded.
type FiscalBookReportService struct {
	bookRepo        ledger.FiscalBookRepository
	transactionRepo ledger.TransactionRepository
	categoryRepo    ledger.CategoryRepository
	companyRepo     registry.CompanyRepository
	personRepo      registry.PersonRepository
	engine          *reportpdf.TemplateEngine
	renderer        reportpdf.PDFRenderer
	logger          *zap.Logger
}

// NewFiscalBookReportService creates a new FiscalBookReportService
func NewFiscalBookReportService(
	bookRepo ledger.FiscalBookRepository,
	transactionRepo ledger.TransactionRepository,
	categoryRepo ledger.CategoryRepository,
	companyRepo registry.CompanyRepository,
	personRepo registry.PersonRepository,
	engine *reportpdf.TemplateEngine,
	renderer reportpdf.PDFRenderer,
	logger *zap.Logger,
) *FiscalBookReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FiscalBookReportService{
		bookRepo:        bookRepo,
		transactionRepo: transactionRepo,
		categoryRepo:    categoryRepo,
		companyRepo:     companyRepo,
		personRepo:      personRepo,
		engine:          engine,
		renderer:        renderer,
		logger:          logger,
	}
}

// ExportFiscalBook renders all transactions attached to a fiscal book as
// an A4 PDF statement
func (s *FiscalBookReportService) ExportFiscalBook(ctx context.Context, bookID uuid.UUID) (*StatementPDFResponse, error) {
	book, err := s.bookRepo.FindByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Fiscal book not found")
		}
		return nil, fmt.Errorf("failed to get fiscal book: %w", err)
	}

	transactions, err := s.collectTransactions(ctx, func(filter shared.Filter) ([]ledger.Transaction, error) {
		return s.transactionRepo.FindByFiscalBook(ctx, bookID, filter)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load fiscal book transactions: %w", err)
	}

	data := &reportpdf.StatementData{
		Title:       "Livro Fiscal " + book.Name,
		Subtitle:    book.Description,
		Period:      strconv.Itoa(book.Year),
		Status:      string(book.Status),
		GeneratedAt: time.Now(),
	}
	if err := s.fillStatement(ctx, data, transactions); err != nil {
		return nil, err
	}

	fileName := fmt.Sprintf("livro-fiscal-%d-%s.pdf", book.Year, slugify(book.Name))
	return s.renderStatement(ctx, data, fileName)
}

// ExportMonthlyStatement renders all transactions of a calendar month as
// an A4 PDF statement, regardless of fiscal book membership
func (s *FiscalBookReportService) ExportMonthlyStatement(ctx context.Context, year, month int) (*StatementPDFResponse, error) {
	period, err := snapshot.NewPeriod(year, time.Month(month))
	if err != nil {
		return nil, err
	}

	transactions, err := s.collectTransactions(ctx, func(filter shared.Filter) ([]ledger.Transaction, error) {
		return s.transactionRepo.FindByPeriod(ctx, period.Start(), period.End(), filter)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions for period: %w", err)
	}

	data := &reportpdf.StatementData{
		Title:       "Extrato Mensal",
		Period:      period.String(),
		GeneratedAt: time.Now(),
	}
	if err := s.fillStatement(ctx, data, transactions); err != nil {
		return nil, err
	}

	fileName := fmt.Sprintf("extrato-%s.pdf", period.String())
	return s.renderStatement(ctx, data, fileName)
}

// collectTransactions pages through a repository query until it drains
func (s *FiscalBookReportService) collectTransactions(ctx context.Context, fetch func(shared.Filter) ([]ledger.Transaction, error)) ([]ledger.Transaction, error) {
	var all []ledger.Transaction
	for page := 1; ; page++ {
		filter := shared.Filter{
			Page:     page,
			PageSize: statementPageSize,
			OrderBy:  "occurred_at",
			OrderDir: "asc",
		}
		batch, err := fetch(filter)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < statementPageSize {
			return all, nil
		}
	}
}

// fillStatement converts transactions into statement lines and totals.
// Cancelled transactions appear on the statement but are excluded from
// the totals.
func (s *FiscalBookReportService) fillStatement(ctx context.Context, data *reportpdf.StatementData, transactions []ledger.Transaction) error {
	categoryNames := make(map[uuid.UUID]string)
	counterpartyNames := make(map[uuid.UUID]string)

	lines := make([]reportpdf.StatementLine, 0, len(transactions))
	totalIncome := decimal.Zero
	totalExpense := decimal.Zero

	for i := range transactions {
		tx := &transactions[i]

		line := reportpdf.StatementLine{
			Date:          tx.OccurredAt,
			Description:   tx.Description,
			PaymentMethod: string(tx.PaymentMethod),
			Type:          string(tx.Type),
			Status:        string(tx.Status),
			Amount:        tx.Amount,
		}

		if tx.CategoryID != nil {
			name, err := s.categoryName(ctx, *tx.CategoryID, categoryNames)
			if err != nil {
				return err
			}
			line.CategoryName = name
		}

		name, err := s.counterpartyName(ctx, tx, counterpartyNames)
		if err != nil {
			return err
		}
		line.CounterpartyName = name

		lines = append(lines, line)

		if tx.Status != ledger.TransactionStatusCancelled {
			switch tx.Type {
			case ledger.TransactionTypeIncome:
				totalIncome = totalIncome.Add(tx.Amount)
			case ledger.TransactionTypeExpense:
				totalExpense = totalExpense.Add(tx.Amount)
			}
		}
	}

	data.Lines = lines
	data.TotalIncome = totalIncome
	data.TotalExpense = totalExpense
	data.NetBalance = totalIncome.Sub(totalExpense)
	data.TransactionCount = len(lines)
	return nil
}

// categoryName resolves a category name, caching lookups per statement
func (s *FiscalBookReportService) categoryName(ctx context.Context, id uuid.UUID, cache map[uuid.UUID]string) (string, error) {
	if name, ok := cache[id]; ok {
		return name, nil
	}

	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			cache[id] = ""
			return "", nil
		}
		return "", fmt.Errorf("failed to resolve category: %w", err)
	}

	cache[id] = category.Name
	return category.Name, nil
}

// counterpartyName resolves the display name for a transaction's
// counterparty. Linked transactions read the registry record; unlinked
// ones fall back to whatever raw data the source carried.
func (s *FiscalBookReportService) counterpartyName(ctx context.Context, tx *ledger.Transaction, cache map[uuid.UUID]string) (string, error) {
	if !tx.Counterparty.IsLinked() {
		if tx.Counterparty.Name != "" {
			return tx.Counterparty.Name, nil
		}
		return tx.Counterparty.TaxID, nil
	}

	entityID := *tx.Counterparty.EntityID
	if name, ok := cache[entityID]; ok {
		return name, nil
	}

	name, err := s.registryDisplayName(ctx, entityID)
	if err != nil {
		return "", err
	}
	cache[entityID] = name
	return name, nil
}

// registryDisplayName looks an entity up in the company registry first,
// then the person registry. The entity id alone does not say which table
// it lives in.
func (s *FiscalBookReportService) registryDisplayName(ctx context.Context, entityID uuid.UUID) (string, error) {
	company, err := s.companyRepo.FindByID(ctx, entityID)
	if err == nil {
		return companyDisplayName(company), nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return "", fmt.Errorf("failed to resolve counterparty: %w", err)
	}

	person, err := s.personRepo.FindByID(ctx, entityID)
	if err == nil {
		return person.FullName, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return "", fmt.Errorf("failed to resolve counterparty: %w", err)
	}

	s.logger.Warn("linked counterparty missing from registry",
		zap.String("entity_id", entityID.String()))
	return "", nil
}

// renderStatement runs the template engine and the PDF renderer
func (s *FiscalBookReportService) renderStatement(ctx context.Context, data *reportpdf.StatementData, fileName string) (*StatementPDFResponse, error) {
	html, err := s.engine.RenderStatement(ctx, data)
	if err != nil {
		s.logger.Error("statement template rendering failed", zap.Error(err))
		return nil, fmt.Errorf("failed to render statement template: %w", err)
	}

	result, err := s.renderer.Render(ctx, &reportpdf.RenderRequest{
		HTML:       html,
		Margins:    reportpdf.DefaultMargins(),
		Title:      data.Title,
		FooterHTML: reportpdf.StatementFooterHTML,
	})
	if err != nil {
		s.logger.Error("statement PDF rendering failed", zap.Error(err))
		return nil, fmt.Errorf("failed to render statement PDF: %w", err)
	}

	s.logger.Info("statement exported",
		zap.String("file_name", fileName),
		zap.Int("transactions", data.TransactionCount),
		zap.Int("pages", result.PageCount))

	return &StatementPDFResponse{
		FileName:  fileName,
		PDFData:   result.PDFData,
		PageCount: result.PageCount,
	}, nil
}

// companyDisplayName prefers the trade name, then the corporate name,
// then the raw imported name
func companyDisplayName(company *registry.Company) string {
	if company.TradeName != "" {
		return company.TradeName
	}
	if company.CorporateName != "" {
		return company.CorporateName
	}
	return company.Name
}

// slugify turns a display name into a file name fragment
func slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteRune('-')
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}
