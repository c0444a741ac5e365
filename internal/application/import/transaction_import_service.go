package importapp

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/finbook/backend/internal/domain/ledger"
	"github.com/finbook/backend/internal/domain/shared"
	"github.com/finbook/backend/internal/domain/shared/valueobject"
	csvimport "github.com/finbook/backend/internal/infrastructure/import"
	"github.com/finbook/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ConflictMode controls what happens when an imported row matches an
// existing transaction fingerprint (date, amount, description)
type ConflictMode string

const (
	// ConflictModeSkip skips rows that duplicate existing transactions
	ConflictModeSkip ConflictMode = "skip"
	// ConflictModeFail records duplicates as row errors
	ConflictModeFail ConflictMode = "fail"
)

// IsValid checks if the conflict mode is valid
func (c ConflictMode) IsValid() bool {
	switch c {
	case ConflictModeSkip, ConflictModeFail:
		return true
	}
	return false
}

// importDateFormats are the date layouts accepted in bank exports,
// tried in order
var importDateFormats = []string{"2006-01-02", "02/01/2006"}

// requiredImportHeaders are the columns every transaction CSV must carry
var requiredImportHeaders = []string{"date", "description", "amount", "type"}

// TransactionImportResult represents the result of a transaction import
type TransactionImportResult struct {
	TotalRows    int                  `json:"total_rows"`
	ImportedRows int                  `json:"imported_rows"`
	SkippedRows  int                  `json:"skipped_rows"`
	ErrorRows    int                  `json:"error_rows"`
	Errors       []csvimport.RowError `json:"errors,omitempty"`
	IsTruncated  bool                 `json:"is_truncated,omitempty"`
	TotalErrors  int                  `json:"total_errors,omitempty"`
}

// TransactionImportService imports bank-exported CSV files into the ledger.
// Imported rows keep their raw counterparty strings embedded on the
// transaction; the backfill resolves them into registry records later.
type TransactionImportService struct {
	transactionRepo ledger.TransactionRepository
	processor       *csvimport.ImportProcessor
	eventPublisher  shared.EventPublisher
	businessMetrics *telemetry.BusinessMetrics
	logger          *zap.Logger
}

// NewTransactionImportService creates a new TransactionImportService
func NewTransactionImportService(transactionRepo ledger.TransactionRepository, logger *zap.Logger) *TransactionImportService {
	return &TransactionImportService{
		transactionRepo: transactionRepo,
		processor:       csvimport.NewImportProcessor(),
		logger:          logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *TransactionImportService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics recorder
func (s *TransactionImportService) SetBusinessMetrics(metrics *telemetry.BusinessMetrics) {
	s.businessMetrics = metrics
}

// SetProcessor replaces the CSV processor, used to tighten limits in tests
func (s *TransactionImportService) SetProcessor(processor *csvimport.ImportProcessor) {
	s.processor = processor
}

// GetValidationRules returns the validation rules for transaction import.
// The counterparty tax id column is deliberately unvalidated beyond length:
// bank exports carry malformed and anonymized documents, and classifying
// them is the backfill's job, not the importer's.
func (s *TransactionImportService) GetValidationRules() []csvimport.FieldRule {
	return []csvimport.FieldRule{
		csvimport.Field("date").Required().Date().DateFormats(importDateFormats...).Build(),
		csvimport.Field("description").Required().String().MinLength(1).MaxLength(500).Build(),
		csvimport.Field("amount").Required().Custom(validateImportAmount).Build(),
		csvimport.Field("type").Required().Custom(validateTransactionType).Build(),
		csvimport.Field("payment_method").Custom(validatePaymentMethod).Build(),
		csvimport.Field("counterparty_tax_id").String().MaxLength(50).Build(),
		csvimport.Field("counterparty_name").String().MaxLength(200).Build(),
		csvimport.Field("seller_name").String().MaxLength(200).Build(),
		csvimport.Field("notes").String().MaxLength(1000).Build(),
	}
}

// validateImportAmount validates the amount field accepting both decimal
// separators
func validateImportAmount(value string) error {
	amount, err := parseImportAmount(value)
	if err != nil {
		return fmt.Errorf("invalid amount")
	}
	if !amount.IsPositive() {
		return fmt.Errorf("amount must be positive")
	}
	return nil
}

// validateTransactionType validates the type field
func validateTransactionType(value string) error {
	switch strings.ToLower(value) {
	case "income", "expense":
		return nil
	default:
		return fmt.Errorf("type must be 'income' or 'expense'")
	}
}

// validatePaymentMethod validates the optional payment_method field
func validatePaymentMethod(value string) error {
	if !ledger.PaymentMethod(strings.ToLower(value)).IsValid() {
		return fmt.Errorf("unknown payment method")
	}
	return nil
}

// parseImportAmount parses an amount that may use the Brazilian decimal
// comma (1.234,56) or the dot notation (1234.56)
func parseImportAmount(value string) (decimal.Decimal, error) {
	if strings.Contains(value, ",") {
		value = strings.ReplaceAll(value, ".", "")
		value = strings.ReplaceAll(value, ",", ".")
	}
	return decimal.NewFromString(value)
}

// parseImportDate parses a date in any of the accepted layouts
func parseImportDate(value string) (time.Time, error) {
	for _, format := range importDateFormats {
		if parsed, err := time.Parse(format, value); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("date does not match any accepted format")
}

// Import parses and imports a transaction CSV. File-level failures return
// an error; row-level failures are collected in the result and the
// remaining rows still import.
func (s *TransactionImportService) Import(ctx context.Context, reader io.Reader, conflictMode ConflictMode) (*TransactionImportResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "import", "transactions")
	defer span.End()

	if conflictMode == "" {
		conflictMode = ConflictModeSkip
	}
	if !conflictMode.IsValid() {
		err := shared.NewDomainError("INVALID_CONFLICT_MODE", "Conflict mode must be 'skip' or 'fail'")
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, "import.conflict_mode", string(conflictMode))

	parsed, err := s.processor.Process(ctx, reader, s.GetValidationRules(), requiredImportHeaders)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	result := &TransactionImportResult{TotalRows: parsed.TotalRows}
	rowErrors := parsed.Errors
	seenFingerprints := make(map[string]int)

	labels := telemetry.OperationLabels("transaction_import", nil)
	var rowErr error
	telemetry.WithProfilingLabels(ctx, labels, func(c context.Context) {
		for _, row := range parsed.ValidRows {
			select {
			case <-c.Done():
				rowErr = c.Err()
				return
			default:
			}

			if err := s.importRow(c, row, conflictMode, seenFingerprints, result, rowErrors); err != nil {
				rowErr = err
				return
			}
		}
	})
	if rowErr != nil {
		telemetry.RecordError(span, rowErr)
		return nil, rowErr
	}

	result.ErrorRows = result.TotalRows - result.ImportedRows - result.SkippedRows
	result.Errors = rowErrors.Errors()
	result.IsTruncated = rowErrors.IsTruncated()
	result.TotalErrors = rowErrors.TotalCount()

	telemetry.SetAttributes(span,
		"import.total_rows", result.TotalRows,
		"import.imported_rows", result.ImportedRows,
		"import.skipped_rows", result.SkippedRows,
		"import.error_rows", result.ErrorRows,
	)
	telemetry.SetOK(span)

	s.logger.Info("Transaction import completed",
		zap.Int("total_rows", result.TotalRows),
		zap.Int("imported_rows", result.ImportedRows),
		zap.Int("skipped_rows", result.SkippedRows),
		zap.Int("error_rows", result.ErrorRows))

	return result, nil
}

// importRow imports a single transaction row. Returning an error aborts the
// whole import; row-level failures are recorded and return nil.
func (s *TransactionImportService) importRow(
	ctx context.Context,
	row *csvimport.Row,
	conflictMode ConflictMode,
	seenFingerprints map[string]int,
	result *TransactionImportResult,
	rowErrors *csvimport.ErrorCollection,
) error {
	occurredAt, err := parseImportDate(row.Get("date"))
	if err != nil {
		rowErrors.Add(csvimport.NewRowError(row.LineNumber, "date", csvimport.ErrCodeImportValidation, err.Error()))
		return nil
	}

	amount, err := parseImportAmount(row.Get("amount"))
	if err != nil {
		rowErrors.Add(csvimport.NewRowError(row.LineNumber, "amount", csvimport.ErrCodeImportValidation, "invalid amount"))
		return nil
	}

	description := row.Get("description")
	fingerprint := fmt.Sprintf("%s|%s|%s", occurredAt.Format("2006-01-02"), amount.String(), description)

	// Duplicate within the file itself
	if firstLine, dup := seenFingerprints[fingerprint]; dup {
		if conflictMode == ConflictModeSkip {
			result.SkippedRows++
		} else {
			rowErrors.Add(csvimport.NewRowErrorWithValue(row.LineNumber, "", csvimport.ErrCodeImportDuplicateInFile,
				fmt.Sprintf("duplicate of row %d", firstLine), fingerprint))
		}
		return nil
	}
	seenFingerprints[fingerprint] = row.LineNumber

	// Duplicate against transactions already in the ledger
	exists, err := s.transactionRepo.ExistsByFingerprint(ctx, occurredAt, amount, description)
	if err != nil {
		return fmt.Errorf("failed to check for duplicate transaction: %w", err)
	}
	if exists {
		if conflictMode == ConflictModeSkip {
			result.SkippedRows++
		} else {
			rowErrors.Add(csvimport.NewRowErrorWithValue(row.LineNumber, "", csvimport.ErrCodeImportDuplicateInDB,
				"transaction already exists", fingerprint))
		}
		return nil
	}

	transactionType := ledger.TransactionType(strings.ToLower(row.Get("type")))
	transaction, err := ledger.NewTransaction(description, valueobject.NewMoneyBRL(amount), transactionType, occurredAt)
	if err != nil {
		rowErrors.Add(csvimport.NewRowError(row.LineNumber, "", csvimport.ErrCodeImportValidation, err.Error()))
		return nil
	}

	if method := strings.ToLower(row.Get("payment_method")); method != "" {
		if err := transaction.SetPaymentMethod(ledger.PaymentMethod(method)); err != nil {
			rowErrors.Add(csvimport.NewRowError(row.LineNumber, "payment_method", csvimport.ErrCodeImportValidation, err.Error()))
			return nil
		}
	}

	taxID := row.Get("counterparty_tax_id")
	counterpartyName := row.Get("counterparty_name")
	sellerName := row.Get("seller_name")
	if taxID != "" || counterpartyName != "" || sellerName != "" {
		transaction.SetEmbeddedCounterparty(taxID, counterpartyName, sellerName)
	}

	if notes := row.Get("notes"); notes != "" {
		if err := transaction.SetNotes(notes); err != nil {
			rowErrors.Add(csvimport.NewRowError(row.LineNumber, "notes", csvimport.ErrCodeImportValidation, err.Error()))
			return nil
		}
	}

	if err := s.transactionRepo.Save(ctx, transaction); err != nil {
		rowErrors.Add(csvimport.NewRowError(row.LineNumber, "", csvimport.ErrCodeImportValidation,
			"failed to save transaction: "+err.Error()))
		return nil
	}

	if s.businessMetrics != nil {
		s.businessMetrics.RecordTransactionCreated(ctx, transaction.Type.String(), transaction.Amount)
	}

	if s.eventPublisher != nil {
		events := transaction.GetDomainEvents()
		if len(events) > 0 {
			if err := s.eventPublisher.Publish(ctx, events...); err != nil {
				s.logger.Warn("Failed to publish domain events for imported transaction",
					zap.String("transaction_id", transaction.ID.String()),
					zap.Error(err))
			}
		}
		transaction.ClearDomainEvents()
	}

	result.ImportedRows++
	return nil
}
