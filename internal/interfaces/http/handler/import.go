package handler

import (
	"errors"
	"net/http"

	importapp "github.com/finbook/backend/internal/application/import"
	csvimport "github.com/finbook/backend/internal/infrastructure/import"
	"github.com/finbook/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

const (
	// Maximum file size for imports (10MB)
	maxImportFileSize = 10 * 1024 * 1024
)

// ImportHandler handles CSV import API endpoints
type ImportHandler struct {
	BaseHandler
	importService *importapp.TransactionImportService
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(importService *importapp.TransactionImportService) *ImportHandler {
	return &ImportHandler{importService: importService}
}

// ImportRuleDescription describes the validation applied to one CSV column
// @Description Validation rule for a transaction import column
type ImportRuleDescription struct {
	Column      string   `json:"column" example:"amount"`
	Type        string   `json:"type" example:"decimal"`
	Required    bool     `json:"required" example:"true"`
	MinLength   int      `json:"min_length,omitempty"`
	MaxLength   int      `json:"max_length,omitempty"`
	DateFormats []string `json:"date_formats,omitempty"`
}

// ImportTransactions godoc
//
//	@Summary		Import transactions from CSV
//	@Description	Parses a bank-exported CSV file and imports its rows as transactions. Row-level failures are reported without aborting the rest of the file.
//	@Tags			import
//	@ID				importTransactions
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file			formData	file	true	"CSV file to import"
//	@Param			conflict_mode	formData	string	false	"Duplicate handling"	Enums(skip, fail)	default(skip)
//	@Success		200				{object}	APIResponse[importapp.TransactionImportResult]
//	@Failure		400				{object}	ErrorResponse
//	@Failure		413				{object}	ErrorResponse
//	@Failure		415				{object}	ErrorResponse
//	@Failure		500				{object}	ErrorResponse
//	@Router			/import/transactions [post]
func (h *ImportHandler) ImportTransactions(c *gin.Context) {
	conflictMode := importapp.ConflictMode(c.PostForm("conflict_mode"))
	if conflictMode == "" {
		conflictMode = importapp.ConflictModeSkip
	}
	if !conflictMode.IsValid() {
		h.BadRequest(c, "invalid conflict_mode, must be one of: skip, fail")
		return
	}

	// Get file from form
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.BadRequest(c, "file is required")
		return
	}
	defer file.Close()

	// Check file size
	if header.Size > maxImportFileSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeValidation, "file exceeds maximum size of 10MB")
		return
	}

	// Check content type
	contentType := header.Header.Get("Content-Type")
	if contentType != "" && contentType != "text/csv" && contentType != "application/octet-stream" &&
		contentType != "text/plain" && contentType != "application/vnd.ms-excel" {
		h.Error(c, http.StatusUnsupportedMediaType, dto.ErrCodeValidation, "file must be a CSV file")
		return
	}

	result, err := h.importService.Import(c.Request.Context(), file, conflictMode)
	if err != nil {
		if errors.Is(err, csvimport.ErrEmptyFile) {
			h.BadRequest(c, "CSV file is empty")
			return
		}
		if errors.Is(err, csvimport.ErrInvalidEncoding) {
			h.BadRequest(c, "CSV file has invalid encoding, must be UTF-8")
			return
		}
		if errors.Is(err, csvimport.ErrMissingHeader) {
			h.BadRequest(c, "CSV file is missing header row")
			return
		}
		if errors.Is(err, csvimport.ErrNoDataRows) {
			h.BadRequest(c, "CSV file contains no data rows")
			return
		}
		if errors.Is(err, csvimport.ErrTooManyRows) {
			h.BadRequest(c, "CSV file exceeds the maximum number of rows")
			return
		}
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// GetValidationRules godoc
//
//	@Summary		Get import validation rules
//	@Description	Describes the columns and validation applied to transaction CSV files
//	@Tags			import
//	@ID				getImportValidationRules
//	@Produce		json
//	@Success		200	{object}	APIResponse[[]ImportRuleDescription]
//	@Router			/import/transactions/rules [get]
func (h *ImportHandler) GetValidationRules(c *gin.Context) {
	rules := h.importService.GetValidationRules()

	descriptions := make([]ImportRuleDescription, len(rules))
	for i, rule := range rules {
		descriptions[i] = ImportRuleDescription{
			Column:      rule.Column,
			Type:        string(rule.Type),
			Required:    rule.Required,
			MinLength:   rule.MinLength,
			MaxLength:   rule.MaxLength,
			DateFormats: rule.DateFormats,
		}
	}

	h.Success(c, descriptions)
}
