package handler

import (
	"context"

	ledgerapp "github.com/finbook/backend/internal/application/ledger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TransactionHandler handles transaction-related API endpoints
type TransactionHandler struct {
	BaseHandler
	transactionService *ledgerapp.TransactionService
	attachmentService  *ledgerapp.AttachmentService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(
	transactionService *ledgerapp.TransactionService,
	attachmentService *ledgerapp.AttachmentService,
) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		attachmentService:  attachmentService,
	}
}

// Create godoc
// @Summary      Create a new transaction
// @Description  Record a financial transaction. The counterparty may be given as a raw tax identifier; the backfill links it to a registry record later.
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        request body ledgerapp.CreateTransactionRequest true "Transaction creation request"
// @Success      201 {object} dto.Response{data=ledgerapp.TransactionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/transactions [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	var req ledgerapp.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	transaction, err := h.transactionService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, transaction)
}

// GetByID godoc
// @Summary      Get transaction by ID
// @Description  Retrieve a transaction by its ID
// @Tags         transactions
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Success      200 {object} dto.Response{data=ledgerapp.TransactionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/transactions/{id} [get]
func (h *TransactionHandler) GetByID(c *gin.Context) {
	transactionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transaction ID format")
		return
	}

	transaction, err := h.transactionService.GetByID(c.Request.Context(), transactionID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, transaction)
}

// List godoc
// @Summary      List transactions
// @Description  Retrieve a paginated list of transactions
// @Tags         transactions
// @Produce      json
// @Param        search query string false "Search in description and counterparty name"
// @Param        type query string false "Type filter" Enums(income, expense, transfer)
// @Param        status query string false "Status filter" Enums(pending, cleared, reconciled, cancelled)
// @Param        category_id query string false "Category filter" format(uuid)
// @Param        fiscal_book_id query string false "Fiscal book filter" format(uuid)
// @Param        from_date query string false "Occurred-at lower bound (RFC3339)"
// @Param        to_date query string false "Occurred-at upper bound (RFC3339)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20)
// @Success      200 {object} dto.Response{data=[]ledgerapp.TransactionResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	var filter ledgerapp.TransactionListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.PageSize == 0 {
		filter.PageSize = 20
	}

	transactions, total, err := h.transactionService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, transactions, total, filter.Page, filter.PageSize)
}

// Update godoc
// @Summary      Update a transaction
// @Description  Update a pending or cleared transaction. Transactions in a closed fiscal book cannot change.
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Param        request body ledgerapp.UpdateTransactionRequest true "Transaction update request"
// @Success      200 {object} dto.Response{data=ledgerapp.TransactionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/transactions/{id} [put]
func (h *TransactionHandler) Update(c *gin.Context) {
	transactionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transaction ID format")
		return
	}

	var req ledgerapp.UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	transaction, err := h.transactionService.Update(c.Request.Context(), transactionID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, transaction)
}

// Clear godoc
// @Summary      Mark a transaction as cleared
// @Description  Move a pending transaction to cleared once it settles at the bank
// @Tags         transactions
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Success      200 {object} dto.Response{data=ledgerapp.TransactionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/transactions/{id}/clear [post]
func (h *TransactionHandler) Clear(c *gin.Context) {
	h.transition(c, h.transactionService.Clear)
}

// Reconcile godoc
// @Summary      Mark a transaction as reconciled
// @Description  Move a cleared transaction to reconciled after checking it against the bank statement
// @Tags         transactions
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Success      200 {object} dto.Response{data=ledgerapp.TransactionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/transactions/{id}/reconcile [post]
func (h *TransactionHandler) Reconcile(c *gin.Context) {
	h.transition(c, h.transactionService.Reconcile)
}

// Cancel godoc
// @Summary      Cancel a transaction
// @Description  Cancel a transaction that is not yet reconciled
// @Tags         transactions
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Success      200 {object} dto.Response{data=ledgerapp.TransactionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/transactions/{id}/cancel [post]
func (h *TransactionHandler) Cancel(c *gin.Context) {
	h.transition(c, h.transactionService.Cancel)
}

// Delete godoc
// @Summary      Delete a transaction
// @Description  Delete a transaction. Reconciled transactions and transactions in a closed fiscal book cannot be removed.
// @Tags         transactions
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Success      204 "No Content"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/transactions/{id} [delete]
func (h *TransactionHandler) Delete(c *gin.Context) {
	transactionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transaction ID format")
		return
	}

	if err := h.transactionService.Delete(c.Request.Context(), transactionID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// InitiateAttachmentUpload godoc
// @Summary      Initiate a receipt upload
// @Description  Register a receipt or invoice for a transaction and return a presigned upload URL
// @Tags         attachments
// @Accept       json
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Param        request body ledgerapp.InitiateUploadRequest true "Upload initiation request"
// @Success      201 {object} dto.Response{data=ledgerapp.InitiateUploadResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/transactions/{id}/attachments [post]
func (h *TransactionHandler) InitiateAttachmentUpload(c *gin.Context) {
	transactionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transaction ID format")
		return
	}

	var req ledgerapp.InitiateUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	upload, err := h.attachmentService.InitiateUpload(c.Request.Context(), transactionID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, upload)
}

// ListAttachments godoc
// @Summary      List attachments of a transaction
// @Description  Retrieve all receipts and invoices attached to a transaction
// @Tags         attachments
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]ledgerapp.AttachmentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/transactions/{id}/attachments [get]
func (h *TransactionHandler) ListAttachments(c *gin.Context) {
	transactionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transaction ID format")
		return
	}

	attachments, err := h.attachmentService.ListByTransaction(c.Request.Context(), transactionID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, attachments)
}

// transition runs one of the status transition operations, which all share
// the same id-in, transaction-out shape.
func (h *TransactionHandler) transition(
	c *gin.Context,
	op func(ctx context.Context, id uuid.UUID) (*ledgerapp.TransactionResponse, error),
) {
	transactionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transaction ID format")
		return
	}

	transaction, err := op(c.Request.Context(), transactionID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, transaction)
}
