package handler

import (
	"net/http"

	ledgerapp "github.com/finbook/backend/internal/application/ledger"
	"github.com/finbook/backend/internal/application/report"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// FiscalBookHandler handles fiscal book API endpoints
type FiscalBookHandler struct {
	BaseHandler
	bookService   *ledgerapp.FiscalBookService
	reportService *report.FiscalBookReportService
}

// NewFiscalBookHandler creates a new FiscalBookHandler
func NewFiscalBookHandler(
	bookService *ledgerapp.FiscalBookService,
	reportService *report.FiscalBookReportService,
) *FiscalBookHandler {
	return &FiscalBookHandler{
		bookService:   bookService,
		reportService: reportService,
	}
}

// Create godoc
// @Summary      Create a new fiscal book
// @Description  Open a fiscal book for grouping transactions of a tax year
// @Tags         fiscal-books
// @Accept       json
// @Produce      json
// @Param        request body ledgerapp.CreateFiscalBookRequest true "Fiscal book creation request"
// @Success      201 {object} dto.Response{data=ledgerapp.FiscalBookResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/fiscal-books [post]
func (h *FiscalBookHandler) Create(c *gin.Context) {
	var req ledgerapp.CreateFiscalBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	book, err := h.bookService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, book)
}

// GetByID godoc
// @Summary      Get fiscal book by ID
// @Description  Retrieve a fiscal book by its ID
// @Tags         fiscal-books
// @Produce      json
// @Param        id path string true "Fiscal book ID" format(uuid)
// @Success      200 {object} dto.Response{data=ledgerapp.FiscalBookResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/fiscal-books/{id} [get]
func (h *FiscalBookHandler) GetByID(c *gin.Context) {
	bookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid fiscal book ID format")
		return
	}

	book, err := h.bookService.GetByID(c.Request.Context(), bookID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, book)
}

// List godoc
// @Summary      List fiscal books
// @Description  Retrieve a paginated list of fiscal books
// @Tags         fiscal-books
// @Produce      json
// @Param        search query string false "Search in book names"
// @Param        year query int false "Year filter"
// @Param        status query string false "Status filter" Enums(open, closed)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20)
// @Success      200 {object} dto.Response{data=[]ledgerapp.FiscalBookResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/fiscal-books [get]
func (h *FiscalBookHandler) List(c *gin.Context) {
	var filter ledgerapp.FiscalBookListFilter
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

	books, total, err := h.bookService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, books, total, filter.Page, filter.PageSize)
}

// Update godoc
// @Summary      Update a fiscal book
// @Description  Update the name or description of an open fiscal book
// @Tags         fiscal-books
// @Accept       json
// @Produce      json
// @Param        id path string true "Fiscal book ID" format(uuid)
// @Param        request body ledgerapp.UpdateFiscalBookRequest true "Fiscal book update request"
// @Success      200 {object} dto.Response{data=ledgerapp.FiscalBookResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/fiscal-books/{id} [put]
func (h *FiscalBookHandler) Update(c *gin.Context) {
	bookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid fiscal book ID format")
		return
	}

	var req ledgerapp.UpdateFiscalBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	book, err := h.bookService.Update(c.Request.Context(), bookID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, book)
}

// Close godoc
// @Summary      Close a fiscal book
// @Description  Close a fiscal book. Transactions inside a closed book become read-only.
// @Tags         fiscal-books
// @Produce      json
// @Param        id path string true "Fiscal book ID" format(uuid)
// @Success      200 {object} dto.Response{data=ledgerapp.FiscalBookResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/fiscal-books/{id}/close [post]
func (h *FiscalBookHandler) Close(c *gin.Context) {
	bookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid fiscal book ID format")
		return
	}

	book, err := h.bookService.Close(c.Request.Context(), bookID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, book)
}

// Reopen godoc
// @Summary      Reopen a fiscal book
// @Description  Reopen a closed fiscal book for corrections
// @Tags         fiscal-books
// @Produce      json
// @Param        id path string true "Fiscal book ID" format(uuid)
// @Success      200 {object} dto.Response{data=ledgerapp.FiscalBookResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/fiscal-books/{id}/reopen [post]
func (h *FiscalBookHandler) Reopen(c *gin.Context) {
	bookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid fiscal book ID format")
		return
	}

	book, err := h.bookService.Reopen(c.Request.Context(), bookID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, book)
}

// Delete godoc
// @Summary      Delete a fiscal book
// @Description  Delete an empty fiscal book
// @Tags         fiscal-books
// @Produce      json
// @Param        id path string true "Fiscal book ID" format(uuid)
// @Success      204 "No Content"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/fiscal-books/{id} [delete]
func (h *FiscalBookHandler) Delete(c *gin.Context) {
	bookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid fiscal book ID format")
		return
	}

	if err := h.bookService.Delete(c.Request.Context(), bookID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// Export godoc
// @Summary      Export a fiscal book as PDF
// @Description  Render all transactions of a fiscal book into a printable PDF statement
// @Tags         fiscal-books
// @Produce      application/pdf
// @Param        id path string true "Fiscal book ID" format(uuid)
// @Success      200 {file} binary "PDF statement"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/fiscal-books/{id}/export [get]
func (h *FiscalBookHandler) Export(c *gin.Context) {
	bookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid fiscal book ID format")
		return
	}

	statement, err := h.reportService.ExportFiscalBook(c.Request.Context(), bookID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", "inline; filename=\""+statement.FileName+"\"")
	c.Data(http.StatusOK, "application/pdf", statement.PDFData)
}
