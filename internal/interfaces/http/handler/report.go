package handler

import (
	"net/http"
	"strconv"

	"github.com/finbook/backend/internal/application/report"
	"github.com/gin-gonic/gin"
)

// ReportHandler handles statement export API endpoints
type ReportHandler struct {
	BaseHandler
	reportService *report.FiscalBookReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *report.FiscalBookReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// MonthlyStatement godoc
// @Summary      Export a monthly statement as PDF
// @Description  Render all transactions of a calendar month into a printable PDF statement
// @Tags         reports
// @Produce      application/pdf
// @Param        year path int true "Statement year"
// @Param        month path int true "Statement month (1-12)"
// @Success      200 {file} binary "PDF statement"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /reports/statements/{year}/{month} [get]
func (h *ReportHandler) MonthlyStatement(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		h.BadRequest(c, "Invalid year format")
		return
	}

	month, err := strconv.Atoi(c.Param("month"))
	if err != nil {
		h.BadRequest(c, "Invalid month format")
		return
	}

	statement, err := h.reportService.ExportMonthlyStatement(c.Request.Context(), year, month)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", "inline; filename=\""+statement.FileName+"\"")
	c.Data(http.StatusOK, "application/pdf", statement.PDFData)
}
