package reportpdf

import (
	"context"
	"embed"
	"time"

	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templateFS embed.FS

const statementTemplatePath = "templates/statement_a4.html"

// StatementLine is one transaction row on a rendered statement
type StatementLine struct {
	Date             time.Time
	Description      string
	CategoryName     string
	CounterpartyName string
	PaymentMethod    string
	Type             string
	Status           string
	Amount           decimal.Decimal
}

// StatementData is the model bound to the statement template
type StatementData struct {
	// Title is the document heading, e.g. "Livro Fiscal 2024"
	Title string
	// Subtitle is the secondary heading, e.g. the book description
	Subtitle string
	// Period is the covered period label, e.g. "2024" or "2024-03"
	Period string
	// Status is the fiscal book status value, empty for monthly statements
	Status string
	// GeneratedAt is when the statement was assembled
	GeneratedAt time.Time
	// Lines are the transaction rows in occurrence order
	Lines []StatementLine
	// TotalIncome sums income lines, cancelled transactions excluded
	TotalIncome decimal.Decimal
	// TotalExpense sums expense lines, cancelled transactions excluded
	TotalExpense decimal.Decimal
	// NetBalance is TotalIncome minus TotalExpense
	NetBalance decimal.Decimal
	// TransactionCount is the number of lines on the statement
	TransactionCount int
}

// RenderStatement renders the built-in A4 statement template with the
// provided data
func (e *TemplateEngine) RenderStatement(ctx context.Context, data *StatementData) (string, error) {
	if data == nil {
		return "", NewRenderError(ErrCodeTemplateFailed, "statement data is nil", nil)
	}

	content, err := templateFS.ReadFile(statementTemplatePath)
	if err != nil {
		return "", NewRenderError(ErrCodeTemplateFailed, "failed to load statement template", err)
	}

	return e.RenderString(ctx, "statement_a4", string(content), data)
}

// StatementFooterHTML is the page footer used for rendered statements.
// Chrome substitutes the pageNumber/totalPages spans during printing.
const StatementFooterHTML = `<div style="font-size:8px; width:100%; text-align:center; color:#666;">` +
	`Página <span class="pageNumber"></span> de <span class="totalPages"></span></div>`
