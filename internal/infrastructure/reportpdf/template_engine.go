package reportpdf

import (
	"bytes"
	"context"
	"html/template"
	"maps"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TemplateEngine renders statement HTML with Brazilian formatting
// conventions. It uses Go's html/template package with custom functions
// for money, date and label formatting.
type TemplateEngine struct {
	funcMap template.FuncMap
	titler  cases.Caser
}

// NewTemplateEngine creates a new template engine with the statement
// function set
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{
		titler: cases.Title(language.BrazilianPortuguese),
	}

	e.funcMap = template.FuncMap{
		// Money formatting
		"formatMoney":    formatMoney,
		"formatMoneyRaw": formatMoneyRaw,

		// Date formatting
		"formatDate":     formatDate,
		"formatDateTime": formatDateTime,

		// Number formatting
		"formatInt": formatInt,

		// String utilities
		"truncate": truncate,
		"upper":    strings.ToUpper,
		"lower":    strings.ToLower,
		"title":    e.titleCase,
		"trim":     strings.TrimSpace,
		"default":  defaultFunc,

		// Portuguese display labels
		"statusText":        statusText,
		"typeText":          typeText,
		"paymentMethodText": paymentMethodText,

		// Arithmetic over decimals
		"add": add,
		"sub": sub,

		// Misc
		"now":      time.Now,
		"safeHTML": safeHTML,
	}

	return e
}

// RenderString renders a template string with the provided data
func (e *TemplateEngine) RenderString(ctx context.Context, name, content string, data interface{}) (string, error) {
	if content == "" {
		return "", NewRenderError(ErrCodeTemplateFailed, "template content is empty", nil)
	}

	tmpl, err := template.New(name).Funcs(e.funcMap).Parse(content)
	if err != nil {
		return "", NewRenderError(ErrCodeTemplateFailed, "failed to parse template", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", NewRenderError(ErrCodeTemplateFailed, "failed to execute template", err)
	}

	return buf.String(), nil
}

// GetFuncMap returns a copy of the template function map
func (e *TemplateEngine) GetFuncMap() template.FuncMap {
	funcMap := make(template.FuncMap, len(e.funcMap))
	maps.Copy(funcMap, e.funcMap)
	return funcMap
}

// titleCase title-cases a string using Brazilian Portuguese rules
func (e *TemplateEngine) titleCase(s string) string {
	return e.titler.String(strings.ToLower(s))
}

// =============================================================================
// Template Functions - Money Formatting
// =============================================================================

// formatMoney formats a decimal value as currency with the real symbol.
// Example: 1234.56 -> "R$ 1.234,56"
func formatMoney(v interface{}) string {
	return "R$ " + formatMoneyRaw(v)
}

// formatMoneyRaw formats a decimal value in Brazilian notation without
// the currency symbol: dot for thousands, comma for cents.
// Example: 1234.56 -> "1.234,56"
func formatMoneyRaw(v interface{}) string {
	d := toDecimal(v)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	parts := strings.Split(d.StringFixed(2), ".")
	intPart := parts[0]
	decPart := "00"
	if len(parts) > 1 {
		decPart = parts[1]
	}

	var result strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			result.WriteRune('.')
		}
		result.WriteRune(c)
	}

	return sign + result.String() + "," + decPart
}

// =============================================================================
// Template Functions - Date Formatting
// =============================================================================

// formatDate formats a time value as a Brazilian date string.
// Example: 2024-03-10 -> "10/03/2024"
func formatDate(v interface{}) string {
	t := toTime(v)
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}

// formatDateTime formats a time value as a Brazilian datetime string.
// Example: "10/03/2024 14:30"
func formatDateTime(v interface{}) string {
	t := toTime(v)
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006 15:04")
}

// =============================================================================
// Template Functions - Numbers and Strings
// =============================================================================

// formatInt formats an integer with Brazilian thousand separators
func formatInt(v interface{}) string {
	d := toDecimal(v)
	parts := strings.Split(formatMoneyRaw(d), ",")
	return parts[0]
}

// truncate cuts a string to the given rune length, appending an ellipsis
func truncate(s string, length int) string {
	if length <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= length {
		return s
	}
	if length <= 3 {
		return string(runes[:length])
	}
	return string(runes[:length-3]) + "..."
}

// defaultFunc returns the fallback when the value is empty
func defaultFunc(fallback, value interface{}) interface{} {
	if value == nil {
		return fallback
	}
	if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
		return fallback
	}
	return value
}

// safeHTML marks a string as safe HTML content
func safeHTML(s string) template.HTML {
	return template.HTML(s)
}

// =============================================================================
// Template Functions - Display Labels
// =============================================================================

// statusText maps internal status values to Portuguese display labels
func statusText(status string) string {
	statusMap := map[string]string{
		// Transaction statuses
		"pending":    "Pendente",
		"cleared":    "Compensado",
		"reconciled": "Conciliado",
		"cancelled":  "Cancelado",
		// Fiscal book statuses
		"open":   "Aberto",
		"closed": "Encerrado",
	}
	if text, ok := statusMap[strings.ToLower(status)]; ok {
		return text
	}
	return status
}

// typeText maps transaction types to Portuguese display labels
func typeText(transactionType string) string {
	switch strings.ToLower(transactionType) {
	case "income":
		return "Receita"
	case "expense":
		return "Despesa"
	case "transfer":
		return "Transferência"
	default:
		return transactionType
	}
}

// paymentMethodText maps payment methods to Portuguese display labels
func paymentMethodText(method string) string {
	methodMap := map[string]string{
		"cash":          "Dinheiro",
		"pix":           "Pix",
		"debit_card":    "Cartão de Débito",
		"credit_card":   "Cartão de Crédito",
		"bank_transfer": "Transferência Bancária",
		"boleto":        "Boleto",
		"other":         "Outro",
	}
	if text, ok := methodMap[strings.ToLower(method)]; ok {
		return text
	}
	return method
}

// =============================================================================
// Template Functions - Arithmetic
// =============================================================================

func add(a, b interface{}) decimal.Decimal {
	return toDecimal(a).Add(toDecimal(b))
}

func sub(a, b interface{}) decimal.Decimal {
	return toDecimal(a).Sub(toDecimal(b))
}

// =============================================================================
// Conversion Helpers
// =============================================================================

// toDecimal converts common numeric types to decimal.Decimal
func toDecimal(v interface{}) decimal.Decimal {
	switch val := v.(type) {
	case decimal.Decimal:
		return val
	case *decimal.Decimal:
		if val == nil {
			return decimal.Zero
		}
		return *val
	case int:
		return decimal.NewFromInt(int64(val))
	case int32:
		return decimal.NewFromInt(int64(val))
	case int64:
		return decimal.NewFromInt(val)
	case float64:
		return decimal.NewFromFloat(val)
	case string:
		d, err := decimal.NewFromString(val)
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

// toTime converts common time representations to time.Time
func toTime(v interface{}) time.Time {
	switch val := v.(type) {
	case time.Time:
		return val
	case *time.Time:
		if val == nil {
			return time.Time{}
		}
		return *val
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02", "02/01/2006"} {
			if t, err := time.Parse(layout, val); err == nil {
				return t
			}
		}
		return time.Time{}
	default:
		return time.Time{}
	}
}
