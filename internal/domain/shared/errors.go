package shared

// DomainError is an error with a stable machine-readable code. Handlers map
// codes to HTTP statuses; the message is safe to show to API clients.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError builds a DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// Sentinel errors shared across bounded contexts. Repositories translate
// driver-level not-found conditions to ErrNotFound; services wrap these with
// %w so callers can match them with errors.Is.
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInvalidDocument     = NewDomainError("INVALID_DOCUMENT", "Invalid CNPJ or CPF document")
	ErrBookClosed          = NewDomainError("BOOK_CLOSED", "Fiscal book is closed")
)
