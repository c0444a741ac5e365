package taxdoc

import (
	"fmt"
	"strings"
)

// Validator verifies and formats Brazilian tax documents
type Validator interface {
	// Identify determines the document type from its digit count and reports
	// whether the check digits are correct
	Identify(raw string) (DocumentType, bool)
	// FormatCPF formats an 11-digit CPF as 000.000.000-00
	FormatCPF(digits string) string
	// FormatCNPJ formats a 14-digit CNPJ as 00.000.000/0000-00
	FormatCNPJ(digits string) string
}

// ChecksumValidator implements Validator with the standard mod-11
// check digit algorithms for CPF and CNPJ
type ChecksumValidator struct{}

// NewChecksumValidator creates a new checksum validator
func NewChecksumValidator() *ChecksumValidator {
	return &ChecksumValidator{}
}

// Identify strips non-digit characters and classifies by length:
// 11 digits is a CPF, 14 digits is a CNPJ, anything else is invalid.
// The boolean reports the checksum verdict for the identified type.
func (v *ChecksumValidator) Identify(raw string) (DocumentType, bool) {
	digits := CleanDigits(raw)
	switch len(digits) {
	case 11:
		return DocumentTypeCPF, v.IsValidCPF(digits)
	case 14:
		return DocumentTypeCNPJ, v.IsValidCNPJ(digits)
	default:
		return DocumentTypeInvalid, false
	}
}

// IsValidCPF verifies the two CPF check digits.
// Sequences of a single repeated digit (000..., 111...) are rejected even
// though some of them pass the mod-11 math.
func (v *ChecksumValidator) IsValidCPF(digits string) bool {
	if len(digits) != 11 || allSameDigit(digits) {
		return false
	}

	sum := 0
	for i := 0; i < 9; i++ {
		sum += int(digits[i]-'0') * (10 - i)
	}
	if checkDigit(sum) != int(digits[9]-'0') {
		return false
	}

	sum = 0
	for i := 0; i < 10; i++ {
		sum += int(digits[i]-'0') * (11 - i)
	}
	return checkDigit(sum) == int(digits[10]-'0')
}

var cnpjWeights = [13]int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}

// IsValidCNPJ verifies the two CNPJ check digits
func (v *ChecksumValidator) IsValidCNPJ(digits string) bool {
	if len(digits) != 14 || allSameDigit(digits) {
		return false
	}

	sum := 0
	for i := 0; i < 12; i++ {
		sum += int(digits[i]-'0') * cnpjWeights[i+1]
	}
	if checkDigit(sum) != int(digits[12]-'0') {
		return false
	}

	sum = 0
	for i := 0; i < 13; i++ {
		sum += int(digits[i]-'0') * cnpjWeights[i]
	}
	return checkDigit(sum) == int(digits[13]-'0')
}

// FormatCPF formats an 11-digit CPF as 000.000.000-00.
// Input that is not exactly 11 digits is returned unchanged.
func (v *ChecksumValidator) FormatCPF(digits string) string {
	digits = CleanDigits(digits)
	if len(digits) != 11 {
		return digits
	}
	return fmt.Sprintf("%s.%s.%s-%s", digits[0:3], digits[3:6], digits[6:9], digits[9:11])
}

// FormatCNPJ formats a 14-digit CNPJ as 00.000.000/0000-00.
// Input that is not exactly 14 digits is returned unchanged.
func (v *ChecksumValidator) FormatCNPJ(digits string) string {
	digits = CleanDigits(digits)
	if len(digits) != 14 {
		return digits
	}
	return fmt.Sprintf("%s.%s.%s/%s-%s", digits[0:2], digits[2:5], digits[5:8], digits[8:12], digits[12:14])
}

// CleanDigits returns only the decimal digits of the input
func CleanDigits(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// checkDigit computes a mod-11 check digit from a weighted sum
func checkDigit(sum int) int {
	rem := sum % 11
	if rem < 2 {
		return 0
	}
	return 11 - rem
}

func allSameDigit(digits string) bool {
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			return false
		}
	}
	return true
}

// Ensure ChecksumValidator implements Validator
var _ Validator = (*ChecksumValidator)(nil)
