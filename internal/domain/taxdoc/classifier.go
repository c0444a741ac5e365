package taxdoc

import (
	"regexp"
	"strings"
)

// Mask patterns that betray an anonymized document. Checked against the
// trimmed raw string; any single match is enough.
var (
	maskedAsterisks = regexp.MustCompile(`\*{3,}`)
	maskedLetterX   = regexp.MustCompile(`(?i)x{3,}`)
	maskedHashes    = regexp.MustCompile(`#{2,}`)
	maskedDots      = regexp.MustCompile(`\.{3,}`)
	// digits sandwiching a mask run, e.g. "123.***.*89" or "12x.xxx.x89"
	maskedSandwich = regexp.MustCompile(`(?i)[0-9]{1,3}[*x#.]{3,}[0-9]{1,3}`)
)

const (
	anonymizedMinLength = 8
	anonymizedMaxLength = 15
)

// Classifier classifies raw counterparty identifiers embedded in
// transactions. Anonymization is detected before any checksum work so a
// masked CPF never reaches the validator: mask characters would be stripped
// as non-digits and the remainder misread as a short, invalid document.
type Classifier struct {
	validator Validator
}

// NewClassifier creates a classifier backed by the given document validator
func NewClassifier(validator Validator) *Classifier {
	return &Classifier{validator: validator}
}

// Classify inspects a raw identifier string and returns its classification
func (c *Classifier) Classify(raw string) Classification {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Classification{Kind: KindInvalid}
	}

	if looksAnonymized(trimmed) {
		// The raw mask is kept verbatim: it is the only identity an
		// anonymized document has, and normalizing it would merge
		// distinct masks or split equal ones.
		return Classification{
			Kind:         KindAnonymizedCPF,
			IsAnonymized: true,
			CleanDigits:  trimmed,
		}
	}

	docType, valid := c.validator.Identify(trimmed)
	switch docType {
	case DocumentTypeCNPJ:
		return Classification{Kind: KindCNPJ, IsValid: valid, CleanDigits: CleanDigits(trimmed)}
	case DocumentTypeCPF:
		return Classification{Kind: KindCPF, IsValid: valid, CleanDigits: CleanDigits(trimmed)}
	default:
		return Classification{Kind: KindInvalid, CleanDigits: CleanDigits(trimmed)}
	}
}

// looksAnonymized reports whether the trimmed raw string is a masked
// document. A string qualifies when it matches at least one mask pattern,
// its length is plausible for a formatted document, and it either still
// carries a digit or consists of nothing but mask and separator characters.
func looksAnonymized(trimmed string) bool {
	if len(trimmed) < anonymizedMinLength || len(trimmed) > anonymizedMaxLength {
		return false
	}

	matched := maskedAsterisks.MatchString(trimmed) ||
		maskedLetterX.MatchString(trimmed) ||
		maskedHashes.MatchString(trimmed) ||
		maskedDots.MatchString(trimmed) ||
		maskedSandwich.MatchString(trimmed)
	if !matched {
		return false
	}

	if containsDigit(trimmed) {
		return true
	}
	return fullyMasked(trimmed)
}

func containsDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}

// fullyMasked reports whether every character is a mask character or a
// document separator, covering fully redacted values like "###.###.###-##"
func fullyMasked(s string) bool {
	for _, r := range s {
		switch r {
		case '*', 'x', 'X', '#', '.', '-', '/', ' ':
		default:
			return false
		}
	}
	return true
}
