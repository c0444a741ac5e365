package taxdoc

// DocumentType identifies the shape of a Brazilian tax document
type DocumentType string

const (
	DocumentTypeCNPJ    DocumentType = "cnpj"
	DocumentTypeCPF     DocumentType = "cpf"
	DocumentTypeInvalid DocumentType = "invalid"
)

// IsValid checks if the document type is valid
func (t DocumentType) IsValid() bool {
	switch t {
	case DocumentTypeCNPJ, DocumentTypeCPF, DocumentTypeInvalid:
		return true
	}
	return false
}

// String returns the string representation
func (t DocumentType) String() string {
	return string(t)
}

// Kind is the classification of a raw identifier embedded in a transaction.
// It is a closed set: callers dispatch on every member explicitly so a new
// kind breaks compilation at the dispatch site instead of falling into a
// catch-all branch.
type Kind string

const (
	// KindCNPJ is a 14-digit company document (checksum may still fail on dirty data)
	KindCNPJ Kind = "CNPJ"
	// KindCPF is an 11-digit personal document (checksum may still fail on dirty data)
	KindCPF Kind = "CPF"
	// KindAnonymizedCPF is a masked personal document such as "123.***.*89-12"
	KindAnonymizedCPF Kind = "ANONYMIZED_CPF"
	// KindInvalid is anything that is neither a document shape nor a mask
	KindInvalid Kind = "INVALID"
)

// IsValid checks if the kind is a known classification
func (k Kind) IsValid() bool {
	switch k {
	case KindCNPJ, KindCPF, KindAnonymizedCPF, KindInvalid:
		return true
	}
	return false
}

// String returns the string representation
func (k Kind) String() string {
	return string(k)
}

// Classification is the result of classifying a raw identifier.
//
// Kind carries the shape of the document; IsValid carries the checksum
// verdict. The two are independent on purpose: dirty production data holds
// plenty of well-shaped documents with broken check digits, and those are
// still resolved into canonical records.
//
// For anonymized documents CleanDigits holds the raw trimmed string verbatim,
// because the mask itself is the only stable identity the record has. For
// everything else it holds the decimal digits only.
type Classification struct {
	Kind         Kind
	IsValid      bool
	IsAnonymized bool
	CleanDigits  string
}
