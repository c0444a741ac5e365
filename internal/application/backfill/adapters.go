package backfill

import (
	"strings"

	"github.com/finbook/backend/internal/domain/ledger"
	"github.com/finbook/backend/internal/domain/registry"
	"github.com/finbook/backend/internal/domain/taxdoc"
)

// Notes templates used when a person record is derived from transaction data.
const (
	sellerNotePrefix    = "Nome do vendedor: "
	anonymizedBaseNote  = "Pessoa criada a partir de CPF anonimizado em transação"
	anonymizedSellerSep = ". Vendedor: "
)

// CompanyFromTransaction maps a transaction's embedded counterparty fields to
// a new company record. The CNPJ is stored exactly as embedded so that later
// runs find the record by the same raw string. Returns nil when the
// transaction carries no tax id; callers are expected to filter those out
// beforehand.
func CompanyFromTransaction(transaction *ledger.Transaction) (*registry.Company, error) {
	taxID := strings.TrimSpace(transaction.Counterparty.TaxID)
	if taxID == "" {
		return nil, nil
	}

	name := strings.TrimSpace(transaction.Counterparty.Name)
	company, err := registry.NewCompany(taxID, name)
	if err != nil {
		return nil, err
	}

	if seller := strings.TrimSpace(transaction.Counterparty.SellerName); seller != "" {
		company.AddPartner(registry.CorporatePartner{
			Name:    seller,
			Role:    registry.RoleSeller,
			Country: registry.DefaultCountry,
		})
	}

	return company, nil
}

// PersonFromTransaction maps a transaction's embedded counterparty fields to
// a new person record. The CPF is stored formatted; the display name falls
// back from the counterparty name to the seller name. Returns nil when the
// transaction carries no tax id.
func PersonFromTransaction(transaction *ledger.Transaction, validator taxdoc.Validator) (*registry.Person, error) {
	taxID := strings.TrimSpace(transaction.Counterparty.TaxID)
	if taxID == "" {
		return nil, nil
	}

	name := strings.TrimSpace(transaction.Counterparty.Name)
	seller := strings.TrimSpace(transaction.Counterparty.SellerName)

	fullName := name
	if fullName == "" {
		fullName = seller
	}

	person, err := registry.NewPerson(validator.FormatCPF(taxID), fullName)
	if err != nil {
		return nil, err
	}

	if seller != "" && seller != name {
		if err := person.SetNotes(sellerNotePrefix + seller); err != nil {
			return nil, err
		}
	}

	return person, nil
}

// AnonymousPersonFromTransaction maps a transaction whose tax id is an
// anonymized CPF to a new anonymous person record. The masked string is
// stored verbatim; it carries no well-formed digits to format and the mask
// itself is the record's identity. Returns nil when the transaction carries
// no tax id.
func AnonymousPersonFromTransaction(transaction *ledger.Transaction) (*registry.Person, error) {
	taxID := strings.TrimSpace(transaction.Counterparty.TaxID)
	if taxID == "" {
		return nil, nil
	}

	name := strings.TrimSpace(transaction.Counterparty.Name)
	seller := strings.TrimSpace(transaction.Counterparty.SellerName)

	fullName := name
	if fullName == "" {
		fullName = seller
	}

	person, err := registry.NewAnonymousPerson(taxID, fullName)
	if err != nil {
		return nil, err
	}

	notes := anonymizedBaseNote
	if seller != "" && seller != person.FullName {
		notes += anonymizedSellerSep + seller
	}
	if err := person.SetNotes(notes); err != nil {
		return nil, err
	}

	return person, nil
}
