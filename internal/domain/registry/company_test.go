package registry

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCompany(t *testing.T) {
	t.Run("creates company successfully", func(t *testing.T) {
		company, err := NewCompany("12.345.678/0001-95", "Acme Comércio Ltda")

		require.NoError(t, err)
		assert.NotNil(t, company)
		assert.Equal(t, "12.345.678/0001-95", company.CNPJ)
		assert.Equal(t, "Acme Comércio Ltda", company.Name)
		assert.Equal(t, "Acme Comércio Ltda", company.CorporateName)
		assert.Equal(t, "Acme Comércio Ltda", company.TradeName)
		assert.Equal(t, CompanyStatusActive, company.Status)
		assert.Equal(t, DefaultCountry, company.Address.Country)
		assert.Empty(t, company.Address.City)
		assert.Empty(t, company.Contacts.Email)
		assert.Empty(t, company.CorporateStructure)
		assert.Len(t, company.GetDomainEvents(), 1)
	})

	t.Run("allows empty name for records built from transaction data", func(t *testing.T) {
		company, err := NewCompany("11.111.111/0001-11", "")

		require.NoError(t, err)
		assert.Empty(t, company.Name)
		assert.Empty(t, company.CorporateName)
	})

	t.Run("allows checksum-invalid CNPJ", func(t *testing.T) {
		company, err := NewCompany("11.111.111/0001-11", "Dirty Data SA")

		require.NoError(t, err)
		assert.Equal(t, "11.111.111/0001-11", company.CNPJ)
	})

	t.Run("trims CNPJ whitespace", func(t *testing.T) {
		company, err := NewCompany("  12.345.678/0001-95  ", "Acme")

		require.NoError(t, err)
		assert.Equal(t, "12.345.678/0001-95", company.CNPJ)
	})

	t.Run("fails with empty CNPJ", func(t *testing.T) {
		company, err := NewCompany("   ", "Acme")

		assert.Error(t, err)
		assert.Nil(t, company)
	})

	t.Run("fails with oversized CNPJ", func(t *testing.T) {
		company, err := NewCompany(strings.Repeat("1", 21), "Acme")

		assert.Error(t, err)
		assert.Nil(t, company)
	})
}

func TestCompany_AddPartner(t *testing.T) {
	company, err := NewCompany("12.345.678/0001-95", "Acme")
	require.NoError(t, err)

	t.Run("adds partner with default country", func(t *testing.T) {
		company.AddPartner(CorporatePartner{Name: "Maria Silva", Role: RoleSeller})

		require.Len(t, company.CorporateStructure, 1)
		assert.Equal(t, "Maria Silva", company.CorporateStructure[0].Name)
		assert.Equal(t, RoleSeller, company.CorporateStructure[0].Role)
		assert.Equal(t, DefaultCountry, company.CorporateStructure[0].Country)
	})

	t.Run("ignores duplicate partner", func(t *testing.T) {
		company.AddPartner(CorporatePartner{Name: "Maria Silva", Role: RoleSeller})

		assert.Len(t, company.CorporateStructure, 1)
	})

	t.Run("ignores blank name", func(t *testing.T) {
		company.AddPartner(CorporatePartner{Name: "   ", Role: RoleSeller})

		assert.Len(t, company.CorporateStructure, 1)
	})
}

func TestCompany_StatusTransitions(t *testing.T) {
	company, err := NewCompany("12.345.678/0001-95", "Acme")
	require.NoError(t, err)
	assert.True(t, company.IsActive())

	versionBefore := company.Version
	company.Deactivate()
	assert.Equal(t, CompanyStatusInactive, company.Status)
	assert.Equal(t, versionBefore+1, company.Version)

	// deactivating twice does not bump the version again
	company.Deactivate()
	assert.Equal(t, versionBefore+1, company.Version)

	company.Activate()
	assert.True(t, company.IsActive())
}

func TestCompanyStatus_IsValid(t *testing.T) {
	assert.True(t, CompanyStatusActive.IsValid())
	assert.True(t, CompanyStatusInactive.IsValid())
	assert.False(t, CompanyStatus("deleted").IsValid())
}
