// This file covers the CSV import endpoints against a real database.
// The importer keeps counterparty strings embedded on the transactions it
// creates; resolving them into registry records is the backfill's job.
package integration

import (
	"net/http"
	"testing"
	"time"

	importapp "github.com/finbook/backend/internal/application/import"
	ledgerapp "github.com/finbook/backend/internal/application/ledger"
	csvimport "github.com/finbook/backend/internal/infrastructure/import"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bankExportCSV = `date,description,amount,type,payment_method,counterparty_tax_id,counterparty_name,seller_name,notes
2026-03-02,Compra supermercado,"1.234,56",expense,credit_card,12.345.678/0001-95,Mercado Central,,Compras do mês
02/03/2026,Pagamento freelance,2500.00,income,pix,,,,
2026-03-03,Venda de usados,150.00,income,,529.982.247-25,Maria Souza,,
`

func TestImportAPI_Transactions(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ts := NewAPITestServer(t)

	t.Run("Imports a bank export with both date and amount notations", func(t *testing.T) {
		w := ts.UploadCSV(t, "/api/v1/import/transactions", "extrato.csv", bankExportCSV, nil)
		require.Equal(t, http.StatusOK, w.Code, "Response body: %s", w.Body.String())

		var result importapp.TransactionImportResult
		decodeData(t, w, &result)
		assert.Equal(t, 3, result.TotalRows)
		assert.Equal(t, 3, result.ImportedRows)
		assert.Equal(t, 0, result.SkippedRows)
		assert.Equal(t, 0, result.ErrorRows)
		assert.Empty(t, result.Errors)

		// Brazilian decimal comma and thousands separator
		w = ts.Request("GET", "/api/v1/ledger/transactions?search=supermercado", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var txs []ledgerapp.TransactionResponse
		decodeData(t, w, &txs)
		require.Len(t, txs, 1)
		assert.True(t, txs[0].Amount.Equal(decimal.RequireFromString("1234.56")),
			"expected 1234.56, got %s", txs[0].Amount)
		assert.Equal(t, "credit_card", txs[0].PaymentMethod)
		assert.Equal(t, testCNPJ, txs[0].CounterpartyTaxID)
		assert.Equal(t, "Mercado Central", txs[0].CounterpartyName)
		assert.Nil(t, txs[0].CounterpartyEntityID)
		assert.Equal(t, "Compras do mês", txs[0].Notes)

		// 02/03/2026 is day/month/year, not month/day
		w = ts.Request("GET", "/api/v1/ledger/transactions?search=freelance", nil)
		require.Equal(t, http.StatusOK, w.Code)
		decodeData(t, w, &txs)
		require.Len(t, txs, 1)
		assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), txs[0].OccurredAt.UTC())
		assert.Equal(t, "income", txs[0].Type)
	})

	t.Run("Re-importing the same file skips every row by default", func(t *testing.T) {
		w := ts.UploadCSV(t, "/api/v1/import/transactions", "extrato.csv", bankExportCSV, nil)
		require.Equal(t, http.StatusOK, w.Code, "Response body: %s", w.Body.String())

		var result importapp.TransactionImportResult
		decodeData(t, w, &result)
		assert.Equal(t, 3, result.TotalRows)
		assert.Equal(t, 0, result.ImportedRows)
		assert.Equal(t, 3, result.SkippedRows)
		assert.Equal(t, 0, result.ErrorRows)

		assert.Equal(t, int64(3), ts.DB.CountRows("transactions"))
	})

	t.Run("conflict_mode fail reports duplicates as row errors", func(t *testing.T) {
		w := ts.UploadCSV(t, "/api/v1/import/transactions", "extrato.csv", bankExportCSV,
			map[string]string{"conflict_mode": "fail"})
		require.Equal(t, http.StatusOK, w.Code, "Response body: %s", w.Body.String())

		var result importapp.TransactionImportResult
		decodeData(t, w, &result)
		assert.Equal(t, 0, result.ImportedRows)
		assert.Equal(t, 0, result.SkippedRows)
		assert.Equal(t, 3, result.ErrorRows)
		require.Len(t, result.Errors, 3)
		for _, rowErr := range result.Errors {
			assert.Equal(t, csvimport.ErrCodeImportDuplicateInDB, rowErr.Code)
			assert.NotEmpty(t, rowErr.Value)
		}
	})

	t.Run("Duplicates inside one file are caught before touching the ledger", func(t *testing.T) {
		csv := "date,description,amount,type\n" +
			"2026-03-10,Assinatura streaming,39.90,expense\n" +
			"2026-03-10,Assinatura streaming,39.90,expense\n"

		w := ts.UploadCSV(t, "/api/v1/import/transactions", "duplicado.csv", csv,
			map[string]string{"conflict_mode": "fail"})
		require.Equal(t, http.StatusOK, w.Code, "Response body: %s", w.Body.String())

		var result importapp.TransactionImportResult
		decodeData(t, w, &result)
		assert.Equal(t, 2, result.TotalRows)
		assert.Equal(t, 1, result.ImportedRows)
		assert.Equal(t, 1, result.ErrorRows)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, csvimport.ErrCodeImportDuplicateInFile, result.Errors[0].Code)
		assert.Equal(t, 3, result.Errors[0].Row)
		assert.Contains(t, result.Errors[0].Message, "duplicate of row 2")
	})

	t.Run("Invalid rows are reported without aborting the rest", func(t *testing.T) {
		csv := "date,description,amount,type\n" +
			"2026-03-15,Conta de luz,230.48,expense\n" +
			"2026-03-16,Valor quebrado,abc,expense\n" +
			"2026-03-17,Tipo desconhecido,10.00,loan\n" +
			"31/31/2026,Data impossível,10.00,expense\n" +
			"2026-03-18,,10.00,expense\n"

		w := ts.UploadCSV(t, "/api/v1/import/transactions", "problemas.csv", csv, nil)
		require.Equal(t, http.StatusOK, w.Code, "Response body: %s", w.Body.String())

		var result importapp.TransactionImportResult
		decodeData(t, w, &result)
		assert.Equal(t, 5, result.TotalRows)
		assert.Equal(t, 1, result.ImportedRows)
		assert.Equal(t, 4, result.ErrorRows)
		require.Len(t, result.Errors, 4)

		byRow := make(map[int]csvimport.RowError)
		for _, rowErr := range result.Errors {
			byRow[rowErr.Row] = rowErr
		}
		assert.Equal(t, "amount", byRow[3].Column)
		assert.Equal(t, "type", byRow[4].Column)
		assert.Equal(t, csvimport.ErrCodeImportValidation, byRow[4].Code)
		assert.Equal(t, "date", byRow[5].Column)
		assert.Equal(t, csvimport.ErrCodeImportInvalidType, byRow[5].Code)
		assert.Equal(t, "description", byRow[6].Column)
		assert.Equal(t, csvimport.ErrCodeImportRequiredField, byRow[6].Code)
	})

	t.Run("Files without the required columns are rejected", func(t *testing.T) {
		csv := "date,description,type\n2026-03-20,Sem valor,expense\n"

		w := ts.UploadCSV(t, "/api/v1/import/transactions", "sem-coluna.csv", csv, nil)
		requireErrorCode(t, w, http.StatusBadRequest, "ERR_BAD_REQUEST")
	})

	t.Run("Header-only files are rejected", func(t *testing.T) {
		w := ts.UploadCSV(t, "/api/v1/import/transactions", "vazio.csv",
			"date,description,amount,type\n", nil)
		requireErrorCode(t, w, http.StatusBadRequest, "ERR_BAD_REQUEST")
	})

	t.Run("Unknown conflict modes are rejected", func(t *testing.T) {
		w := ts.UploadCSV(t, "/api/v1/import/transactions", "extrato.csv", bankExportCSV,
			map[string]string{"conflict_mode": "merge"})
		requireErrorCode(t, w, http.StatusBadRequest, "ERR_BAD_REQUEST")
	})
}

func TestImportAPI_ValidationRules(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ts := NewAPITestServer(t)

	w := ts.Request("GET", "/api/v1/import/transactions/rules", nil)
	require.Equal(t, http.StatusOK, w.Code, "Response body: %s", w.Body.String())

	var rules []map[string]any
	decodeData(t, w, &rules)
	require.NotEmpty(t, rules)

	byColumn := make(map[string]map[string]any)
	for _, rule := range rules {
		byColumn[rule["column"].(string)] = rule
	}

	require.Contains(t, byColumn, "date")
	assert.Equal(t, true, byColumn["date"]["required"])
	assert.ElementsMatch(t, []any{"2006-01-02", "02/01/2006"}, byColumn["date"]["date_formats"])

	require.Contains(t, byColumn, "amount")
	assert.Equal(t, true, byColumn["amount"]["required"])

	require.Contains(t, byColumn, "counterparty_tax_id")
	assert.NotEqual(t, true, byColumn["counterparty_tax_id"]["required"])
}
