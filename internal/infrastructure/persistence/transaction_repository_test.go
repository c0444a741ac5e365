package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/finbook/backend/internal/domain/ledger"
	"github.com/finbook/backend/internal/domain/shared"
	"github.com/finbook/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockTransactionRepository creates a GormTransactionRepository with a mocked SQL connection
func newMockTransactionRepository(t *testing.T) (*GormTransactionRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormTransactionRepository(gormDB), mock, mockDB
}

func TestNewGormTransactionRepository(t *testing.T) {
	t.Run("creates repository with valid DB", func(t *testing.T) {
		repo, _, mockDB := newMockTransactionRepository(t)
		defer mockDB.Close()

		assert.NotNil(t, repo)
		assert.NotNil(t, repo.db)
	})
}

func TestGormTransactionRepository_FindByID(t *testing.T) {
	t.Run("finds existing transaction", func(t *testing.T) {
		repo, mock, mockDB := newMockTransactionRepository(t)
		defer mockDB.Close()

		transactionID := uuid.New()
		occurredAt := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

		rows := sqlmock.NewRows([]string{"id", "version", "description", "amount", "currency", "type", "status", "occurred_at", "payment_method", "counterparty_tax_id", "counterparty_name"}).
			AddRow(transactionID, 1, "Mercado do bairro", "152.90", "BRL", "expense", "pending", occurredAt, "pix", "12.345.678/0001-95", "Mercado Bom Preço LTDA")

		mock.ExpectQuery(`SELECT \* FROM "transactions" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(transactionID, 1).
			WillReturnRows(rows)

		transaction, err := repo.FindByID(context.Background(), transactionID)

		assert.NoError(t, err)
		assert.NotNil(t, transaction)
		assert.Equal(t, transactionID, transaction.ID)
		assert.Equal(t, "Mercado do bairro", transaction.Description)
		assert.Equal(t, ledger.TransactionTypeExpense, transaction.Type)
		assert.Equal(t, "12.345.678/0001-95", transaction.Counterparty.TaxID)
		assert.Equal(t, "Mercado Bom Preço LTDA", transaction.Counterparty.Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns error for non-existent transaction", func(t *testing.T) {
		repo, mock, mockDB := newMockTransactionRepository(t)
		defer mockDB.Close()

		transactionID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "transactions" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(transactionID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		transaction, err := repo.FindByID(context.Background(), transactionID)

		assert.Error(t, err)
		assert.Nil(t, transaction)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormTransactionRepository_FindByPeriod(t *testing.T) {
	t.Run("selects the half-open period with default ordering", func(t *testing.T) {
		repo, mock, mockDB := newMockTransactionRepository(t)
		defer mockDB.Close()

		from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

		rows := sqlmock.NewRows([]string{"id", "description", "amount", "type", "occurred_at"}).
			AddRow(uuid.New(), "Padaria da esquina", "48.50", "expense", from.Add(24*time.Hour))

		mock.ExpectQuery(`SELECT \* FROM "transactions" WHERE occurred_at >= \$1 AND occurred_at < \$2 ORDER BY occurred_at DESC, created_at DESC`).
			WithArgs(from, to).
			WillReturnRows(rows)

		transactions, err := repo.FindByPeriod(context.Background(), from, to, shared.Filter{})

		assert.NoError(t, err)
		assert.Len(t, transactions, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormTransactionRepository_FindByFiscalBook(t *testing.T) {
	t.Run("filters by fiscal book", func(t *testing.T) {
		repo, mock, mockDB := newMockTransactionRepository(t)
		defer mockDB.Close()

		bookID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "description", "fiscal_book_id"}).
			AddRow(uuid.New(), "Conta de luz", bookID)

		mock.ExpectQuery(`SELECT \* FROM "transactions" WHERE fiscal_book_id = \$1 ORDER BY occurred_at DESC, created_at DESC`).
			WithArgs(bookID).
			WillReturnRows(rows)

		transactions, err := repo.FindByFiscalBook(context.Background(), bookID, shared.Filter{})

		assert.NoError(t, err)
		assert.Len(t, transactions, 1)
		assert.Equal(t, bookID, *transactions[0].FiscalBookID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormTransactionRepository_FindByCounterpartyEntity(t *testing.T) {
	t.Run("filters by linked registry record", func(t *testing.T) {
		repo, mock, mockDB := newMockTransactionRepository(t)
		defer mockDB.Close()

		entityID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "description", "counterparty_entity_id"}).
			AddRow(uuid.New(), "Mensalidade academia", entityID)

		mock.ExpectQuery(`SELECT \* FROM "transactions" WHERE counterparty_entity_id = \$1 ORDER BY occurred_at DESC, created_at DESC`).
			WithArgs(entityID).
			WillReturnRows(rows)

		transactions, err := repo.FindByCounterpartyEntity(context.Background(), entityID, shared.Filter{})

		assert.NoError(t, err)
		assert.Len(t, transactions, 1)
		assert.Equal(t, entityID, *transactions[0].Counterparty.EntityID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormTransactionRepository_FindWithEmbeddedCounterparty(t *testing.T) {
	t.Run("selects rows that still carry a raw tax ID in creation order", func(t *testing.T) {
		repo, mock, mockDB := newMockTransactionRepository(t)
		defer mockDB.Close()

		rows := sqlmock.NewRows([]string{"id", "description", "counterparty_tax_id", "counterparty_name"}).
			AddRow(uuid.New(), "Compra supermercado", "12.345.678/0001-95", "Mercado Bom Preço LTDA").
			AddRow(uuid.New(), "Consulta médica", "529.982.247-25", "Dra. Ana Souza")

		mock.ExpectQuery(`SELECT \* FROM "transactions" WHERE counterparty_tax_id <> '' ORDER BY created_at ASC`).
			WillReturnRows(rows)

		transactions, err := repo.FindWithEmbeddedCounterparty(context.Background())

		assert.NoError(t, err)
		assert.Len(t, transactions, 2)
		assert.Equal(t, "12.345.678/0001-95", transactions[0].Counterparty.TaxID)
		assert.Equal(t, "529.982.247-25", transactions[1].Counterparty.TaxID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns empty slice when nothing is left to backfill", func(t *testing.T) {
		repo, mock, mockDB := newMockTransactionRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "transactions" WHERE counterparty_tax_id <> ''`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		transactions, err := repo.FindWithEmbeddedCounterparty(context.Background())

		assert.NoError(t, err)
		assert.Empty(t, transactions)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormTransactionRepository_RelinkCounterparty(t *testing.T) {
	t.Run("links the entity and clears the embedded columns in one update", func(t *testing.T) {
		repo, mock, mockDB := newMockTransactionRepository(t)
		defer mockDB.Close()

		transactionID := uuid.New()
		entityID := uuid.New()

		// Map keys are applied in sorted order; updated_at is appended by GORM.
		mock.ExpectExec(`UPDATE "transactions" SET "counterparty_entity_id"=\$1,"counterparty_name"=\$2,"counterparty_seller_name"=\$3,"counterparty_tax_id"=\$4,"updated_at"=\$5 WHERE id = \$6`).
			WithArgs(entityID, "", "", "", sqlmock.AnyArg(), transactionID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.RelinkCounterparty(context.Background(), transactionID, entityID)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found when the transaction does not exist", func(t *testing.T) {
		repo, mock, mockDB := newMockTransactionRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(`UPDATE "transactions" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.RelinkCounterparty(context.Background(), uuid.New(), uuid.New())

		assert.Error(t, err)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormTransactionRepository_Save(t *testing.T) {
	t.Run("saves transaction", func(t *testing.T) {
		repo, mock, mockDB := newMockTransactionRepository(t)
		defer mockDB.Close()

		transaction, err := ledger.NewTransaction(
			"Mercado do bairro",
			valueobject.NewMoneyBRL(decimal.RequireFromString("152.90")),
			ledger.TransactionTypeExpense,
			time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		)
		require.NoError(t, err)

		mock.ExpectExec(`UPDATE "transactions" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.Save(context.Background(), transaction)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormTransactionRepository_Delete(t *testing.T) {
	t.Run("deletes existing transaction", func(t *testing.T) {
		repo, mock, mockDB := newMockTransactionRepository(t)
		defer mockDB.Close()

		transactionID := uuid.New()

		mock.ExpectExec(`DELETE FROM "transactions" WHERE id = \$1`).
			WithArgs(transactionID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Delete(context.Background(), transactionID)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns error for non-existent transaction", func(t *testing.T) {
		repo, mock, mockDB := newMockTransactionRepository(t)
		defer mockDB.Close()

		transactionID := uuid.New()

		mock.ExpectExec(`DELETE FROM "transactions" WHERE id = \$1`).
			WithArgs(transactionID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(context.Background(), transactionID)

		assert.Error(t, err)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormTransactionRepository_Count(t *testing.T) {
	t.Run("counts transactions", func(t *testing.T) {
		repo, mock, mockDB := newMockTransactionRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "transactions"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

		count, err := repo.Count(context.Background(), shared.Filter{})

		assert.NoError(t, err)
		assert.Equal(t, int64(42), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("applies filter keys", func(t *testing.T) {
		repo, mock, mockDB := newMockTransactionRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "transactions" WHERE type = \$1`).
			WithArgs("expense").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

		count, err := repo.Count(context.Background(), shared.Filter{
			Filters: map[string]interface{}{"type": "expense"},
		})

		assert.NoError(t, err)
		assert.Equal(t, int64(7), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormTransactionRepository_SumByPeriod(t *testing.T) {
	t.Run("sums income and expense excluding cancelled rows", func(t *testing.T) {
		repo, mock, mockDB := newMockTransactionRepository(t)
		defer mockDB.Close()

		from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

		rows := sqlmock.NewRows([]string{"income", "expense", "transaction_count"}).
			AddRow("5200.00", "3147.35", 38)

		mock.ExpectQuery(`SELECT .+ FROM "transactions" WHERE \(occurred_at >= \$3 AND occurred_at < \$4\) AND status <> \$5`).
			WithArgs(ledger.TransactionTypeIncome, ledger.TransactionTypeExpense, from, to, ledger.TransactionStatusCancelled).
			WillReturnRows(rows)

		totals, err := repo.SumByPeriod(context.Background(), from, to)

		assert.NoError(t, err)
		assert.True(t, totals.Income.Equal(decimal.RequireFromString("5200.00")))
		assert.True(t, totals.Expense.Equal(decimal.RequireFromString("3147.35")))
		assert.Equal(t, int64(38), totals.TransactionCount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns zero totals for an empty period", func(t *testing.T) {
		repo, mock, mockDB := newMockTransactionRepository(t)
		defer mockDB.Close()

		from := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)

		rows := sqlmock.NewRows([]string{"income", "expense", "transaction_count"}).
			AddRow("0", "0", 0)

		mock.ExpectQuery(`SELECT .+ FROM "transactions"`).
			WillReturnRows(rows)

		totals, err := repo.SumByPeriod(context.Background(), from, to)

		assert.NoError(t, err)
		assert.True(t, totals.Income.IsZero())
		assert.True(t, totals.Expense.IsZero())
		assert.Equal(t, int64(0), totals.TransactionCount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormTransactionRepository_ExistsByFingerprint(t *testing.T) {
	t.Run("returns true for a matching fingerprint", func(t *testing.T) {
		repo, mock, mockDB := newMockTransactionRepository(t)
		defer mockDB.Close()

		occurredAt := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
		amount := decimal.RequireFromString("152.90")

		mock.ExpectQuery(`SELECT count\(\*\) FROM "transactions" WHERE occurred_at = \$1 AND amount = \$2 AND description = \$3`).
			WithArgs(occurredAt, amount, "Mercado do bairro").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		exists, err := repo.ExistsByFingerprint(context.Background(), occurredAt, amount, "Mercado do bairro")

		assert.NoError(t, err)
		assert.True(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns false when no row matches", func(t *testing.T) {
		repo, mock, mockDB := newMockTransactionRepository(t)
		defer mockDB.Close()

		occurredAt := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
		amount := decimal.RequireFromString("88.00")

		mock.ExpectQuery(`SELECT count\(\*\) FROM "transactions"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		exists, err := repo.ExistsByFingerprint(context.Background(), occurredAt, amount, "Farmácia")

		assert.NoError(t, err)
		assert.False(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
