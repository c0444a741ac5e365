package ledger

import (
	"testing"

	"github.com/finbook/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFiscalBook(t *testing.T) {
	t.Run("should create open book with valid data", func(t *testing.T) {
		book, err := NewFiscalBook("Livro Caixa 2024", 2024)

		require.NoError(t, err)
		assert.NotNil(t, book)
		assert.Equal(t, "Livro Caixa 2024", book.Name)
		assert.Equal(t, 2024, book.Year)
		assert.Equal(t, FiscalBookStatusOpen, book.Status)
		assert.Nil(t, book.ClosedAt)
		assert.Len(t, book.GetDomainEvents(), 1)
	})

	t.Run("should fail with empty name", func(t *testing.T) {
		book, err := NewFiscalBook("", 2024)

		assert.Error(t, err)
		assert.Nil(t, book)
	})

	t.Run("should fail with year out of range", func(t *testing.T) {
		book, err := NewFiscalBook("Livro antigo", 1800)

		assert.Error(t, err)
		assert.Nil(t, book)
	})
}

func TestFiscalBook_Close(t *testing.T) {
	t.Run("should close open book", func(t *testing.T) {
		book, err := NewFiscalBook("Livro Caixa 2024", 2024)
		require.NoError(t, err)
		book.ClearDomainEvents()

		err = book.Close()

		require.NoError(t, err)
		assert.Equal(t, FiscalBookStatusClosed, book.Status)
		assert.NotNil(t, book.ClosedAt)
		assert.True(t, book.IsClosed())
		assert.Len(t, book.GetDomainEvents(), 1)
	})

	t.Run("should fail closing an already closed book", func(t *testing.T) {
		book, err := NewFiscalBook("Livro Caixa 2024", 2024)
		require.NoError(t, err)
		require.NoError(t, book.Close())

		err = book.Close()

		assert.ErrorIs(t, err, shared.ErrBookClosed)
	})
}

func TestFiscalBook_Update(t *testing.T) {
	t.Run("should update open book", func(t *testing.T) {
		book, err := NewFiscalBook("Livro Caixa 2024", 2024)
		require.NoError(t, err)

		err = book.Update("Livro Caixa 2024 - Consultório", "Receitas e despesas do consultório")

		require.NoError(t, err)
		assert.Equal(t, "Livro Caixa 2024 - Consultório", book.Name)
		assert.Equal(t, "Receitas e despesas do consultório", book.Description)
		assert.Equal(t, 2, book.Version)
	})

	t.Run("should reject update on closed book", func(t *testing.T) {
		book, err := NewFiscalBook("Livro Caixa 2024", 2024)
		require.NoError(t, err)
		require.NoError(t, book.Close())

		err = book.Update("Outro nome", "")

		assert.ErrorIs(t, err, shared.ErrBookClosed)
		assert.Equal(t, "Livro Caixa 2024", book.Name)
	})
}

func TestFiscalBook_Reopen(t *testing.T) {
	t.Run("should reopen closed book", func(t *testing.T) {
		book, err := NewFiscalBook("Livro Caixa 2024", 2024)
		require.NoError(t, err)
		require.NoError(t, book.Close())

		err = book.Reopen()

		require.NoError(t, err)
		assert.Equal(t, FiscalBookStatusOpen, book.Status)
		assert.Nil(t, book.ClosedAt)
	})

	t.Run("should fail reopening an open book", func(t *testing.T) {
		book, err := NewFiscalBook("Livro Caixa 2024", 2024)
		require.NoError(t, err)

		err = book.Reopen()

		assert.Error(t, err)
	})
}
