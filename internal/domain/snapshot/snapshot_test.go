package snapshot

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriod(t *testing.T) {
	t.Run("should compute month boundaries", func(t *testing.T) {
		period, err := NewPeriod(2024, time.February)
		require.NoError(t, err)

		assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), period.Start())
		assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), period.End())
	})

	t.Run("should roll previous over year boundary", func(t *testing.T) {
		period := Period{Year: 2024, Month: time.January}

		previous := period.Previous()

		assert.Equal(t, 2023, previous.Year)
		assert.Equal(t, time.December, previous.Month)
	})

	t.Run("should format as year dash month", func(t *testing.T) {
		period := Period{Year: 2024, Month: time.March}

		assert.Equal(t, "2024-03", period.String())
	})

	t.Run("should fail with invalid month", func(t *testing.T) {
		_, err := NewPeriod(2024, time.Month(13))

		assert.Error(t, err)
	})
}

func TestBalanceSnapshot(t *testing.T) {
	t.Run("should compute net balance on creation", func(t *testing.T) {
		period := Period{Year: 2024, Month: time.March}
		income := decimal.RequireFromString("8000.00")
		expense := decimal.RequireFromString("5250.75")

		s := NewBalanceSnapshot(period, income, expense, 42)

		assert.True(t, s.NetBalance.Equal(decimal.RequireFromString("2749.25")))
		assert.Equal(t, int64(42), s.TransactionCount)
		assert.False(t, s.GeneratedAt.IsZero())
	})

	t.Run("should recompute net balance on refresh", func(t *testing.T) {
		period := Period{Year: 2024, Month: time.March}
		s := NewBalanceSnapshot(period, decimal.Zero, decimal.Zero, 0)

		s.Refresh(decimal.RequireFromString("100.00"), decimal.RequireFromString("30.00"), 3)

		assert.True(t, s.NetBalance.Equal(decimal.RequireFromString("70.00")))
		assert.Equal(t, int64(3), s.TransactionCount)
	})
}
