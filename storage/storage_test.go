package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polycopy/model"
)

func seedTrades(t *testing.T, st Storage) {
	t.Helper()

	now := time.Now().UTC()
	entries := []*model.CopyTrade{
		{
			OriginalTrader: "0xabc",
			MarketID:       "market-1",
			TokenID:        "token-1",
			Side:           model.SideTypeBuy,
			CopyAmount:     50,
			Status:         model.CopyTradeStatusPending,
			CreatedAt:      now.Add(-48 * time.Hour),
		},
		{
			OriginalTrader: "0xabc",
			MarketID:       "market-2",
			TokenID:        "token-2",
			Side:           model.SideTypeBuy,
			CopyAmount:     30,
			Status:         model.CopyTradeStatusFilled,
			CreatedAt:      now.Add(-time.Hour),
		},
		{
			OriginalTrader: "0xdef",
			MarketID:       "market-1",
			TokenID:        "token-1",
			Side:           model.SideTypeSell,
			CopyAmount:     20,
			Status:         model.CopyTradeStatusFailed,
			CreatedAt:      now,
		},
	}
	for _, entry := range entries {
		require.NoError(t, st.CreateCopyTrade(entry))
	}
}

func storageBackends(t *testing.T) map[string]Storage {
	t.Helper()

	memory, err := FromMemory()
	require.NoError(t, err)

	sql, err := FromSQL(sqlite.Open(":memory:"))
	require.NoError(t, err)

	return map[string]Storage{
		"buntdb": memory,
		"sqlite": sql,
	}
}

func TestCreateAssignsSequentialIDs(t *testing.T) {
	for name, st := range storageBackends(t) {
		t.Run(name, func(t *testing.T) {
			seedTrades(t, st)

			trades, err := st.CopyTrades()
			require.NoError(t, err)
			require.Len(t, trades, 3)
			for _, trade := range trades {
				assert.NotZero(t, trade.ID)
			}
		})
	}
}

func TestCopyTradesOrderedByCreation(t *testing.T) {
	for name, st := range storageBackends(t) {
		t.Run(name, func(t *testing.T) {
			seedTrades(t, st)

			trades, err := st.CopyTrades()
			require.NoError(t, err)
			require.Len(t, trades, 3)
			assert.Equal(t, "market-1", trades[0].MarketID)
			assert.True(t, trades[0].CreatedAt.Before(trades[1].CreatedAt))
			assert.True(t, trades[1].CreatedAt.Before(trades[2].CreatedAt))
		})
	}
}

func TestFilters(t *testing.T) {
	for name, st := range storageBackends(t) {
		t.Run(name, func(t *testing.T) {
			seedTrades(t, st)

			byTrader, err := st.CopyTrades(WithTrader("0xabc"))
			require.NoError(t, err)
			assert.Len(t, byTrader, 2)

			byStatus, err := st.CopyTrades(WithStatusIn(model.CopyTradeStatusPending, model.CopyTradeStatusFilled))
			require.NoError(t, err)
			assert.Len(t, byStatus, 2)

			byMarket, err := st.CopyTrades(WithMarket("market-1"))
			require.NoError(t, err)
			assert.Len(t, byMarket, 2)

			recent, err := st.CopyTrades(WithCreatedAtAfterOrEqual(time.Now().UTC().Add(-2 * time.Hour)))
			require.NoError(t, err)
			assert.Len(t, recent, 2)

			combined, err := st.CopyTrades(
				WithTrader("0xabc"),
				WithStatusIn(model.CopyTradeStatusFilled),
			)
			require.NoError(t, err)
			require.Len(t, combined, 1)
			assert.Equal(t, "market-2", combined[0].MarketID)
		})
	}
}

func TestFromFilePreservesHistoryAcrossReopen(t *testing.T) {
	file := filepath.Join(t.TempDir(), "ledger.db")

	st, err := FromFile(file)
	require.NoError(t, err)
	require.NoError(t, st.CreateCopyTrade(&model.CopyTrade{
		OriginalTrader: "0xabc",
		CopyAmount:     50,
		Status:         model.CopyTradeStatusPending,
		CreatedAt:      time.Now().UTC(),
	}))
	require.NoError(t, st.(*Bunt).Close())

	st, err = FromFile(file)
	require.NoError(t, err)
	require.NoError(t, st.CreateCopyTrade(&model.CopyTrade{
		OriginalTrader: "0xdef",
		CopyAmount:     30,
		Status:         model.CopyTradeStatusPending,
		CreatedAt:      time.Now().UTC(),
	}))

	trades, err := st.CopyTrades()
	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.NotEqual(t, trades[0].ID, trades[1].ID)
	assert.Equal(t, "0xabc", trades[0].OriginalTrader)
	assert.Equal(t, "0xdef", trades[1].OriginalTrader)
}

func TestUpdateCopyTrade(t *testing.T) {
	for name, st := range storageBackends(t) {
		t.Run(name, func(t *testing.T) {
			trade := &model.CopyTrade{
				OriginalTrader: "0xabc",
				TokenID:        "token-1",
				Side:           model.SideTypeBuy,
				CopyAmount:     50,
				Status:         model.CopyTradeStatusPending,
				CreatedAt:      time.Now().UTC(),
			}
			require.NoError(t, st.CreateCopyTrade(trade))

			trade.Status = model.CopyTradeStatusFilled
			trade.UpdatedAt = time.Now().UTC()
			require.NoError(t, st.UpdateCopyTrade(trade))

			trades, err := st.CopyTrades()
			require.NoError(t, err)
			require.Len(t, trades, 1)
			assert.Equal(t, model.CopyTradeStatusFilled, trades[0].Status)
		})
	}
}
