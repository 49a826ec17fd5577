package database

import (
	"encoding/json"
	"testing"
	"time"

	"stock-vote-sim-go/internal/models"
	"stock-vote-sim-go/internal/simulation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveResult(t *testing.T) {
	db, err := NewDatabase("file:save_result?mode=memory&cache=shared")
	require.NoError(t, err)

	day := time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC)
	vote := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	fx := 145.0

	result := &simulation.Result{
		RunID: "run-1",
		Trades: []simulation.Trade{
			{
				TradeDate: day, VoteDate: vote,
				StockCode: "7203", StockName: "Toyota",
				Action: simulation.ActionBuy, Shares: 499, Price: 2000, Value: 998000,
				Currency: simulation.CurrencyJPY,
			},
			{
				TradeDate: day, VoteDate: vote,
				StockCode: "AAPL", StockName: "Apple",
				Action: simulation.ActionBuy, Shares: 49, Price: 200, Value: 9800,
				Currency: simulation.CurrencyUSD, ExchangeRate: &fx,
			},
		},
		Snapshots: []simulation.Snapshot{
			{
				Date:           day,
				IsRebalanceDay: true,
				JPYPositions:   simulation.Position{"7203": 499},
				USDPositions:   simulation.Position{"AAPL": 49},
				JPYCash:        303.4,
				USDCash:        183.34,
				ExchangeRate:   145,
				TotalValueJPY:  2_445_887,
			},
		},
	}

	require.NoError(t, SaveResult(db, result))

	var trades []models.SimulationTrade
	require.NoError(t, db.Where("run_id = ?", "run-1").Order("id").Find(&trades).Error)
	require.Len(t, trades, 2)
	assert.Equal(t, "2025-07-02", trades[0].TradeDate)
	assert.Equal(t, "2025-07-01", trades[0].VoteDate)
	assert.Nil(t, trades[0].ExchangeRate)
	require.NotNil(t, trades[1].ExchangeRate)
	assert.Equal(t, 145.0, *trades[1].ExchangeRate)

	var snapshots []models.SimulationSnapshot
	require.NoError(t, db.Where("run_id = ?", "run-1").Find(&snapshots).Error)
	require.Len(t, snapshots, 1)
	assert.True(t, snapshots[0].IsRebalanceDay)

	var positions simulation.Position
	require.NoError(t, json.Unmarshal([]byte(snapshots[0].JPYPositions), &positions))
	assert.Equal(t, int64(499), positions["7203"])
}

func TestSaveResult_EmptyRun(t *testing.T) {
	db, err := NewDatabase("file:save_empty?mode=memory&cache=shared")
	require.NoError(t, err)

	require.NoError(t, SaveResult(db, &simulation.Result{RunID: "run-2"}))

	var count int64
	require.NoError(t, db.Model(&models.SimulationTrade{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}
