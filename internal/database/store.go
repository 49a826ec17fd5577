package database

import (
	"encoding/json"
	"fmt"

	"stock-vote-sim-go/internal/models"
	"stock-vote-sim-go/internal/simulation"

	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// SaveResult persists a simulation run's trade ledger and snapshot series
// so the viewer can serve them later.
func SaveResult(db *gorm.DB, result *simulation.Result) error {
	trades := make([]models.SimulationTrade, 0, len(result.Trades))
	for _, t := range result.Trades {
		trades = append(trades, models.SimulationTrade{
			RunID:        result.RunID,
			TradeDate:    t.TradeDate.Format(dateLayout),
			VoteDate:     t.VoteDate.Format(dateLayout),
			StockCode:    t.StockCode,
			StockName:    t.StockName,
			Action:       t.Action,
			Shares:       t.Shares,
			Price:        t.Price,
			Value:        t.Value,
			Currency:     t.Currency,
			ExchangeRate: t.ExchangeRate,
		})
	}

	snapshots := make([]models.SimulationSnapshot, 0, len(result.Snapshots))
	for _, s := range result.Snapshots {
		jpyPositions, err := json.Marshal(s.JPYPositions)
		if err != nil {
			return fmt.Errorf("failed to encode jpy positions: %w", err)
		}
		usdPositions, err := json.Marshal(s.USDPositions)
		if err != nil {
			return fmt.Errorf("failed to encode usd positions: %w", err)
		}
		snapshots = append(snapshots, models.SimulationSnapshot{
			RunID:          result.RunID,
			Date:           s.Date.Format(dateLayout),
			IsRebalanceDay: s.IsRebalanceDay,
			JPYPositions:   string(jpyPositions),
			USDPositions:   string(usdPositions),
			JPYCash:        s.JPYCash,
			USDCash:        s.USDCash,
			ExchangeRate:   s.ExchangeRate,
			TotalValueJPY:  s.TotalValueJPY,
			JPYValue:       s.JPYValue,
			USDValue:       s.USDValue,
			TradingCostJPY: s.TradingCostJPY,
			DailyPnLRate:   s.DailyPnLRate,
		})
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if len(trades) > 0 {
			if err := tx.CreateInBatches(trades, 200).Error; err != nil {
				return fmt.Errorf("failed to save trades: %w", err)
			}
		}
		if len(snapshots) > 0 {
			if err := tx.CreateInBatches(snapshots, 200).Error; err != nil {
				return fmt.Errorf("failed to save snapshots: %w", err)
			}
		}
		return nil
	})
}
