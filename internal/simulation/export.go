package simulation

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

const dateLayout = "2006-01-02"

// WriteTradesCSV writes the trade ledger as tabular data.
func WriteTradesCSV(w io.Writer, trades []Trade) error {
	cw := csv.NewWriter(w)
	header := []string{"date", "ticker", "action", "shares", "price", "currency", "exchange_rate"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write trade CSV header: %w", err)
	}
	for _, t := range trades {
		rate := ""
		if t.ExchangeRate != nil {
			rate = strconv.FormatFloat(*t.ExchangeRate, 'f', -1, 64)
		}
		row := []string{
			t.TradeDate.Format(dateLayout),
			t.StockCode,
			t.Action,
			strconv.FormatInt(t.Shares, 10),
			strconv.FormatFloat(t.Price, 'f', -1, 64),
			t.Currency,
			rate,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write trade CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSnapshotsCSV writes the daily snapshot series as tabular data.
func WriteSnapshotsCSV(w io.Writer, snapshots []Snapshot) error {
	cw := csv.NewWriter(w)
	header := []string{
		"date", "is_rebalance_day", "total_value_jpy", "jpy_value", "usd_value",
		"jpy_cash", "usd_cash", "exchange_rate", "trading_cost_jpy", "daily_pnl_rate",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write snapshot CSV header: %w", err)
	}
	for _, s := range snapshots {
		row := []string{
			s.Date.Format(dateLayout),
			strconv.FormatBool(s.IsRebalanceDay),
			strconv.FormatFloat(s.TotalValueJPY, 'f', 2, 64),
			strconv.FormatFloat(s.JPYValue, 'f', 2, 64),
			strconv.FormatFloat(s.USDValue, 'f', 2, 64),
			strconv.FormatFloat(s.JPYCash, 'f', 2, 64),
			strconv.FormatFloat(s.USDCash, 'f', 2, 64),
			strconv.FormatFloat(s.ExchangeRate, 'f', 4, 64),
			strconv.FormatFloat(s.TradingCostJPY, 'f', 2, 64),
			strconv.FormatFloat(s.DailyPnLRate, 'f', 4, 64),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write snapshot CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
