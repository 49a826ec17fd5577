package main

import (
	"encoding/json"
	"net/http"

	"stock-vote-sim-go/internal/models"
	"stock-vote-sim-go/internal/simulation"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// APIHandler holds dependencies for the API endpoints.
type APIHandler struct {
	log *zap.Logger
	db  *gorm.DB
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(log *zap.Logger, db *gorm.DB) *APIHandler {
	return &APIHandler{log: log, db: db}
}

// runID returns the requested run, defaulting to the most recent one.
func (h *APIHandler) runID(r *http.Request) (string, error) {
	if id := r.URL.Query().Get("run_id"); id != "" {
		return id, nil
	}
	var latest models.SimulationSnapshot
	if err := h.db.Order("created_at desc").First(&latest).Error; err != nil {
		return "", err
	}
	return latest.RunID, nil
}

func (h *APIHandler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("Failed to write JSON response", zap.Error(err))
	}
}

// RunInfo summarizes one persisted simulation run.
type RunInfo struct {
	RunID     string `json:"run_id"`
	FirstDate string `json:"first_date"`
	LastDate  string `json:"last_date"`
	Days      int    `json:"days"`
}

// RunsHandler lists all persisted simulation runs.
func (h *APIHandler) RunsHandler(w http.ResponseWriter, r *http.Request) {
	var runs []RunInfo
	err := h.db.Model(&models.SimulationSnapshot{}).
		Select("run_id, MIN(date) as first_date, MAX(date) as last_date, COUNT(*) as days").
		Group("run_id").
		Order("MAX(created_at) desc").
		Scan(&runs).Error
	if err != nil {
		h.log.Error("Failed to list runs", zap.Error(err))
		http.Error(w, "Failed to list runs", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, runs)
}

// TradesHandler returns the trade ledger for a run, oldest first.
func (h *APIHandler) TradesHandler(w http.ResponseWriter, r *http.Request) {
	id, err := h.runID(r)
	if err != nil {
		http.Error(w, "No simulation runs found", http.StatusNotFound)
		return
	}

	var trades []models.SimulationTrade
	if err := h.db.Where("run_id = ?", id).Order("trade_date, id").Find(&trades).Error; err != nil {
		h.log.Error("Failed to get trades from database", zap.Error(err))
		http.Error(w, "Failed to get trades", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, trades)
}

// SnapshotsHandler returns the daily snapshot series for a run.
func (h *APIHandler) SnapshotsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := h.runID(r)
	if err != nil {
		http.Error(w, "No simulation runs found", http.StatusNotFound)
		return
	}

	var snapshots []models.SimulationSnapshot
	if err := h.db.Where("run_id = ?", id).Order("date").Find(&snapshots).Error; err != nil {
		h.log.Error("Failed to get snapshots from database", zap.Error(err))
		http.Error(w, "Failed to get snapshots", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, snapshots)
}

// MetricsHandler recomputes risk metrics from a run's persisted snapshot
// series.
func (h *APIHandler) MetricsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := h.runID(r)
	if err != nil {
		http.Error(w, "No simulation runs found", http.StatusNotFound)
		return
	}

	var rows []models.SimulationSnapshot
	if err := h.db.Where("run_id = ?", id).Order("date").Find(&rows).Error; err != nil {
		h.log.Error("Failed to get snapshots for metrics", zap.Error(err))
		http.Error(w, "Failed to calculate metrics", http.StatusInternalServerError)
		return
	}

	snapshots := make([]simulation.Snapshot, len(rows))
	for i, row := range rows {
		snapshots[i] = simulation.Snapshot{TotalValueJPY: row.TotalValueJPY}
	}

	metrics, ok := simulation.ComputeMetrics(snapshots)
	if !ok {
		http.Error(w, "Run too short for metrics", http.StatusUnprocessableEntity)
		return
	}
	h.writeJSON(w, struct {
		RunID string `json:"run_id"`
		simulation.Metrics
	}{RunID: id, Metrics: metrics})
}

// StatisticsResponse is the structure for the /api/statistics endpoint.
type StatisticsResponse struct {
	RunID        string  `json:"run_id"`
	TotalSells   int     `json:"total_sells"`
	WinningSells int     `json:"winning_sells"`
	LosingSells  int     `json:"losing_sells"`
	WinRate      float64 `json:"win_rate"`
	RealizedPnL  float64 `json:"realized_pnl_jpy"`
}

// StatisticsHandler calculates win/loss statistics over a run's ledger.
// Each sell is matched to the most recent prior buy of the same ticker.
func (h *APIHandler) StatisticsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := h.runID(r)
	if err != nil {
		http.Error(w, "No simulation runs found", http.StatusNotFound)
		return
	}

	var trades []models.SimulationTrade
	if err := h.db.Where("run_id = ?", id).Order("trade_date, id").Find(&trades).Error; err != nil {
		h.log.Error("Failed to get trades for statistics", zap.Error(err))
		http.Error(w, "Failed to calculate statistics", http.StatusInternalServerError)
		return
	}

	stats := StatisticsResponse{RunID: id}
	for i, trade := range trades {
		if trade.Action != "SELL" {
			continue
		}

		// Most recent prior buy of the same ticker.
		var buy *models.SimulationTrade
		for j := 0; j < i; j++ {
			candidate := trades[j]
			if candidate.Action == "BUY" && candidate.StockCode == trade.StockCode &&
				candidate.TradeDate < trade.TradeDate {
				buy = &trades[j]
			}
		}
		if buy == nil {
			continue
		}

		pnl := (trade.Price - buy.Price) * float64(trade.Shares)
		if trade.Currency == "USD" && trade.ExchangeRate != nil {
			pnl *= *trade.ExchangeRate
		}

		stats.TotalSells++
		if pnl > 0 {
			stats.WinningSells++
		} else if pnl < 0 {
			stats.LosingSells++
		}
		stats.RealizedPnL += pnl
	}
	if stats.TotalSells > 0 {
		stats.WinRate = float64(stats.WinningSells) / float64(stats.TotalSells)
	}

	h.writeJSON(w, stats)
}
