package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"stock-vote-sim-go/internal/config"
	"stock-vote-sim-go/internal/database"
	"stock-vote-sim-go/internal/logger"
	"stock-vote-sim-go/internal/marketdata"
	"stock-vote-sim-go/internal/simulation"
	"stock-vote-sim-go/internal/votes"

	"go.uber.org/zap"
)

func main() {
	// Load application configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		// We can't use the logger here because it's not initialized yet.
		panic(fmt.Sprintf("could not load config: %v", err))
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("Configuration loaded")

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connection successful and schema migrated.")

	start, end, err := cfg.Simulation.Dates()
	if err != nil {
		log.Fatal("Invalid simulation dates", zap.Error(err))
	}
	voteWeekdays, err := cfg.Simulation.ParsedVoteWeekdays()
	if err != nil {
		log.Fatal("Invalid vote weekdays", zap.Error(err))
	}

	// Market data: chart client behind the database-backed price cache.
	client := marketdata.NewClient(&cfg.Market, log)
	provider := marketdata.NewProvider(client, marketdata.NewGormCache(db), cfg.Market.FXPair, log)

	params := simulation.Params{
		StartDate:     start,
		EndDate:       end,
		InitialJPY:    cfg.Simulation.InitialJPY,
		InitialUSDJPY: cfg.Simulation.InitialUSDJPY,
		JPYAllocation: cfg.Simulation.JPYAllocation,
		USDAllocation: cfg.Simulation.USDAllocation,
		VoteWeekdays:  voteWeekdays,
		Costs: simulation.CostModel{
			CommissionRate: cfg.Costs.CommissionRate,
			SlippageRate:   cfg.Costs.SlippageRate,
			SpreadRate:     cfg.Costs.SpreadRate,
		},
	}

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
		<-sigchan
		log.Info("Shutdown signal received, cancelling simulation...")
		cancel()
	}()

	engine := simulation.NewEngine(log, params, votes.NewTally(db), provider, provider)
	result, err := engine.Run(ctx)
	if err != nil {
		log.Fatal("Simulation failed", zap.Error(err))
	}
	if len(result.Snapshots) == 0 {
		log.Warn("Simulation produced no trading days; nothing to export")
		return
	}

	if err := database.SaveResult(db, result); err != nil {
		log.Error("Failed to persist simulation run", zap.Error(err))
	}

	if err := exportCSVs(&cfg, result); err != nil {
		log.Error("Failed to export CSV files", zap.Error(err))
	}

	last := result.Snapshots[len(result.Snapshots)-1]
	reconstructor := simulation.NewReconstructor(result.Trades, provider, provider)
	realized := reconstructor.RealizedThrough(last.Date)
	unrealized := reconstructor.UnrealizedThrough(last.Date)

	summary := []zap.Field{
		zap.String("run_id", result.RunID),
		zap.Float64("final_value_jpy", last.TotalValueJPY),
		zap.Float64("realized_pnl_jpy", realized),
		zap.Float64("unrealized_pnl_jpy", unrealized),
		zap.Int("trades", len(result.Trades)),
	}
	if metrics, ok := simulation.ComputeMetrics(result.Snapshots); ok {
		summary = append(summary,
			zap.Float64("annual_return_pct", metrics.AnnualReturn),
			zap.Float64("annual_volatility_pct", metrics.AnnualVolatility),
			zap.Float64("sharpe_ratio", metrics.SharpeRatio),
			zap.Float64("max_drawdown_pct", metrics.MaxDrawdown),
		)
	}
	log.Info("Simulation summary", summary...)
}

func exportCSVs(cfg *config.Config, result *simulation.Result) error {
	dir := cfg.Simulation.OutputDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("could not create output dir %s: %w", dir, err)
	}

	tradesPath := filepath.Join(dir, fmt.Sprintf("trades_%s.csv", result.RunID))
	f, err := os.Create(tradesPath)
	if err != nil {
		return fmt.Errorf("could not create %s: %w", tradesPath, err)
	}
	defer f.Close()
	if err := simulation.WriteTradesCSV(f, result.Trades); err != nil {
		return err
	}

	snapshotsPath := filepath.Join(dir, fmt.Sprintf("snapshots_%s.csv", result.RunID))
	g, err := os.Create(snapshotsPath)
	if err != nil {
		return fmt.Errorf("could not create %s: %w", snapshotsPath, err)
	}
	defer g.Close()
	return simulation.WriteSnapshotsCSV(g, result.Snapshots)
}
