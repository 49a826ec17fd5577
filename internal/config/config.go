package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Simulation Simulation `mapstructure:"simulation"`
	Costs      Costs      `mapstructure:"costs"`
	Market     Market     `mapstructure:"market"`
	Logger     Logger     `mapstructure:"logger"`
	Server     Server     `mapstructure:"server"`
	Database   Database   `mapstructure:"database"`
}

// Simulation holds the parameters of a simulation run.
type Simulation struct {
	StartDate     string    `mapstructure:"start_date"` // YYYY-MM-DD
	EndDate       string    `mapstructure:"end_date"`   // YYYY-MM-DD, empty means today
	InitialJPY    float64   `mapstructure:"initial_jpy"`
	InitialUSDJPY float64   `mapstructure:"initial_usd_jpy"` // USD bucket seed, expressed in JPY
	JPYAllocation []float64 `mapstructure:"jpy_allocation"`  // percentages for ranks 1..10
	USDAllocation []float64 `mapstructure:"usd_allocation"`
	VoteWeekdays  []string  `mapstructure:"vote_weekdays"`
	OutputDir     string    `mapstructure:"output_dir"`
}

// Costs holds the trading cost model rates.
type Costs struct {
	CommissionRate float64 `mapstructure:"commission_rate"`
	SlippageRate   float64 `mapstructure:"slippage_rate"`
	SpreadRate     float64 `mapstructure:"spread_rate"`
}

// Market holds the configuration for the market data client.
type Market struct {
	BaseURL        string  `mapstructure:"base_url"`
	FXPair         string  `mapstructure:"fx_pair"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// Server holds the configuration for the result viewer web server.
type Server struct {
	Port int `mapstructure:"port"`
}

// Database holds the configuration for the database.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("costs.commission_rate", 0.001)
	viper.SetDefault("costs.slippage_rate", 0.0005)
	viper.SetDefault("costs.spread_rate", 0.0002)
	viper.SetDefault("market.base_url", "https://query1.finance.yahoo.com")
	viper.SetDefault("market.fx_pair", "USDJPY=X")
	viper.SetDefault("market.rate_limit", 5) // requests per second
	viper.SetDefault("market.rate_limit_burst", 2)
	viper.SetDefault("simulation.vote_weekdays", []string{"Tuesday", "Saturday"})
	viper.SetDefault("simulation.jpy_allocation", DefaultAllocation())
	viper.SetDefault("simulation.usd_allocation", DefaultAllocation())
	viper.SetDefault("simulation.output_dir", "./output")

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}

// DefaultAllocation returns the default rank 1..10 percentages.
func DefaultAllocation() []float64 {
	return []float64{25, 20, 15, 10, 5, 5, 5, 5, 5, 5}
}

// Dates parses the configured start and end dates. An empty end date means
// the current date.
func (s Simulation) Dates() (start, end time.Time, err error) {
	start, err = time.Parse("2006-01-02", s.StartDate)
	if err != nil {
		return start, end, fmt.Errorf("invalid simulation.start_date %q: %w", s.StartDate, err)
	}
	if s.EndDate == "" {
		now := time.Now()
		end = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		return start, end, nil
	}
	end, err = time.Parse("2006-01-02", s.EndDate)
	if err != nil {
		return start, end, fmt.Errorf("invalid simulation.end_date %q: %w", s.EndDate, err)
	}
	return start, end, nil
}

// ParsedVoteWeekdays converts the configured weekday names.
func (s Simulation) ParsedVoteWeekdays() ([]time.Weekday, error) {
	names := map[string]time.Weekday{
		"Sunday": time.Sunday, "Monday": time.Monday, "Tuesday": time.Tuesday,
		"Wednesday": time.Wednesday, "Thursday": time.Thursday,
		"Friday": time.Friday, "Saturday": time.Saturday,
	}
	days := make([]time.Weekday, 0, len(s.VoteWeekdays))
	for _, n := range s.VoteWeekdays {
		d, ok := names[n]
		if !ok {
			return nil, fmt.Errorf("unknown vote weekday %q", n)
		}
		days = append(days, d)
	}
	return days, nil
}
