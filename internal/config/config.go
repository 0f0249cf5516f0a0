// Package config loads the per-run configuration (spec §6.4) from a
// YAML file via github.com/spf13/viper, grounded on
// 0xtitan6-polymarket-mm's and abdoElHodaky-tradSys's viper-based
// config loaders.
package config

import (
	"fmt"
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// TimestampStrategy selects the monitor's snapshot qualifying policy
// (spec §6.4 order_book_statistics_timestamp_strategy).
type TimestampStrategy string

const (
	TopOfBookTick   TimestampStrategy = "TOP_OF_BOOK_TICK"
	EachOrderEvent  TimestampStrategy = "EACH_ORDER_EVENT"
	EachMarketOrder TimestampStrategy = "EACH_MARKET_ORDER"
	EachTrade       TimestampStrategy = "EACH_TRADE"
)

// SimulatorConfig is the per-run simulator sub-config (spec §6.4:
// anchor_price, num_grids, random_seed, max_timestamp?,
// max_num_events?), plus the SPEC_FULL.md §6.4 wall-clock pacing
// supplement (tick_interval, rate_limit_per_sec) that spec.md leaves
// unspecified.
type SimulatorConfig struct {
	AnchorPrice  decimal.Decimal `mapstructure:"anchor_price"`
	NumGrids     int             `mapstructure:"num_grids"`
	RandomSeed   int64           `mapstructure:"random_seed"`
	MaxTimestamp *uint64         `mapstructure:"max_timestamp"`
	MaxNumEvents *uint64         `mapstructure:"max_num_events"`

	TickInterval    time.Duration `mapstructure:"tick_interval"`
	RateLimitPerSec float64       `mapstructure:"rate_limit_per_sec"`
}

// Config is the top-level per-run configuration (spec §6.4).
type Config struct {
	MinPriceTick                       decimal.Decimal   `mapstructure:"min_price_tick"`
	MinLotSize                         uint64             `mapstructure:"min_lot_size"`
	OrderBookNumLevels                 int                `mapstructure:"order_book_num_levels"`
	TimeSeriesCollectorMaxSize         int                `mapstructure:"time_series_collector_max_size"`
	OrderBookStatisticsTimestampStrategy TimestampStrategy `mapstructure:"order_book_statistics_timestamp_strategy"`
	DebugMode                          bool               `mapstructure:"debug_mode"`
	Simulator                          SimulatorConfig    `mapstructure:"simulator"`
}

// Default returns the configuration with the defaults spec.md §6.4
// names: min_price_tick=0.01, min_lot_size=1, order_book_num_levels=10,
// time_series_collector_max_size=1_000_000,
// order_book_statistics_timestamp_strategy=TOP_OF_BOOK_TICK.
func Default() Config {
	return Config{
		MinPriceTick:                         decimal.NewFromFloat(0.01),
		MinLotSize:                           1,
		OrderBookNumLevels:                   10,
		TimeSeriesCollectorMaxSize:           1_000_000,
		OrderBookStatisticsTimestampStrategy: TopOfBookTick,
		Simulator: SimulatorConfig{
			NumGrids:        10,
			TickInterval:    time.Millisecond,
			RateLimitPerSec: 0,
		},
	}
}

// Load reads a YAML file at path, falling back to Default()'s values
// for anything the file omits.
func Load(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigFile(path)
	setViperDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	decodeHook := mapstructure.ComposeDecodeHookFunc(
		decimalDecodeHook,
		mapstructure.StringToTimeDurationHookFunc(),
	)
	if err := v.Unmarshal(&cfg, viper.DecodeHook(decodeHook)); err != nil {
		return cfg, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

func setViperDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("min_price_tick", cfg.MinPriceTick.String())
	v.SetDefault("min_lot_size", cfg.MinLotSize)
	v.SetDefault("order_book_num_levels", cfg.OrderBookNumLevels)
	v.SetDefault("time_series_collector_max_size", cfg.TimeSeriesCollectorMaxSize)
	v.SetDefault("order_book_statistics_timestamp_strategy", string(cfg.OrderBookStatisticsTimestampStrategy))
	v.SetDefault("debug_mode", cfg.DebugMode)
	v.SetDefault("simulator.num_grids", cfg.Simulator.NumGrids)
	v.SetDefault("simulator.tick_interval", cfg.Simulator.TickInterval.String())
}

// decimalDecodeHook lets min_price_tick, anchor_price, etc. be written
// as plain numbers or strings in YAML while decoding into
// decimal.Decimal instead of float64, avoiding the binary-float
// rounding a plain float64 field would introduce into a price field.
func decimalDecodeHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if to != reflect.TypeOf(decimal.Decimal{}) {
		return data, nil
	}
	switch from.Kind() {
	case reflect.String:
		return decimal.NewFromString(data.(string))
	case reflect.Float32, reflect.Float64:
		return decimal.NewFromFloat(reflect.ValueOf(data).Float()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return decimal.NewFromInt(reflect.ValueOf(data).Int()), nil
	default:
		return data, nil
	}
}

// Validate checks the per-run fields spec §6.4 requires to be
// sensible before a Config is handed to the manager/engine.
func (c *Config) Validate() error {
	if c.MinPriceTick.Sign() <= 0 {
		return fmt.Errorf("min_price_tick must be > 0")
	}
	if c.MinLotSize == 0 {
		return fmt.Errorf("min_lot_size must be > 0")
	}
	if c.OrderBookNumLevels <= 0 {
		return fmt.Errorf("order_book_num_levels must be > 0")
	}
	if c.TimeSeriesCollectorMaxSize <= 0 {
		return fmt.Errorf("time_series_collector_max_size must be > 0")
	}
	switch c.OrderBookStatisticsTimestampStrategy {
	case TopOfBookTick, EachOrderEvent, EachMarketOrder, EachTrade:
	default:
		return fmt.Errorf("order_book_statistics_timestamp_strategy %q is not a recognized strategy", c.OrderBookStatisticsTimestampStrategy)
	}
	return nil
}
