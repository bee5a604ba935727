package util

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/lintang-b-s/roadflow/pkg"
	"github.com/spf13/viper"
)

type PathConfig struct {
	Graph      string `mapstructure:"graph"`
	RoadList   string `mapstructure:"road_list"`
	Readings   string `mapstructure:"readings"`
	Trajectory string `mapstructure:"trajectory"`
	Flow       string `mapstructure:"flow"`
	Transition string `mapstructure:"transition"`
}

type SegmenterConfig struct {
	TimeGap                 int     `mapstructure:"time_gap"`                  // minute
	StayDuration            int     `mapstructure:"stay_duration"`             // minute
	InteractiveStayDuration int     `mapstructure:"interactive_stay_duration"` // minute
	SpeedLimit              float64 `mapstructure:"speed_limit"`               // km/h
}

type ExtractorConfig struct {
	BatchSize int `mapstructure:"batch_size"`
	Workers   int `mapstructure:"workers"`
}

type FlowConfig struct {
	Interval  int `mapstructure:"interval"`
	BatchSize int `mapstructure:"batch_size"`
}

type TransitionConfig struct {
	Interval int `mapstructure:"interval"`
	Workers  int `mapstructure:"workers"`
}

type RoutingConfig struct {
	CacheSize int `mapstructure:"cache_size"`
}

type APIConfig struct {
	Port      int           `mapstructure:"port"`
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit float64       `mapstructure:"rate_limit"`
	RateBurst int           `mapstructure:"rate_burst"`
	UseLimit  bool          `mapstructure:"use_rate_limit"`
}

type Config struct {
	DataDir    string           `mapstructure:"data_dir"`
	Paths      PathConfig       `mapstructure:"paths"`
	Segmenter  SegmenterConfig  `mapstructure:"segmenter"`
	Extractor  ExtractorConfig  `mapstructure:"extractor"`
	Flow       FlowConfig       `mapstructure:"flow"`
	Transition TransitionConfig `mapstructure:"transition"`
	Routing    RoutingConfig    `mapstructure:"routing"`
	API        APIConfig        `mapstructure:"api"`
	LogLevel   string           `mapstructure:"log_level"`
}

func setDefaults() {
	viper.SetDefault("data_dir", "./data")
	viper.SetDefault("paths.graph", "road_graph.graph")
	viper.SetDefault("paths.road_list", "road_list.csv")
	viper.SetDefault("paths.readings", "ParsedTaxiData_%s.csv")
	viper.SetDefault("paths.trajectory", "recovered_trajectory_df_%s_%s.csv")
	viper.SetDefault("paths.flow", "flow_%s_%s.csv")
	viper.SetDefault("paths.transition", "trajectory_transition_%s_%s.bz2")

	viper.SetDefault("segmenter.time_gap", pkg.DEFAULT_TIME_GAP_MINUTES)
	viper.SetDefault("segmenter.stay_duration", pkg.DEFAULT_STAY_DURATION_MINUTES)
	viper.SetDefault("segmenter.interactive_stay_duration", pkg.DEFAULT_INTERACTIVE_STAY_DURATION_MIN)
	viper.SetDefault("segmenter.speed_limit", pkg.DEFAULT_SPEED_LIMIT_KMH)

	viper.SetDefault("extractor.batch_size", pkg.DEFAULT_EXTRACTOR_BATCH_SIZE)
	viper.SetDefault("extractor.workers", runtime.NumCPU())

	viper.SetDefault("flow.interval", pkg.DEFAULT_FLOW_INTERVAL_MINUTES)
	viper.SetDefault("flow.batch_size", pkg.DEFAULT_FLOW_BATCH_SIZE)

	viper.SetDefault("transition.interval", pkg.DEFAULT_TRANSITION_INTERVAL_MINUTES)
	viper.SetDefault("transition.workers", 1)

	viper.SetDefault("routing.cache_size", pkg.DEFAULT_ROUTE_CACHE_SIZE)

	viper.SetDefault("api.port", 6060)
	viper.SetDefault("api.timeout", "60s")
	viper.SetDefault("api.rate_limit", 100.0)
	viper.SetDefault("api.rate_burst", 200)
	viper.SetDefault("api.use_rate_limit", false)

	viper.SetDefault("log_level", "info")
}

// ReadConfig loads ./data/config.yaml if present. a missing file is not an error, defaults apply.
func ReadConfig() error {
	setDefaults()
	viper.SetConfigName("config")
	viper.AddConfigPath("./data/")
	viper.SetEnvPrefix("ROADFLOW")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("fatal error config file: %w", err)
	}
	return nil
}

// LoadConfig reads the config file (if any) and returns the validated configuration.
func LoadConfig() (*Config, error) {
	if err := ReadConfig(); err != nil {
		return nil, err
	}
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultConfig returns the configuration used when no config file nor env override exists.
func DefaultConfig() *Config {
	return &Config{
		DataDir: "./data",
		Paths: PathConfig{
			Graph:      "road_graph.graph",
			RoadList:   "road_list.csv",
			Readings:   "ParsedTaxiData_%s.csv",
			Trajectory: "recovered_trajectory_df_%s_%s.csv",
			Flow:       "flow_%s_%s.csv",
			Transition: "trajectory_transition_%s_%s.bz2",
		},
		Segmenter: SegmenterConfig{
			TimeGap:                 pkg.DEFAULT_TIME_GAP_MINUTES,
			StayDuration:            pkg.DEFAULT_STAY_DURATION_MINUTES,
			InteractiveStayDuration: pkg.DEFAULT_INTERACTIVE_STAY_DURATION_MIN,
			SpeedLimit:              pkg.DEFAULT_SPEED_LIMIT_KMH,
		},
		Extractor:  ExtractorConfig{BatchSize: pkg.DEFAULT_EXTRACTOR_BATCH_SIZE, Workers: runtime.NumCPU()},
		Flow:       FlowConfig{Interval: pkg.DEFAULT_FLOW_INTERVAL_MINUTES, BatchSize: pkg.DEFAULT_FLOW_BATCH_SIZE},
		Transition: TransitionConfig{Interval: pkg.DEFAULT_TRANSITION_INTERVAL_MINUTES, Workers: 1},
		Routing:    RoutingConfig{CacheSize: pkg.DEFAULT_ROUTE_CACHE_SIZE},
		API:        APIConfig{Port: 6060, Timeout: 60 * time.Second, RateLimit: 100, RateBurst: 200},
		LogLevel:   "info",
	}
}

func (c *Config) Validate() error {
	switch {
	case c.Segmenter.TimeGap <= 0:
		return WrapErrorf(nil, ErrInvalidConfig, "segmenter.time_gap must be positive, got %d", c.Segmenter.TimeGap)
	case c.Segmenter.StayDuration <= 0 || c.Segmenter.InteractiveStayDuration <= 0:
		return WrapErrorf(nil, ErrInvalidConfig, "segmenter stay durations must be positive")
	case c.Segmenter.SpeedLimit <= 0:
		return WrapErrorf(nil, ErrInvalidConfig, "segmenter.speed_limit must be positive, got %v", c.Segmenter.SpeedLimit)
	case c.Extractor.BatchSize <= 0:
		return WrapErrorf(nil, ErrInvalidConfig, "extractor.batch_size must be positive, got %d", c.Extractor.BatchSize)
	case c.Flow.Interval <= 0 || (24*60)%c.Flow.Interval != 0:
		return WrapErrorf(nil, ErrInvalidConfig, "flow.interval must divide a day, got %d", c.Flow.Interval)
	case c.Flow.BatchSize <= 0:
		return WrapErrorf(nil, ErrInvalidConfig, "flow.batch_size must be positive, got %d", c.Flow.BatchSize)
	case c.Transition.Interval <= 0 || 60%c.Transition.Interval != 0:
		return WrapErrorf(nil, ErrInvalidConfig, "transition.interval must divide 60, got %d", c.Transition.Interval)
	}
	if c.Extractor.Workers <= 0 {
		c.Extractor.Workers = 1
	}
	if c.Transition.Workers <= 0 {
		c.Transition.Workers = 1
	}
	return nil
}

func (c *Config) path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}

func (c *Config) GraphPath() string {
	return c.path(c.Paths.Graph)
}

func (c *Config) RoadListPath() string {
	return c.path(c.Paths.RoadList)
}

func (c *Config) ReadingsPath(date string) string {
	return c.path(fmt.Sprintf(c.Paths.Readings, date))
}

func (c *Config) TrajectoryPath(startDate, endDate string) string {
	return c.path(fmt.Sprintf(c.Paths.Trajectory, startDate, endDate))
}

func (c *Config) FlowPath(startDate, endDate string) string {
	return c.path(fmt.Sprintf(c.Paths.Flow, startDate, endDate))
}

func (c *Config) TransitionPath(startDate, endDate string) string {
	return c.path(fmt.Sprintf(c.Paths.Transition, startDate, endDate))
}
