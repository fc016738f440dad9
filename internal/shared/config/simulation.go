package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/viper"
)

// Stop policies decide what a worker does with an in-flight job when told to stop.
const (
	StopPolicyAbandon = "abandon"
	StopPolicyFinish  = "finish"
)

// Config contains all configuration for a chores run.
type Config struct {
	Simulation SimulationConfig `mapstructure:"simulation"`
	Worker     WorkerConfig     `mapstructure:"worker"`
	Events     EventsConfig     `mapstructure:"events"`
	API        APIConfig        `mapstructure:"api"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// SimulationConfig contains the table, roster and timing of a run.
type SimulationConfig struct {
	TableCapacity int           `mapstructure:"table_capacity"`
	Workers       []string      `mapstructure:"workers"`
	RunDuration   time.Duration `mapstructure:"run_duration"`
	PollInterval  time.Duration `mapstructure:"poll_interval"`
	WorkUnit      time.Duration `mapstructure:"work_unit"`
	WinnerBonus   int           `mapstructure:"winner_bonus"`
	Seed          uint64        `mapstructure:"seed"`
}

// WorkerConfig contains per-worker behaviour.
type WorkerConfig struct {
	IdleInterval time.Duration `mapstructure:"idle_interval"`
	StopPolicy   string        `mapstructure:"stop_policy"`
	// Moods pins moods by worker-name glob. Keys are matched case-insensitively.
	Moods map[string]string `mapstructure:"moods"`
}

// EventsConfig contains event bus configuration. An empty URL disables publishing.
type EventsConfig struct {
	NATSURL       string `mapstructure:"nats_url"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

// APIConfig contains the optional status endpoints. Empty addresses disable them.
// Once the run finishes the endpoints stay up for Linger, or until the process
// is signalled when Linger is zero.
type APIConfig struct {
	RESTAddr string        `mapstructure:"rest_addr"`
	GRPCAddr string        `mapstructure:"grpc_addr"`
	Linger   time.Duration `mapstructure:"linger"`
}

// Enabled reports whether any status endpoint is configured.
func (c APIConfig) Enabled() bool {
	return c.RESTAddr != "" || c.GRPCAddr != ""
}

// Load loads the configuration from the given path.
// If configPath is empty, it looks for chores.yaml in the config/ directory.
// Environment variables with CHORES_ prefix override config file values.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("chores")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("CHORES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("simulation.table_capacity", 10)
	v.SetDefault("simulation.workers", []string{"Ali", "Cory", "Lee", "Pat"})
	v.SetDefault("simulation.run_duration", 21*time.Second)
	v.SetDefault("simulation.poll_interval", 1*time.Second)
	v.SetDefault("simulation.work_unit", 1*time.Second)
	v.SetDefault("simulation.winner_bonus", 5)
	v.SetDefault("simulation.seed", 0)
	v.SetDefault("worker.idle_interval", 10*time.Millisecond)
	v.SetDefault("worker.stop_policy", StopPolicyAbandon)
	v.SetDefault("worker.moods", map[string]string{})
	v.SetDefault("events.nats_url", "")
	v.SetDefault("events.subject_prefix", "chores")
	v.SetDefault("api.rest_addr", "")
	v.SetDefault("api.grpc_addr", "")
	v.SetDefault("api.linger", 0)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.file", "output.txt")
}

// Validate checks value ranges that viper cannot express.
func (c *Config) Validate() error {
	s := c.Simulation
	if s.TableCapacity < 1 {
		return fmt.Errorf("simulation.table_capacity must be at least 1, got %d", s.TableCapacity)
	}
	if len(s.Workers) == 0 {
		return fmt.Errorf("simulation.workers must name at least one worker")
	}
	if s.RunDuration <= 0 {
		return fmt.Errorf("simulation.run_duration must be positive, got %s", s.RunDuration)
	}
	if s.PollInterval <= 0 {
		return fmt.Errorf("simulation.poll_interval must be positive, got %s", s.PollInterval)
	}
	if s.WorkUnit <= 0 {
		return fmt.Errorf("simulation.work_unit must be positive, got %s", s.WorkUnit)
	}
	if s.WinnerBonus < 0 {
		return fmt.Errorf("simulation.winner_bonus must not be negative, got %d", s.WinnerBonus)
	}

	w := c.Worker
	if w.IdleInterval < 0 {
		return fmt.Errorf("worker.idle_interval must not be negative, got %s", w.IdleInterval)
	}
	switch w.StopPolicy {
	case StopPolicyAbandon, StopPolicyFinish:
	default:
		return fmt.Errorf("worker.stop_policy must be %q or %q, got %q", StopPolicyAbandon, StopPolicyFinish, w.StopPolicy)
	}
	for pattern := range w.Moods {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("worker.moods has invalid pattern %q", pattern)
		}
	}

	if c.API.Linger < 0 {
		return fmt.Errorf("api.linger must not be negative, got %s", c.API.Linger)
	}

	if c.Events.NATSURL != "" && c.Events.SubjectPrefix == "" {
		return fmt.Errorf("events.subject_prefix is required when events.nats_url is set")
	}
	return nil
}
