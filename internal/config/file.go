package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type fileConfig struct {
	ListenAddr       string `toml:"listen_addr"`
	DBPath           string `toml:"db_path"`
	LogLevel         string `toml:"log_level"`
	QueueCapacity    int    `toml:"queue_capacity"`
	ResponseCapacity int    `toml:"response_capacity"`
	MaxMessageSize   int    `toml:"max_message_size"`
	Freewheel        bool   `toml:"freewheel"`
	CyclePeriod      string `toml:"cycle_period"`
	TasksPerCycle    int    `toml:"tasks_per_cycle"`
	RespondFrom      int    `toml:"respond_from"`
	RetainCycles     int    `toml:"retain_cycles"`
}

// LoadFile reads defaults, then the TOML file at path, then environment
// variables, each overriding the previous. Unlike Load it rejects bad values.
func LoadFile(path string) (Config, error) {
	cfg := defaults()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config file: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load config file: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("listen_addr") {
		cfg.ListenAddr = strings.TrimSpace(raw.ListenAddr)
	}
	if meta.IsDefined("db_path") {
		cfg.DBPath = strings.TrimSpace(raw.DBPath)
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = parseLogLevel(strings.TrimSpace(raw.LogLevel))
	}
	if meta.IsDefined("freewheel") {
		cfg.Freewheel = raw.Freewheel
	}
	if meta.IsDefined("cycle_period") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.CyclePeriod))
		if err != nil {
			return Config{}, fmt.Errorf("parse cycle_period: %w", err)
		}
		if d <= 0 {
			return Config{}, fmt.Errorf("cycle_period must be positive, got %s", d)
		}
		cfg.CyclePeriod = d
	}

	positive := []struct {
		key string
		val int
		dst *int
	}{
		{"queue_capacity", raw.QueueCapacity, &cfg.QueueCapacity},
		{"response_capacity", raw.ResponseCapacity, &cfg.ResponseCapacity},
		{"max_message_size", raw.MaxMessageSize, &cfg.MaxMessageSize},
		{"tasks_per_cycle", raw.TasksPerCycle, &cfg.TasksPerCycle},
	}
	for _, p := range positive {
		if !meta.IsDefined(p.key) {
			continue
		}
		if p.val <= 0 {
			return Config{}, fmt.Errorf("%s must be positive, got %d", p.key, p.val)
		}
		*p.dst = p.val
	}

	if meta.IsDefined("respond_from") {
		if raw.RespondFrom < 0 {
			return Config{}, fmt.Errorf("respond_from must not be negative, got %d", raw.RespondFrom)
		}
		cfg.RespondFrom = raw.RespondFrom
	}
	if meta.IsDefined("retain_cycles") {
		if raw.RetainCycles < 0 {
			return Config{}, fmt.Errorf("retain_cycles must not be negative, got %d", raw.RetainCycles)
		}
		cfg.RetainCycles = raw.RetainCycles
	}

	applyEnv(&cfg)
	cfg.File = path
	return cfg, nil
}
