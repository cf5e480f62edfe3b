package config

import (
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultListenAddr       = ":8080"
	defaultDBPath           = "rtwork.db"
	defaultQueueCapacity    = 64
	defaultResponseCapacity = 64
	defaultMaxMessageSize   = 4096
	defaultCyclePeriod      = 10 * time.Millisecond
	defaultTasksPerCycle    = 10
	defaultRespondFrom      = 5
	defaultRetainCycles     = 10000

	envListenAddr       = "RTWORK_LISTEN_ADDR"
	envDBPath           = "RTWORK_DB_PATH"
	envLogLevel         = "RTWORK_LOG_LEVEL"
	envQueueCapacity    = "RTWORK_QUEUE_CAPACITY"
	envResponseCapacity = "RTWORK_RESPONSE_CAPACITY"
	envMaxMessageSize   = "RTWORK_MAX_MESSAGE_SIZE"
	envCyclePeriod      = "RTWORK_CYCLE_PERIOD"
	envTasksPerCycle    = "RTWORK_TASKS_PER_CYCLE"
	envRespondFrom      = "RTWORK_RESPOND_FROM"
	envRetainCycles     = "RTWORK_RETAIN_CYCLES"
	envFreewheel        = "RTWORK_FREEWHEEL"
	envConfigFile       = "RTWORK_CONFIG"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	ListenAddr string
	DBPath     string
	LogLevel   slog.Level

	// Host sizing.
	QueueCapacity    int
	ResponseCapacity int
	MaxMessageSize   int
	Freewheel        bool

	// Demo workload.
	CyclePeriod   time.Duration
	TasksPerCycle int
	RespondFrom   int

	// RetainCycles bounds the cycle journal. Zero keeps everything.
	RetainCycles int

	// File is the TOML file named by RTWORK_CONFIG, if any.
	File string
}

// Load reads configuration from environment variables with sensible defaults.
// Values that fail to parse fall back to their defaults. Load does not read
// File; use LoadFile for that.
func Load() Config {
	cfg := defaults()
	applyEnv(&cfg)
	return cfg
}

func defaults() Config {
	return Config{
		ListenAddr:       defaultListenAddr,
		DBPath:           defaultDBPath,
		LogLevel:         slog.LevelInfo,
		QueueCapacity:    defaultQueueCapacity,
		ResponseCapacity: defaultResponseCapacity,
		MaxMessageSize:   defaultMaxMessageSize,
		CyclePeriod:      defaultCyclePeriod,
		TasksPerCycle:    defaultTasksPerCycle,
		RespondFrom:      defaultRespondFrom,
		RetainCycles:     defaultRetainCycles,
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(envListenAddr); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv(envDBPath); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv(envLogLevel); v != "" {
		cfg.LogLevel = parseLogLevel(v)
	}
	if v := os.Getenv(envConfigFile); v != "" {
		cfg.File = v
	}

	cfg.QueueCapacity = positiveInt(envQueueCapacity, cfg.QueueCapacity)
	cfg.ResponseCapacity = positiveInt(envResponseCapacity, cfg.ResponseCapacity)
	cfg.MaxMessageSize = positiveInt(envMaxMessageSize, cfg.MaxMessageSize)
	cfg.TasksPerCycle = positiveInt(envTasksPerCycle, cfg.TasksPerCycle)

	if v, err := strconv.Atoi(os.Getenv(envRespondFrom)); err == nil && v >= 0 {
		cfg.RespondFrom = v
	}
	if v, err := strconv.Atoi(os.Getenv(envRetainCycles)); err == nil && v >= 0 {
		cfg.RetainCycles = v
	}
	if v, err := time.ParseDuration(os.Getenv(envCyclePeriod)); err == nil && v > 0 {
		cfg.CyclePeriod = v
	}
	if v, err := strconv.ParseBool(os.Getenv(envFreewheel)); err == nil {
		cfg.Freewheel = v
	}
}

func positiveInt(env string, def int) int {
	v, err := strconv.Atoi(os.Getenv(env))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a structured JSON logger writing to w at the configured level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}
