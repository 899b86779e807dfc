package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

var ErrInvalidValue = errors.New("invalid config value")

type Config struct {
	ListenAddr          string
	AllowOrigins        string
	ClockDuration       time.Duration
	ReadBufferSize      int
	WriteBufferSize     int
	MatchmakingInterval time.Duration
	LogLevel            string
}

func Default() Config {
	return Config{
		ListenAddr:          ":3000",
		AllowOrigins:        "http://localhost:5173",
		ClockDuration:       10 * time.Minute,
		ReadBufferSize:      1024,
		WriteBufferSize:     1024,
		MatchmakingInterval: time.Second,
		LogLevel:            "info",
	}
}

// FromEnv overlays CHESS_* environment variables on the defaults.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Default()
	if v := getenv("CHESS_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := getenv("CHESS_ALLOW_ORIGINS"); v != "" {
		cfg.AllowOrigins = v
	}
	if v := getenv("CHESS_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	var err error
	if cfg.ClockDuration, err = durationVar(getenv, "CHESS_CLOCK", cfg.ClockDuration); err != nil {
		return Config{}, err
	}
	if cfg.MatchmakingInterval, err = durationVar(getenv, "CHESS_MATCHMAKING_INTERVAL", cfg.MatchmakingInterval); err != nil {
		return Config{}, err
	}
	if cfg.ReadBufferSize, err = intVar(getenv, "CHESS_READ_BUFFER", cfg.ReadBufferSize); err != nil {
		return Config{}, err
	}
	if cfg.WriteBufferSize, err = intVar(getenv, "CHESS_WRITE_BUFFER", cfg.WriteBufferSize); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Load reads the environment and then lets command-line flags override it.
func Load(args []string) (Config, error) {
	cfg, err := FromEnv(os.Getenv)
	if err != nil {
		return Config{}, err
	}

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&cfg.ListenAddr, "addr", cfg.ListenAddr, "listen address")
	fs.StringVar(&cfg.AllowOrigins, "origins", cfg.AllowOrigins, "comma-separated CORS origins")
	fs.DurationVar(&cfg.ClockDuration, "clock", cfg.ClockDuration, "time per side")
	fs.IntVar(&cfg.ReadBufferSize, "read-buffer", cfg.ReadBufferSize, "websocket read buffer size")
	fs.IntVar(&cfg.WriteBufferSize, "write-buffer", cfg.WriteBufferSize, "websocket write buffer size")
	fs.DurationVar(&cfg.MatchmakingInterval, "matchmaking-interval", cfg.MatchmakingInterval, "how often queued players are paired")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "trace, debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.ClockDuration <= 0 {
		return fmt.Errorf("%w: clock %s", ErrInvalidValue, c.ClockDuration)
	}
	if c.MatchmakingInterval <= 0 {
		return fmt.Errorf("%w: matchmaking interval %s", ErrInvalidValue, c.MatchmakingInterval)
	}
	if c.ReadBufferSize <= 0 || c.WriteBufferSize <= 0 {
		return fmt.Errorf("%w: buffer sizes %d/%d", ErrInvalidValue, c.ReadBufferSize, c.WriteBufferSize)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level converts LogLevel to fiber's log level.
func (c Config) Level() (log.Level, error) {
	switch c.LogLevel {
	case "trace":
		return log.LevelTrace, nil
	case "debug":
		return log.LevelDebug, nil
	case "info", "":
		return log.LevelInfo, nil
	case "warn":
		return log.LevelWarn, nil
	case "error":
		return log.LevelError, nil
	default:
		return 0, fmt.Errorf("%w: log level %q", ErrInvalidValue, c.LogLevel)
	}
}

func durationVar(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidValue, key, err)
	}
	return d, nil
}

func intVar(getenv func(string) string, key string, def int) (int, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidValue, key, err)
	}
	return n, nil
}
