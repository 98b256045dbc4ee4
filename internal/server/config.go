package server

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Config содержит настройки сервера
type Config struct {
	Addr        string
	DBPath      string
	LogLevel    string
	LogFormat   string
	WriteRate   int
	WriteWindow time.Duration
	ShowVersion bool
}

// Defaults
const (
	DefaultAddr        = "localhost:8080"
	DefaultDBPath      = "liftlog.db"
	DefaultWriteRate   = 120
	DefaultWriteWindow = time.Minute
)

// ParseConfig разбирает флаги командной строки.
// Незаданный флаг берется из переменной окружения LIFTLOG_*, затем из значения по умолчанию.
func ParseConfig(name string, args []string, getenv func(string) string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&cfg.Addr, "addr", envOr(getenv, "LIFTLOG_ADDR", DefaultAddr), "address to listen on")
	fs.StringVar(&cfg.DBPath, "db", envOr(getenv, "LIFTLOG_DB", DefaultDBPath), "path to SQLite database")
	fs.StringVar(&cfg.LogLevel, "log-level", envOr(getenv, "LIFTLOG_LOG_LEVEL", "info"), "log level: debug, info, warn, error")
	fs.StringVar(&cfg.LogFormat, "log-format", envOr(getenv, "LIFTLOG_LOG_FORMAT", "text"), "log format: text or json")
	fs.IntVar(&cfg.WriteRate, "write-rate", DefaultWriteRate, "max writes per client and session in a window, 0 disables")
	fs.DurationVar(&cfg.WriteWindow, "write-window", DefaultWriteWindow, "rate limit window")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if cfg.WriteRate < 0 || cfg.WriteWindow <= 0 {
		return Config{}, fmt.Errorf("invalid rate limit %d per %s", cfg.WriteRate, cfg.WriteWindow)
	}
	return cfg, nil
}

// NewLogger создает slog.Logger по настройкам
func (c Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(c.LogFormat) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", c.LogFormat)
	}
}

func envOr(getenv func(string) string, key, def string) string {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := getenv(key); v != "" {
		return v
	}
	return def
}
