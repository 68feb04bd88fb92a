package logx

import (
	"io"
	"os"
	"strings"

	"github.com/cafebot-sim/server/internal/core"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config is bound from LOG_* environment variables.
type Config struct {
	Level      string `envconfig:"LOG_LEVEL"`
	File       string `envconfig:"LOG_FILE"`
	MaxSizeMB  int    `envconfig:"LOG_MAX_SIZE_MB" default:"15"`
	MaxBackups int    `envconfig:"LOG_MAX_BACKUPS" default:"3"`
	MaxAgeDays int    `envconfig:"LOG_MAX_AGE_DAYS" default:"28"`
}

var DefaultLoggerOpts = &LoggerOpts{
	Environment: core.Development,
}

type LoggerOpts struct {
	Environment core.Environment
	Config      Config
	// Console overrides the terminal sink; defaults to stderr.
	Console io.Writer
}

var fileSink *lumberjack.Logger

func safe(otps ...LoggerOpts) *LoggerOpts {
	if len(otps) == 0 {
		return DefaultLoggerOpts
	}
	return &otps[0]
}

func Init(otps ...LoggerOpts) {
	opts := safe(otps...)

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	var sinks []io.Writer
	level := zerolog.DebugLevel
	if opts.Environment.IsProduction() {
		sinks = append(sinks, console)
		level = zerolog.InfoLevel
	} else {
		sinks = append(sinks, zerolog.ConsoleWriter{Out: console})
	}

	Close()
	if opts.Config.File != "" {
		// the file always receives JSON lines
		fileSink = &lumberjack.Logger{
			Filename:   opts.Config.File,
			MaxSize:    opts.Config.MaxSizeMB,
			MaxBackups: opts.Config.MaxBackups,
			MaxAge:     opts.Config.MaxAgeDays,
			Compress:   true,
		}
		sinks = append(sinks, fileSink)
	}

	if lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Config.Level))); err == nil && opts.Config.Level != "" {
		level = lvl
	}

	ctx := zerolog.New(zerolog.MultiLevelWriter(sinks...)).With().Timestamp()
	if !opts.Environment.IsProduction() {
		ctx = ctx.Caller()
	}
	log.Logger = ctx.Logger().Level(level)
}

// Close flushes and releases the rotating log file, if one is open.
func Close() error {
	if fileSink == nil {
		return nil
	}
	err := fileSink.Close()
	fileSink = nil
	return err
}

func Debug() *zerolog.Event {
	return log.Debug()
}

func Info() *zerolog.Event {
	return log.Info()
}

func Warn() *zerolog.Event {
	return log.Warn()
}

func Error() *zerolog.Event {
	return log.Error()
}

func Panic() *zerolog.Event {
	return log.Panic()
}

func Fatal() *zerolog.Event {
	return log.Fatal()
}
