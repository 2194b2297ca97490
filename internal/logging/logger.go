// Package logging provides the session's structured logger and the
// pending-log mirror queue described in spec.md §3/§5: a single-flight
// drain that snapshots whatever has queued up and hands it to a
// caller-supplied sink, never overlapping with an in-flight drain.
package logging

import (
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls how the logger is constructed.
type Config struct {
	// Verbosity gates V(level).Info calls: a call is emitted only if
	// level <= Verbosity, matching spec.md §6's verbose 0/1/2 option.
	Verbosity int
	// LogFile, if set, receives a rotated JSON copy of everything logged.
	LogFile string
	// Console, if true, forces the human-readable console encoder even
	// when stdout is not a TTY (mainly for tests).
	Console bool
}

// Record is one entry in the pending-log mirror queue.
type Record struct {
	Level     int
	Message   string
	Fields    map[string]any
	Timestamp time.Time
}

// Logger wraps a zap.Logger with spec.md's verbosity gating and owns the
// pendingLogs/processingLogs state from spec.md §3.
type Logger struct {
	zl        *zap.Logger
	verbosity int

	mu      sync.Mutex
	pending []Record
	draining bool
}

// New builds a Logger per Config.
func New(cfg Config) (*Logger, error) {
	level := zap.NewAtomicLevel()
	level.SetLevel(zap.DebugLevel)

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	console := cfg.Console
	if fi, err := os.Stdout.Stat(); err == nil && fi.Mode()&os.ModeCharDevice != 0 {
		console = true
	}

	var encoder zapcore.Encoder
	if console {
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	cores := []zapcore.Core{zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(os.Stdout)), level)}

	if cfg.LogFile != "" {
		fileEncoder := zapcore.NewJSONEncoder(encoderCfg)
		fileWriter := zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    50,
			MaxBackups: 5,
			MaxAge:     28,
			Compress:   true,
		})
		cores = append(cores, zapcore.NewCore(fileEncoder, fileWriter, level))
	}

	zl := zap.New(zapcore.NewTee(cores...))

	return &Logger{zl: zl, verbosity: cfg.Verbosity}, nil
}

// Nop returns a Logger that discards everything, useful as a safe default
// in tests and library callers that don't care about logging.
func Nop() *Logger {
	return &Logger{zl: zap.NewNop(), verbosity: 2}
}

// Sync flushes buffered log entries.
func (l *Logger) Sync() error {
	return l.zl.Sync()
}

// VLogger is a verbosity-gated view of Logger returned by V.
type VLogger struct {
	l     *Logger
	level int
}

// V returns a view of the logger gated at the given verbosity level.
func (l *Logger) V(level int) VLogger {
	return VLogger{l: l, level: level}
}

// Info logs msg with the given key/value pairs if the logger's configured
// verbosity is at least v.level, and enqueues the same record into the
// pending-log mirror queue regardless of verbosity so a later drain can
// still mirror it into the page console at higher verbosity.
func (v VLogger) Info(msg string, kvs ...any) {
	fields := make(map[string]any, len(kvs)/2)
	for i := 0; i+1 < len(kvs); i += 2 {
		if key, ok := kvs[i].(string); ok {
			fields[key] = kvs[i+1]
		}
	}

	v.l.enqueue(Record{Level: v.level, Message: msg, Fields: fields, Timestamp: time.Now()})

	if v.level > v.l.verbosity {
		return
	}

	zapFields := make([]zap.Field, 0, len(fields))
	for k, val := range fields {
		zapFields = append(zapFields, zap.Any(k, val))
	}
	v.l.zl.Info(msg, zapFields...)
}

func (l *Logger) enqueue(r Record) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending = append(l.pending, r)
}

// Enqueue appends a record to the pending-log mirror queue directly,
// without going through a verbosity check.
func (l *Logger) Enqueue(r Record) {
	l.enqueue(r)
}

// DrainInto snapshots the pending-log queue and hands it to sink, which is
// responsible for mirroring each record somewhere (typically the page
// console via page.Evaluate). If a drain is already running, the new
// records are left queued for the running drain's caller to pick up on
// its next call — this call returns immediately without double-draining.
func (l *Logger) DrainInto(sink func([]Record)) {
	l.mu.Lock()
	if l.draining {
		l.mu.Unlock()
		return
	}
	l.draining = true
	snapshot := l.pending
	l.pending = nil
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.draining = false
		l.mu.Unlock()
	}()

	if len(snapshot) > 0 {
		sink(snapshot)
	}
}
