// Package logging provides component loggers for sherlock. Entries go to a
// rotating file under the XDG state directory, can be mirrored to stderr,
// and are fanned out to subscribers such as the interactive status line.
// Loggers are silent until Init is called.
//
//	if err := logging.Init(logging.Config{Level: "info"}); err != nil {
//	    return err
//	}
//	defer logging.Close()
//
//	logger := logging.Get("scanner")
//	logger.Info("hunt started", "root", "/home/user/project")
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
)

// Config configures the logging system.
type Config struct {
	// Level is the default level (debug, info, warn, error).
	Level string

	// Path is the log file. Empty uses DefaultLogPath().
	Path string

	// Format is the file encoding: text, json or logfmt.
	Format string

	// Rotation configures log file rotation.
	Rotation RotationConfig

	// Components overrides Level per component name.
	Components map[string]string

	// ConsoleLevel mirrors entries at this level and above to stderr.
	// Empty disables the console.
	ConsoleLevel string

	// TUIMode keeps the console quiet while the interface owns the screen.
	// Subscribers still receive every entry.
	TUIMode bool
}

// sinks is the set of outputs a component logs to.
type sinks struct {
	file    *log.Logger
	console *log.Logger
}

// handle is shared by a component logger and everything derived with With,
// so Init and Close retarget them all at once.
type handle struct {
	component string
	out       atomic.Pointer[sinks]
}

// Logger writes entries for one component.
type Logger struct {
	h      *handle
	fields []interface{}
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...interface{}) { l.log(LevelDebug, msg, args) }

// Info logs an info message.
func (l *Logger) Info(msg string, args ...interface{}) { l.log(LevelInfo, msg, args) }

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...interface{}) { l.log(LevelWarn, msg, args) }

// Error logs an error message.
func (l *Logger) Error(msg string, args ...interface{}) { l.log(LevelError, msg, args) }

// With returns a logger that adds the given key/value pairs to every entry.
func (l *Logger) With(args ...interface{}) *Logger {
	fields := make([]interface{}, 0, len(l.fields)+len(args))
	fields = append(append(fields, l.fields...), args...)
	return &Logger{h: l.h, fields: fields}
}

// Component returns the component name the logger was created with.
func (l *Logger) Component() string {
	return l.h.component
}

func (l *Logger) log(level Level, msg string, args []interface{}) {
	if len(l.fields) > 0 {
		args = append(append([]interface{}{}, l.fields...), args...)
	}

	out := l.h.out.Load()
	out.file.Log(level, msg, args...)
	if out.console != nil {
		out.console.Log(level, msg, args...)
	}

	std.hub.publish(LogEntry{
		Time:      time.Now(),
		Level:     level,
		Component: l.h.component,
		Message:   msg,
		Fields:    args,
	})
}

// registry is the process-wide logging state.
type registry struct {
	mu      sync.Mutex
	cfg     *settings
	writer  *RotatingWriter
	handles map[string]*handle
	hub     hub
}

// settings is a parsed Config.
type settings struct {
	level        Level
	components   map[string]Level
	format       Format
	console      bool
	consoleLevel Level
}

var std = &registry{handles: make(map[string]*handle)}

// Init configures logging. It may be called again to reconfigure; the
// previous log file is closed first. Loggers obtained earlier pick up the
// new outputs.
func Init(cfg Config) error {
	s, err := parseConfig(cfg)
	if err != nil {
		return err
	}

	path := cfg.Path
	if path == "" {
		path = DefaultLogPath()
	}

	std.mu.Lock()
	defer std.mu.Unlock()

	if std.writer != nil {
		if err := std.writer.Close(); err != nil {
			return fmt.Errorf("closing existing writer: %w", err)
		}
		std.writer = nil
	}

	writer, err := NewRotatingWriter(path, cfg.Rotation)
	if err != nil {
		return fmt.Errorf("creating log writer: %w", err)
	}
	std.writer = writer
	std.cfg = s

	for _, h := range std.handles {
		h.out.Store(std.sinksFor(h.component))
	}
	return nil
}

func parseConfig(cfg Config) (*settings, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}
	format, err := ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}

	s := &settings{
		level:      level,
		components: make(map[string]Level, len(cfg.Components)),
		format:     format,
	}
	for comp, name := range cfg.Components {
		lvl, err := ParseLevel(name)
		if err != nil {
			return nil, fmt.Errorf("parsing level for component %s: %w", comp, err)
		}
		s.components[comp] = lvl
	}

	if cfg.ConsoleLevel != "" && !cfg.TUIMode {
		lvl, err := ParseLevel(cfg.ConsoleLevel)
		if err != nil {
			return nil, fmt.Errorf("parsing console level: %w", err)
		}
		s.console = true
		s.consoleLevel = lvl
	}
	return s, nil
}

// sinksFor builds the outputs for a component. Callers hold r.mu.
func (r *registry) sinksFor(component string) *sinks {
	if r.cfg == nil {
		return &sinks{file: log.NewWithOptions(io.Discard, log.Options{Prefix: component})}
	}

	level := r.cfg.level
	if lvl, ok := r.cfg.components[component]; ok {
		level = lvl
	}

	out := &sinks{
		file: log.NewWithOptions(r.writer, log.Options{
			Level:           level,
			Prefix:          component,
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Formatter:       r.cfg.format.formatter(),
		}),
	}
	if r.cfg.console {
		out.console = log.NewWithOptions(os.Stderr, log.Options{
			Level:           r.cfg.consoleLevel,
			Prefix:          component,
			ReportTimestamp: true,
			TimeFormat:      "15:04:05",
		})
	}
	return out
}

// Get returns the logger for a component, creating it on first use.
func Get(component string) *Logger {
	std.mu.Lock()
	defer std.mu.Unlock()

	h, ok := std.handles[component]
	if !ok {
		h = &handle{component: component}
		h.out.Store(std.sinksFor(component))
		std.handles[component] = h
	}
	return &Logger{h: h}
}

// Close flushes the log file, closes subscriber channels and silences every
// logger until the next Init.
func Close() error {
	std.mu.Lock()
	defer std.mu.Unlock()

	std.hub.closeAll()

	var err error
	if std.writer != nil {
		if cerr := std.writer.Close(); cerr != nil {
			err = fmt.Errorf("closing log writer: %w", cerr)
		}
		std.writer = nil
	}

	std.cfg = nil
	for _, h := range std.handles {
		h.out.Store(std.sinksFor(h.component))
	}
	return err
}

// DefaultLogPath returns $XDG_STATE_HOME/sherlock/sherlock.log.
func DefaultLogPath() string {
	return filepath.Join(xdg.StateHome, "sherlock", "sherlock.log")
}
