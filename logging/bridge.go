// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/MKhiriev/go-svc-bootstrap/config"
)

const defaultServiceName = "service"

// Default rotation settings, overridable via logging.max_bytes and
// logging.backup_count.
const (
	defaultMaxBytes    = 10 << 20
	defaultBackupCount = 5
)

// fieldNamesOnce applies the process-wide zerolog field naming used by every
// pipeline the bridge builds: "timestamp" in RFC 3339 UTC instead of
// zerolog's default "time" field.
var fieldNamesOnce sync.Once

func configureFieldNames() {
	zerolog.TimestampFieldName = "timestamp"
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.TimestampFunc = func() time.Time {
		return time.Now().UTC()
	}
}

// Bridge turns a logging configuration section into an active zerolog
// pipeline and hands out service-scoped loggers. Construct it with
// [NewBridge] and activate it with [Bridge.Apply]; a log request before the
// first Apply activates the bridge from the current store contents.
//
// Apply and Reset fully replace or tear down the active writer set, so
// re-configuring never accumulates duplicate writers.
type Bridge struct {
	mu      sync.Mutex
	store   *config.Store
	applied bool
	service string
	root    zerolog.Logger
	bound   map[string]struct{}
	closers []io.Closer
}

// NewBridge constructs an inactive Bridge reading configuration from store.
// store may be nil, in which case Apply falls back to built-in defaults.
func NewBridge(store *config.Store) *Bridge {
	return &Bridge{
		store: store,
		root:  zerolog.Nop(),
	}
}

// Apply activates the logging pipeline and returns the service-level
// logger. section overrides the store's "logging" subtree when non-nil.
//
// A section carrying a "version" marker is applied as a declarative schema:
// ${VAR} placeholders are resolved against the environment, parent
// directories of file handlers are pre-created, and the described handlers
// are attached to the root logger. If the schema cannot be applied, Apply
// falls back to the default pipeline — one console writer plus, when a file
// path is configured, one size-rotated file writer.
//
// Apply never fails; every error path degrades to a working pipeline.
func (b *Bridge) Apply(section map[string]any, serviceNameOverride string) *Logger {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.applyLocked(section, serviceNameOverride)
}

func (b *Bridge) applyLocked(section map[string]any, serviceNameOverride string) *Logger {
	fieldNamesOnce.Do(configureFieldNames)

	if section == nil && b.store != nil {
		section, _ = b.store.Get("logging", nil).(map[string]any)
	}
	service := b.serviceName(section, serviceNameOverride)

	// Detach the previous pipeline before building the new one.
	b.closeWriters()

	if section != nil {
		if _, versioned := section["version"]; versioned {
			root, closers, err := buildSchemaPipeline(section, service)
			if err == nil {
				b.install(service, root, nil, closers)
				return b.loggerLocked("")
			}
			log.Warn().Err(err).Msg("logging schema failed, using default pipeline")
		}
	}

	root, extras, closers := b.buildDefaultPipeline(section, service)
	b.install(service, root, extras, closers)
	return b.loggerLocked("")
}

// buildDefaultPipeline assembles the fallback pipeline: a stdout console
// writer and, when a log file is configured, a rotating file writer.
func (b *Bridge) buildDefaultPipeline(section map[string]any, service string) (zerolog.Logger, map[string]any, []io.Closer) {
	level := parseLevel(stringAt(section, "level"), zerolog.InfoLevel)

	writers := []io.Writer{os.Stdout}
	var closers []io.Closer

	file := stringAt(section, "file")
	if file == "" && b.store != nil {
		file = b.store.GetString("paths.logs.file", "")
	}
	if file != "" {
		_ = os.MkdirAll(filepath.Dir(file), 0o755)
		rotating := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    megabytes(intAt(section, "max_bytes", defaultMaxBytes)),
			MaxBackups: intAt(section, "backup_count", defaultBackupCount),
		}
		writers = append(writers, rotating)
		closers = append(closers, rotating)
	}

	extras, _ := section["extra"].(map[string]any)

	root := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Str("service", service).
		Logger()

	return root, extras, closers
}

// install replaces the bridge state with a freshly built pipeline. Static
// extras are bound to the root logger with reserved-field protection.
func (b *Bridge) install(service string, root zerolog.Logger, extras map[string]any, closers []io.Closer) {
	ctx := root.With()
	bound := map[string]struct{}{}
	for _, key := range sortedKeys(extras) {
		if _, reserved := reservedFields[key]; reserved {
			continue
		}
		ctx = ctx.Interface(key, extras[key])
		bound[key] = struct{}{}
	}

	b.service = service
	b.root = ctx.Logger()
	b.bound = bound
	b.closers = closers
	b.applied = true
}

// Reset tears down the active writer set and returns the bridge to its
// uninitialized state. Loggers handed out earlier keep working but their
// file writers are closed.
func (b *Bridge) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closeWriters()
	b.applied = false
	b.service = ""
	b.root = zerolog.Nop()
	b.bound = nil
}

// GetLogger returns a logger scoped as "<service>.<name>", or the
// service-level logger when name is empty. If the bridge has never been
// applied, it activates itself from the current store contents first.
func (b *Bridge) GetLogger(name string) *Logger {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.applied {
		b.applyLocked(nil, "")
	}

	return b.loggerLocked(name)
}

// Service returns the active service name, or the empty string before the
// first Apply.
func (b *Bridge) Service() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.service
}

func (b *Bridge) loggerLocked(name string) *Logger {
	full := b.service
	if name != "" {
		full = b.service + "." + name
	}

	lg := b.root.With().Str("logger", full).Logger()
	return &Logger{Logger: lg, bound: b.bound}
}

// serviceName resolves the service name chain: explicit override, the
// section's own "service" field, application.name, service.name, then the
// built-in default. First non-empty wins.
func (b *Bridge) serviceName(section map[string]any, override string) string {
	if override != "" {
		return override
	}
	if name := stringAt(section, "service"); name != "" {
		return name
	}
	if b.store != nil {
		if name := b.store.GetString("application.name", ""); name != "" {
			return name
		}
		if name := b.store.GetString("service.name", ""); name != "" {
			return name
		}
	}
	return defaultServiceName
}

func (b *Bridge) closeWriters() {
	for _, closer := range b.closers {
		_ = closer.Close()
	}
	b.closers = nil
}

// parseLevel converts a configured level name to a zerolog level, accepting
// the usual upper-case spellings and "WARNING". Unknown or empty values
// yield def.
func parseLevel(name string, def zerolog.Level) zerolog.Level {
	if name == "" {
		return def
	}

	lower := strings.ToLower(name)
	if lower == "warning" {
		lower = "warn"
	}

	level, err := zerolog.ParseLevel(lower)
	if err != nil || level == zerolog.NoLevel {
		return def
	}
	return level
}

// megabytes converts a byte count to whole megabytes for lumberjack,
// rounding up to at least one.
func megabytes(bytes int) int {
	mb := bytes / (1 << 20)
	if mb < 1 {
		mb = 1
	}
	return mb
}

// stringAt returns the string at key of a possibly-nil section.
func stringAt(section map[string]any, key string) string {
	if section == nil {
		return ""
	}
	s, _ := section[key].(string)
	return s
}

// intAt returns the integer at key of a possibly-nil section, accepting the
// numeric types the config decoders produce.
func intAt(section map[string]any, key string, def int) int {
	if section == nil {
		return def
	}
	switch v := section[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case uint64:
		return int(v)
	case float64:
		return int(v)
	default:
		return def
	}
}
