// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/MKhiriev/go-svc-bootstrap/config"
)

// The declarative logging schema is a version-tagged mapping:
//
//	version: 1
//	formatters:
//	  plain: {format: text}
//	handlers:
//	  console: {type: console, formatter: plain, level: DEBUG}
//	  file:    {type: file, filename: "${LOG_DIR:/tmp}/app.log", max_bytes: 1048576, backup_count: 3}
//	root:
//	  level: INFO
//	  handlers: [console, file]
//
// Handlers without a formatter emit structured JSON. Only handlers routed
// through root are instantiated.

type formatKind int

const (
	formatJSON formatKind = iota
	formatText
)

// buildSchemaPipeline applies a version-tagged schema: placeholders are
// resolved against the environment only, file handler parent directories
// are pre-created, and the handlers routed by "root" are attached to a
// fresh root logger. Any inconsistency returns an error with all writers
// opened so far already closed, so the caller can fall back cleanly.
func buildSchemaPipeline(section map[string]any, service string) (zerolog.Logger, []io.Closer, error) {
	resolved, ok := config.Resolve(section, nil, os.LookupEnv).(map[string]any)
	if !ok {
		return zerolog.Nop(), nil, fmt.Errorf("logging schema is not a mapping")
	}

	formatters, err := schemaFormatters(resolved)
	if err != nil {
		return zerolog.Nop(), nil, err
	}

	handlers, _ := resolved["handlers"].(map[string]any)
	if len(handlers) == 0 {
		return zerolog.Nop(), nil, fmt.Errorf("logging schema declares no handlers")
	}

	routing, _ := resolved["root"].(map[string]any)
	if routing == nil {
		return zerolog.Nop(), nil, fmt.Errorf("logging schema declares no root routing")
	}
	names, _ := routing["handlers"].([]any)
	if len(names) == 0 {
		return zerolog.Nop(), nil, fmt.Errorf("logging schema routes no handlers to root")
	}

	var writers []io.Writer
	var closers []io.Closer

	closeAll := func() {
		for _, closer := range closers {
			_ = closer.Close()
		}
	}

	for _, raw := range names {
		name, _ := raw.(string)
		spec, _ := handlers[name].(map[string]any)
		if spec == nil {
			closeAll()
			return zerolog.Nop(), nil, fmt.Errorf("logging schema routes unknown handler %q", name)
		}

		writer, closer, err := buildHandler(spec, formatters)
		if err != nil {
			closeAll()
			return zerolog.Nop(), nil, fmt.Errorf("handler %q: %w", name, err)
		}
		if closer != nil {
			closers = append(closers, closer)
		}
		writers = append(writers, writer)
	}

	level := parseLevel(stringAt(routing, "level"), zerolog.InfoLevel)

	root := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Str("service", service).
		Logger()

	return root, closers, nil
}

// schemaFormatters reads the "formatters" mapping into named format kinds.
func schemaFormatters(schema map[string]any) (map[string]formatKind, error) {
	kinds := map[string]formatKind{}

	declared, _ := schema["formatters"].(map[string]any)
	for name, raw := range declared {
		spec, _ := raw.(map[string]any)
		switch format := stringAt(spec, "format"); format {
		case "", "json":
			kinds[name] = formatJSON
		case "text", "console":
			kinds[name] = formatText
		default:
			return nil, fmt.Errorf("formatter %q: unknown format %q", name, format)
		}
	}

	return kinds, nil
}

// buildHandler turns one handler spec into a writer. File handlers return
// the rotating writer as a closer owned by the pipeline.
func buildHandler(spec map[string]any, formatters map[string]formatKind) (io.Writer, io.Closer, error) {
	var writer io.Writer
	var closer io.Closer

	switch handlerType := stringAt(spec, "type"); handlerType {
	case "console", "stream":
		writer = os.Stdout
	case "file":
		filename := stringAt(spec, "filename")
		if filename == "" {
			return nil, nil, fmt.Errorf("file handler without filename")
		}
		if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
			return nil, nil, fmt.Errorf("error creating log directory: %w", err)
		}

		rotating := &lumberjack.Logger{
			Filename:   filename,
			MaxSize:    megabytes(intAt(spec, "max_bytes", defaultMaxBytes)),
			MaxBackups: intAt(spec, "backup_count", defaultBackupCount),
		}
		writer = rotating
		closer = rotating
	default:
		return nil, nil, fmt.Errorf("unknown handler type %q", handlerType)
	}

	if name := stringAt(spec, "formatter"); name != "" {
		kind, ok := formatters[name]
		if !ok {
			if closer != nil {
				_ = closer.Close()
			}
			return nil, nil, fmt.Errorf("unknown formatter %q", name)
		}
		if kind == formatText {
			writer = zerolog.ConsoleWriter{Out: writer, NoColor: true}
		}
	}

	if level := stringAt(spec, "level"); level != "" {
		writer = &zerolog.FilteredLevelWriter{
			Writer: zerolog.LevelWriterAdapter{Writer: writer},
			Level:  parseLevel(level, zerolog.TraceLevel),
		}
	}

	return writer, closer, nil
}
