// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package logging

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
)

// reservedFields are the record keys written by the pipeline itself.
// Caller-supplied extra fields never overwrite them.
var reservedFields = map[string]struct{}{
	"timestamp": {},
	"level":     {},
	"logger":    {},
	"service":   {},
	"message":   {},
}

// Logger is a thin wrapper around zerolog.Logger. Embedding zerolog.Logger
// exposes the full zerolog API, while the *w helpers add the reserved-field
// protection required of structured records: extra fields that collide with
// a fixed field or with a field already bound to the logger are dropped,
// first writer wins.
type Logger struct {
	zerolog.Logger

	// bound tracks non-reserved field names already attached to this
	// logger (static service-wide extras and WithExtra fields).
	bound map[string]struct{}
}

// Nop returns a *Logger that discards all log output.
func Nop() *Logger {
	return &Logger{Logger: zerolog.Nop()}
}

// WithExtra returns a child logger carrying the given fields on every
// record. Reserved field names and names already bound are skipped.
func (l *Logger) WithExtra(fields map[string]any) *Logger {
	ctx := l.With()
	bound := make(map[string]struct{}, len(l.bound)+len(fields))
	for key := range l.bound {
		bound[key] = struct{}{}
	}

	for _, key := range sortedKeys(fields) {
		if l.isTaken(key) {
			continue
		}
		if _, dup := bound[key]; dup {
			continue
		}
		ctx = ctx.Interface(key, fields[key])
		bound[key] = struct{}{}
	}

	return &Logger{Logger: ctx.Logger(), bound: bound}
}

// Emit writes one structured record at the given level. Extra maps are
// applied in order; within and across maps the first writer of a
// non-reserved key wins.
func (l *Logger) Emit(level zerolog.Level, msg string, extra ...map[string]any) {
	event := l.WithLevel(level)
	l.appendExtra(event, nil, extra)
	event.Msg(msg)
}

// Debugw writes a debug record with optional extra fields.
func (l *Logger) Debugw(msg string, extra ...map[string]any) {
	l.Emit(zerolog.DebugLevel, msg, extra...)
}

// Infow writes an info record with optional extra fields.
func (l *Logger) Infow(msg string, extra ...map[string]any) {
	l.Emit(zerolog.InfoLevel, msg, extra...)
}

// Warnw writes a warning record with optional extra fields.
func (l *Logger) Warnw(msg string, extra ...map[string]any) {
	l.Emit(zerolog.WarnLevel, msg, extra...)
}

// Errorw writes an error record with optional extra fields.
func (l *Logger) Errorw(msg string, extra ...map[string]any) {
	l.Emit(zerolog.ErrorLevel, msg, extra...)
}

// Errw writes an error record for a caught fault. Besides the message and
// extras, the record carries the fault text, its type name, and the
// rendered unwrap chain from outermost to root cause.
func (l *Logger) Errw(err error, msg string, extra ...map[string]any) {
	event := l.WithLevel(zerolog.ErrorLevel)

	seen := map[string]struct{}{}
	if err != nil {
		event = event.
			Str("error", err.Error()).
			Str("error_type", fmt.Sprintf("%T", err)).
			Strs("error_trace", renderTrace(err))
		seen["error"] = struct{}{}
		seen["error_type"] = struct{}{}
		seen["error_trace"] = struct{}{}
	}

	l.appendExtra(event, seen, extra)
	event.Msg(msg)
}

// appendExtra attaches caller extras to event, skipping reserved names,
// names bound to the logger, and names in seen or repeated across maps.
func (l *Logger) appendExtra(event *zerolog.Event, seen map[string]struct{}, extra []map[string]any) {
	if seen == nil {
		seen = map[string]struct{}{}
	}

	for _, fields := range extra {
		for _, key := range sortedKeys(fields) {
			if l.isTaken(key) {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			event.Interface(key, fields[key])
		}
	}
}

func (l *Logger) isTaken(key string) bool {
	if _, reserved := reservedFields[key]; reserved {
		return true
	}
	_, taken := l.bound[key]
	return taken
}

// renderTrace walks the unwrap chain of err and returns one line per level,
// outermost first.
func renderTrace(err error) []string {
	var trace []string
	for err != nil {
		trace = append(trace, err.Error())
		err = errors.Unwrap(err)
	}
	return trace
}

// sortedKeys keeps field emission deterministic; maps iterate randomly.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
