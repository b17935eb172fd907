// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// placeholderPattern matches ${NAME} and ${NAME:DEFAULT} tokens. NAME may be
// a dot-separated path with numeric segments for sequence indexing.
var placeholderPattern = regexp.MustCompile(`\$\{([^}:]+)(?::([^}]*))?\}`)

// EnvLookup reports the value of one environment variable and whether it is
// set. os.LookupEnv satisfies this signature.
type EnvLookup func(key string) (string, bool)

// Resolve rewrites every ${NAME} and ${NAME:DEFAULT} occurrence inside the
// string leaves of value and returns the rewritten structure. The input is
// never mutated, so self-references through root always observe the
// original, pre-resolution tree.
//
// Each placeholder resolves to the first match of:
//  1. NAME as an exact key in env;
//  2. NAME as a dot-path lookup against root (numeric segments index into
//     sequences; a missing segment is a miss, not an error);
//  3. the DEFAULT literal, when present;
//  4. the empty string.
//
// A placeholder written as ${VAR:} behaves exactly like ${VAR}. Resolution
// is single-pass: substituted text is never re-scanned, and non-string
// leaves are never touched.
func Resolve(value any, root any, env EnvLookup) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[key] = Resolve(item, root, env)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = Resolve(item, root, env)
		}
		return out
	case string:
		return placeholderPattern.ReplaceAllStringFunc(typed, func(token string) string {
			groups := placeholderPattern.FindStringSubmatch(token)
			name, fallback := groups[1], groups[2]

			if v, ok := env(name); ok {
				return v
			}
			if v, ok := valueAtPath(root, name); ok && v != nil {
				return stringify(v)
			}
			return fallback
		})
	default:
		return value
	}
}

// valueAtPath walks root along a dot-separated path. Mapping segments are
// looked up by key; sequence segments are indexed by their numeric value.
// Any miss reports false.
func valueAtPath(root any, path string) (any, bool) {
	if root == nil {
		return nil, false
	}

	current := root
	for _, part := range strings.Split(path, ".") {
		switch typed := current.(type) {
		case map[string]any:
			next, ok := typed[part]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 || idx >= len(typed) {
				return nil, false
			}
			current = typed[idx]
		default:
			return nil, false
		}
	}

	return current, true
}

func stringify(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}
