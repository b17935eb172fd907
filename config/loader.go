// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// Format identifies one supported configuration file format. The set of
// formats is closed: a file's format is decided once at discovery time from
// its extension, never by sniffing content.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
	FormatTOML
	FormatINI
)

// String returns the conventional lower-case name of the format.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	case FormatINI:
		return "ini"
	default:
		return "unknown"
	}
}

// extensionGroups lists the recognized extensions in merge order: files are
// grouped by extension in this exact order, lexicographically sorted within
// each group. The order is part of the merge contract — changing it changes
// which file wins a collision.
var extensionGroups = []struct {
	ext    string
	format Format
}{
	{".json", FormatJSON},
	{".yaml", FormatYAML},
	{".yml", FormatYAML},
	{".toml", FormatTOML},
	{".ini", FormatINI},
	{".conf", FormatINI},
}

// source is one discovered configuration file awaiting parsing.
type source struct {
	path   string
	format Format
}

// discover returns the configuration files in dir in deterministic merge
// order. A missing or unreadable directory yields no sources and no error.
func discover(dir string) []source {
	var sources []source
	for _, group := range extensionGroups {
		// filepath.Glob returns matches lexicographically sorted.
		matches, err := filepath.Glob(filepath.Join(dir, "*"+group.ext))
		if err != nil {
			continue
		}
		for _, path := range matches {
			sources = append(sources, source{path: path, format: group.format})
		}
	}
	return sources
}

// LoadFile parses a single configuration file into a generic tree fragment.
// The format is selected by file extension; unrecognized extensions return
// [ErrUnsupportedFormat].
func LoadFile(path string) (map[string]any, error) {
	ext := filepath.Ext(path)
	for _, group := range extensionGroups {
		if group.ext == ext {
			return loadFile(path, group.format)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
}

// loadFile parses one file of a known format into a generic tree fragment.
func loadFile(path string, format Format) (map[string]any, error) {
	switch format {
	case FormatJSON:
		return loadJSON(path)
	case FormatYAML:
		return loadYAML(path)
	case FormatTOML:
		return loadTOML(path)
	case FormatINI:
		return loadINI(path)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}
}

func loadJSON(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}

	fragment := map[string]any{}
	if err := json.Unmarshal(data, &fragment); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	return fragment, nil
}

func loadYAML(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading a yaml file: %w", err)
	}

	fragment := map[string]any{}
	if err := yaml.Unmarshal(data, &fragment); err != nil {
		return nil, fmt.Errorf("error decoding yaml configs: %w", err)
	}

	return fragment, nil
}

func loadTOML(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading a toml file: %w", err)
	}

	fragment := map[string]any{}
	if err := toml.Unmarshal(data, &fragment); err != nil {
		return nil, fmt.Errorf("error decoding toml configs: %w", err)
	}

	return fragment, nil
}

// loadINI maps every named section of an INI/conf file to a mapping of its
// keys. Values stay strings; the default section is skipped, matching the
// usual sectioned-file convention.
func loadINI(path string) (map[string]any, error) {
	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("error decoding ini configs: %w", err)
	}

	fragment := map[string]any{}
	for _, section := range file.Sections() {
		if section.Name() == ini.DefaultSection {
			continue
		}

		keys := map[string]any{}
		for name, value := range section.KeysHash() {
			keys[name] = value
		}
		fragment[section.Name()] = keys
	}

	return fragment, nil
}
