package config

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Bind copies the resolved values under section into dst, then overlays
// environment variables on top via the struct's `env` tags, so that the
// environment always wins over file-sourced defaults. An empty section
// binds the whole tree. dst must be a pointer to a struct with `json` tags
// matching the configuration keys.
func (s *Store) Bind(section string, dst any) error {
	var subtree any
	if section == "" {
		subtree = s.All()
	} else {
		subtree = s.Get(section, nil)
	}

	if subtree != nil {
		raw, err := json.Marshal(subtree)
		if err != nil {
			return fmt.Errorf("error encoding config section %q: %w", section, err)
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return fmt.Errorf("error binding config section %q: %w", section, err)
		}
	}

	if err := env.Parse(dst); err != nil {
		return fmt.Errorf("error getting env configs: %w", err)
	}

	return nil
}

// Duration decodes a time.Duration from strings like "1h" or "30s", as well
// as raw nanosecond numbers. Use it for duration fields in Bind targets.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("error decoding duration: %w", err)
	}

	switch value := raw.(type) {
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("error parsing duration %q: %w", value, err)
		}
		*d = Duration(parsed)
	case float64:
		*d = Duration(time.Duration(value))
	default:
		return fmt.Errorf("error decoding duration: unexpected value %v", raw)
	}

	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
