// Package config holds value types shared by the configuration sections of
// the client and the agent service.
package config

import (
	"encoding/json"
	"fmt"
	"time"
)

// Duration is a time.Duration that reads and writes JSON as a Go duration
// string ("30s", "1m30s"). Bare JSON numbers are read as seconds.
//
// A zero Duration means unset and is replaced by defaults on Merge. Timeouts
// are switched off with Disabled, written as "off" in JSON.
type Duration time.Duration

// Disabled turns a timeout off. Any negative Duration has the same effect.
const Disabled Duration = -1

const disabledText = "off"

// Enabled reports whether d is a positive duration.
func (d Duration) Enabled() bool {
	return d > 0
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	if d < 0 {
		return disabledText
	}
	return time.Duration(d).String()
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(value * float64(time.Second))
		return nil
	case string:
		if value == disabledText {
			*d = Disabled
			return nil
		}
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value, err)
		}
		*d = Duration(parsed)
		return nil
	default:
		return fmt.Errorf("invalid duration: %s", data)
	}
}
