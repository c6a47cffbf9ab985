package config

import (
	"errors"
	"fmt"
	"sort"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateFollow(); err != nil {
		return err
	}
	if c.Client.DefaultLogLines < 1 {
		return errors.New("client.default_log_lines must be at least 1")
	}
	return c.validateLogging()
}

// maxStatusCheckTicks keeps the status of a followed task checked at least
// every second poll.
const maxStatusCheckTicks = 2

func (c *Config) validateFollow() error {
	if err := ensurePositiveMap(map[string]int{
		"follow.poll_interval_ms":   c.Follow.PollIntervalMS,
		"follow.status_check_ticks": c.Follow.StatusCheckTicks,
		"follow.start_wait_ms":      c.Follow.StartWaitMS,
	}); err != nil {
		return err
	}
	if c.Follow.StatusCheckTicks > maxStatusCheckTicks {
		return fmt.Errorf("follow.status_check_ticks must be 1 or %d", maxStatusCheckTicks)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must not be negative")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported level %q", c.Logging.Level)
	}
}

func ensurePositiveMap(values map[string]int) error {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if values[key] <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
