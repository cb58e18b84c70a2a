package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateHashing(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateMatching() error {
	m := c.Matching
	if m.PerceptualMatchThreshold < 1 || m.PerceptualMatchThreshold > 63 {
		return errors.New("matching.perceptual_match_threshold must be between 1 and 63")
	}
	if m.PerceptualUncertainThreshold < m.PerceptualMatchThreshold || m.PerceptualUncertainThreshold > 64 {
		return fmt.Errorf("matching.perceptual_uncertain_threshold must be between %d and 64", m.PerceptualMatchThreshold)
	}
	if m.DateToleranceSeconds <= 0 {
		return errors.New("matching.date_tolerance_seconds must be positive")
	}
	if m.SizeTolerance <= 0 || m.SizeTolerance >= 1 {
		return errors.New("matching.size_tolerance must be between 0 and 1 (exclusive)")
	}
	if m.DimensionTolerance <= 0 || m.DimensionTolerance >= 1 {
		return errors.New("matching.dimension_tolerance must be between 0 and 1 (exclusive)")
	}
	if m.DurationToleranceSeconds <= 0 {
		return errors.New("matching.duration_tolerance_seconds must be positive")
	}
	if m.DurationRejectFactor < 1 {
		return errors.New("matching.duration_reject_factor must be at least 1")
	}
	return nil
}

func (c *Config) validateHashing() error {
	if c.Hashing.UnitTimeoutSeconds < 0 {
		return errors.New("hashing.unit_timeout_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
