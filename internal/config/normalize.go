package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const envPrefix = "PHOTORESTORE_"

func (c *Config) normalize() error {
	c.applyEnv()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeHashing()
	c.normalizeLogging()
	return nil
}

// Normalize re-applies expansion and defaults after callers override fields
// (for example from command-line flags).
func (c *Config) Normalize() error {
	return c.normalize()
}

func lookupEnv(name string) (string, bool) {
	value, ok := os.LookupEnv(envPrefix + name)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}

func (c *Config) applyEnv() {
	if c.Paths.SubjectDir == "" {
		if value, ok := lookupEnv("SUBJECT_DIR"); ok {
			c.Paths.SubjectDir = value
		}
	}
	if c.Paths.ReferenceDir == "" {
		if value, ok := lookupEnv("REFERENCE_DIR"); ok {
			c.Paths.ReferenceDir = value
		}
	}
	if value, ok := lookupEnv("OUTPUT_DIR"); ok {
		c.Paths.OutputDir = value
	}
	if value, ok := lookupEnv("CACHE_DIR"); ok {
		c.Paths.CacheDir = value
	}
	if value, ok := lookupEnv("LOG_LEVEL"); ok {
		c.Logging.Level = value
	}
	if value, ok := lookupEnv("WORKERS"); ok {
		if n, err := strconv.Atoi(value); err == nil {
			c.Hashing.Workers = n
			c.Matching.Workers = n
		}
	}
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.SubjectDir, err = expandPath(strings.TrimSpace(c.Paths.SubjectDir)); err != nil {
		return fmt.Errorf("paths.subject_dir: %w", err)
	}
	if c.Paths.ReferenceDir, err = expandPath(strings.TrimSpace(c.Paths.ReferenceDir)); err != nil {
		return fmt.Errorf("paths.reference_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir()
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeHashing() {
	if c.Hashing.Workers < 0 {
		c.Hashing.Workers = 0
	}
	if c.Matching.Workers < 0 {
		c.Matching.Workers = 0
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
