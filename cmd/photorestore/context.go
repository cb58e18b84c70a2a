package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"photorestore/internal/config"
	"photorestore/internal/logging"
)

// overrides holds persistent flag values layered over the loaded config.
type overrides struct {
	subject   string
	reference string
	output    string
	dryRun    bool
	logLevel  string
	logFormat string
}

type commandContext struct {
	configFlag *string
	flags      *overrides

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string, flags *overrides) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		flags:      flags,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.flags != nil {
			c.flags.apply(cfg)
		}
		if err := cfg.Normalize(); err != nil {
			c.configErr = err
			return
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

func (o *overrides) apply(cfg *config.Config) {
	if v := strings.TrimSpace(o.subject); v != "" {
		cfg.Paths.SubjectDir = v
	}
	if v := strings.TrimSpace(o.reference); v != "" {
		cfg.Paths.ReferenceDir = v
	}
	if v := strings.TrimSpace(o.output); v != "" {
		cfg.Paths.OutputDir = v
	}
	if o.dryRun {
		cfg.Staging.DryRun = true
	}
	if v := strings.TrimSpace(o.logLevel); v != "" {
		cfg.Logging.Level = v
	}
	if v := strings.TrimSpace(o.logFormat); v != "" {
		cfg.Logging.Format = v
	}
}

// ensureLogger builds the process logger once and prunes expired log files.
func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg, logging.NewSessionID())
		if err != nil {
			c.loggerErr = fmt.Errorf("init logger: %w", err)
			return
		}
		logging.PruneLogs(logger, cfg.Paths.LogDir, logging.DefaultLogPattern, cfg.Logging.RetentionDays, cfg.LogPath())
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
