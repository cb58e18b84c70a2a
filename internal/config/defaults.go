package config

const (
	defaultConfigPath                   = "~/.config/photorestore/config.toml"
	defaultOutputDir                    = "~/photorestore-output"
	defaultLogDir                       = "~/.local/share/photorestore/logs"
	defaultLogRetentionDays             = 30
	defaultLogFormat                    = "console"
	defaultLogLevel                     = "info"
	defaultPerceptualMatchThreshold     = 5
	defaultPerceptualUncertainThreshold = 10
	defaultDateToleranceSeconds         = 300
	defaultSizeTolerance                = 0.15
	defaultDimensionTolerance           = 0.02
	defaultDurationToleranceSeconds     = 1.0
	defaultDurationRejectFactor         = 3.0
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
			CacheDir:  defaultCacheDir(),
		},
		Matching: Matching{
			PerceptualMatchThreshold:     defaultPerceptualMatchThreshold,
			PerceptualUncertainThreshold: defaultPerceptualUncertainThreshold,
			DateToleranceSeconds:         defaultDateToleranceSeconds,
			SizeTolerance:                defaultSizeTolerance,
			DimensionTolerance:           defaultDimensionTolerance,
			DurationToleranceSeconds:     defaultDurationToleranceSeconds,
			DurationRejectFactor:         defaultDurationRejectFactor,
			LazyPerceptual:               true,
		},
		Hashing: Hashing{
			CacheEnabled:        true,
			ReferencePerceptual: true,
		},
		LivePhotos: LivePhotos{
			Enabled:    true,
			PreferHEIC: true,
		},
		Staging: Staging{
			Enabled:       true,
			VerifyCopies:  true,
			CopyUncertain: true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
