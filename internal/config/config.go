package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"photorestore/internal/livepair"
	"photorestore/internal/strategy"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains corpus, output, and state directories.
type Paths struct {
	SubjectDir   string `toml:"subject_dir"`
	ReferenceDir string `toml:"reference_dir"`
	OutputDir    string `toml:"output_dir"`
	LogDir       string `toml:"log_dir"`
	CacheDir     string `toml:"cache_dir"`
}

// Matching contains thresholds and tolerances for the match strategies.
type Matching struct {
	PerceptualMatchThreshold     int     `toml:"perceptual_match_threshold"`
	PerceptualUncertainThreshold int     `toml:"perceptual_uncertain_threshold"`
	DateToleranceSeconds         int     `toml:"date_tolerance_seconds"`
	SizeTolerance                float64 `toml:"size_tolerance"`
	DimensionTolerance           float64 `toml:"dimension_tolerance"`
	DurationToleranceSeconds     float64 `toml:"duration_tolerance_seconds"`
	DurationRejectFactor         float64 `toml:"duration_reject_factor"`
	LazyPerceptual               bool    `toml:"lazy_perceptual"`
	Workers                      int     `toml:"workers"`
}

// Hashing contains configuration for the hash pipeline. ReferencePerceptual
// computes perceptual hashes for the reference corpus up front; subjects use
// lazy hashing when matching.lazy_perceptual is set.
type Hashing struct {
	Workers             int  `toml:"workers"`
	UnitTimeoutSeconds  int  `toml:"unit_timeout_seconds"`
	CacheEnabled        bool `toml:"cache_enabled"`
	ReferencePerceptual bool `toml:"reference_perceptual"`
}

// LivePhotos contains configuration for Live Photo pair handling.
type LivePhotos struct {
	Enabled          bool `toml:"enabled"`
	IncludeImageOnly bool `toml:"include_image_only"`
	PreferHEIC       bool `toml:"prefer_heic"`
	PerFolder        bool `toml:"per_folder"`
}

// Staging contains configuration for copying unmatched files for review.
type Staging struct {
	Enabled       bool `toml:"enabled"`
	DryRun        bool `toml:"dry_run"`
	VerifyCopies  bool `toml:"verify_copies"`
	CopyUncertain bool `toml:"copy_uncertain"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for photorestore.
//
// Configuration sections by subsystem:
//   - Paths: subject and reference corpora, output, logs, and hash cache
//   - Matching: strategy thresholds and tolerances
//   - Hashing: worker pool sizing, per-file timeout, and cache toggle
//   - LivePhotos: pair detection options
//   - Staging: copying missing and uncertain files for review
//   - Logging: log format, level, and retention
type Config struct {
	Paths      Paths      `toml:"paths"`
	Matching   Matching   `toml:"matching"`
	Hashing    Hashing    `toml:"hashing"`
	LivePhotos LivePhotos `toml:"live_photos"`
	Staging    Staging    `toml:"staging"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("photorestore.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the output, log, and cache directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.LogDir, c.Paths.CacheDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFprobeBinary returns the ffprobe executable name used for video metadata.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

// HashCachePath returns the SQLite hash cache location.
func (c *Config) HashCachePath() string {
	return filepath.Join(c.Paths.CacheDir, "hashes.db")
}

// ReportPath returns the JSON report location.
func (c *Config) ReportPath() string {
	return filepath.Join(c.Paths.OutputDir, "report.json")
}

// LogPath returns the log file location.
func (c *Config) LogPath() string {
	return filepath.Join(c.Paths.LogDir, "photorestore.log")
}

// UnitTimeout returns the per-file hashing timeout, zero when disabled.
func (c *Config) UnitTimeout() time.Duration {
	return time.Duration(c.Hashing.UnitTimeoutSeconds) * time.Second
}

// PairOptions converts the live_photos section into grouping options.
func (c *Config) PairOptions() livepair.GroupOptions {
	return livepair.GroupOptions{
		IncludeImageOnly: c.LivePhotos.IncludeImageOnly,
		PerFolder:        c.LivePhotos.PerFolder,
	}
}

// MatchPolicy converts the matching section into strategy thresholds.
func (c *Config) MatchPolicy() strategy.Policy {
	policy := strategy.DefaultPolicy()
	policy.PerceptualMatchThreshold = c.Matching.PerceptualMatchThreshold
	policy.PerceptualUncertainThreshold = c.Matching.PerceptualUncertainThreshold
	policy.DateTolerance = time.Duration(c.Matching.DateToleranceSeconds) * time.Second
	policy.SizeTolerance = c.Matching.SizeTolerance
	policy.DimensionTolerance = c.Matching.DimensionTolerance
	policy.DurationTolerance = time.Duration(c.Matching.DurationToleranceSeconds * float64(time.Second))
	policy.DurationRejectFactor = c.Matching.DurationRejectFactor
	return policy.Normalized()
}

// RequireCorpora ensures both corpus directories are configured and distinct.
func (c *Config) RequireCorpora() error {
	if strings.TrimSpace(c.Paths.SubjectDir) == "" {
		return errors.New("paths.subject_dir is required (set PHOTORESTORE_SUBJECT_DIR or pass --subject)")
	}
	if strings.TrimSpace(c.Paths.ReferenceDir) == "" {
		return errors.New("paths.reference_dir is required (set PHOTORESTORE_REFERENCE_DIR or pass --reference)")
	}
	if filepath.Clean(c.Paths.SubjectDir) == filepath.Clean(c.Paths.ReferenceDir) {
		return fmt.Errorf("paths.subject_dir and paths.reference_dir must differ (both %q)", c.Paths.SubjectDir)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultCacheDir() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "photorestore")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.cache/photorestore"
	}
	return filepath.Join(home, ".cache", "photorestore")
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the effective configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}
