package types

import (
	"fmt"
	"strings"
)

// Config holds the resolved settings the style engine is opened with.
type Config struct {
	DataDir      string    `json:"data_dir" yaml:"data_dir"`
	StylesDir    string    `json:"styles_dir" yaml:"styles_dir"`
	CacheDir     string    `json:"cache_dir" yaml:"cache_dir"`
	ApplyMode    ApplyMode `json:"apply_mode" yaml:"apply_mode"`
	LogLevel     string    `json:"log_level" yaml:"log_level"`
	CurrentImage int64     `json:"current_image" yaml:"current_image"`
}

// Default configuration values.
const (
	DefaultLogLevel   = "info"
	DatabaseFileName  = "library.db"
	StylesDirName     = "styles"
	CacheDirName      = "mipmaps"
	StyleFileExt      = ".dtstyle"
	StyleFileVersion  = "1.0"
	StyleFileCharset  = "ISO-8859-1"
	StyleFileRootName = "darktable_style"
)

var knownLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks that the Config is well-formed. It returns an error
// wrapping ErrInvalidConfig or ErrInvalidMode on failure.
func (c Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("%w: data_dir must not be empty", ErrInvalidConfig)
	}
	if c.StylesDir == "" {
		return fmt.Errorf("%w: styles_dir must not be empty", ErrInvalidConfig)
	}
	if _, err := ParseApplyMode(string(c.ApplyMode)); err != nil {
		return err
	}
	if c.LogLevel != "" && !knownLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	if c.CurrentImage < 0 {
		return fmt.Errorf("%w: current_image must not be negative", ErrInvalidConfig)
	}
	return nil
}
