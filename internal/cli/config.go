package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/styles/internal/paths"
	"github.com/mesh-intelligence/styles/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	cfgKeyDataDir      = "data_dir"
	cfgKeyStylesDir    = "styles_dir"
	cfgKeyCacheDir     = "cache_dir"
	cfgKeyApplyMode    = "apply_mode"
	cfgKeyLogLevel     = "log_level"
	cfgKeyCurrentImage = "current_image"
	cfgKeyModuleNames  = "module_names"
)

// configFile is the layout of config.yaml written on first run.
type configFile struct {
	DataDir      string            `yaml:"data_dir,omitempty"`
	StylesDir    string            `yaml:"styles_dir,omitempty"`
	CacheDir     string            `yaml:"cache_dir,omitempty"`
	ApplyMode    string            `yaml:"apply_mode"`
	LogLevel     string            `yaml:"log_level"`
	CurrentImage int64             `yaml:"current_image"`
	ModuleNames  map[string]string `yaml:"module_names,omitempty"`
}

// settings is the resolved configuration of one CLI run.
type settings struct {
	configDir   string
	cfg         types.Config
	moduleNames map[string]string
}

// loadConfig reads config.yaml from configDir, creating the directory and a
// default file on first run. STYLES_APPLY_MODE and STYLES_LOG_LEVEL
// override the file.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}
	if err := writeConfigIfMissing(filepath.Join(configDir, configFileExt)); err != nil {
		return nil, fmt.Errorf("write default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyApplyMode, string(types.ApplyAppend))
	v.SetDefault(cfgKeyLogLevel, types.DefaultLogLevel)
	v.SetDefault(cfgKeyCurrentImage, 0)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	_ = v.BindEnv(cfgKeyApplyMode, "STYLES_APPLY_MODE")
	_ = v.BindEnv(cfgKeyLogLevel, "STYLES_LOG_LEVEL")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// resolveSettings turns flags and config values into a validated Config.
func resolveSettings() (*settings, error) {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return nil, fmt.Errorf("resolve config dir: %w", err)
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return nil, err
	}

	dataDir, err := paths.ResolveDataDir(flags.dataDir, v.GetString(cfgKeyDataDir))
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}
	stylesDir, err := paths.ResolveStylesDir(v.GetString(cfgKeyStylesDir), configDir)
	if err != nil {
		return nil, fmt.Errorf("resolve styles dir: %w", err)
	}
	cacheDir, err := paths.ResolveCacheDir(v.GetString(cfgKeyCacheDir), dataDir)
	if err != nil {
		return nil, fmt.Errorf("resolve cache dir: %w", err)
	}

	cfg := types.Config{
		DataDir:      dataDir,
		StylesDir:    stylesDir,
		CacheDir:     cacheDir,
		ApplyMode:    types.ApplyMode(strings.ToLower(v.GetString(cfgKeyApplyMode))),
		LogLevel:     v.GetString(cfgKeyLogLevel),
		CurrentImage: v.GetInt64(cfgKeyCurrentImage),
	}
	if flags.verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &settings{
		configDir:   configDir,
		cfg:         cfg,
		moduleNames: v.GetStringMapString(cfgKeyModuleNames),
	}, nil
}

// writeConfigIfMissing creates config.yaml with default values. An existing
// file is left alone.
func writeConfigIfMissing(path string) error {
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config file: %w", err)
	}

	data, err := yaml.Marshal(&configFile{
		ApplyMode: string(types.ApplyAppend),
		LogLevel:  types.DefaultLogLevel,
	})
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// moduleNamer renders operation names through the module_names table of
// config.yaml, falling back to the canonical name.
type moduleNamer map[string]string

func (n moduleNamer) DisplayName(op string) string {
	if name, ok := n[strings.ToLower(op)]; ok && name != "" {
		return name
	}
	return op
}
