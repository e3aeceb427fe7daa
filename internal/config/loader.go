package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "IMGEXPORT"

// FileName is the config file name without extension.
const FileName = "imgexport"

// flagKeys maps command-line flags onto config keys.
var flagKeys = map[string]string{
	"out-dir":   "out_dir",
	"log-level": "log.level",
}

// Loader merges defaults, config file, environment and flags.
type Loader struct {
	viper *viper.Viper
}

// NewLoader creates a loader reading config files from fs.
func NewLoader(fs afero.Fs) (*Loader, error) {
	v := viper.New()
	v.SetFs(fs)

	v.SetConfigName(FileName)
	v.AddConfigPath(ConfigDir())
	v.AddConfigPath(".")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Shared with pkg/logging, which reads these before config is loaded.
	if err := v.BindEnv("log.json", "IMGEXPORT_JSON_LOG", "IMGEXPORT_LOG_JSON"); err != nil {
		return nil, fmt.Errorf("failed to bind IMGEXPORT_JSON_LOG: %w", err)
	}
	if err := v.BindEnv("log.level", "IMGEXPORT_LOG_LEVEL"); err != nil {
		return nil, fmt.Errorf("failed to bind IMGEXPORT_LOG_LEVEL: %w", err)
	}

	l := &Loader{viper: v}
	l.setDefaults()
	return l, nil
}

// ConfigDir returns $XDG_CONFIG_HOME/imgexport or ~/.config/imgexport.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, FileName)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", FileName)
	}
	return FileName
}

func (l *Loader) setDefaults() {
	d := DefaultConfig()
	l.viper.SetDefault("out_dir", d.OutDir)
	l.viper.SetDefault("log.level", d.Log.Level)
	l.viper.SetDefault("log.json", d.Log.JSON)
	l.viper.SetDefault("archive.layout", d.Archive.Layout)
	l.viper.SetDefault("archive.method", d.Archive.Method)
	l.viper.SetDefault("archive.level", d.Archive.Level)
	l.viper.SetDefault("resample.filter", d.Resample.Filter)
	l.viper.SetDefault("png.compression", d.PNG.Compression)
	l.viper.SetDefault("jpeg.quality", d.JPEG.Quality)
	l.viper.SetDefault("webp.quality", d.WebP.Quality)
	l.viper.SetDefault("webp.method", d.WebP.Method)
	l.viper.SetDefault("avif.quality", d.AVIF.Quality)
	l.viper.SetDefault("avif.speed", d.AVIF.Speed)
	l.viper.SetDefault("output.file_mode", d.Output.FileMode)
	l.viper.SetDefault("output.dir_mode", d.Output.DirMode)
}

// SetConfigFile pins an explicit config file; it must exist.
func (l *Loader) SetConfigFile(path string) {
	if path != "" {
		l.viper.SetConfigFile(path)
	}
}

// BindFlags makes set flags override file and environment values.
func (l *Loader) BindFlags(flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := l.viper.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind --%s: %w", name, err)
		}
	}
	return nil
}

// ConfigFileUsed returns the file that was read, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.viper.ConfigFileUsed()
}

// Load reads the config file (a missing file in the search path is fine),
// then unmarshals, normalizes and validates the merged result.
func (l *Loader) Load() (*Config, error) {
	if err := l.readConfigFile(); err != nil {
		return nil, err
	}

	config := &Config{}
	if err := l.viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf(
			"failed to parse config file at %s: %w\nCheck for syntax errors, invalid values, or type mismatches",
			l.viper.ConfigFileUsed(),
			err,
		)
	}
	normalizeConfig(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

func (l *Loader) readConfigFile() error {
	err := l.viper.ReadInConfig()
	if err == nil {
		return nil
	}
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return nil
	}
	configFile := l.viper.ConfigFileUsed()
	if configFile == "" {
		configFile = filepath.Join(ConfigDir(), FileName+".yaml")
	}
	return fmt.Errorf("failed to read config file at %s: %w\nCheck the file format and permissions", configFile, err)
}
