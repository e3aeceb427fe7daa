// Package config loads imgexport settings from defaults, an optional config
// file, IMGEXPORT_* environment variables and command-line flags.
package config

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"

	"github.com/provide-io/imgexport/pkg/bundle"
	"github.com/provide-io/imgexport/pkg/encoders"
	"github.com/provide-io/imgexport/pkg/export"
	"github.com/provide-io/imgexport/pkg/imaging"
	"github.com/provide-io/imgexport/pkg/utils/permissions"
)

// Config is the merged configuration.
type Config struct {
	OutDir   string         `mapstructure:"out_dir"`
	Log      LogConfig      `mapstructure:"log"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
	Resample ResampleConfig `mapstructure:"resample"`
	PNG      PNGConfig      `mapstructure:"png"`
	JPEG     JPEGConfig     `mapstructure:"jpeg"`
	WebP     WebPConfig     `mapstructure:"webp"`
	AVIF     AVIFConfig     `mapstructure:"avif"`
	Output   OutputConfig   `mapstructure:"output"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

type ArchiveConfig struct {
	Layout string `mapstructure:"layout"`
	Method string `mapstructure:"method"`
	Level  int    `mapstructure:"level"`
}

type ResampleConfig struct {
	Filter string `mapstructure:"filter"`
}

type PNGConfig struct {
	Compression string `mapstructure:"compression"`
}

type JPEGConfig struct {
	Quality int `mapstructure:"quality"`
}

type WebPConfig struct {
	Quality int `mapstructure:"quality"`
	Method  int `mapstructure:"method"`
}

type AVIFConfig struct {
	Quality int `mapstructure:"quality"`
	Speed   int `mapstructure:"speed"`
}

type OutputConfig struct {
	FileMode string `mapstructure:"file_mode"`
	DirMode  string `mapstructure:"dir_mode"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	s := encoders.DefaultSettings()
	return &Config{
		OutDir:   "dist",
		Archive:  ArchiveConfig{Layout: string(bundle.DefaultLayout), Method: string(bundle.DefaultMethod), Level: 9},
		Resample: ResampleConfig{Filter: string(imaging.DefaultFilter)},
		PNG:      PNGConfig{Compression: "best"},
		JPEG:     JPEGConfig{Quality: s.JPEGQuality},
		WebP:     WebPConfig{Quality: s.WebPQuality, Method: s.WebPMethod},
		AVIF:     AVIFConfig{Quality: s.AVIFQuality, Speed: s.AVIFSpeed},
		Output: OutputConfig{
			FileMode: permissions.FormatOctal(permissions.DefaultFilePerms),
			DirMode:  permissions.FormatOctal(permissions.DefaultDirPerms),
		},
	}
}

func normalizeConfig(c *Config) {
	c.OutDir = strings.TrimSpace(c.OutDir)
	if c.OutDir == "" {
		c.OutDir = "dist"
	}
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Archive.Layout = strings.ToLower(strings.TrimSpace(c.Archive.Layout))
	c.Archive.Method = strings.ToLower(strings.TrimSpace(c.Archive.Method))
	c.Resample.Filter = strings.ToLower(strings.TrimSpace(c.Resample.Filter))
	c.PNG.Compression = strings.ToLower(strings.TrimSpace(c.PNG.Compression))
}

func validateConfig(c *Config) error {
	if _, err := bundle.ParseLayout(c.Archive.Layout); err != nil {
		return err
	}
	if _, err := bundle.ParseMethod(c.Archive.Method); err != nil {
		return err
	}
	if c.Archive.Level < -2 || c.Archive.Level > 9 {
		return fmt.Errorf("archive.level must be between -2 and 9, got %d", c.Archive.Level)
	}
	if _, err := imaging.ParseFilter(c.Resample.Filter); err != nil {
		return err
	}
	if _, err := encoders.ParsePNGCompression(c.PNG.Compression); err != nil {
		return err
	}
	for _, q := range []struct {
		key      string
		val      int
		min, max int
	}{
		{"jpeg.quality", c.JPEG.Quality, 1, 100},
		{"webp.quality", c.WebP.Quality, 0, 100},
		{"webp.method", c.WebP.Method, 0, 6},
		{"avif.quality", c.AVIF.Quality, 0, 100},
		{"avif.speed", c.AVIF.Speed, 0, 10},
	} {
		if q.val < q.min || q.val > q.max {
			return fmt.Errorf("%s must be between %d and %d, got %d", q.key, q.min, q.max, q.val)
		}
	}
	if _, err := permissions.FileMode(c.Output.FileMode); err != nil {
		return fmt.Errorf("output.file_mode: %w", err)
	}
	if _, err := permissions.DirMode(c.Output.DirMode); err != nil {
		return fmt.Errorf("output.dir_mode: %w", err)
	}
	return nil
}

// EncoderSettings converts the quality keys into encoder settings.
func (c *Config) EncoderSettings() (encoders.Settings, error) {
	compression, err := encoders.ParsePNGCompression(c.PNG.Compression)
	if err != nil {
		return encoders.Settings{}, err
	}
	return encoders.Settings{
		PNGCompression: compression,
		JPEGQuality:    c.JPEG.Quality,
		WebPQuality:    c.WebP.Quality,
		WebPMethod:     c.WebP.Method,
		AVIFQuality:    c.AVIF.Quality,
		AVIFSpeed:      c.AVIF.Speed,
	}, nil
}

// ExporterConfig builds the pipeline configuration on fs.
func (c *Config) ExporterConfig(fs afero.Fs, logger hclog.Logger) (export.Config, error) {
	settings, err := c.EncoderSettings()
	if err != nil {
		return export.Config{}, err
	}
	filter, err := imaging.ParseFilter(c.Resample.Filter)
	if err != nil {
		return export.Config{}, err
	}
	layout, err := bundle.ParseLayout(c.Archive.Layout)
	if err != nil {
		return export.Config{}, err
	}
	method, err := bundle.ParseMethod(c.Archive.Method)
	if err != nil {
		return export.Config{}, err
	}
	fileMode, err := permissions.FileMode(c.Output.FileMode)
	if err != nil {
		return export.Config{}, err
	}
	dirMode, err := permissions.DirMode(c.Output.DirMode)
	if err != nil {
		return export.Config{}, err
	}

	cfg := export.DefaultConfig()
	cfg.Fs = fs
	cfg.Logger = logger
	cfg.Encoders = encoders.NewSet(settings)
	cfg.Filter = filter
	cfg.Archive = bundle.Options{Layout: layout, Method: method, Level: c.Archive.Level}
	cfg.FileMode = fileMode
	cfg.DirMode = dirMode
	return cfg, nil
}
