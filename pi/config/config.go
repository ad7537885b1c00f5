/*
DESCRIPTION
  config.go provides loading and validation of projection-mapper
  configuration from a YAML file, a .env file and the environment.

AUTHORS
  The Australian Ocean Lab (AusOcean) developers

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean)

  It is free software: you can redistribute it and/or modify them
  under the terms of the GNU General Public License as published by the
  Free Software Foundation, either version 3 of the License, or (at your
  option) any later version.

  It is distributed in the hope that it will be useful, but WITHOUT
  ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
  FITNESS FOR A PARTICULAR PURPOSE. See the GNU General Public License
  for more details.

  You should have received a copy of the GNU General Public License
  in gpl.txt.  If not, see http://www.gnu.org/licenses.
*/

// Package config provides projection-mapper configuration and operator
// variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ausocean/utils/logging"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ausocean/projector/pi/depth"
	"github.com/ausocean/projector/pi/projection"
	"github.com/ausocean/projector/pi/quad"
)

// EnvPrefix prefixes environment variables overriding configuration.
const EnvPrefix = "PROJECTOR_"

// Effect group names.
const (
	EffectDepth   = "depth"
	EffectInvert  = "invert"
	EffectContour = "contour"
)

// Log levels by name.
var logLevels = map[string]int8{
	"debug":   logging.Debug,
	"info":    logging.Info,
	"warning": logging.Warning,
	"error":   logging.Error,
}

// Config is projection-mapper configuration.
type Config struct {
	// Frame source and sink.
	Input  string  `yaml:"input"`
	Output string  `yaml:"output"`
	FPS    float64 `yaml:"fps"`
	Plot   string  `yaml:"plot"` // Directory for the depth range plot, if any.

	LogPath  string `yaml:"logPath"`
	LogLevel string `yaml:"logLevel"`

	// Calibration.
	AutoCalibrate    bool          `yaml:"autoCalibrate"`
	ColorOutput      bool          `yaml:"colorOutput"`
	SearchWindow     time.Duration `yaml:"searchWindow"`
	PreviewWindow    time.Duration `yaml:"previewWindow"`
	FlashFrames      int           `yaml:"flashFrames"`
	RecalibrateEvery int           `yaml:"recalibrateEvery"`
	Reduction        int           `yaml:"reduction"`

	// Fixed depth range in metres. Both zero means the range is learnt.
	Near float64 `yaml:"near"`
	Far  float64 `yaml:"far"`

	// Raw 16-bit depth input once calibrated. Depth16Lo and Depth16Hi fix
	// the normalisation range if Depth16Hi is non-zero.
	Depth16       bool    `yaml:"depth16"`
	Depth16Width  int     `yaml:"depth16Width"`
	Depth16Height int     `yaml:"depth16Height"`
	Depth16Lo     float64 `yaml:"depth16Lo"`
	Depth16Hi     float64 `yaml:"depth16Hi"`

	// Effect groups cycled by the next and prev variables.
	Effects []string `yaml:"effects"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Output:           "out",
		FPS:              10,
		LogPath:          "/var/log/projector/projector.log",
		LogLevel:         "info",
		SearchWindow:     projection.DefaultSearchWindow,
		PreviewWindow:    projection.DefaultPreviewWindow,
		FlashFrames:      projection.DefaultFlashFrames,
		RecalibrateEvery: projection.DefaultRecalibrateEvery,
		Reduction:        quad.DefaultReduction,
		Effects:          []string{EffectDepth},
	}
}

// Load returns the default configuration overridden in turn by the YAML
// file at path, the .env file at dotenv and PROJECTOR_ environment
// variables. Empty paths and missing .env files are skipped. The result is
// validated.
func Load(path, dotenv string) (Config, error) {
	c, err := Read(path, dotenv)
	if err != nil {
		return c, err
	}
	return c, c.Validate()
}

// Read is like Load but leaves validation to the caller, so that further
// overrides may be applied first.
func Read(path, dotenv string) (Config, error) {
	c := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return c, fmt.Errorf("could not read config file: %w", err)
		}
		err = yaml.Unmarshal(b, &c)
		if err != nil {
			return c, fmt.Errorf("could not parse config file: %w", err)
		}
	}

	env := map[string]string{}
	if dotenv != "" {
		var err error
		env, err = godotenv.Read(dotenv)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return c, fmt.Errorf("could not read env file: %w", err)
		}
		if env == nil {
			env = map[string]string{}
		}
	}
	for _, kv := range os.Environ() {
		k, v, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(k, EnvPrefix) {
			env[k] = v
		}
	}
	return c, c.override(env)
}

// Overridable fields, by environment variable name without EnvPrefix.
var overrides = []struct {
	name   string
	update func(c *Config, v string) error
}{
	{name: "INPUT", update: func(c *Config, v string) error { c.Input = v; return nil }},
	{name: "OUTPUT", update: func(c *Config, v string) error { c.Output = v; return nil }},
	{name: "PLOT", update: func(c *Config, v string) error { c.Plot = v; return nil }},
	{name: "LOG_PATH", update: func(c *Config, v string) error { c.LogPath = v; return nil }},
	{name: "LOG_LEVEL", update: func(c *Config, v string) error { c.LogLevel = v; return nil }},
	{name: "FPS", update: func(c *Config, v string) (err error) { c.FPS, err = strconv.ParseFloat(v, 64); return }},
	{name: "AUTO_CALIBRATE", update: func(c *Config, v string) (err error) { c.AutoCalibrate, err = strconv.ParseBool(v); return }},
	{name: "COLOR_OUTPUT", update: func(c *Config, v string) (err error) { c.ColorOutput, err = strconv.ParseBool(v); return }},
	{name: "SEARCH_WINDOW", update: func(c *Config, v string) (err error) { c.SearchWindow, err = time.ParseDuration(v); return }},
	{name: "PREVIEW_WINDOW", update: func(c *Config, v string) (err error) { c.PreviewWindow, err = time.ParseDuration(v); return }},
	{name: "FLASH_FRAMES", update: func(c *Config, v string) (err error) { c.FlashFrames, err = strconv.Atoi(v); return }},
	{name: "RECALIBRATE_EVERY", update: func(c *Config, v string) (err error) { c.RecalibrateEvery, err = strconv.Atoi(v); return }},
	{name: "REDUCTION", update: func(c *Config, v string) (err error) { c.Reduction, err = strconv.Atoi(v); return }},
	{name: "NEAR", update: func(c *Config, v string) (err error) { c.Near, err = strconv.ParseFloat(v, 64); return }},
	{name: "FAR", update: func(c *Config, v string) (err error) { c.Far, err = strconv.ParseFloat(v, 64); return }},
	{name: "DEPTH16", update: func(c *Config, v string) (err error) { c.Depth16, err = strconv.ParseBool(v); return }},
	{name: "DEPTH16_WIDTH", update: func(c *Config, v string) (err error) { c.Depth16Width, err = strconv.Atoi(v); return }},
	{name: "DEPTH16_HEIGHT", update: func(c *Config, v string) (err error) { c.Depth16Height, err = strconv.Atoi(v); return }},
	{name: "EFFECTS", update: func(c *Config, v string) error { c.Effects = strings.Split(v, ","); return nil }},
}

func (c *Config) override(env map[string]string) error {
	for _, o := range overrides {
		v, ok := env[EnvPrefix+o.name]
		if !ok {
			continue
		}
		err := o.update(c, strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s%s: %w", EnvPrefix, o.name, err)
		}
	}
	return nil
}

// Validate checks c for values that cannot be used.
func (c Config) Validate() error {
	switch {
	case c.FPS <= 0:
		return fmt.Errorf("invalid fps: %v", c.FPS)
	case c.SearchWindow < 0 || c.PreviewWindow < 0:
		return fmt.Errorf("invalid calibration windows: %v, %v", c.SearchWindow, c.PreviewWindow)
	case c.FlashFrames < 0:
		return fmt.Errorf("invalid flash frames: %d", c.FlashFrames)
	case c.RecalibrateEvery <= 0:
		return fmt.Errorf("invalid recalibration period: %d", c.RecalibrateEvery)
	case c.Reduction <= 0:
		return fmt.Errorf("invalid reduction: %d", c.Reduction)
	case c.HasFixedRange() && (c.Near < 0 || c.Near >= c.Far):
		return fmt.Errorf("invalid depth range: near %v, far %v", c.Near, c.Far)
	case c.Depth16 && (c.Depth16Width <= 0 || c.Depth16Height <= 0):
		return fmt.Errorf("invalid depth16 size: %dx%d", c.Depth16Width, c.Depth16Height)
	case c.Depth16Hi != 0 && c.Depth16Hi <= c.Depth16Lo:
		return fmt.Errorf("invalid depth16 range: %v to %v", c.Depth16Lo, c.Depth16Hi)
	case len(c.Effects) == 0:
		return errors.New("no effect groups")
	}
	if _, err := c.Verbosity(); err != nil {
		return err
	}
	for _, e := range c.Effects {
		switch e {
		case EffectDepth, EffectInvert, EffectContour:
		default:
			return fmt.Errorf("unknown effect: %q", e)
		}
	}
	return nil
}

// HasFixedRange reports whether a fixed depth range is configured.
func (c Config) HasFixedRange() bool { return c.Near != 0 || c.Far != 0 }

// Verbosity returns the logging level named by LogLevel.
func (c Config) Verbosity() (int8, error) {
	l, ok := logLevels[strings.ToLower(c.LogLevel)]
	if !ok {
		return 0, fmt.Errorf("unknown log level: %q", c.LogLevel)
	}
	return l, nil
}

// Options returns the projection.Area options described by c.
func (c Config) Options() []projection.Option {
	opts := []projection.Option{
		projection.WithSearchWindow(c.SearchWindow),
		projection.WithPreviewWindow(c.PreviewWindow),
		projection.WithFlashFrames(c.FlashFrames),
		projection.WithRecalibrateEvery(c.RecalibrateEvery),
		projection.WithReduction(c.Reduction),
		projection.WithAutoCalibrate(c.AutoCalibrate),
		projection.WithColorOutput(c.ColorOutput),
	}
	if c.HasFixedRange() {
		opts = append(opts, projection.WithFixedRange(c.Near, c.Far))
	}
	if c.Depth16 {
		opts = append(opts, projection.WithDepth16(depth.Depth16{
			Fixed: c.Depth16Hi != 0,
			Lo:    c.Depth16Lo,
			Hi:    c.Depth16Hi,
		}))
	}
	return opts
}
