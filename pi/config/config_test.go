/*
DESCRIPTION
  config_test.go tests configuration loading and operator variables.

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

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ausocean/projector/pi/projection"
)

const testYAML = `
input: frames
fps: 15
autoCalibrate: true
searchWindow: 3s
near: 0.5
far: 4
effects: [depth, invert]
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("could not write %s: %v", name, err)
	}
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "projector.yaml", testYAML)
	dotenv := writeFile(t, dir, ".env", "PROJECTOR_FPS=20\nPROJECTOR_OUTPUT=shown\n")
	t.Setenv("PROJECTOR_FPS", "25")

	got, err := Load(path, dotenv)
	if err != nil {
		t.Fatalf("could not load config: %v", err)
	}

	want := Default()
	want.Input = "frames"
	want.Output = "shown"
	want.FPS = 25
	want.AutoCalibrate = true
	want.SearchWindow = 3 * time.Second
	want.Near, want.Far = 0.5, 4
	want.Effects = []string{EffectDepth, EffectInvert}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected config (-want +got):\n%s", diff)
	}
	if !got.HasFixedRange() {
		t.Error("expected fixed range")
	}
	if n := len(got.Options()); n != 8 {
		t.Errorf("unexpected option count: %d", n)
	}
}

func TestLoadDefaults(t *testing.T) {
	got, err := Load("", filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("could not load defaults: %v", err)
	}
	if diff := cmp.Diff(Default(), got); diff != "" {
		t.Errorf("unexpected config (-want +got):\n%s", diff)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), ""); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestRead(t *testing.T) {
	t.Setenv("PROJECTOR_DEPTH16", "true")
	if _, err := Load("", ""); err == nil {
		t.Error("expected validation error for depth16 without size")
	}
	c, err := Read("", "")
	if err != nil {
		t.Fatalf("could not read config: %v", err)
	}
	c.Depth16Width, c.Depth16Height = 640, 480
	if err := c.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
}

func TestLoadBadEnv(t *testing.T) {
	t.Setenv("PROJECTOR_REDUCTION", "two")
	if _, err := Load("", ""); err == nil {
		t.Error("expected error for non-numeric reduction")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
	}{
		{"fps", func(c *Config) { c.FPS = 0 }},
		{"search window", func(c *Config) { c.SearchWindow = -time.Second }},
		{"flash frames", func(c *Config) { c.FlashFrames = -1 }},
		{"recalibration period", func(c *Config) { c.RecalibrateEvery = 0 }},
		{"reduction", func(c *Config) { c.Reduction = 0 }},
		{"range", func(c *Config) { c.Near, c.Far = 3, 2 }},
		{"depth16 size", func(c *Config) { c.Depth16 = true }},
		{"depth16 range", func(c *Config) { c.Depth16Lo, c.Depth16Hi = 10, 5 }},
		{"log level", func(c *Config) { c.LogLevel = "loud" }},
		{"no effects", func(c *Config) { c.Effects = nil }},
		{"unknown effect", func(c *Config) { c.Effects = []string{"sparkle"} }},
	}
	for _, test := range tests {
		c := Default()
		test.modify(&c)
		if err := c.Validate(); err == nil {
			t.Errorf("%s: expected validation error", test.name)
		}
	}
	if err := Default().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

// fakeController records the controls applied to it.
type fakeController struct {
	recals   int
	auto     *bool
	visual   *bool
	color    *bool
	controls []projection.Control
	moves    []string
}

func (c *fakeController) Recalibrate() { c.recals++ }
func (c *fakeController) SetAutoCalibrate(e bool) { c.auto = &e }
func (c *fakeController) SetVisualCalibration(e bool) { c.visual = &e }
func (c *fakeController) SetColorOutput(e bool) { c.color = &e }
func (c *fakeController) Next() { c.moves = append(c.moves, "next") }
func (c *fakeController) Prev() { c.moves = append(c.moves, "prev") }
func (c *fakeController) Adjust(ctl projection.Control) error {
	c.controls = append(c.controls, ctl)
	return nil
}

func TestUpdate(t *testing.T) {
	c := &fakeController{}
	for _, line := range []string{"recalibrate", "AUTO true", "visual false", "color false", "near +1", "far -0.1", "next", "prev", ""} {
		name, value := ParseCommand(line)
		if name == "" {
			continue
		}
		if err := Update(c, name, value); err != nil {
			t.Errorf("could not update %q: %v", line, err)
		}
	}

	if c.recals != 1 || c.auto == nil || !*c.auto || c.visual == nil || *c.visual || c.color == nil || *c.color {
		t.Errorf("unexpected controller state: %+v", c)
	}
	wantControls := []projection.Control{
		{Bound: projection.Near, Delta: projection.CoarseStep},
		{Bound: projection.Far, Delta: -projection.FineStep},
	}
	if diff := cmp.Diff(wantControls, c.controls); diff != "" {
		t.Errorf("unexpected controls (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"next", "prev"}, c.moves); diff != "" {
		t.Errorf("unexpected group moves (-want +got):\n%s", diff)
	}

	if err := Update(c, "brightness", "1"); !errors.Is(err, ErrUnknownVariable) {
		t.Errorf("expected unknown variable error, got %v", err)
	}
	if err := Update(c, "auto", "maybe"); err == nil {
		t.Error("expected error for bad bool")
	}
	if err := Update(c, "near", "closer"); err == nil {
		t.Error("expected error for bad float")
	}
	if vars := Variables(); vars["near"] != "float" || vars["visual"] != "bool" || len(vars) != 8 {
		t.Errorf("unexpected variables: %v", vars)
	}
}
