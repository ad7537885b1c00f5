/*
DESCRIPTION
  options.go provides the functional options used to configure an Area.

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

package projection

import (
	"errors"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/ausocean/projector/pi/depth"
	"github.com/ausocean/projector/pi/frame"
	"github.com/ausocean/projector/pi/homography"
	"github.com/ausocean/projector/pi/overlay"
	"github.com/ausocean/projector/pi/quad"
)

// Option is the function signature returned by option functions below for
// use in the Area initialiser.
type Option func(*Area) error

// WithClock returns an Option that sets the clock used to time calibration
// phases.
func WithClock(c clock.Clock) Option {
	return func(a *Area) error {
		if c == nil {
			return errors.New("nil clock")
		}
		a.clk = c
		return nil
	}
}

// WithFinder returns an Option that sets the projection area finder. A
// finder is required.
func WithFinder(f quad.Finder) Option {
	return func(a *Area) error {
		a.finder = f
		return nil
	}
}

// WithDecoder returns an Option that sets the JPEG decoder.
func WithDecoder(d frame.Decoder) Option {
	return func(a *Area) error {
		if d == nil {
			return errors.New("nil decoder")
		}
		a.decoder = d
		return nil
	}
}

// WithWarper returns an Option that sets the perspective warper.
func WithWarper(w homography.Warper) Option {
	return func(a *Area) error {
		if w == nil {
			return errors.New("nil warper")
		}
		a.warper = w
		return nil
	}
}

// WithRenderer returns an Option that sets the calibration feedback renderer.
func WithRenderer(r overlay.Renderer) Option {
	return func(a *Area) error {
		if r == nil {
			return errors.New("nil renderer")
		}
		a.render = r
		return nil
	}
}

// WithSearchWindow returns an Option that sets the minimum time spent
// searching for the projection area in visual calibration.
func WithSearchWindow(d time.Duration) Option {
	return func(a *Area) error {
		if d < 0 {
			return fmt.Errorf("invalid search window: %v", d)
		}
		a.searchWindow = d
		return nil
	}
}

// WithPreviewWindow returns an Option that sets how long the outlined depth
// image is shown before warping in visual calibration.
func WithPreviewWindow(d time.Duration) Option {
	return func(a *Area) error {
		if d < 0 {
			return fmt.Errorf("invalid preview window: %v", d)
		}
		a.previewWindow = d
		return nil
	}
}

// WithFlashFrames returns an Option that sets the number of white frames
// shown before detection in automatic calibration, covering projector lag.
func WithFlashFrames(n int) Option {
	return func(a *Area) error {
		if n < 0 {
			return fmt.Errorf("invalid flash frame count: %d", n)
		}
		a.flashFrames = n
		return nil
	}
}

// WithRecalibrateEvery returns an Option that sets the number of frames
// between automatic recalibrations.
func WithRecalibrateEvery(n int) Option {
	return func(a *Area) error {
		if n <= 0 {
			return fmt.Errorf("invalid recalibration period: %d", n)
		}
		a.recalEvery = n
		return nil
	}
}

// WithReduction returns an Option that sets the downsampling factor used by
// the finder, needed to map its quads to full resolution.
func WithReduction(n int) Option {
	return func(a *Area) error {
		if n <= 0 {
			return fmt.Errorf("invalid reduction: %d", n)
		}
		a.reduction = n
		return nil
	}
}

// WithAutoCalibrate returns an Option that enables automatic calibration.
func WithAutoCalibrate(enable bool) Option {
	return func(a *Area) error {
		a.SetAutoCalibrate(enable)
		return nil
	}
}

// WithColorOutput returns an Option that selects warped colour output
// rather than depth.
func WithColorOutput(enable bool) Option {
	return func(a *Area) error {
		a.colorOutput = enable
		return nil
	}
}

// WithDepth16 returns an Option that selects raw 16-bit depth input once
// calibrated, normalised by d.
func WithDepth16(d depth.Depth16) Option {
	return func(a *Area) error {
		if d.Fixed && d.Hi <= d.Lo {
			return fmt.Errorf("invalid depth16 range: %v to %v", d.Lo, d.Hi)
		}
		a.useDepth16 = true
		a.depth16 = d
		return nil
	}
}

// WithFixedRange returns an Option that sets operator fixed near and far
// depth bounds in metres.
func WithFixedRange(near, far float64) Option {
	return func(a *Area) error {
		return a.normalizer.SetFixed(near, far)
	}
}

// WithResults returns an Option that records the depth range of every
// processed container to r.
func WithResults(r *depth.Results) Option {
	return func(a *Area) error {
		a.normalizer.Record(r)
		return nil
	}
}
