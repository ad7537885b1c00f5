/*
DESCRIPTION
  normalizer.go provides calibration of 8-bit range encoded depth maps to a
  0-255 image spanning either a warmed-up or operator set near/far range.

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

package depth

import (
	"errors"
	"fmt"
	"math"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/projector/pi/frame"
)

// Normalizer defaults.
const (
	DefaultWarmupFrames = 10

	// Initial bounds before warm-up, in metres.
	initNear = 10000.0
	initFar  = 0.0
)

// Errors returned by Normalizer.
var (
	ErrBadRange = errors.New("near must be non-negative and less than far")
	ErrNotFixed = errors.New("range is not operator fixed")
)

// Normalizer maps range encoded depth maps onto 0 to 255 between calibrated
// near and far distances. Until WarmupFrames frames with range metadata have
// been seen, the near/far bounds are the extremes observed so far and frames
// are passed through unchanged. In fixed mode the operator's bounds are used
// from the start.
//
// A Normalizer is not safe for concurrent use.
type Normalizer struct {
	WarmupFrames int

	near, far float64
	frames    int
	fixed     bool
	results   *Results
	log       logging.Logger
}

// NewNormalizer returns a Normalizer in warm-up mode.
func NewNormalizer(log logging.Logger) *Normalizer {
	n := &Normalizer{WarmupFrames: DefaultWarmupFrames, log: log}
	n.Recalibrate()
	return n
}

// SetFixed switches n to fixed bounds.
func (n *Normalizer) SetFixed(near, far float64) error {
	if near < 0 || near >= far {
		return fmt.Errorf("%w: near %v, far %v", ErrBadRange, near, far)
	}
	n.near, n.far, n.fixed = near, far, true
	return nil
}

// Fixed reports whether n uses operator set bounds.
func (n *Normalizer) Fixed() bool { return n.fixed }

// Bounds returns the current near and far bounds.
func (n *Normalizer) Bounds() (near, far float64) { return n.near, n.far }

// Calibrated reports whether frames are being normalised.
func (n *Normalizer) Calibrated() bool { return n.fixed || n.frames >= n.WarmupFrames }

// Record makes n append every range it observes to r.
func (n *Normalizer) Record(r *Results) { n.results = r }

// AdjustNear moves the fixed near bound by delta.
func (n *Normalizer) AdjustNear(delta float64) error { return n.Adjust(delta, 0) }

// AdjustFar moves the fixed far bound by delta.
func (n *Normalizer) AdjustFar(delta float64) error { return n.Adjust(0, delta) }

// Adjust moves the fixed bounds by dNear and dFar.
func (n *Normalizer) Adjust(dNear, dFar float64) error {
	near, far, err := n.adjusted(dNear, dFar)
	if err != nil {
		return err
	}
	n.near, n.far = near, far
	n.log.Info("depth range adjusted", "near", near, "far", far)
	return nil
}

// CheckAdjust returns the error Adjust would return, leaving the bounds
// unchanged.
func (n *Normalizer) CheckAdjust(dNear, dFar float64) error {
	_, _, err := n.adjusted(dNear, dFar)
	return err
}

func (n *Normalizer) adjusted(dNear, dFar float64) (near, far float64, err error) {
	if !n.fixed {
		return 0, 0, ErrNotFixed
	}
	near, far = n.near+dNear, n.far+dFar
	if near < 0 || near >= far {
		return 0, 0, fmt.Errorf("%w: near %v, far %v", ErrBadRange, near, far)
	}
	return near, far, nil
}

// Recalibrate restarts warm-up. Fixed bounds are kept.
func (n *Normalizer) Recalibrate() {
	n.frames = 0
	if !n.fixed {
		n.near, n.far = initNear, initFar
	}
}

// Normalize calibrates the Gray8 depth map raw encoded with r. A nil r
// means the container declared no range and raw is returned unchanged.
func (n *Normalizer) Normalize(raw frame.Frame, r *Range) (frame.Frame, error) {
	if raw.Format != frame.Gray8 {
		return frame.Frame{}, fmt.Errorf("expected %v depth map, got %v", frame.Gray8, raw.Format)
	}
	if r == nil {
		return raw, nil
	}
	if err := r.Validate(); err != nil {
		return frame.Frame{}, err
	}
	if n.results != nil {
		n.results.Append(r.Near, r.Far)
	}

	if !n.Calibrated() {
		n.near = math.Min(n.near, r.Near)
		n.far = math.Max(n.far, r.Far)
		n.frames++
		if n.Calibrated() {
			n.log.Info("depth range calibrated", "near", n.near, "far", n.far, "frames", n.frames)
		}
		return raw, nil
	}

	if n.near < 0 || n.near >= n.far {
		return frame.Frame{}, fmt.Errorf("%w: near %v, far %v", ErrBadRange, n.near, n.far)
	}

	// Decode each of the 256 sample values once per frame.
	var lut [256]uint8
	scale := maxSample / (n.far - n.near)
	for p := range lut {
		d := math.Min(r.Decode(float64(p)), n.far)
		d = math.Max(d-n.near, 0)
		lut[p] = uint8(math.Round(math.Min(d*scale, maxSample)))
	}

	out := frame.NewGray8(raw.Width, raw.Height)
	for i, p := range raw.Pix {
		out.Pix[i] = lut[p]
	}
	return out, nil
}
