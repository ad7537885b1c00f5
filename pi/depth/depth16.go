/*
DESCRIPTION
  depth16.go provides normalisation of 16-bit depth sensor samples, whose top
  three bits hold a confidence value.

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
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/ausocean/projector/pi/frame"
)

// RangeMask selects the 13 range bits of a 16-bit depth sample.
const RangeMask = 0x1fff

// Mask16 returns a copy of the Gray16 frame f with confidence bits cleared.
func Mask16(f frame.Frame) (frame.Frame, error) {
	if f.Format != frame.Gray16 {
		return frame.Frame{}, fmt.Errorf("expected %v frame, got %v", frame.Gray16, f.Format)
	}
	out := frame.NewGray16(f.Width, f.Height)
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			out.SetGray16(x, y, f.Gray16At(x, y)&RangeMask)
		}
	}
	return out, nil
}

// MinMax16 returns the smallest and largest samples of the Gray16 frame f.
func MinMax16(f frame.Frame) (lo, hi float64) {
	s := samples16(f)
	if len(s) == 0 {
		return 0, 0
	}
	return floats.Min(s), floats.Max(s)
}

func samples16(f frame.Frame) []float64 {
	s := make([]float64, 0, f.Width*f.Height)
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			s = append(s, float64(f.Gray16At(x, y)))
		}
	}
	return s
}

// Normalize16 linearly maps samples of the Gray16 frame f in [lo, hi] onto
// 0 to 255, clamping samples outside the range. An empty range gives a
// black frame.
func Normalize16(f frame.Frame, lo, hi float64) frame.Frame {
	out := frame.NewGray8(f.Width, f.Height)
	if hi <= lo {
		return out
	}
	scale := maxSample / (hi - lo)
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			v := math.Min(math.Max(float64(f.Gray16At(x, y)), lo), hi)
			out.Pix[out.Offset(x, y)] = uint8(math.Round((v - lo) * scale))
		}
	}
	return out
}

// Depth16 normalises sensor frames to 8 bits, either against the range
// observed in each frame or a fixed range.
type Depth16 struct {
	Fixed  bool
	Lo, Hi float64 // Used when Fixed, in masked sample units.
}

// Normalize masks f and normalises it to a Gray8 frame.
func (d Depth16) Normalize(f frame.Frame) (frame.Frame, error) {
	m, err := Mask16(f)
	if err != nil {
		return frame.Frame{}, err
	}
	lo, hi := d.Lo, d.Hi
	if !d.Fixed {
		lo, hi = MinMax16(m)
	}
	return Normalize16(m, lo, hi), nil
}
