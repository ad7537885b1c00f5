/*
DESCRIPTION
  warp.go provides the Warper interface and a nearest neighbour warper that
  samples the source frame through the inverse transform.

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

package homography

import (
	"fmt"
	"math"

	"github.com/ausocean/projector/pi/frame"
	"github.com/ausocean/projector/pi/quad"
)

// Warper applies a perspective transform to a frame, producing a w by h
// frame of the same pixel layout.
type Warper interface {
	Warp(src frame.Frame, m Matrix, w, h int) (frame.Frame, error)
}

// NearestWarper is a Warper using nearest neighbour sampling. Destination
// pixels that map outside the source are zero.
type NearestWarper struct{}

// Warp implements Warper.
func (NearestWarper) Warp(src frame.Frame, m Matrix, w, h int) (frame.Frame, error) {
	if src.Empty() {
		return frame.Frame{}, fmt.Errorf("cannot warp empty frame")
	}
	if w <= 0 || h <= 0 {
		return frame.Frame{}, fmt.Errorf("bad warp size %dx%d", w, h)
	}
	inv, err := m.Inverse()
	if err != nil {
		return frame.Frame{}, err
	}

	dst := frame.New(w, h, src.Format)
	bpp := src.Format.BytesPerPixel()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := inv.Apply(quad.Point{X: float64(x), Y: float64(y)})
			sx, sy := math.Round(p.X), math.Round(p.Y)
			if !(sx >= 0 && sy >= 0 && sx < float64(src.Width) && sy < float64(src.Height)) {
				continue
			}
			so := src.Offset(int(sx), int(sy))
			copy(dst.Pix[dst.Offset(x, y):], src.Pix[so:so+bpp])
		}
	}
	return dst, nil
}
