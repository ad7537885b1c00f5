/*
DESCRIPTION
  scale.go provides reduction of 16-bit depth frames to 8 bits for effects
  that work on 8-bit images.

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

package effect

import (
	"fmt"

	"github.com/ausocean/projector/pi/frame"
)

// Depth16Limit is the largest 16-bit sample kept by To8; larger samples are
// truncated to it.
const Depth16Limit = 2047

// To8 returns f as a Gray8 frame. Gray16 samples are truncated at
// Depth16Limit and scaled to 8 bits; Gray8 frames are returned as is.
func To8(f frame.Frame) (frame.Frame, error) {
	switch f.Format {
	case frame.Gray8:
		return f, nil
	case frame.Gray16:
	default:
		return frame.Frame{}, fmt.Errorf("expected gray frame, got %v", f.Format)
	}
	out := frame.NewGray8(f.Width, f.Height)
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			v := int(f.Gray16At(x, y))
			if v > Depth16Limit {
				v = Depth16Limit
			}
			v = v * 256 / Depth16Limit
			if v > 255 {
				v = 255
			}
			out.Pix[y*f.Width+x] = uint8(v)
		}
	}
	return out, nil
}
