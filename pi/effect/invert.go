/*
DESCRIPTION
  invert.go provides the Invert stage.

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
	"github.com/ausocean/projector/pi/frame"
)

// Invert is a Stage that inverts every sample, so near depths project
// bright.
type Invert struct{}

// Apply implements Stage.
func (Invert) Apply(f frame.Frame) (*frame.Frame, error) {
	out := f.Clone()
	for i := range out.Pix {
		out.Pix[i] = ^out.Pix[i]
	}
	return &out, nil
}
