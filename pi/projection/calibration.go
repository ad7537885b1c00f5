/*
DESCRIPTION
  calibration.go provides export and import of a detected projection area,
  so a calibration can be carried between processors without detecting
  again.

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
	"fmt"

	"github.com/google/uuid"

	"github.com/ausocean/projector/pi/quad"
)

// Calibration is a projection area in finder coordinates, found in a Width
// by Height finder image.
type Calibration struct {
	Quad          quad.Quad
	Width, Height int
	Session       uuid.UUID
}

// ExportCalibration returns the current calibration, if any.
func (a *Area) ExportCalibration() (Calibration, bool) {
	if !a.IsCalibrated() || !a.hasQuad {
		return Calibration{}, false
	}
	return Calibration{
		Quad:    a.raw,
		Width:   a.qw / a.reduction,
		Height:  a.qh / a.reduction,
		Session: a.session,
	}, true
}

// ImportCalibration discards the current calibration and adopts c. Since the
// size of incoming frames is not yet known, c is applied to the next frame
// processed.
func (a *Area) ImportCalibration(c Calibration) error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid calibration size: %dx%d", c.Width, c.Height)
	}
	if _, err := quad.Order(c.Quad); err != nil {
		return fmt.Errorf("invalid calibration quad: %w", err)
	}
	a.restart()
	a.pending = &c
	a.log.Info("imported calibration", "session", c.Session.String())
	return nil
}

// apply adopts c for primary images of w by h pixels.
func (a *Area) apply(c Calibration, w, h int) error {
	fw, fh := w/a.reduction, h/a.reduction
	if fw <= 0 || fh <= 0 {
		return fmt.Errorf("image too small for reduction %d: %dx%d", a.reduction, w, h)
	}
	raw := quad.Scale(c.Quad, float64(fw)/float64(c.Width), float64(fh)/float64(c.Height))
	ordered, err := quad.Order(raw)
	if err != nil {
		return err
	}
	a.setQuad(ordered, w, h)
	return nil
}
