//go:build !withcv
// +build !withcv

/*
DESCRIPTION
  detector_stub.go provides a Detector for builds without OpenCV.

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

package quad

import (
	"errors"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/projector/pi/frame"
)

// ErrNoOpenCV is returned by Find when built without the withcv tag.
var ErrNoOpenCV = errors.New("quad detection needs the withcv build tag")

// DefaultReduction is the detection downsampling factor.
const DefaultReduction = 2

// Detector is unavailable without OpenCV.
type Detector struct {
	Reduction int
	log       logging.Logger
}

// NewDetector returns a Detector whose Find always fails.
func NewDetector(log logging.Logger) *Detector {
	return &Detector{Reduction: DefaultReduction, log: log}
}

// Find implements Finder.
func (d *Detector) Find(frame.Frame) (Quad, bool, error) {
	return Quad{}, false, ErrNoOpenCV
}
