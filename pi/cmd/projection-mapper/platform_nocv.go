//go:build !withcv
// +build !withcv

/*
DESCRIPTION
  platform_nocv.go provides the pure Go image processing platform, which
  cannot detect the projection area.

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

package main

import (
	"github.com/ausocean/utils/logging"

	"github.com/ausocean/projector/pi/frame"
	"github.com/ausocean/projector/pi/homography"
	"github.com/ausocean/projector/pi/quad"
)

func newPlatform(log logging.Logger, reduction int) platform {
	log.Warning("built without OpenCV, projection area detection will fail")
	d := quad.NewDetector(log)
	d.Reduction = reduction
	return platform{
		finder:  d,
		decoder: frame.StdDecoder{},
		warper:  homography.NearestWarper{},
	}
}
