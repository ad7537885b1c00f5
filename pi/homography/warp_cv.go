//go:build withcv
// +build withcv

/*
DESCRIPTION
  warp_cv.go provides a Warper backed by OpenCV's WarpPerspective.

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
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/ausocean/projector/pi/frame"
)

// CVWarper is a Warper using bilinear interpolation in OpenCV.
type CVWarper struct{}

// Warp implements Warper.
func (CVWarper) Warp(src frame.Frame, m Matrix, w, h int) (frame.Frame, error) {
	if src.Empty() {
		return frame.Frame{}, errors.New("image is empty, cannot transform")
	}

	img, err := frame.ToMat(src)
	if err != nil {
		return frame.Frame{}, fmt.Errorf("could not convert frame: %w", err)
	}
	defer img.Close()

	tm := Mat(m)
	defer tm.Close()

	out := gocv.NewMat()
	defer out.Close()
	gocv.WarpPerspective(img, &out, tm, image.Pt(w, h))
	return frame.FromMat(out)
}

// Mat returns m as a 3x3 CV_64F matrix. The caller must Close it.
func Mat(m Matrix) gocv.Mat {
	tm := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV64F)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			tm.SetDoubleAt(r, c, m[r*3+c])
		}
	}
	return tm
}
