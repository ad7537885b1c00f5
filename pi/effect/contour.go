//go:build withcv
// +build withcv

/*
DESCRIPTION
  contour.go provides the Contour stage, which renders a depth frame as a
  false colour map with contour lines.

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
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ausocean/projector/pi/frame"
)

// Contour defaults.
const (
	DefaultLevels    = 32
	DefaultLevelStep = 8
)

// Contour is a Stage drawing contour lines over a JET colour map of a gray
// depth frame. Output frames are RGB8.
type Contour struct {
	Levels int // Number of contour levels.
	Step   int // Gray levels between contours.
	Line   color.RGBA
}

// NewContour returns a Contour with default levels and black lines.
func NewContour() Contour {
	return Contour{Levels: DefaultLevels, Step: DefaultLevelStep, Line: color.RGBA{A: 0xff}}
}

// Apply implements Stage.
func (c Contour) Apply(f frame.Frame) (*frame.Frame, error) {
	g, err := To8(f)
	if err != nil {
		return nil, err
	}
	src, err := frame.ToMat(g)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.ApplyColorMap(src, &dst, gocv.ColormapJet)

	bin := gocv.NewMat()
	defer bin.Close()
	for i := 0; i < c.Levels; i++ {
		gocv.Threshold(src, &bin, float32(i*c.Step), 255, gocv.ThresholdBinary)
		contours := gocv.FindContours(bin, gocv.RetrievalList, gocv.ChainApproxSimple)
		if contours.Size() > 0 {
			gocv.DrawContours(&dst, contours, -1, c.Line, 1)
		}
		contours.Close()
	}

	// ApplyColorMap gives BGR.
	rgb := gocv.NewMat()
	defer rgb.Close()
	gocv.CvtColor(dst, &rgb, gocv.ColorBGRToRGB)
	out, err := frame.FromMat(rgb)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
