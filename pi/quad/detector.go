//go:build withcv
// +build withcv

/*
DESCRIPTION
  detector.go provides an OpenCV based Finder that locates the largest bright
  quadrilateral in an RGB frame, such as the area lit by a projector.

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
	"fmt"
	"image"
	"math"
	"time"

	"github.com/ausocean/utils/logging"
	"gocv.io/x/gocv"

	"github.com/ausocean/projector/pi/frame"
)

// Detector defaults.
const (
	DefaultReduction = 2
	DefaultBlur      = 31
	DefaultEpsilon   = 0.02
)

// DefaultThresholds are the brightness thresholds tried in turn.
var DefaultThresholds = []float32{200, 250}

// Detector finds the largest bright quadrilateral in a frame.
type Detector struct {
	Reduction  int       // Downsampling factor applied after blurring.
	Blur       int       // Gaussian kernel size, odd.
	Thresholds []float32 // Brightness thresholds, 0-255.
	Epsilon    float64   // Polygon approximation tolerance as a fraction of arc length.
	log        logging.Logger
}

// NewDetector returns a Detector with default parameters.
func NewDetector(log logging.Logger) *Detector {
	return &Detector{
		Reduction:  DefaultReduction,
		Blur:       DefaultBlur,
		Thresholds: DefaultThresholds,
		Epsilon:    DefaultEpsilon,
		log:        log,
	}
}

// Find implements Finder. The returned quad is in the coordinates of the
// downsampled detection image; use ScaleUp with d.Reduction to map it to the
// frame.
func (d *Detector) Find(rgb frame.Frame) (Quad, bool, error) {
	if rgb.Format != frame.RGB8 {
		return Quad{}, false, fmt.Errorf("detector needs %v frame, got %v", frame.RGB8, rgb.Format)
	}
	timer := time.Now()

	img, err := frame.ToMat(rgb)
	if err != nil {
		return Quad{}, false, fmt.Errorf("could not convert frame: %w", err)
	}
	defer img.Close()

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(img, &hsv, gocv.ColorRGBToHSV)

	channels := gocv.Split(hsv)
	for i := range channels {
		defer channels[i].Close()
	}
	value := channels[2]

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(value, &blurred, image.Pt(d.Blur, d.Blur), 0, 0, gocv.BorderDefault)

	small := gocv.NewMat()
	defer small.Close()
	r := d.Reduction
	if r < 1 {
		r = 1
	}
	gocv.Resize(blurred, &small, image.Pt(rgb.Width/r, rgb.Height/r), 0, 0, gocv.InterpolationLinear)

	var (
		best     Quad
		bestArea = -1.0
	)
	for _, th := range d.Thresholds {
		q, area, ok := d.largest(small, th)
		if ok && area > bestArea {
			best, bestArea = q, area
		}
	}

	d.log.Debug("quad search complete", "found", bestArea >= 0, "area", bestArea, "duration (sec)", time.Since(timer).Seconds())
	if bestArea < 0 {
		return Quad{}, false, nil
	}
	return best, true, nil
}

// largest returns the largest orderable 4-vertex polygon in img binarized at
// threshold th.
func (d *Detector) largest(img gocv.Mat, th float32) (Quad, float64, bool) {
	bin := gocv.NewMat()
	defer bin.Close()
	gocv.Threshold(img, &bin, th, 255, gocv.ThresholdBinary)

	contours := gocv.FindContours(bin, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var (
		best     Quad
		bestArea = -1.0
	)
	for i := 0; i < contours.Size(); i++ {
		c := contours.At(i)
		approx := gocv.ApproxPolyDP(c, d.Epsilon*gocv.ArcLength(c, true), true)
		pts := approx.ToPoints()
		approx.Close()
		if len(pts) != 4 {
			continue
		}

		var q Quad
		for j, p := range pts {
			q[j] = Point{X: float64(p.X), Y: float64(p.Y)}
		}
		if _, err := Order(q); err != nil {
			d.log.Debug("rejected candidate quad", "threshold", th, "error", err)
			continue
		}

		area := math.Abs(gocv.ContourArea(c))
		if area > bestArea {
			best, bestArea = q, area
		}
	}
	return best, bestArea, bestArea >= 0
}
