/*
DESCRIPTION
  overlay.go provides stateless rendering of the frames shown while the
  projection area is being calibrated: a white border to light the
  projection area, an outline of the detected quad, and plain white flash
  frames.

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

// Package overlay provides rendering of calibration feedback frames.
package overlay

import (
	"image"
	"image/draw"

	"github.com/fogleman/gg"

	"github.com/ausocean/projector/pi/frame"
	"github.com/ausocean/projector/pi/quad"
)

// Renderer draws calibration feedback. Implementations must not modify
// their input frames.
type Renderer interface {
	// Border returns f as RGB with a white border.
	Border(f frame.Frame) frame.Frame

	// Outline returns f as RGB with q, in canonical corner order, outlined.
	Outline(f frame.Frame, q quad.Quad) frame.Frame

	// Flash returns a white w by h RGB frame.
	Flash(w, h int) frame.Frame
}

// Defaults for GG.
const (
	DefaultBorderWidth  = 400
	DefaultOutlineWidth = 5
)

// GG is a Renderer drawing with the gg 2D graphics library.
type GG struct {
	BorderWidth  float64 // Stroke width centred on the frame edge.
	OutlineWidth float64
}

// NewGG returns a GG with default line widths.
func NewGG() GG {
	return GG{BorderWidth: DefaultBorderWidth, OutlineWidth: DefaultOutlineWidth}
}

// Border implements Renderer.
func (g GG) Border(f frame.Frame) frame.Frame {
	dc := gg.NewContextForRGBA(rgba(f))
	dc.SetRGB(1, 1, 1)
	dc.SetLineWidth(g.BorderWidth)
	dc.DrawRectangle(0, 0, float64(f.Width-1), float64(f.Height-1))
	dc.Stroke()
	return frame.FromImage(dc.Image(), frame.RGB8)
}

// Outline implements Renderer.
func (g GG) Outline(f frame.Frame, q quad.Quad) frame.Frame {
	dc := gg.NewContextForRGBA(rgba(f))
	dc.SetRGB(0, 1, 0)
	dc.SetLineWidth(g.OutlineWidth)
	dc.MoveTo(q[quad.TopLeft].X, q[quad.TopLeft].Y)
	dc.LineTo(q[quad.TopRight].X, q[quad.TopRight].Y)
	dc.LineTo(q[quad.BottomRight].X, q[quad.BottomRight].Y)
	dc.LineTo(q[quad.BottomLeft].X, q[quad.BottomLeft].Y)
	dc.ClosePath()
	dc.Stroke()
	return frame.FromImage(dc.Image(), frame.RGB8)
}

// Flash implements Renderer.
func (GG) Flash(w, h int) frame.Frame {
	return frame.Fill(w, h, frame.RGB8, 0xff)
}

// rgba returns a new RGBA copy of f.
func rgba(f frame.Frame) *image.RGBA {
	img := f.ToImage()
	if m, ok := img.(*image.RGBA); ok {
		return m
	}
	m := image.NewRGBA(img.Bounds())
	draw.Draw(m, m.Bounds(), img, image.Point{}, draw.Src)
	return m
}
