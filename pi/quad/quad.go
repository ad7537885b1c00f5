/*
DESCRIPTION
  quad.go provides the Quad type describing the four corners of a projection
  area and canonical top-left, top-right, bottom-left, bottom-right ordering
  of its corners.

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

// Package quad provides detection of a bright projected quadrilateral in a
// camera frame and ordering of its corners.
package quad

import (
	"errors"
	"math"
	"sort"

	"github.com/ausocean/projector/pi/frame"
)

// Corner indices of an ordered Quad.
const (
	TopLeft = iota
	TopRight
	BottomLeft
	BottomRight
)

// ErrAmbiguousOrder is returned when the corners of a quad do not fall one
// per quadrant around its centroid.
var ErrAmbiguousOrder = errors.New("ambiguous quad corner ordering")

// Point is a 2-D point in image coordinates, y increasing downwards.
type Point struct {
	X, Y float64
}

// Quad holds four corner points. A Quad returned by Order is in
// TopLeft, TopRight, BottomLeft, BottomRight order.
type Quad [4]Point

// Finder finds the projection area in an RGB frame. The returned quad is in
// the finder's detection coordinates; ok is false if none was found.
type Finder interface {
	Find(rgb frame.Frame) (q Quad, ok bool, err error)
}

// Order returns q with its corners in canonical order. The centroid is the
// area weighted centroid of the polygon formed by q's corners, and each
// corner must lie strictly inside a different quadrant around it.
//
// The quadrant test only holds for roughly axis aligned quadrilaterals;
// rotations beyond about 45 degrees are rejected.
func Order(q Quad) (Quad, error) {
	c, ok := Centroid(q)
	if !ok {
		return Quad{}, ErrAmbiguousOrder
	}

	var (
		out  Quad
		seen [4]bool
	)
	for _, p := range q {
		var i int
		switch {
		case p.X < c.X && p.Y < c.Y:
			i = TopLeft
		case p.X > c.X && p.Y < c.Y:
			i = TopRight
		case p.X < c.X && p.Y > c.Y:
			i = BottomLeft
		case p.X > c.X && p.Y > c.Y:
			i = BottomRight
		default:
			return Quad{}, ErrAmbiguousOrder
		}
		if seen[i] {
			return Quad{}, ErrAmbiguousOrder
		}
		seen[i] = true
		out[i] = p
	}
	return out, nil
}

// Centroid returns the area weighted centroid of the polygon through q's
// corners taken in angular order, so the result does not depend on the
// order of q. ok is false for a degenerate polygon.
func Centroid(q Quad) (c Point, ok bool) {
	poly := angular(q)

	// Zeroth and first order moments by the shoelace formula.
	var m00, m10, m01 float64
	for i := range poly {
		a, b := poly[i], poly[(i+1)%len(poly)]
		cross := a.X*b.Y - b.X*a.Y
		m00 += cross
		m10 += (a.X + b.X) * cross
		m01 += (a.Y + b.Y) * cross
	}
	m00 /= 2
	if math.Abs(m00) < 1e-12 {
		return Point{}, false
	}
	return Point{X: m10 / (6 * m00), Y: m01 / (6 * m00)}, true
}

// angular returns the corners of q sorted by angle about their mean.
func angular(q Quad) Quad {
	var mx, my float64
	for _, p := range q {
		mx += p.X / 4
		my += p.Y / 4
	}
	out := q
	sort.Slice(out[:], func(i, j int) bool {
		return math.Atan2(out[i].Y-my, out[i].X-mx) < math.Atan2(out[j].Y-my, out[j].X-mx)
	})
	return out
}

// Area returns the absolute area of the polygon through q's corners in the
// given order.
func Area(q Quad) float64 {
	var a float64
	for i := range q {
		p, n := q[i], q[(i+1)%len(q)]
		a += p.X*n.Y - n.X*p.Y
	}
	return math.Abs(a) / 2
}

// Scale returns q with x coordinates multiplied by sx and y by sy.
func Scale(q Quad, sx, sy float64) Quad {
	for i := range q {
		q[i].X *= sx
		q[i].Y *= sy
	}
	return q
}

// ScaleUp maps a quad found in an image downsampled by factor f back to full
// resolution, placing each point at the centre of the f by f block it came
// from.
func ScaleUp(raw Quad, f int) Quad {
	off := float64(f / 2)
	for i := range raw {
		raw[i].X = raw[i].X*float64(f) + off
		raw[i].Y = raw[i].Y*float64(f) + off
	}
	return raw
}
