/*
DESCRIPTION
  homography.go provides computation of the perspective transform mapping
  the ordered corners of a projection area onto a destination rectangle.

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

// Package homography provides 3x3 perspective transforms between a
// projection area and an output rectangle, and warping of frames by them.
package homography

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ausocean/projector/pi/quad"
)

// ErrDegenerate is returned when no unique transform exists for a quad and
// destination size.
var ErrDegenerate = errors.New("degenerate homography")

// Matrix is a row-major 3x3 projective transform with its last element
// normalised to 1.
type Matrix [9]float64

// Identity is the identity transform.
var Identity = Matrix{1, 0, 0, 0, 1, 0, 0, 0, 1}

// Destination returns the destination corners for a w by h rectangle in
// TopLeft, TopRight, BottomLeft, BottomRight order.
func Destination(w, h int) quad.Quad {
	fw, fh := float64(w-1), float64(h-1)
	return quad.Quad{{X: 0, Y: 0}, {X: fw, Y: 0}, {X: 0, Y: fh}, {X: fw, Y: fh}}
}

// ComputeFrom orders the corners of q and computes its transform onto a
// w by h rectangle. An unorderable quad returns quad.ErrAmbiguousOrder.
func ComputeFrom(q quad.Quad, w, h int) (Matrix, error) {
	ordered, err := quad.Order(q)
	if err != nil {
		return Matrix{}, fmt.Errorf("could not order quad: %w", err)
	}
	return Compute(ordered, w, h)
}

// Compute returns the transform mapping the corners of ordered, which must
// already be in canonical order, onto the corners of a w by h rectangle.
func Compute(ordered quad.Quad, w, h int) (Matrix, error) {
	if w < 2 || h < 2 {
		return Matrix{}, fmt.Errorf("%w: destination %dx%d", ErrDegenerate, w, h)
	}
	return solve(ordered, Destination(w, h))
}

// solve finds the transform mapping src[i] to dst[i] with h22 fixed at 1.
// Each correspondence gives two rows of an 8x8 linear system.
func solve(src, dst quad.Quad) (Matrix, error) {
	a := mat.NewDense(8, 8, nil)
	b := mat.NewVecDense(8, nil)
	for i := range src {
		X, Y := src[i].X, src[i].Y
		x, y := dst[i].X, dst[i].Y
		r := 2 * i
		a.SetRow(r, []float64{X, Y, 1, 0, 0, 0, -X * x, -Y * x})
		b.SetVec(r, x)
		a.SetRow(r+1, []float64{0, 0, 0, X, Y, 1, -X * y, -Y * y})
		b.SetVec(r+1, y)
	}

	qr := new(mat.QR)
	qr.Factorize(a)

	c := mat.NewVecDense(8, nil)
	err := qr.SolveVecTo(c, false, b)
	if err != nil {
		return Matrix{}, fmt.Errorf("%w: could not solve QR: %v", ErrDegenerate, err)
	}

	var m Matrix
	for i := 0; i < 8; i++ {
		v := c.AtVec(i)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Matrix{}, fmt.Errorf("%w: non-finite solution", ErrDegenerate)
		}
		m[i] = v
	}
	m[8] = 1
	return m, nil
}

// Apply maps p through m. Points mapped to infinity have infinite
// coordinates.
func (m Matrix) Apply(p quad.Point) quad.Point {
	w := m[6]*p.X + m[7]*p.Y + m[8]
	return quad.Point{
		X: (m[0]*p.X + m[1]*p.Y + m[2]) / w,
		Y: (m[3]*p.X + m[4]*p.Y + m[5]) / w,
	}
}

// Inverse returns the inverse transform of m.
func (m Matrix) Inverse() (Matrix, error) {
	var inv mat.Dense
	err := inv.Inverse(mat.NewDense(3, 3, m[:]))
	if err != nil {
		return Matrix{}, fmt.Errorf("%w: could not invert: %v", ErrDegenerate, err)
	}

	var out Matrix
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out[r*3+c] = inv.At(r, c)
		}
	}
	if out[8] != 0 {
		s := out[8]
		for i := range out {
			out[i] /= s
		}
	}
	return out, nil
}
