/*
DESCRIPTION
  results.go provides the Results type holding the history of depth ranges
  declared by processed containers.

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

package depth

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Results holds per-frame near and far distances.
type Results struct {
	Frame []float64
	Near  []float64
	Far   []float64
}

// NewResults returns a new Results with capacity for n frames.
func NewResults(n int) (*Results, error) {
	if n <= 0 {
		return nil, fmt.Errorf("invalid result size: %v", n)
	}

	r := new(Results)
	r.Frame = make([]float64, 0, n)
	r.Near = make([]float64, 0, n)
	r.Far = make([]float64, 0, n)

	return r, nil
}

// Append adds the range of the next frame.
func (r *Results) Append(near, far float64) {
	r.Frame = append(r.Frame, float64(len(r.Frame)))
	r.Near = append(r.Near, near)
	r.Far = append(r.Far, far)
}

// Len returns the number of frames recorded.
func (r *Results) Len() int { return len(r.Frame) }

// Bounds returns the smallest near and largest far recorded.
func (r *Results) Bounds() (near, far float64, ok bool) {
	if r.Len() == 0 {
		return 0, 0, false
	}
	return floats.Min(r.Near), floats.Max(r.Far), true
}
