/*
DESCRIPTION
  rangeinverse.go provides the 8-bit range encodings used by depth maps in
  dynamic depth containers.

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

// Package depth provides decoding and normalisation of depth images, both
// 8-bit range encoded depth maps and 16-bit sensor samples.
package depth

import "fmt"

// maxSample is the largest 8-bit encoded sample.
const maxSample = 255.0

// DecodeRangeInverse returns the distance encoded by sample p, 0 to 255,
// of a RangeInverse depth map with the given near and far planes.
func DecodeRangeInverse(p, near, far float64) float64 {
	return far * near / (far - (far-near)*p/maxSample)
}

// EncodeRangeInverse returns the unrounded RangeInverse sample for distance d.
func EncodeRangeInverse(d, near, far float64) float64 {
	return maxSample * far * (d - near) / (d * (far - near))
}

// DecodeRangeLinear returns the distance encoded by sample p of a
// RangeLinear depth map.
func DecodeRangeLinear(p, near, far float64) float64 {
	return near + (far-near)*p/maxSample
}

// EncodeRangeLinear returns the unrounded RangeLinear sample for distance d.
func EncodeRangeLinear(d, near, far float64) float64 {
	return maxSample * (d - near) / (far - near)
}

// Range is the encoding of one depth map as declared by its container.
type Range struct {
	Near, Far float64
	Linear    bool // RangeLinear rather than RangeInverse.
}

// Validate returns ErrBadRange if r cannot be decoded. RangeInverse needs a
// positive near plane.
func (r Range) Validate() error {
	if !(r.Far > r.Near) || r.Near < 0 || (!r.Linear && r.Near == 0) {
		return fmt.Errorf("%w: near %v, far %v", ErrBadRange, r.Near, r.Far)
	}
	return nil
}

// Decode returns the distance encoded by sample p.
func (r Range) Decode(p float64) float64 {
	if r.Linear {
		return DecodeRangeLinear(p, r.Near, r.Far)
	}
	return DecodeRangeInverse(p, r.Near, r.Far)
}
