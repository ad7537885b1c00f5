/*
DESCRIPTION
  homography_test.go tests homography computation and warping.

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
	"math"
	"testing"

	"github.com/ausocean/projector/pi/frame"
	"github.com/ausocean/projector/pi/quad"
)

// near reports whether got is within relative tolerance of want, falling back
// to absolute tolerance around zero.
func near(got, want float64) bool {
	const tol = 1e-6
	d := math.Abs(got - want)
	if math.Abs(want) < 1 {
		return d <= tol
	}
	return d/math.Abs(want) <= tol
}

func TestComputeMapsCorners(t *testing.T) {
	tests := []struct {
		q    quad.Quad
		w, h int
	}{
		{q: quad.Quad{{X: 10, Y: 20}, {X: 110, Y: 20}, {X: 10, Y: 80}, {X: 110, Y: 80}}, w: 640, h: 480},
		{q: quad.Quad{{X: 30, Y: 12}, {X: 170, Y: 8}, {X: 12, Y: 140}, {X: 190, Y: 151}}, w: 320, h: 240},
		{q: quad.Quad{{X: 412.5, Y: 230}, {X: 1510, Y: 251.25}, {X: 388, Y: 902}, {X: 1533, Y: 880}}, w: 1920, h: 1080},
		{q: quad.Quad{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}}, w: 2, h: 2},
	}

	for i, test := range tests {
		m, err := Compute(test.q, test.w, test.h)
		if err != nil {
			t.Errorf("could not compute homography for test %d: %v", i, err)
			continue
		}
		dst := Destination(test.w, test.h)
		for j := range test.q {
			got := m.Apply(test.q[j])
			if !near(got.X, dst[j].X) || !near(got.Y, dst[j].Y) {
				t.Errorf("test %d corner %d. Got: %v, Want: %v", i, j, got, dst[j])
			}
		}
	}
}

func TestInverse(t *testing.T) {
	q := quad.Quad{{X: 30, Y: 12}, {X: 170, Y: 8}, {X: 12, Y: 140}, {X: 190, Y: 151}}
	m, err := Compute(q, 320, 240)
	if err != nil {
		t.Fatalf("could not compute homography: %v", err)
	}
	inv, err := m.Inverse()
	if err != nil {
		t.Fatalf("could not invert: %v", err)
	}
	for j, p := range Destination(320, 240) {
		got := inv.Apply(p)
		if !near(got.X, q[j].X) || !near(got.Y, q[j].Y) {
			t.Errorf("corner %d. Got: %v, Want: %v", j, got, q[j])
		}
	}
}

func TestComputeDegenerate(t *testing.T) {
	tests := []struct {
		name string
		q    quad.Quad
		w, h int
		want error
	}{
		{name: "collinear", q: quad.Quad{{X: 0, Y: 0}, {X: 10, Y: 10}, {X: 20, Y: 20}, {X: 30, Y: 30}}, w: 10, h: 10, want: ErrDegenerate},
		{name: "repeated", q: quad.Quad{{X: 0, Y: 0}, {X: 0, Y: 0}, {X: 0, Y: 0}, {X: 0, Y: 0}}, w: 10, h: 10, want: ErrDegenerate},
		{name: "zero width", q: quad.Quad{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}}, w: 1, h: 10, want: ErrDegenerate},
	}
	for _, test := range tests {
		_, err := Compute(test.q, test.w, test.h)
		if !errors.Is(err, test.want) {
			t.Errorf("%s: unexpected error. Got: %v, Want: %v", test.name, err, test.want)
		}
	}

	_, err := ComputeFrom(quad.Quad{{X: 50, Y: 0}, {X: 100, Y: 50}, {X: 50, Y: 100}, {X: 0, Y: 50}}, 10, 10)
	if !errors.Is(err, quad.ErrAmbiguousOrder) {
		t.Errorf("expected ambiguous order from diamond, got: %v", err)
	}
}

func TestComputeFromUnordered(t *testing.T) {
	ordered := quad.Quad{{X: 10, Y: 20}, {X: 110, Y: 20}, {X: 10, Y: 80}, {X: 110, Y: 80}}
	want, err := Compute(ordered, 64, 48)
	if err != nil {
		t.Fatalf("could not compute: %v", err)
	}
	got, err := ComputeFrom(quad.Quad{ordered[3], ordered[0], ordered[2], ordered[1]}, 64, 48)
	if err != nil {
		t.Fatalf("could not compute from unordered: %v", err)
	}
	for i := range want {
		if !near(got[i], want[i]) {
			t.Errorf("element %d. Got: %v, Want: %v", i, got[i], want[i])
		}
	}
}

func TestNearestWarperCrop(t *testing.T) {
	src := frame.NewGray8(8, 6)
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			src.Pix[src.Offset(x, y)] = uint8(x + 10*y)
		}
	}

	const w, h = 4, 3
	m, err := Compute(quad.Quad{{X: 2, Y: 1}, {X: 5, Y: 1}, {X: 2, Y: 3}, {X: 5, Y: 3}}, w, h)
	if err != nil {
		t.Fatalf("could not compute: %v", err)
	}
	dst, err := NearestWarper{}.Warp(src, m, w, h)
	if err != nil {
		t.Fatalf("could not warp: %v", err)
	}
	if dst.Width != w || dst.Height != h || dst.Format != frame.Gray8 {
		t.Fatalf("unexpected output %dx%d %v", dst.Width, dst.Height, dst.Format)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			want := uint8(2 + x + 10*(1+y))
			if got := dst.Pix[dst.Offset(x, y)]; got != want {
				t.Errorf("pixel (%d, %d). Got: %d, Want: %d", x, y, got, want)
			}
		}
	}
}

func TestNearestWarperGray16(t *testing.T) {
	src := frame.NewGray16(4, 4)
	src.SetGray16(3, 3, 0xbeef)
	dst, err := NearestWarper{}.Warp(src, Identity, 4, 4)
	if err != nil {
		t.Fatalf("could not warp: %v", err)
	}
	if got := dst.Gray16At(3, 3); got != 0xbeef {
		t.Errorf("unexpected sample. Got: %#x, Want: %#x", got, 0xbeef)
	}
}
