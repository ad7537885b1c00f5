/*
DESCRIPTION
  quad_test.go tests quad corner ordering and geometry helpers.

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
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// permutations returns every ordering of q's corners.
func permutations(q Quad) []Quad {
	var out []Quad
	var perm func(k int, q Quad)
	perm = func(k int, q Quad) {
		if k == len(q) {
			out = append(out, q)
			return
		}
		for i := k; i < len(q); i++ {
			q[k], q[i] = q[i], q[k]
			perm(k+1, q)
			q[k], q[i] = q[i], q[k]
		}
	}
	perm(0, q)
	return out
}

func TestOrderPermutations(t *testing.T) {
	tests := []struct {
		name string
		want Quad
	}{
		{
			name: "rectangle",
			want: Quad{{10, 20}, {110, 20}, {10, 80}, {110, 80}},
		},
		{
			name: "keystone",
			want: Quad{{30, 12}, {170, 8}, {12, 140}, {190, 151}},
		},
		{
			name: "slight rotation",
			want: Quad{{20, 30}, {120, 40}, {10, 130}, {110, 140}},
		},
	}

	for _, test := range tests {
		perms := permutations(test.want)
		if len(perms) != 24 {
			t.Fatalf("expected 24 permutations, got %d", len(perms))
		}
		for _, p := range perms {
			got, err := Order(p)
			if err != nil {
				t.Errorf("%s: could not order %v: %v", test.name, p, err)
				continue
			}
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("%s: unexpected order for %v (-want +got):\n%s", test.name, p, diff)
			}
		}
	}
}

func TestOrderAmbiguous(t *testing.T) {
	tests := []struct {
		name string
		q    Quad
	}{
		{name: "diamond", q: Quad{{50, 0}, {100, 50}, {50, 100}, {0, 50}}},
		{name: "collinear", q: Quad{{0, 0}, {10, 10}, {20, 20}, {30, 30}}},
		{name: "repeated point", q: Quad{{0, 0}, {0, 0}, {10, 0}, {0, 10}}},
		{name: "thin rotated", q: Quad{{181.6, 158.7}, {191.6, 141.3}, {8.4, 58.7}, {18.4, 41.3}}},
	}

	for _, test := range tests {
		_, err := Order(test.q)
		if !errors.Is(err, ErrAmbiguousOrder) {
			t.Errorf("%s: expected ambiguous order error, got: %v", test.name, err)
		}
	}
}

func TestCentroid(t *testing.T) {
	c, ok := Centroid(Quad{{0, 0}, {10, 10}, {10, 0}, {0, 10}})
	if !ok {
		t.Fatal("expected centroid")
	}
	if math.Abs(c.X-5) > 1e-9 || math.Abs(c.Y-5) > 1e-9 {
		t.Errorf("unexpected centroid. Got: %v, Want: {5 5}", c)
	}
}

func TestAreaAndScale(t *testing.T) {
	q := Quad{{0, 0}, {4, 0}, {4, 3}, {0, 3}}
	if got := Area(q); got != 12 {
		t.Errorf("unexpected area. Got: %v, Want: 12", got)
	}
	if got := Area(Scale(q, 2, 0.5)); got != 12 {
		t.Errorf("unexpected scaled area. Got: %v, Want: 12", got)
	}
}

func TestScaleUp(t *testing.T) {
	tests := []struct {
		f    int
		want Point
	}{
		{f: 1, want: Point{10, 20}},
		{f: 2, want: Point{21, 41}},
		{f: 3, want: Point{31, 61}},
		{f: 4, want: Point{42, 82}},
	}
	for _, test := range tests {
		got := ScaleUp(Quad{{10, 20}}, test.f)[0]
		if got != test.want {
			t.Errorf("unexpected point for factor %d. Got: %v, Want: %v", test.f, got, test.want)
		}
	}
}
