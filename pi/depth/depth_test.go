/*
DESCRIPTION
  depth_test.go tests depth decoding and normalisation.

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
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/projector/pi/frame"
)

func TestRangeRoundTrip(t *testing.T) {
	const eps = 1e-9
	tests := []struct {
		near, far float64
	}{
		{near: 0.2, far: 4},
		{near: 0.5, far: 10},
		{near: 1, far: 1.5},
	}

	for _, test := range tests {
		for i := 0; i <= 20; i++ {
			d := test.near + (test.far-test.near)*float64(i)/20
			p := EncodeRangeInverse(d, test.near, test.far)
			if p < -eps || p > 255+eps {
				t.Errorf("inverse sample out of range for d=%v: %v", d, p)
			}
			if got := DecodeRangeInverse(p, test.near, test.far); math.Abs(got-d) > eps {
				t.Errorf("inverse round trip. Got: %v, Want: %v", got, d)
			}
			if got := DecodeRangeLinear(EncodeRangeLinear(d, test.near, test.far), test.near, test.far); math.Abs(got-d) > eps {
				t.Errorf("linear round trip. Got: %v, Want: %v", got, d)
			}
		}
	}

	// End points of the inverse encoding.
	if got := DecodeRangeInverse(0, 0.5, 4); math.Abs(got-0.5) > eps {
		t.Errorf("sample 0 should decode to near. Got: %v", got)
	}
	if got := DecodeRangeInverse(255, 0.5, 4); math.Abs(got-4) > eps {
		t.Errorf("sample 255 should decode to far. Got: %v", got)
	}
}

func TestNormalizerWarmup(t *testing.T) {
	n := NewNormalizer((*logging.TestLogger)(t))
	raw := frame.NewGray8(3, 1)
	raw.Pix[0], raw.Pix[1], raw.Pix[2] = 0, 128, 255

	res, err := NewResults(16)
	if err != nil {
		t.Fatalf("could not create results: %v", err)
	}
	n.Record(res)

	for i := 0; i < DefaultWarmupFrames; i++ {
		if n.Calibrated() {
			t.Fatalf("calibrated early after %d frames", i)
		}
		// Widen the range part way through warm-up.
		r := &Range{Near: 1, Far: 3}
		if i == 4 {
			r = &Range{Near: 0.5, Far: 4}
		}
		out, err := n.Normalize(raw, r)
		if err != nil {
			t.Fatalf("could not normalize warm-up frame: %v", err)
		}
		if out.Pix[1] != 128 {
			t.Errorf("warm-up frame should pass through. Got: %d", out.Pix[1])
		}
	}
	if !n.Calibrated() {
		t.Fatal("expected calibration after warm-up")
	}
	if near, far := n.Bounds(); near != 0.5 || far != 4 {
		t.Errorf("unexpected bounds. Got: (%v, %v), Want: (0.5, 4)", near, far)
	}

	out, err := n.Normalize(raw, &Range{Near: 0.5, Far: 4})
	if err != nil {
		t.Fatalf("could not normalize: %v", err)
	}
	if out.Pix[0] != 0 || out.Pix[2] != 255 {
		t.Errorf("unexpected end points. Got: %d, %d, Want: 0, 255", out.Pix[0], out.Pix[2])
	}
	d := DecodeRangeInverse(128, 0.5, 4)
	want := uint8(math.Round((d - 0.5) * (255 / 3.5)))
	if out.Pix[1] != want {
		t.Errorf("unexpected mid sample. Got: %d, Want: %d", out.Pix[1], want)
	}
	if res.Len() != DefaultWarmupFrames+1 {
		t.Errorf("unexpected recorded frames. Got: %d, Want: %d", res.Len(), DefaultWarmupFrames+1)
	}

	n.Recalibrate()
	if n.Calibrated() {
		t.Error("expected warm-up after recalibrate")
	}
	if near, far := n.Bounds(); near != initNear || far != initFar {
		t.Errorf("unexpected bounds after recalibrate: (%v, %v)", near, far)
	}
}

func TestNormalizerFixed(t *testing.T) {
	n := NewNormalizer((*logging.TestLogger)(t))
	if err := n.AdjustNear(1); !errors.Is(err, ErrNotFixed) {
		t.Errorf("expected not fixed error, got: %v", err)
	}
	if err := n.SetFixed(2, 1); !errors.Is(err, ErrBadRange) {
		t.Errorf("expected bad range error, got: %v", err)
	}
	if err := n.SetFixed(1, 3); err != nil {
		t.Fatalf("could not set fixed range: %v", err)
	}
	if !n.Calibrated() {
		t.Fatal("fixed range should be calibrated")
	}

	// Samples nearer than near clamp to 0, farther than far to 255.
	raw := frame.NewGray8(2, 1)
	raw.Pix[0], raw.Pix[1] = 0, 255
	out, err := n.Normalize(raw, &Range{Near: 0.5, Far: 6, Linear: true})
	if err != nil {
		t.Fatalf("could not normalize: %v", err)
	}
	if out.Pix[0] != 0 || out.Pix[1] != 255 {
		t.Errorf("unexpected clamped samples. Got: %d, %d", out.Pix[0], out.Pix[1])
	}

	tests := []struct {
		near, far float64
		wantErr   error
		wantNear  float64
		wantFar   float64
	}{
		{far: 1, wantNear: 1, wantFar: 4},
		{near: 0.1, wantNear: 1.1, wantFar: 4},
		{near: -1.2, wantErr: ErrBadRange, wantNear: 1.1, wantFar: 4},
		{far: -3, wantErr: ErrBadRange, wantNear: 1.1, wantFar: 4},
	}
	for i, test := range tests {
		var err error
		if test.near != 0 {
			err = n.AdjustNear(test.near)
		} else {
			err = n.AdjustFar(test.far)
		}
		if !errors.Is(err, test.wantErr) {
			t.Errorf("unexpected error for test %d. Got: %v, Want: %v", i, err, test.wantErr)
		}
		near, far := n.Bounds()
		if math.Abs(near-test.wantNear) > 1e-9 || math.Abs(far-test.wantFar) > 1e-9 {
			t.Errorf("unexpected bounds for test %d. Got: (%v, %v), Want: (%v, %v)", i, near, far, test.wantNear, test.wantFar)
		}
	}

	n.Recalibrate()
	if !n.Calibrated() {
		t.Error("fixed range should stay calibrated after recalibrate")
	}
}

func TestNormalizerNoRange(t *testing.T) {
	n := NewNormalizer((*logging.TestLogger)(t))
	raw := frame.Fill(2, 2, frame.Gray8, 7)
	out, err := n.Normalize(raw, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Pix[0] != 7 || n.Calibrated() {
		t.Error("frame without range should pass through without warm-up")
	}
	if _, err := n.Normalize(frame.NewRGB8(2, 2), nil); err == nil {
		t.Error("expected error for rgb depth map")
	}
}

func TestNormalizerBadRange(t *testing.T) {
	n := NewNormalizer((*logging.TestLogger)(t))
	raw := frame.Fill(2, 2, frame.Gray8, 255)
	for _, r := range []Range{
		{Near: 0, Far: 4},
		{Near: 4, Far: 4},
		{Near: -1, Far: 4, Linear: true},
		{Near: math.NaN(), Far: 4},
	} {
		if _, err := n.Normalize(raw, &r); !errors.Is(err, ErrBadRange) {
			t.Errorf("range %+v: expected bad range error, got %v", r, err)
		}
	}
	if n.frames != 0 {
		t.Errorf("bad ranges should not count towards warm-up, got %d frames", n.frames)
	}
	if _, err := n.Normalize(raw, &Range{Near: 0, Far: 4, Linear: true}); err != nil {
		t.Errorf("unexpected error for linear range from zero: %v", err)
	}
}

func TestDepth16(t *testing.T) {
	f := frame.NewGray16(3, 1)
	f.SetGray16(0, 0, 0xe000|100) // Confidence bits set.
	f.SetGray16(1, 0, 200)
	f.SetGray16(2, 0, 0x2000|300)

	m, err := Mask16(f)
	if err != nil {
		t.Fatalf("could not mask: %v", err)
	}
	for i, want := range []uint16{100, 200, 300} {
		if got := m.Gray16At(i, 0); got != want {
			t.Errorf("unexpected masked sample %d. Got: %d, Want: %d", i, got, want)
		}
	}
	if lo, hi := MinMax16(m); lo != 100 || hi != 300 {
		t.Errorf("unexpected bounds. Got: (%v, %v), Want: (100, 300)", lo, hi)
	}

	out, err := Depth16{}.Normalize(f)
	if err != nil {
		t.Fatalf("could not normalize: %v", err)
	}
	if out.Pix[0] != 0 || out.Pix[1] != 128 || out.Pix[2] != 255 {
		t.Errorf("unexpected observed normalisation: %v", out.Pix)
	}

	out, err = Depth16{Fixed: true, Lo: 200, Hi: 250}.Normalize(f)
	if err != nil {
		t.Fatalf("could not normalize: %v", err)
	}
	if out.Pix[0] != 0 || out.Pix[1] != 0 || out.Pix[2] != 255 {
		t.Errorf("unexpected fixed normalisation: %v", out.Pix)
	}

	if flat := Normalize16(frame.NewGray16(2, 2), 5, 5); flat.Pix[0] != 0 {
		t.Error("empty range should give black frame")
	}
	if _, err := Mask16(frame.NewGray8(1, 1)); err == nil {
		t.Error("expected error masking gray8 frame")
	}
}

func TestPlotResults(t *testing.T) {
	r, err := NewResults(3)
	if err != nil {
		t.Fatalf("could not create results: %v", err)
	}
	if _, _, ok := r.Bounds(); ok {
		t.Error("empty results should have no bounds")
	}
	r.Append(0.5, 3)
	r.Append(0.4, 3.5)
	r.Append(0.6, 3.2)
	if near, far, _ := r.Bounds(); near != 0.4 || far != 3.5 {
		t.Errorf("unexpected bounds. Got: (%v, %v), Want: (0.4, 3.5)", near, far)
	}

	dir := t.TempDir()
	if err := PlotResults(r, dir); err != nil {
		t.Fatalf("could not plot results: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "depth-range.png")); err != nil {
		t.Errorf("expected plot file: %v", err)
	}
	if _, err := NewResults(0); err == nil {
		t.Error("expected error for zero size results")
	}
}
