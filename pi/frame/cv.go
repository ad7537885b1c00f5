//go:build withcv
// +build withcv

/*
DESCRIPTION
  cv.go provides conversions between frames and gocv matrices, and a Decoder
  backed by OpenCV.

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

package frame

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"
)

// ToMat copies f into a new gocv.Mat. RGB8 frames keep their channel order.
// The caller must Close the returned Mat.
func ToMat(f Frame) (gocv.Mat, error) {
	var mt gocv.MatType
	switch f.Format {
	case Gray8:
		mt = gocv.MatTypeCV8UC1
	case RGB8:
		mt = gocv.MatTypeCV8UC3
	case Gray16:
		mt = gocv.MatTypeCV16UC1
	default:
		return gocv.NewMat(), fmt.Errorf("unsupported pixel layout: %v", f.Format)
	}
	return gocv.NewMatFromBytes(f.Height, f.Width, mt, f.Pix)
}

// FromMat copies m into a new frame.
func FromMat(m gocv.Mat) (Frame, error) {
	if m.Empty() {
		return Frame{}, errors.New("mat is empty")
	}
	var p Pixel
	switch m.Type() {
	case gocv.MatTypeCV8UC1:
		p = Gray8
	case gocv.MatTypeCV8UC3:
		p = RGB8
	case gocv.MatTypeCV16UC1:
		p = Gray16
	default:
		return Frame{}, fmt.Errorf("unsupported mat type: %v", m.Type())
	}
	pix := make([]byte, len(m.ToBytes()))
	copy(pix, m.ToBytes())
	return FromBytes(m.Cols(), m.Rows(), p, pix)
}

// CVDecoder is a Decoder using gocv.IMDecode.
type CVDecoder struct{}

// DecodeRGB implements Decoder.
func (CVDecoder) DecodeRGB(b []byte) (Frame, error) {
	m, err := gocv.IMDecode(b, gocv.IMReadColor)
	if err != nil {
		return Frame{}, fmt.Errorf("could not decode jpeg: %w", err)
	}
	defer m.Close()
	if m.Empty() {
		return Frame{}, errors.New("could not decode jpeg: empty image")
	}

	// IMDecode gives BGR.
	rgb := gocv.NewMat()
	defer rgb.Close()
	gocv.CvtColor(m, &rgb, gocv.ColorBGRToRGB)
	return FromMat(rgb)
}

// DecodeGray implements Decoder.
func (CVDecoder) DecodeGray(b []byte) (Frame, error) {
	m, err := gocv.IMDecode(b, gocv.IMReadColor)
	if err != nil {
		return Frame{}, fmt.Errorf("could not decode jpeg: %w", err)
	}
	defer m.Close()
	if m.Empty() {
		return Frame{}, errors.New("could not decode jpeg: empty image")
	}

	channels := gocv.Split(m)
	for i := range channels {
		defer channels[i].Close()
	}

	// Channel 2 of a BGR decode is the red channel, the first channel of
	// the stored image.
	return FromMat(channels[2])
}
