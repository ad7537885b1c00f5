/*
DESCRIPTION
  jpeg.go provides the Decoder interface used to turn JPEG bytes into frames
  and a decoder built on the standard library.

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
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
)

// Decoder decodes JPEG bytes into frames. DecodeRGB returns an RGB8 frame.
// DecodeGray returns the first channel of the image as a Gray8 frame, which
// is how depth maps are stored in dynamic depth containers.
type Decoder interface {
	DecodeRGB(b []byte) (Frame, error)
	DecodeGray(b []byte) (Frame, error)
}

// StdDecoder is a Decoder using image/jpeg. Only the first image in b is
// decoded, so a dynamic depth container decodes to its primary image.
type StdDecoder struct{}

// DecodeRGB implements Decoder.
func (StdDecoder) DecodeRGB(b []byte) (Frame, error) {
	img, err := jpeg.Decode(bytes.NewReader(b))
	if err != nil {
		return Frame{}, fmt.Errorf("could not decode jpeg: %w", err)
	}
	return FromImage(img, RGB8), nil
}

// DecodeGray implements Decoder.
func (StdDecoder) DecodeGray(b []byte) (Frame, error) {
	img, err := jpeg.Decode(bytes.NewReader(b))
	if err != nil {
		return Frame{}, fmt.Errorf("could not decode jpeg: %w", err)
	}
	if g, ok := img.(*image.Gray); ok {
		return FromImage(g, Gray8), nil
	}

	// Take the red channel, matching OpenCV's first channel extraction on an
	// RGB decode.
	rgb := FromImage(img, RGB8)
	f := NewGray8(rgb.Width, rgb.Height)
	for i := range f.Pix {
		f.Pix[i] = rgb.Pix[i*3]
	}
	return f, nil
}
