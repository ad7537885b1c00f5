/*
DESCRIPTION
  frame.go provides the Frame type, an owned 2-D pixel buffer passed between
  the stages of the projection pipeline, and the closed set of input formats
  a frame source can deliver.

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

// Package frame provides the pixel buffer type shared by the projection
// pipeline, conversions to and from image.Image, and JPEG decoders.
package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
)

// Pixel describes the sample layout of a Frame.
type Pixel int

// Pixel layouts.
const (
	Gray8  Pixel = iota // One 8-bit channel.
	RGB8                // Three interleaved 8-bit channels, R first.
	Gray16              // One 16-bit little-endian channel.
)

// String implements fmt.Stringer.
func (p Pixel) String() string {
	switch p {
	case Gray8:
		return "gray8"
	case RGB8:
		return "rgb8"
	case Gray16:
		return "gray16"
	default:
		return fmt.Sprintf("Pixel(%d)", int(p))
	}
}

// BytesPerPixel returns the number of bytes used by one pixel of layout p.
func (p Pixel) BytesPerPixel() int {
	switch p {
	case RGB8:
		return 3
	case Gray16:
		return 2
	default:
		return 1
	}
}

// ErrBadSize is returned when a buffer does not match its declared dimensions.
var ErrBadSize = errors.New("pixel buffer does not match dimensions")

// Frame is a 2-D pixel buffer. A Frame is owned by the step that produced it
// and must not be modified once handed downstream.
type Frame struct {
	Width, Height int
	Format        Pixel
	Pix           []byte
}

// New returns a zeroed frame of the given size and layout.
func New(w, h int, p Pixel) Frame {
	return Frame{Width: w, Height: h, Format: p, Pix: make([]byte, w*h*p.BytesPerPixel())}
}

// NewGray8 returns a zeroed single channel 8-bit frame.
func NewGray8(w, h int) Frame { return New(w, h, Gray8) }

// NewRGB8 returns a zeroed 3 channel 8-bit frame.
func NewRGB8(w, h int) Frame { return New(w, h, RGB8) }

// NewGray16 returns a zeroed single channel 16-bit frame.
func NewGray16(w, h int) Frame { return New(w, h, Gray16) }

// FromBytes wraps pix as a frame after checking its length.
func FromBytes(w, h int, p Pixel, pix []byte) (Frame, error) {
	if w <= 0 || h <= 0 || len(pix) != w*h*p.BytesPerPixel() {
		return Frame{}, fmt.Errorf("%w: %dx%d %v with %d bytes", ErrBadSize, w, h, p, len(pix))
	}
	return Frame{Width: w, Height: h, Format: p, Pix: pix}, nil
}

// Fill returns a frame with every channel of every pixel set to v.
func Fill(w, h int, p Pixel, v uint8) Frame {
	f := New(w, h, p)
	for i := range f.Pix {
		f.Pix[i] = v
	}
	return f
}

// Empty reports whether the frame holds no pixels.
func (f Frame) Empty() bool { return f.Width == 0 || f.Height == 0 || len(f.Pix) == 0 }

// Size returns the frame dimensions as an image.Point.
func (f Frame) Size() image.Point { return image.Pt(f.Width, f.Height) }

// Stride returns the number of bytes in one row.
func (f Frame) Stride() int { return f.Width * f.Format.BytesPerPixel() }

// Offset returns the index into Pix of the first byte of pixel (x, y).
func (f Frame) Offset(x, y int) int { return y*f.Stride() + x*f.Format.BytesPerPixel() }

// Gray16At returns the 16-bit sample at (x, y) of a Gray16 frame.
func (f Frame) Gray16At(x, y int) uint16 {
	return binary.LittleEndian.Uint16(f.Pix[f.Offset(x, y):])
}

// SetGray16 sets the 16-bit sample at (x, y) of a Gray16 frame.
func (f Frame) SetGray16(x, y int, v uint16) {
	binary.LittleEndian.PutUint16(f.Pix[f.Offset(x, y):], v)
}

// Clone returns a deep copy of f.
func (f Frame) Clone() Frame {
	pix := make([]byte, len(f.Pix))
	copy(pix, f.Pix)
	f.Pix = pix
	return f
}

// ToImage converts f to an image.Image. Gray16 frames become *image.Gray16,
// Gray8 frames *image.Gray and RGB8 frames *image.RGBA.
func (f Frame) ToImage() image.Image {
	r := image.Rect(0, 0, f.Width, f.Height)
	switch f.Format {
	case Gray8:
		img := image.NewGray(r)
		copy(img.Pix, f.Pix)
		return img
	case Gray16:
		img := image.NewGray16(r)
		for y := 0; y < f.Height; y++ {
			for x := 0; x < f.Width; x++ {
				img.SetGray16(x, y, color.Gray16{Y: f.Gray16At(x, y)})
			}
		}
		return img
	default:
		img := image.NewRGBA(r)
		for i, j := 0, 0; i < len(f.Pix); i, j = i+3, j+4 {
			img.Pix[j] = f.Pix[i]
			img.Pix[j+1] = f.Pix[i+1]
			img.Pix[j+2] = f.Pix[i+2]
			img.Pix[j+3] = 0xff
		}
		return img
	}
}

// FromImage converts img to a frame of layout p. Gray16 is only produced
// from 16-bit sources; any other source converts through the colour model.
func FromImage(img image.Image, p Pixel) Frame {
	b := img.Bounds()
	f := New(b.Dx(), b.Dy(), p)
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			c := img.At(b.Min.X+x, b.Min.Y+y)
			switch p {
			case Gray8:
				f.Pix[f.Offset(x, y)] = color.GrayModel.Convert(c).(color.Gray).Y
			case Gray16:
				f.SetGray16(x, y, color.Gray16Model.Convert(c).(color.Gray16).Y)
			default:
				r, g, bl, _ := c.RGBA()
				o := f.Offset(x, y)
				f.Pix[o], f.Pix[o+1], f.Pix[o+2] = uint8(r>>8), uint8(g>>8), uint8(bl>>8)
			}
		}
	}
	return f
}

// InputFormat identifies the encoding of a frame delivered by the frame source.
type InputFormat int

// Input formats.
const (
	RGBJPEG   InputFormat = iota // Plain JPEG.
	DepthJPEG                    // Dynamic depth JPEG container.
	Depth16                      // Raw 16-bit range samples with confidence bits.
)

// String implements fmt.Stringer.
func (f InputFormat) String() string {
	switch f {
	case RGBJPEG:
		return "rgb-jpeg"
	case DepthJPEG:
		return "depth-jpeg"
	case Depth16:
		return "depth16"
	default:
		return fmt.Sprintf("InputFormat(%d)", int(f))
	}
}

// Input is a single encoded frame from the frame source. Width and Height are
// only used for Depth16 input, which carries no header.
type Input struct {
	Format        InputFormat
	Data          []byte
	Width, Height int
}

// Depth16Frame interprets a Depth16 input as a Gray16 frame.
func (in Input) Depth16Frame() (Frame, error) {
	if in.Format != Depth16 {
		return Frame{}, fmt.Errorf("input is %v, not %v", in.Format, Depth16)
	}
	return FromBytes(in.Width, in.Height, Gray16, in.Data)
}
