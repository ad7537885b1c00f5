/*
DESCRIPTION
  container.go provides parsing of dynamic depth JPEG containers. A container
  is a primary JPEG followed by trailing media items described by the XMP
  Container:Directory of the primary image. Item byte ranges are found by
  walking the directory backwards from the end of the buffer.

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

// Package dyndepth provides a parser for dynamic depth JPEG containers, giving
// access to the embedded depth map and its range calibration.
package dyndepth

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DepthMapURI is the DataURI tagging the depth map item of a container.
const DepthMapURI = "android/depthmap"

// SemanticDepth is the item semantic used by containers that tag the depth
// map by semantic rather than DataURI.
const SemanticDepth = "Depth"

// MimeJPEG is the mime type of items that must carry JPEG markers.
const MimeJPEG = "image/jpeg"

// Range encodings declared by container depth metadata.
const (
	RangeInverse = "RangeInverse"
	RangeLinear  = "RangeLinear"
)

// Errors returned by Parse and DepthMap.
var (
	ErrContainerCorrupt   = errors.New("dynamic depth container corrupt")
	ErrDepthImageNotFound = errors.New("depth image not found in container")
)

// directoryItem matches directory item properties, with or without the
// intermediate Container:Item struct.
var directoryItem = regexp.MustCompile(`^Container:Directory\[(\d+)\]/(?:[^/]+/)*Item:(\w+)$`)

// Trailer describes one media item of a container. Start and End are
// absolute offsets into the container, End exclusive.
type Trailer struct {
	DataURI  string
	Mime     string
	Semantic string
	Size     int
	Padding  int
	Start    int
	End      int
}

// Container is a parsed dynamic depth container. It references the buffer
// given to Parse and does not copy it.
type Container struct {
	Trailers []Trailer

	// Depth map range calibration, in Units. Near and Far are only
	// meaningful if HasRange returns true.
	Near, Far float64
	Units     string
	Format    string

	hasNear, hasFar bool
	data            []byte
}

// DepthMap parses data and returns the bytes of its depth map item.
func DepthMap(data []byte) ([]byte, error) {
	c, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return c.DepthMap()
}

// Parse parses the container metadata of data and locates its items.
// A buffer without directory metadata parses to a container with no
// trailers.
func Parse(data []byte) (*Container, error) {
	packets, err := xmpPackets(data)
	if err != nil {
		return nil, err
	}

	c := &Container{data: data}
	items := make(map[int]*Trailer)
	last := 0
	for _, p := range packets {
		props, err := flatten(p)
		if err != nil {
			return nil, err
		}
		for _, prop := range props {
			if m := directoryItem.FindStringSubmatch(prop.path); m != nil {
				idx, _ := strconv.Atoi(m[1])
				if idx < 1 {
					return nil, fmt.Errorf("%w: bad directory index %s", ErrContainerCorrupt, m[1])
				}
				t, ok := items[idx]
				if !ok {
					t = &Trailer{}
					items[idx] = t
				}
				if idx > last {
					last = idx
				}
				if err := t.set(m[2], prop.value); err != nil {
					return nil, err
				}
				continue
			}
			if err := c.setDepthProperty(prop); err != nil {
				return nil, err
			}
		}
	}

	for i := 1; i <= last; i++ {
		t, ok := items[i]
		if !ok {
			return nil, fmt.Errorf("%w: missing directory item %d", ErrContainerCorrupt, i)
		}
		c.Trailers = append(c.Trailers, *t)
	}
	if err := c.locate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (t *Trailer) set(key, value string) error {
	switch key {
	case "DataURI":
		t.DataURI = value
	case "Mime":
		t.Mime = value
	case "Semantic":
		t.Semantic = value
	case "Length", "Padding":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: bad item %s %q", ErrContainerCorrupt, key, value)
		}
		if key == "Length" {
			t.Size = n
		} else {
			t.Padding = n
		}
	}
	return nil
}

// setDepthProperty records depth map range metadata from the GDepth or
// Dynamic Depth Depthmap namespaces.
func (c *Container) setDepthProperty(p property) error {
	leaf := p.path
	if i := strings.LastIndexByte(leaf, '/'); i >= 0 {
		leaf = leaf[i+1:]
	}
	prefix, name, ok := strings.Cut(leaf, ":")
	if !ok || !(prefix == "GDepth" || strings.EqualFold(prefix, "Depthmap")) {
		return nil
	}

	switch name {
	case "Near", "Far":
		v, err := strconv.ParseFloat(p.value, 64)
		if err != nil {
			return fmt.Errorf("%w: bad depth %s %q", ErrContainerCorrupt, name, p.value)
		}
		if name == "Near" {
			c.Near, c.hasNear = v, true
		} else {
			c.Far, c.hasFar = v, true
		}
	case "Units":
		c.Units = p.value
	case "Format":
		c.Format = p.value
	}
	return nil
}

// locate computes item offsets by walking the directory backwards from the
// end of the buffer, then checks JPEG markers.
func (c *Container) locate() error {
	end := len(c.data)
	for i := len(c.Trailers) - 1; i >= 0; i-- {
		t := &c.Trailers[i]
		if i == 0 && t.Size == 0 {
			// The primary image need not declare its length.
			t.Start, t.End = 0, end
			break
		}
		t.End = end
		t.Start = end - t.Size
		if t.Start < 0 {
			return fmt.Errorf("%w: item %d (%d bytes) overruns buffer", ErrContainerCorrupt, i+1, t.Size)
		}
		end = t.Start - t.Padding
		if end < 0 && i > 0 {
			return fmt.Errorf("%w: item %d padding overruns buffer", ErrContainerCorrupt, i+1)
		}
	}

	for i, t := range c.Trailers {
		if t.Mime != MimeJPEG {
			continue
		}
		if t.End-t.Start < 4 {
			return fmt.Errorf("%w: item %d too short for jpeg", ErrContainerCorrupt, i+1)
		}
		if c.data[t.Start] != markerPrefix || c.data[t.Start+1] != markerSOI {
			return fmt.Errorf("%w: item %d has no start of image marker at %d", ErrContainerCorrupt, i+1, t.Start)
		}
		if c.data[t.End-2] != markerPrefix || c.data[t.End-1] != markerEOI {
			return fmt.Errorf("%w: item %d has no end of image marker at %d", ErrContainerCorrupt, i+1, t.End-2)
		}
	}
	return nil
}

// HasRange reports whether the container declared both near and far depth.
func (c *Container) HasRange() bool { return c.hasNear && c.hasFar }

// DepthMap returns the bytes of the depth map item. The returned slice
// shares memory with the parsed buffer.
func (c *Container) DepthMap() ([]byte, error) {
	for _, t := range c.Trailers {
		if t.DataURI == DepthMapURI {
			return c.data[t.Start:t.End], nil
		}
	}
	for _, t := range c.Trailers {
		if t.Semantic == SemanticDepth {
			return c.data[t.Start:t.End], nil
		}
	}
	return nil, ErrDepthImageNotFound
}

// Primary returns the bytes of the primary image. A container without
// directory metadata is treated as a plain JPEG.
func (c *Container) Primary() ([]byte, error) {
	if len(c.Trailers) == 0 {
		return c.data, nil
	}
	t := c.Trailers[0]
	return c.data[t.Start:t.End], nil
}
