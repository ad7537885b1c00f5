/*
DESCRIPTION
  source.go provides a frame source reading captured frames from a
  directory.

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

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ausocean/projector/pi/frame"
)

// frameSource supplies input frames, preferring the given format where a
// frame was captured in more than one. It returns io.EOF when exhausted.
type frameSource interface {
	Next(want frame.InputFormat) (frame.Input, error)
}

// Input file extensions.
var formats = map[string]frame.InputFormat{
	".jpg":  frame.DepthJPEG,
	".jpeg": frame.DepthJPEG,
	".d16":  frame.Depth16,
}

// capture is one frame, possibly held in several formats.
type capture struct {
	name  string
	paths map[frame.InputFormat]string
}

// dirSource is a frameSource over the files of a directory in name order.
// Files sharing a base name are the same frame in different formats.
// Depth16 files hold raw little-endian samples of d16w by d16h frames.
type dirSource struct {
	captures   []capture
	next       int
	d16w, d16h int
}

func newDirSource(dir string, d16w, d16h int) (*dirSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("could not read frame directory: %w", err)
	}

	s := &dirSource{d16w: d16w, d16h: d16h}
	index := make(map[string]int)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		f, ok := formats[ext]
		if !ok {
			continue
		}
		base := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		i, ok := index[base]
		if !ok {
			i = len(s.captures)
			index[base] = i
			s.captures = append(s.captures, capture{name: base, paths: make(map[frame.InputFormat]string)})
		}
		s.captures[i].paths[f] = filepath.Join(dir, e.Name())
	}
	if len(s.captures) == 0 {
		return nil, fmt.Errorf("no frames in %s", dir)
	}
	return s, nil
}

// Next implements frameSource.
func (s *dirSource) Next(want frame.InputFormat) (frame.Input, error) {
	if s.next >= len(s.captures) {
		return frame.Input{}, io.EOF
	}
	c := s.captures[s.next]
	s.next++

	f := want
	path, ok := c.paths[want]
	if !ok {
		for _, f = range []frame.InputFormat{frame.DepthJPEG, frame.Depth16} {
			if path, ok = c.paths[f]; ok {
				break
			}
		}
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return frame.Input{}, fmt.Errorf("could not read frame %s: %w", c.name, err)
	}
	in := frame.Input{Format: f, Data: b}
	if f == frame.Depth16 {
		in.Width, in.Height = s.d16w, s.d16h
	}
	return in, nil
}
