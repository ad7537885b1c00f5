/*
DESCRIPTION
  segment.go provides JPEG marker walking to collect the XMP packets stored
  in APP1 segments of a dynamic depth container.

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

package dyndepth

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"
)

// JPEG markers.
const (
	markerPrefix = 0xff
	markerSOI    = 0xd8 // Start of image.
	markerEOI    = 0xd9 // End of image.
	markerSOS    = 0xda // Start of scan.
	markerAPP1   = 0xe1 // EXIF and XMP.
	markerTEM    = 0x01
	markerRST0   = 0xd0
	markerRST7   = 0xd7
)

// APP1 namespace headers.
var (
	xmpHeader    = []byte("http://ns.adobe.com/xap/1.0/\x00")
	extXMPHeader = []byte("http://ns.adobe.com/xmp/extension/\x00")
)

// Extended XMP chunk layout following the namespace header.
const (
	extGUIDLen   = 32
	extHeaderLen = extGUIDLen + 4 + 4 // GUID, full length, chunk offset.

	// maxExtended bounds the distinct extended XMP packets of one image.
	maxExtended = 4
)

// xmpPackets walks the marker segments of the JPEG in data up to the start of
// scan and returns the standard XMP packet followed by any reassembled
// extended XMP packets.
func xmpPackets(data []byte) ([][]byte, error) {
	if len(data) < 4 || data[0] != markerPrefix || data[1] != markerSOI {
		return nil, fmt.Errorf("%w: no start of image marker", ErrContainerCorrupt)
	}

	var (
		packets [][]byte
		ext     = make(map[string][]byte)
		extLen  = make(map[string]int)
	)

	for i := 2; ; {
		if i+2 > len(data) {
			return nil, fmt.Errorf("%w: truncated marker at %d", ErrContainerCorrupt, i)
		}
		if data[i] != markerPrefix {
			return nil, fmt.Errorf("%w: expected marker at %d, got %#x", ErrContainerCorrupt, i, data[i])
		}
		m := data[i+1]
		switch {
		case m == markerPrefix: // Fill byte.
			i++
			continue
		case m == markerSOS || m == markerEOI:
			return append(packets, assemble(ext)...), nil
		case m == markerTEM || (m >= markerRST0 && m <= markerRST7):
			i += 2
			continue
		}

		if i+4 > len(data) {
			return nil, fmt.Errorf("%w: truncated segment length at %d", ErrContainerCorrupt, i)
		}
		l := int(binary.BigEndian.Uint16(data[i+2:]))
		if l < 2 || i+2+l > len(data) {
			return nil, fmt.Errorf("%w: bad segment length %d at %d", ErrContainerCorrupt, l, i)
		}
		payload := data[i+4 : i+2+l]
		i += 2 + l

		if m != markerAPP1 {
			continue
		}
		switch {
		case bytes.HasPrefix(payload, xmpHeader):
			packets = append(packets, payload[len(xmpHeader):])
		case bytes.HasPrefix(payload, extXMPHeader):
			chunk := payload[len(extXMPHeader):]
			if len(chunk) < extHeaderLen {
				return nil, fmt.Errorf("%w: short extended xmp chunk", ErrContainerCorrupt)
			}
			guid := string(chunk[:extGUIDLen])
			full := int(binary.BigEndian.Uint32(chunk[extGUIDLen:]))
			off := int(binary.BigEndian.Uint32(chunk[extGUIDLen+4:]))
			body := chunk[extHeaderLen:]
			if _, ok := ext[guid]; !ok {
				// A packet cannot be larger than the buffer holding it.
				if full > len(data) {
					return nil, fmt.Errorf("%w: extended xmp length %d exceeds container", ErrContainerCorrupt, full)
				}
				if len(ext) == maxExtended {
					return nil, fmt.Errorf("%w: more than %d extended xmp packets", ErrContainerCorrupt, maxExtended)
				}
				ext[guid] = make([]byte, full)
				extLen[guid] = full
			}
			if full != extLen[guid] || off+len(body) > full {
				return nil, fmt.Errorf("%w: inconsistent extended xmp chunk", ErrContainerCorrupt)
			}
			copy(ext[guid][off:], body)
		}
	}
}

// assemble returns the extended packets ordered by GUID so output is stable.
func assemble(ext map[string][]byte) [][]byte {
	guids := make([]string, 0, len(ext))
	for g := range ext {
		guids = append(guids, g)
	}
	sort.Strings(guids)
	out := make([][]byte, 0, len(guids))
	for _, g := range guids {
		out = append(out, ext[g])
	}
	return out
}
