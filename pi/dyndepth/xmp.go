/*
DESCRIPTION
  xmp.go provides flattening of an XMP RDF/XML packet into property paths
  such as Container:Directory[2]/Container:Item/Item:Length.

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
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

const (
	nsRDF   = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	nsXML   = "http://www.w3.org/XML/1998/namespace"
	nsXMLNS = "xmlns"
)

// knownPrefixes are used when a packet uses a namespace without declaring a
// prefix for it in the scope we track.
var knownPrefixes = map[string]string{
	"http://ns.google.com/photos/dd/1.0/container/": "Container",
	"http://ns.google.com/photos/dd/1.0/item/":      "Item",
	"http://ns.google.com/photos/dd/1.0/depthmap/":  "Depthmap",
	"http://ns.google.com/photos/1.0/depthmap/":     "GDepth",
	"http://ns.google.com/photos/1.0/container/":    "GContainer",
	"http://ns.adobe.com/xmp/note/":                 "xmpNote",
}

// property is one flattened XMP leaf value.
type property struct {
	path  string
	value string
}

type node struct {
	name     xml.Name
	attrs    []xml.Attr
	children []*node
	text     strings.Builder
}

// flatten parses an XMP packet and returns its leaf properties in document
// order. Paths use namespace prefixes, "/" between struct fields and
// 1-based "[n]" for array items.
func flatten(packet []byte) ([]property, error) {
	root, prefixes, err := parseTree(packet)
	if err != nil {
		return nil, err
	}
	f := flattener{prefixes: prefixes}
	f.descriptions(root)
	return f.props, nil
}

func parseTree(packet []byte) (*node, map[string]string, error) {
	d := xml.NewDecoder(bytes.NewReader(packet))

	prefixes := make(map[string]string)
	root := &node{}
	stack := []*node{root}
	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%w: could not parse xmp: %v", ErrContainerCorrupt, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{name: t.Name}
			for _, a := range t.Attr {
				if a.Name.Space == nsXMLNS {
					if _, ok := prefixes[a.Value]; !ok {
						prefixes[a.Value] = a.Name.Local
					}
					continue
				}
				if a.Name.Space == "" && a.Name.Local == nsXMLNS {
					continue
				}
				n.attrs = append(n.attrs, a)
			}
			top := stack[len(stack)-1]
			top.children = append(top.children, n)
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) == 1 {
				return nil, nil, fmt.Errorf("%w: unbalanced xmp element %s", ErrContainerCorrupt, t.Name.Local)
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			stack[len(stack)-1].text.Write(t)
		}
	}
	if len(stack) != 1 {
		return nil, nil, fmt.Errorf("%w: unterminated xmp packet", ErrContainerCorrupt)
	}
	return root, prefixes, nil
}

type flattener struct {
	prefixes map[string]string
	props    []property
}

// descriptions finds top level rdf:Description elements anywhere below n.
func (f *flattener) descriptions(n *node) {
	for _, c := range n.children {
		if isRDF(c.name, "Description") {
			f.structure("", c)
			continue
		}
		f.descriptions(c)
	}
}

// structure emits the fields of a struct valued node, given as attributes or
// child elements.
func (f *flattener) structure(base string, n *node) {
	for _, a := range n.attrs {
		if a.Name.Space == nsRDF || a.Name.Space == nsXML {
			continue
		}
		f.emit(join(base, f.qname(a.Name)), a.Value)
	}
	for _, c := range n.children {
		if isRDF(c.name, "Description") {
			f.structure(base, c)
			continue
		}
		f.value(join(base, f.qname(c.name)), c)
	}
}

// value emits the property rooted at element n under path.
func (f *flattener) value(path string, n *node) {
	for _, c := range n.children {
		if isRDF(c.name, "Seq") || isRDF(c.name, "Bag") || isRDF(c.name, "Alt") {
			i := 0
			for _, li := range c.children {
				if !isRDF(li.name, "li") {
					continue
				}
				i++
				f.value(fmt.Sprintf("%s[%d]", path, i), li)
			}
			return
		}
	}
	if f.isStruct(n) {
		f.structure(path, n)
		return
	}
	f.emit(path, strings.TrimSpace(n.text.String()))
}

func (f *flattener) isStruct(n *node) bool {
	if len(n.children) != 0 {
		return true
	}
	for _, a := range n.attrs {
		if a.Name.Space == nsRDF && a.Name.Local == "parseType" && a.Value == "Resource" {
			return true
		}
		if a.Name.Space != nsRDF && a.Name.Space != nsXML {
			return true
		}
	}
	return false
}

func (f *flattener) emit(path, value string) {
	f.props = append(f.props, property{path: path, value: value})
}

// qname returns prefix:local for name.
func (f *flattener) qname(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	if p, ok := f.prefixes[name.Space]; ok {
		return p + ":" + name.Local
	}
	if p, ok := knownPrefixes[name.Space]; ok {
		return p + ":" + name.Local
	}
	// Undeclared prefixes are left unresolved by the decoder.
	return name.Space + ":" + name.Local
}

func isRDF(name xml.Name, local string) bool {
	return name.Space == nsRDF && name.Local == local
}

func join(base, name string) string {
	if base == "" {
		return name
	}
	return base + "/" + name
}
