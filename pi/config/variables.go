/*
DESCRIPTION
  variables.go provides the operator variables that tune a running
  projection-mapper, and their mapping onto processor controls.

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

package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ausocean/projector/pi/projection"
)

// ErrUnknownVariable is returned by Update for a name not in Variables.
var ErrUnknownVariable = errors.New("unknown variable")

// Controller is the set of operator controls a variable may act on.
type Controller interface {
	Recalibrate()
	SetAutoCalibrate(enable bool)
	SetVisualCalibration(enable bool)
	SetColorOutput(enable bool)
	Adjust(c projection.Control) error
	Next()
	Prev()
}

// Information for variables settable by the operator.
var variables = []struct {
	name   string
	typ    string
	update func(c Controller, value string) error
}{
	{
		name: "recalibrate",
		update: func(c Controller, v string) error {
			c.Recalibrate()
			return nil
		},
	},
	{
		name: "auto",
		typ:  "bool",
		update: func(c Controller, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("could not convert auto variable value to bool: %w", err)
			}
			c.SetAutoCalibrate(b)
			return nil
		},
	},
	{
		name: "visual",
		typ:  "bool",
		update: func(c Controller, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("could not convert visual variable value to bool: %w", err)
			}
			c.SetVisualCalibration(b)
			return nil
		},
	},
	{
		name: "color",
		typ:  "bool",
		update: func(c Controller, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("could not convert color variable value to bool: %w", err)
			}
			c.SetColorOutput(b)
			return nil
		},
	},
	{
		name: "near",
		typ:  "float",
		update: func(c Controller, v string) error {
			return adjust(c, projection.Near, v)
		},
	},
	{
		name: "far",
		typ:  "float",
		update: func(c Controller, v string) error {
			return adjust(c, projection.Far, v)
		},
	},
	{
		name: "next",
		update: func(c Controller, v string) error {
			c.Next()
			return nil
		},
	},
	{
		name: "prev",
		update: func(c Controller, v string) error {
			c.Prev()
			return nil
		},
	},
}

func adjust(c Controller, b projection.Bound, v string) error {
	d, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("could not convert depth adjustment to float: %w", err)
	}
	return c.Adjust(projection.Control{Bound: b, Delta: d})
}

// Variables returns a map of variable name to value type. Variables with an
// empty type take no value.
func Variables() map[string]string {
	m := make(map[string]string, len(variables))
	for _, v := range variables {
		m[v.name] = v.typ
	}
	return m
}

// Update sets the variable name to value on c.
func Update(c Controller, name, value string) error {
	for _, v := range variables {
		if v.name == name {
			return v.update(c, value)
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownVariable, name)
}

// ParseCommand splits an operator command line into a variable name and
// value, e.g. "near +0.1". Blank lines give an empty name.
func ParseCommand(line string) (name, value string) {
	f := strings.Fields(line)
	switch len(f) {
	case 0:
		return "", ""
	case 1:
		return strings.ToLower(f[0]), ""
	default:
		return strings.ToLower(f[0]), strings.Join(f[1:], " ")
	}
}
