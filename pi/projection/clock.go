/*
DESCRIPTION
  clock.go provides PhaseClock, which times a calibration phase from the
  first frame seen in it.

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

package projection

import (
	"time"

	"github.com/benbjohnson/clock"
)

// PhaseClock records the start of a phase and reports time elapsed since.
type PhaseClock struct {
	clk     clock.Clock
	start   time.Time
	started bool
}

// NewPhaseClock returns a stopped PhaseClock reading time from clk.
func NewPhaseClock(clk clock.Clock) *PhaseClock {
	return &PhaseClock{clk: clk}
}

// Start starts the phase if it has not already started.
func (p *PhaseClock) Start() {
	if p.started {
		return
	}
	p.start = p.clk.Now()
	p.started = true
}

// Started reports whether the phase has started.
func (p *PhaseClock) Started() bool { return p.started }

// Elapsed returns the time since the phase started, or 0 if it has not.
func (p *PhaseClock) Elapsed() time.Duration {
	if !p.started {
		return 0
	}
	return p.clk.Since(p.start)
}

// Reset stops the phase.
func (p *PhaseClock) Reset() {
	p.started = false
	p.start = time.Time{}
}
