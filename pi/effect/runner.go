/*
DESCRIPTION
  runner.go provides Runner, a projection.Processor that passes calibrated
  frames from a source processor through a chain of effect stages, and can
  switch between several such groups while keeping the calibration.

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

// Package effect provides post-calibration effects applied to projected
// frames.
package effect

import (
	"errors"
	"fmt"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/projector/pi/frame"
	"github.com/ausocean/projector/pi/projection"
)

// Stage transforms a calibrated frame. A nil frame drops it.
type Stage interface {
	Apply(f frame.Frame) (*frame.Frame, error)
}

// Source is a calibrating processor whose calibration can be carried to
// another.
type Source interface {
	projection.Processor
	ExportCalibration() (projection.Calibration, bool)
	ImportCalibration(c projection.Calibration) error
}

// Group is a source and the stages applied to its calibrated output.
type Group struct {
	Name   string
	Source Source
	Stages []Stage
}

// Runner is a projection.Processor running one Group at a time.
type Runner struct {
	groups []Group
	cur    int
	log    logging.Logger
}

// NewRunner returns a Runner over groups, starting with the first.
func NewRunner(log logging.Logger, groups ...Group) (*Runner, error) {
	if len(groups) == 0 {
		return nil, errors.New("no effect groups")
	}
	for i, g := range groups {
		if g.Source == nil {
			return nil, fmt.Errorf("group %d (%s) has no source", i, g.Name)
		}
	}
	return &Runner{groups: groups, log: log}, nil
}

// Process implements projection.Processor. Stages only run once the source
// is calibrated, so calibration feedback reaches the projector unchanged.
func (r *Runner) Process(in frame.Input) (*frame.Frame, error) {
	g := r.groups[r.cur]
	out, err := g.Source.Process(in)
	if out == nil || err != nil || !g.Source.IsCalibrated() {
		return out, err
	}
	for i, s := range g.Stages {
		out, err = s.Apply(*out)
		if err != nil {
			r.log.Warning("effect stage failed", "group", g.Name, "stage", i, "error", err.Error())
			return nil, nil
		}
		if out == nil {
			return nil, nil
		}
	}
	return out, nil
}

// IsCalibrated implements projection.Processor.
func (r *Runner) IsCalibrated() bool { return r.groups[r.cur].Source.IsCalibrated() }

// Recalibrate implements projection.Processor.
func (r *Runner) Recalibrate() { r.groups[r.cur].Source.Recalibrate() }

// RequiredInputFormat implements projection.Processor.
func (r *Runner) RequiredInputFormat() frame.InputFormat {
	return r.groups[r.cur].Source.RequiredInputFormat()
}

// Current returns the name of the running group.
func (r *Runner) Current() string { return r.groups[r.cur].Name }

// Next switches to the next group, wrapping around.
func (r *Runner) Next() { r.switchTo((r.cur + 1) % len(r.groups)) }

// Prev switches to the previous group, wrapping around.
func (r *Runner) Prev() { r.switchTo((r.cur + len(r.groups) - 1) % len(r.groups)) }

func (r *Runner) switchTo(i int) {
	if i == r.cur {
		return
	}
	c, ok := r.groups[r.cur].Source.ExportCalibration()
	r.cur = i
	g := r.groups[i]
	r.log.Info("switched effect group", "group", g.Name, "calibrated", ok)
	if !ok {
		return
	}
	if err := g.Source.ImportCalibration(c); err != nil {
		r.log.Warning("could not carry calibration", "group", g.Name, "error", err.Error())
	}
}
