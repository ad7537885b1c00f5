/*
DESCRIPTION
  projection.go provides Area, a frame processor that finds the region of a
  depth camera's view lit by a projector and warps subsequent frames so they
  fill the projector's output.

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

// Package projection provides projection area calibration of depth camera
// frames.
//
// An Area is driven one frame at a time by a single goroutine. None of its
// methods are safe for concurrent use.
package projection

import (
	"errors"
	"fmt"
	"time"

	"github.com/ausocean/utils/logging"
	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/ausocean/projector/pi/depth"
	"github.com/ausocean/projector/pi/dyndepth"
	"github.com/ausocean/projector/pi/frame"
	"github.com/ausocean/projector/pi/homography"
	"github.com/ausocean/projector/pi/overlay"
	"github.com/ausocean/projector/pi/quad"
)

// Processor turns input frames into frames for the projector. A nil frame
// with a nil error means there is nothing to show and the caller should
// supply the next frame.
type Processor interface {
	Process(in frame.Input) (*frame.Frame, error)
	IsCalibrated() bool
	Recalibrate()
	RequiredInputFormat() frame.InputFormat
}

// State is a calibration state of an Area.
type State int

// Calibration states.
const (
	Searching    State = iota // Looking for the projection area.
	Flash                     // Showing white frames before automatic detection.
	PreviewDepth              // Showing the outlined depth map.
	Warped                    // Calibrated.
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Searching:
		return "searching"
	case Flash:
		return "flash"
	case PreviewDepth:
		return "preview-depth"
	case Warped:
		return "warped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Defaults for Area options.
const (
	DefaultSearchWindow     = 6 * time.Second
	DefaultPreviewWindow    = time.Second
	DefaultFlashFrames      = 2
	DefaultRecalibrateEvery = 20
)

// ErrUnexpectedFormat is returned by Process for input it cannot use in its
// current state. The caller should consult RequiredInputFormat.
var ErrUnexpectedFormat = errors.New("unexpected input format")

// Area is a Processor calibrating to the projection area.
type Area struct {
	clk     clock.Clock
	search  *PhaseClock
	preview *PhaseClock

	finder     quad.Finder
	decoder    frame.Decoder
	warper     homography.Warper
	render     overlay.Renderer
	normalizer *depth.Normalizer
	depth16    depth.Depth16

	searchWindow  time.Duration
	previewWindow time.Duration
	flashFrames   int
	recalEvery    int
	reduction     int

	auto        bool
	visual      bool
	colorOutput bool
	useDepth16  bool

	// raw is the ordered quad in finder coordinates and quad the same quad
	// at the qw by qh resolution of the image it was found in.
	raw, quad quad.Quad
	qw, qh    int
	hasQuad   bool

	// m maps quad to an mw by mh target.
	m      homography.Matrix
	mw, mh int
	hasM   bool

	flashes int
	frames  int
	session uuid.UUID
	pending *Calibration
	state   State

	log logging.Logger
}

// New returns an Area configured by opts. WithFinder is required.
func New(log logging.Logger, opts ...Option) (*Area, error) {
	a := &Area{
		clk:           clock.New(),
		decoder:       frame.StdDecoder{},
		warper:        homography.NearestWarper{},
		render:        overlay.NewGG(),
		normalizer:    depth.NewNormalizer(log),
		searchWindow:  DefaultSearchWindow,
		previewWindow: DefaultPreviewWindow,
		flashFrames:   DefaultFlashFrames,
		recalEvery:    DefaultRecalibrateEvery,
		reduction:     quad.DefaultReduction,
		visual:        true,
		log:           log,
	}
	for i, opt := range opts {
		if err := opt(a); err != nil {
			return nil, fmt.Errorf("could not apply option %d: %w", i, err)
		}
	}
	if a.finder == nil {
		return nil, errors.New("no projection area finder")
	}
	a.search = NewPhaseClock(a.clk)
	a.preview = NewPhaseClock(a.clk)
	return a, nil
}

// Process implements Processor. Periodic recalibration takes effect after
// the frame is handled, so the frame matches the format last reported by
// RequiredInputFormat.
func (a *Area) Process(in frame.Input) (*frame.Frame, error) {
	a.frames++
	due := a.auto && a.frames%a.recalEvery == 0

	var (
		out *frame.Frame
		err error
	)
	if a.IsCalibrated() {
		out, err = a.warped(in)
	} else {
		out, err = a.calibrate(in)
	}

	if due {
		a.log.Debug("periodic recalibration", "frames", a.frames)
		a.restart()
	}
	return out, err
}

// IsCalibrated implements Processor.
func (a *Area) IsCalibrated() bool { return a.state == Warped }

// State returns the current calibration state.
func (a *Area) State() State { return a.state }

// Recalibrate implements Processor. Detection starts over and, unless fixed
// by the operator, the depth range is learnt again.
func (a *Area) Recalibrate() {
	a.log.Info("recalibrating")
	a.restart()
	a.normalizer.Recalibrate()
}

// RequiredInputFormat implements Processor.
func (a *Area) RequiredInputFormat() frame.InputFormat {
	if a.IsCalibrated() && a.useDepth16 && !a.colorOutput {
		return frame.Depth16
	}
	return frame.DepthJPEG
}

// restart discards the projection area and returns to searching.
func (a *Area) restart() {
	a.search.Reset()
	a.preview.Reset()
	a.raw, a.quad = quad.Quad{}, quad.Quad{}
	a.hasQuad = false
	a.hasM = false
	a.flashes = 0
	a.frames = 0
	a.pending = nil
	a.state = Searching
}

// calibrate handles a frame while the projection area is unknown.
func (a *Area) calibrate(in frame.Input) (*frame.Frame, error) {
	if in.Format != frame.DepthJPEG {
		return nil, fmt.Errorf("%w: %v while %v", ErrUnexpectedFormat, in.Format, a.state)
	}
	c, err := dyndepth.Parse(in.Data)
	if err != nil {
		return a.skip("could not parse depth container", err)
	}
	d, err := a.depthMap(c)
	if err != nil {
		return a.skip("could not decode depth map", err)
	}

	if a.pending != nil {
		rgb, err := a.primary(c)
		if err != nil {
			return a.skip("could not decode primary image", err)
		}
		cal := *a.pending
		a.pending = nil
		if err := a.apply(cal, rgb.Width, rgb.Height); err != nil {
			return a.skip("could not import calibration", err)
		}
		return a.complete(in, cal.Session)
	}

	if !a.visual {
		return a.autoCalibrate(in, c, d)
	}

	if !a.preview.Started() {
		a.state = Searching
		a.search.Start()
		rgb, err := a.primary(c)
		if err != nil {
			return a.skip("could not decode primary image", err)
		}
		a.detect(rgb)
		if !a.hasQuad || a.search.Elapsed() < a.searchWindow {
			f := a.render.Border(rgb)
			if a.hasQuad {
				f = a.render.Outline(f, a.quad)
			}
			return &f, nil
		}
		a.log.Debug("search complete", "elapsed", a.search.Elapsed())
		a.preview.Start()
	}

	a.state = PreviewDepth
	if a.preview.Elapsed() < a.previewWindow {
		f := a.render.Outline(d, a.scaled(d.Width, d.Height))
		return &f, nil
	}
	return a.complete(in, uuid.New())
}

// autoCalibrate flashes the projector white to light the projection area,
// then detects it without operator feedback.
func (a *Area) autoCalibrate(in frame.Input, c *dyndepth.Container, d frame.Frame) (*frame.Frame, error) {
	if a.flashes < a.flashFrames {
		a.flashes++
		a.state = Flash
		f := a.render.Flash(d.Width, d.Height)
		return &f, nil
	}

	a.state = Searching
	rgb, err := a.primary(c)
	if err != nil {
		return a.skip("could not decode primary image", err)
	}
	if !a.detect(rgb) {
		f := a.render.Flash(d.Width, d.Height)
		return &f, nil
	}
	return a.complete(in, uuid.New())
}

// complete marks the area calibrated and processes in as a calibrated frame.
func (a *Area) complete(in frame.Input, session uuid.UUID) (*frame.Frame, error) {
	a.session = session
	a.state = Warped
	a.log.Info("projection area calibrated", "session", a.session.String(), "quad", fmt.Sprint(a.quad))
	return a.warped(in)
}

// detect looks for the projection area in rgb and reports whether it was
// found. The previous area is discarded either way.
func (a *Area) detect(rgb frame.Frame) bool {
	a.hasQuad = false
	a.hasM = false

	start := a.clk.Now()
	raw, ok, err := a.finder.Find(rgb)
	if err != nil {
		a.log.Warning("could not find projection area", "error", err.Error())
		return false
	}
	if !ok {
		a.log.Debug("no projection area found", "duration", a.clk.Since(start))
		return false
	}
	ordered, err := quad.Order(raw)
	if err != nil {
		a.log.Debug("rejected projection area", "error", err.Error())
		return false
	}
	a.setQuad(ordered, rgb.Width, rgb.Height)
	a.log.Debug("found projection area", "quad", fmt.Sprint(a.quad), "duration", a.clk.Since(start))
	return true
}

// setQuad stores the ordered finder quad raw, found in a w by h image.
func (a *Area) setQuad(raw quad.Quad, w, h int) {
	a.raw = raw
	a.quad = quad.ScaleUp(raw, a.reduction)
	a.qw, a.qh = w, h
	a.hasQuad = true
	a.hasM = false
}

// scaled returns the quad scaled to a w by h image.
func (a *Area) scaled(w, h int) quad.Quad {
	return quad.Scale(a.quad, float64(w)/float64(a.qw), float64(h)/float64(a.qh))
}

// warped handles a frame once calibrated.
func (a *Area) warped(in frame.Input) (*frame.Frame, error) {
	t, err := a.target(in)
	if t == nil || err != nil {
		return nil, err
	}
	return a.warp(*t)
}

// target decodes the frame to be warped from in.
func (a *Area) target(in frame.Input) (*frame.Frame, error) {
	switch {
	case in.Format == frame.Depth16 && !a.colorOutput:
		f, err := in.Depth16Frame()
		if err != nil {
			return a.skip("bad depth16 frame", err)
		}
		out, err := a.depth16.Normalize(f)
		if err != nil {
			return a.skip("could not normalize depth16 frame", err)
		}
		return &out, nil

	case in.Format == frame.RGBJPEG && a.colorOutput:
		f, err := a.decoder.DecodeRGB(in.Data)
		if err != nil {
			return a.skip("could not decode jpeg", err)
		}
		return &f, nil

	case in.Format == frame.DepthJPEG:
		c, err := dyndepth.Parse(in.Data)
		if err != nil {
			return a.skip("could not parse depth container", err)
		}
		if a.colorOutput {
			f, err := a.primary(c)
			if err != nil {
				return a.skip("could not decode primary image", err)
			}
			return &f, nil
		}
		d, err := a.depthMap(c)
		if err != nil {
			return a.skip("could not decode depth map", err)
		}
		var r *depth.Range
		if c.HasRange() {
			r = &depth.Range{Near: c.Near, Far: c.Far, Linear: c.Format == dyndepth.RangeLinear}
		}
		out, err := a.normalizer.Normalize(d, r)
		if err != nil {
			return a.skip("could not normalize depth map", err)
		}
		return &out, nil

	default:
		return nil, fmt.Errorf("%w: %v while %v", ErrUnexpectedFormat, in.Format, a.state)
	}
}

// warp warps t to fill its own frame size, computing the homography for
// that size when needed. A degenerate homography restarts calibration.
func (a *Area) warp(t frame.Frame) (*frame.Frame, error) {
	if !a.hasM || a.mw != t.Width || a.mh != t.Height {
		m, err := homography.ComputeFrom(a.scaled(t.Width, t.Height), t.Width, t.Height)
		if err != nil {
			a.log.Warning("could not compute homography, restarting calibration", "error", err.Error())
			a.restart()
			return nil, nil
		}
		a.m, a.mw, a.mh, a.hasM = m, t.Width, t.Height, true
		a.log.Debug("computed homography", "width", t.Width, "height", t.Height)
	}
	out, err := a.warper.Warp(t, a.m, t.Width, t.Height)
	if err != nil {
		return a.skip("could not warp frame", err)
	}
	return &out, nil
}

// depthMap decodes the depth map of c.
func (a *Area) depthMap(c *dyndepth.Container) (frame.Frame, error) {
	b, err := c.DepthMap()
	if err != nil {
		return frame.Frame{}, err
	}
	return a.decoder.DecodeGray(b)
}

// primary decodes the primary image of c.
func (a *Area) primary(c *dyndepth.Container) (frame.Frame, error) {
	b, err := c.Primary()
	if err != nil {
		return frame.Frame{}, err
	}
	return a.decoder.DecodeRGB(b)
}

// skip logs a per-frame failure and drops the frame.
func (a *Area) skip(msg string, err error) (*frame.Frame, error) {
	a.log.Warning(msg, "error", err.Error())
	return nil, nil
}

// SetAutoCalibrate enables or disables automatic calibration. Automatic
// calibration gives no visual feedback, so visual calibration is set to the
// opposite.
func (a *Area) SetAutoCalibrate(enable bool) {
	a.auto = enable
	a.visual = !enable
}

// SetVisualCalibration enables or disables operator feedback while
// calibrating.
func (a *Area) SetVisualCalibration(enable bool) { a.visual = enable }

// SetColorOutput selects warped colour output rather than depth.
func (a *Area) SetColorOutput(enable bool) { a.colorOutput = enable }

// Bound is a depth range bound.
type Bound int

// Depth range bounds.
const (
	Near Bound = iota
	Far
)

// Depth range adjustment steps in metres.
const (
	CoarseStep = 1.0
	FineStep   = 0.1
)

// Control is an operator adjustment of a depth range bound.
type Control struct {
	Bound Bound
	Delta float64
}

// Adjust applies an operator depth range adjustment. The depth range must
// have been fixed.
func (a *Area) Adjust(c Control) error {
	dNear, dFar, err := c.deltas()
	if err != nil {
		return err
	}
	return a.normalizer.Adjust(dNear, dFar)
}

// CheckAdjust returns the error Adjust would return for c without applying
// it.
func (a *Area) CheckAdjust(c Control) error {
	dNear, dFar, err := c.deltas()
	if err != nil {
		return err
	}
	return a.normalizer.CheckAdjust(dNear, dFar)
}

func (c Control) deltas() (near, far float64, err error) {
	switch c.Bound {
	case Near:
		return c.Delta, 0, nil
	case Far:
		return 0, c.Delta, nil
	default:
		return 0, 0, fmt.Errorf("unknown bound: %d", c.Bound)
	}
}

// Range returns the current depth normalisation bounds in metres.
func (a *Area) Range() (near, far float64) { return a.normalizer.Bounds() }

// FixRange fixes the depth range to near and far metres.
func (a *Area) FixRange(near, far float64) error { return a.normalizer.SetFixed(near, far) }
