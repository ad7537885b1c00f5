/*
DESCRIPTION
  projection-mapper reads depth camera frames from a directory, calibrates
  to the area lit by the projector and writes the frames to be projected.

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

// projection-mapper is a projection area calibration client. Frames are
// read from the input directory at a fixed rate and processed by a chain of
// effect groups, and the results are written to the output directory as PNG
// files. Operator commands such as "recalibrate" or "near +0.1" are read
// from standard input and applied between frames.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ausocean/utils/logging"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/projector/pi/config"
	"github.com/ausocean/projector/pi/depth"
	"github.com/ausocean/projector/pi/effect"
	"github.com/ausocean/projector/pi/frame"
	"github.com/ausocean/projector/pi/homography"
	"github.com/ausocean/projector/pi/projection"
	"github.com/ausocean/projector/pi/quad"
)

// Logging configuration.
const (
	logMaxSize   = 500 // MB.
	logMaxBackup = 10
	logMaxAge    = 28 // Days.
	logSuppress  = false
)

// Capacity of the depth range history kept for plotting.
const resultsSize = 4096

// platform is the set of image processing implementations available to this
// build.
type platform struct {
	finder  quad.Finder
	decoder frame.Decoder
	warper  homography.Warper
	contour effect.Stage // Nil if unavailable.
}

func main() {
	var (
		cfgPath = flag.String("config", "", "YAML configuration file")
		envPath = flag.String("env", ".env", "environment override file")
		inDir   = flag.String("in", "", "input frame directory")
		outDir  = flag.String("out", "", "output frame directory")
		fps     = flag.Float64("fps", 0, "frames per second")
		plotDir = flag.String("plot", "", "directory for the depth range plot")
		d16w    = flag.Int("d16w", 0, "depth16 frame width")
		d16h    = flag.Int("d16h", 0, "depth16 frame height")
	)
	flag.Parse()

	cfg, err := config.Read(*cfgPath, *envPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load configuration: %v\n", err)
		os.Exit(1)
	}

	// Explicit flags take precedence.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "in":
			cfg.Input = *inDir
		case "out":
			cfg.Output = *outDir
		case "fps":
			cfg.FPS = *fps
		case "plot":
			cfg.Plot = *plotDir
		case "d16w":
			cfg.Depth16Width = *d16w
		case "d16h":
			cfg.Depth16Height = *d16h
		}
	})
	err = cfg.Validate()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	verbosity, _ := cfg.Verbosity()

	fileLog := &lumberjack.Logger{
		Filename:   cfg.LogPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	log := logging.New(verbosity, io.MultiWriter(fileLog, os.Stderr), logSuppress)

	var res *depth.Results
	if cfg.Plot != "" {
		res, err = depth.NewResults(resultsSize)
		if err != nil {
			log.Fatal("could not create depth range results", "error", err)
		}
	}

	log.Debug("initialising effect groups", "effects", cfg.Effects)
	runner, ctl, err := newRunner(cfg, newPlatform(log, cfg.Reduction), res, log)
	if err != nil {
		log.Fatal("could not create effect groups", "error", err)
	}

	src, err := newDirSource(cfg.Input, cfg.Depth16Width, cfg.Depth16Height)
	if err != nil {
		log.Fatal("could not open frame source", "error", err)
	}
	err = os.MkdirAll(cfg.Output, 0o755)
	if err != nil {
		log.Fatal("could not create output directory", "error", err)
	}

	n := run(runner, ctl, src, cfg.Output, cfg.FPS, readCommands(os.Stdin), log)
	log.Info("finished", "written", n)

	if res != nil && res.Len() > 0 {
		err = depth.PlotResults(res, cfg.Plot)
		if err != nil {
			log.Error("could not plot depth range", "error", err)
		}
	}
}

// newRunner returns a Runner with a group for each configured effect, and
// the controls acting on them.
func newRunner(cfg config.Config, p platform, res *depth.Results, log logging.Logger) (*effect.Runner, *controls, error) {
	ctl := &controls{}
	var groups []effect.Group
	for _, name := range cfg.Effects {
		opts := append(cfg.Options(),
			projection.WithFinder(p.finder),
			projection.WithDecoder(p.decoder),
			projection.WithWarper(p.warper),
		)
		if res != nil {
			opts = append(opts, projection.WithResults(res))
		}
		a, err := projection.New(log, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("could not create %s processor: %w", name, err)
		}

		var stages []effect.Stage
		switch name {
		case config.EffectInvert:
			stages = append(stages, effect.Invert{})
		case config.EffectContour:
			if p.contour == nil {
				return nil, nil, errors.New("contour effect needs the withcv build tag")
			}
			stages = append(stages, p.contour)
		}
		groups = append(groups, effect.Group{Name: name, Source: a, Stages: stages})
		ctl.areas = append(ctl.areas, a)
	}

	r, err := effect.NewRunner(log, groups...)
	if err != nil {
		return nil, nil, err
	}
	ctl.runner = r
	return r, ctl, nil
}

// run processes frames from src at fps until it is exhausted, applying
// operator commands between frames. It returns the number of frames
// written.
func run(p projection.Processor, ctl config.Controller, src frameSource, out string, fps float64, cmds <-chan string, log logging.Logger) int {
	ticker := time.NewTicker(time.Duration(float64(time.Second) / fps))
	defer ticker.Stop()

	var n int
	for {
		select {
		case line, ok := <-cmds:
			if !ok {
				cmds = nil
				continue
			}
			name, value := config.ParseCommand(line)
			if name == "" {
				continue
			}
			err := config.Update(ctl, name, value)
			if err != nil {
				log.Warning("could not apply command", "command", line, "error", err.Error())
				continue
			}
			log.Info("applied command", "name", name, "value", value)

		case <-ticker.C:
			in, err := src.Next(p.RequiredInputFormat())
			if errors.Is(err, io.EOF) {
				return n
			}
			if err != nil {
				log.Warning("could not read frame", "error", err.Error())
				continue
			}

			f, err := p.Process(in)
			if err != nil {
				log.Warning("could not process frame", "format", in.Format.String(), "error", err.Error())
				continue
			}
			if f == nil {
				continue
			}

			err = writePNG(filepath.Join(out, fmt.Sprintf("%06d.png", n)), f)
			if err != nil {
				log.Error("could not write frame", "error", err.Error())
				continue
			}
			n++
		}
	}
}

// readCommands returns a channel of the lines read from r, closed at the
// end of r.
func readCommands(r io.Reader) <-chan string {
	c := make(chan string)
	go func() {
		defer close(c)
		s := bufio.NewScanner(r)
		for s.Scan() {
			c <- s.Text()
		}
	}()
	return c
}

func writePNG(path string, f *frame.Frame) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	err = png.Encode(file, f.ToImage())
	if err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// controls applies operator variables to every effect group, so groups stay
// in step when cycled.
type controls struct {
	runner *effect.Runner
	areas  []*projection.Area
}

func (c *controls) Recalibrate() { c.runner.Recalibrate() }
func (c *controls) Next() { c.runner.Next() }
func (c *controls) Prev() { c.runner.Prev() }

func (c *controls) SetAutoCalibrate(enable bool) {
	for _, a := range c.areas {
		a.SetAutoCalibrate(enable)
	}
}

func (c *controls) SetVisualCalibration(enable bool) {
	for _, a := range c.areas {
		a.SetVisualCalibration(enable)
	}
}

func (c *controls) SetColorOutput(enable bool) {
	for _, a := range c.areas {
		a.SetColorOutput(enable)
	}
}

// Adjust applies ctl to every group, or to none if any would reject it.
func (c *controls) Adjust(ctl projection.Control) error {
	for _, a := range c.areas {
		err := a.CheckAdjust(ctl)
		if err != nil {
			return err
		}
	}
	for _, a := range c.areas {
		err := a.Adjust(ctl)
		if err != nil {
			return err
		}
	}
	return nil
}
