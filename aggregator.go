/*
 * aggregator.go, part of protarea.
 *
 *
 * Copyright 2026 The protarea authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package protarea

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/rmera/protarea/internal/logging"
)

// State is the stage of an Aggregator: Prepared after creation, Processing once the
// first frame is given, Concluded after Conclude. Concluded is final.
type State int

const (
	Prepared State = iota
	Processing
	Concluded
)

func (S State) String() string {
	switch S {
	case Prepared:
		return "prepared"
	case Processing:
		return "processing"
	case Concluded:
		return "concluded"
	}
	return fmt.Sprintf("State(%d)", int(S))
}

// Aggregator computes the protein area of every slice of every frame it is given,
// and collects the results in an AreaTable.
// The slices of a frame, and the frames given to Run, are processed concurrently,
// but the results are always placed in slice and trajectory order.
// An Aggregator is not safe for concurrent use.
type Aggregator struct {
	cfg    Config
	bounds []float64
	ranges []Range
	state  State
	rows   [][]float64
	frames []int
	log    *slog.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLogger sets the logger used by the Aggregator. By default, nothing is logged.
func WithLogger(l *slog.Logger) Option {
	return func(A *Aggregator) {
		if l != nil {
			A.log = l
		}
	}
}

// NewAggregator returns an Aggregator, in the Prepared state, for the given configuration.
func NewAggregator(cfg Config, opts ...Option) (*Aggregator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errDecorate(err, "NewAggregator")
	}
	bounds, err := Boundaries(cfg.ZMin, cfg.ZMax, cfg.Layer)
	if err != nil {
		return nil, errDecorate(err, "NewAggregator")
	}
	A := &Aggregator{
		cfg:    cfg,
		bounds: bounds,
		ranges: Ranges(bounds),
		state:  Prepared,
		log:    logging.NewNop(),
	}
	for _, o := range opts {
		o(A)
	}
	return A, nil
}

// Boundaries returns a copy of the slice boundaries used.
func (A *Aggregator) Boundaries() []float64 {
	return append([]float64(nil), A.bounds...)
}

// State returns the current state of the Aggregator.
func (A *Aggregator) State() State {
	return A.state
}

func (A *Aggregator) startProcessing(caller string) error {
	if A.state == Concluded {
		return newError(StateError, "The aggregator is already concluded", caller)
	}
	A.state = Processing
	return nil
}

// cell computes the area for the slice s of the frame F.
func (A *Aggregator) cell(F *Frame, s int) (float64, error) {
	particles := F.SelectZ(A.ranges[s])
	area, ignored, err := A.particlesArea(particles, F.Box)
	if err != nil {
		var E *Error
		if errors.As(err, &E) {
			E.atCell(F.Index, s)
		}
		A.log.Warn("slice failed", "frame", F.Index, "slice", s, "error", err)
		return 0, errDecorate(err, "cell")
	}
	if ignored > 0 {
		A.log.Debug("degenerate cells ignored", "frame", F.Index, "slice", s, "cells", ignored)
	}
	return area, nil
}

func (A *Aggregator) particlesArea(particles []Particle, box Box) (float64, int, error) {
	protein := false
	for _, p := range particles {
		if p.Protein {
			protein = true
			break
		}
	}
	if !protein {
		//no need to build the images, but a bad box is still an error.
		if A.cfg.Periodic {
			if err := box.planarCheck("BuildPointSet"); err != nil {
				return 0, 0, err
			}
		}
		return 0, 0, nil
	}
	set, err := BuildPointSet(particles, box, A.cfg.Periodic)
	if err != nil {
		return 0, 0, err
	}
	return sliceArea(set, A.cfg.Tolerant)
}

// ProcessFrame computes the areas for all the slices of F, adds them to the table
// as a new row, and returns a copy of that row. If any slice fails, nothing is added
// and the errors for all the failed slices are returned.
func (A *Aggregator) ProcessFrame(ctx context.Context, F *Frame) ([]float64, error) {
	if err := A.startProcessing("ProcessFrame"); err != nil {
		return nil, err
	}
	row := make([]float64, len(A.ranges))
	errs := make([]error, len(A.ranges))
	var g errgroup.Group
	g.SetLimit(A.cfg.workers())
	for s := range A.ranges {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[s] = err
				return nil
			}
			row[s], errs[s] = A.cell(F, s)
			return nil
		})
	}
	g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := errors.Join(errs...); err != nil {
		return nil, errDecorate(err, "ProcessFrame")
	}
	A.rows = append(A.rows, row)
	A.frames = append(A.frames, F.Index)
	A.log.Debug("frame processed", "frame", F.Index)
	return append([]float64(nil), row...), nil
}

// frameJob collects the results for the slices of one frame.
type frameJob struct {
	index int
	row   []float64
	errs  []error
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Run reads all the frames from src and processes them, then concludes the Aggregator and
// returns the resulting table. The slices of all frames are computed by a pool of
// cfg.Workers goroutines while the following frames are being read.
//
// Frames where any slice fails are left out of the table, and the errors for all the
// failed slices are joined in the returned error. If ctx is cancelled, no more frames are
// read, frames not completely processed are left out, and the context's error is returned.
// In all cases, the table with the frames that were completed is returned.
func (A *Aggregator) Run(ctx context.Context, src FrameSource) (*AreaTable, error) {
	if err := A.startProcessing("Run"); err != nil {
		return nil, err
	}
	var g errgroup.Group
	g.SetLimit(A.cfg.workers())
	var jobs []*frameJob
	var fetchErr error
	for {
		if err := ctx.Err(); err != nil {
			fetchErr = err
			break
		}
		F, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			fetchErr = err
			break
		}
		job := &frameJob{index: F.Index, row: make([]float64, len(A.ranges)), errs: make([]error, len(A.ranges))}
		jobs = append(jobs, job)
		A.log.Debug("frame read", "frame", F.Index)
		for s := range A.ranges {
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					job.errs[s] = err
					return nil
				}
				job.row[s], job.errs[s] = A.cell(F, s)
				return nil
			})
		}
	}
	g.Wait()
	var report []error
	incomplete := false
	for _, job := range jobs {
		var failed []error
		partial := false
		for _, err := range job.errs {
			switch {
			case err == nil:
			case isCancellation(err):
				partial = true
			default:
				failed = append(failed, err)
			}
		}
		switch {
		case len(failed) > 0:
			A.log.Warn("frame dropped", "frame", job.index, "failed_slices", len(failed))
			report = append(report, failed...)
		case partial:
			incomplete = true
		default:
			A.rows = append(A.rows, job.row)
			A.frames = append(A.frames, job.index)
		}
	}
	if fetchErr != nil {
		report = append(report, fetchErr)
	} else if incomplete {
		report = append(report, ctx.Err())
	}
	T, err := A.Conclude()
	if err != nil {
		return nil, err
	}
	A.log.Info("analysis finished", "frames", len(A.frames), "slices", len(A.ranges), "failed", len(report))
	return T, errors.Join(report...)
}

// Conclude finalizes the table and returns it. The Aggregator can't be used after this.
func (A *Aggregator) Conclude() (*AreaTable, error) {
	if A.state == Concluded {
		return nil, newError(StateError, "The aggregator is already concluded", "Conclude")
	}
	A.state = Concluded
	return &AreaTable{bounds: A.Boundaries(), frames: A.frames, rows: A.rows}, nil
}
