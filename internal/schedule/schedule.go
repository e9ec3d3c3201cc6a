// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package schedule drives recurring pipeline runs from a cron expression.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/tibschol/excerpt-engine/pkg/types"
)

// DefaultCron mirrors the publication cadence the excerpt corpus has
// historically been refreshed on: nine fixed times daily.
const DefaultCron = "30 5,8,10,12,14,16,18,20,22 * * *"

// Job is one pipeline invocation.
type Job func(ctx context.Context) error

// Scheduler fires a Job at cron activation times. Runs never overlap: the
// loop blocks on the running job, and activations that pass while a run is
// in flight are logged and skipped.
type Scheduler struct {
	sched cron.Schedule
	loc   *time.Location
	log   zerolog.Logger
	job   Job

	// now is a test seam for the clock.
	now func() time.Time
}

// New builds a scheduler from config. An empty cron expression uses
// DefaultCron; an empty timezone uses UTC.
func New(cfg types.ScheduleConfig, log zerolog.Logger, job Job) (*Scheduler, error) {
	spec := cfg.Cron
	if spec == "" {
		spec = DefaultCron
	}
	tz := cfg.Timezone
	if tz == "" {
		tz = "UTC"
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", tz, err)
	}

	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("bad cron expression %q: %w", spec, err)
	}

	return &Scheduler{
		sched: sched,
		loc:   loc,
		log:   log,
		job:   job,
		now:   time.Now,
	}, nil
}

// NextAfter returns the first activation strictly after t.
func (s *Scheduler) NextAfter(t time.Time) time.Time {
	return s.sched.Next(t.In(s.loc))
}

// Run blocks, firing the job at each activation until ctx is cancelled.
// A failed run is logged and does not stop the scheduler.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		now := s.now().In(s.loc)
		next := s.sched.Next(now)
		s.log.Info().Time("next_run", next).Msg("scheduler waiting")

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			s.log.Info().Msg("scheduler stopped")
			return nil
		case <-timer.C:
		}

		s.fire(ctx, next)

		// Activations that passed while the job ran are skipped.
		for missed := s.sched.Next(next); !missed.After(s.now().In(s.loc)); missed = s.sched.Next(missed) {
			s.log.Warn().Time("activation", missed).Msg("skipping activation: previous run still in flight")
		}
	}
}

func (s *Scheduler) fire(ctx context.Context, activation time.Time) {
	runID := uuid.NewString()
	log := s.log.With().Str("run_id", runID).Time("activation", activation).Logger()

	log.Info().Msg("pipeline run started")
	start := s.now()
	err := s.job(ctx)
	elapsed := s.now().Sub(start)

	if err != nil {
		log.Error().Err(err).Dur("elapsed", elapsed).Msg("pipeline run failed")
		return
	}
	log.Info().Dur("elapsed", elapsed).Msg("pipeline run finished")
}
