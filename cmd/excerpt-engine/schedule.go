// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tibschol/excerpt-engine/internal/schedule"
	"github.com/tibschol/excerpt-engine/pkg/types"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the pipeline repeatedly on a cron expression",
	Long: `Schedule keeps the excerpt corpus fresh without an external CI
trigger: it runs the full pipeline at each cron activation. A failed run
is logged and the scheduler keeps going; overlapping runs are skipped.

Stops cleanly on SIGINT or SIGTERM.`,
	RunE: runSchedule,
}

func init() {
	scheduleCmd.Flags().String("cron", schedule.DefaultCron, "five-field cron expression")
	scheduleCmd.Flags().String("timezone", "UTC", "timezone the cron expression is interpreted in")
	scheduleCmd.Flags().Bool("log-json", false, "emit JSON logs instead of console output")

	// The scheduled job is the run pipeline; it shares run's flags.
	scheduleCmd.Flags().AddFlagSet(runCmd.Flags())

	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfigFromFlags(cmd)
	skipSync, _ := cmd.Flags().GetBool("skip-sync")
	skipCommit, _ := cmd.Flags().GetBool("skip-commit")

	schedCfg := types.ScheduleConfig{
		Cron:     flagOrConfig(cmd, "cron", "schedule.cron"),
		Timezone: flagOrConfig(cmd, "timezone", "schedule.timezone"),
	}

	jsonLogs, _ := cmd.Flags().GetBool("log-json")
	log := newLogger(jsonLogs)

	job := func(ctx context.Context) error {
		return executePipeline(ctx, cfg, skipSync, skipCommit, os.Stdout)
	}

	sched, err := schedule.New(schedCfg, log, job)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().Str("cron", schedCfg.Cron).Str("timezone", schedCfg.Timezone).Msg("scheduler starting")
	return sched.Run(ctx)
}

func newLogger(jsonLogs bool) zerolog.Logger {
	var w io.Writer = os.Stderr
	if !jsonLogs {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).With().Timestamp().Logger()
}
