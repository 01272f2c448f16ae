package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/flemzord/sovereign/internal/cron"
	"github.com/flemzord/sovereign/internal/planner"
	"github.com/spf13/cobra"
)

func planCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Turn status lines on stdin into JSON commands on stdout",
		Long: `Read one status line (usually JSON sensor data) per line from stdin,
send it as "Current State: <line>" and write the validated command
{"action", "parameters", "reasoning"} as one JSON line to stdout.
Invalid replies are logged and skipped.

With planner.compress_schedule set, the history is compressed on that
schedule and immediately on SIGHUP.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			rt, err := buildRuntime(cmd)
			if err != nil {
				return err
			}
			defer closeRuntime(rt)

			if err := rt.StartGateway(ctx); err != nil {
				return err
			}

			cfg := rt.Config.Planner
			persona := cfg.Persona
			if persona == "" {
				persona = planner.DefaultPersona
			}
			s, err := rt.NewSession(persona)
			if err != nil {
				return err
			}
			logger := rt.Logger.With("component", "planner")
			p := planner.New(s,
				planner.WithTemperature(*cfg.Temperature),
				planner.WithLogger(logger),
			)

			var compress chan struct{}
			if cfg.CompressSchedule != "" {
				compress = make(chan struct{}, 1)
				job := &cron.CompressSignalJob{
					Signal:       compress,
					Logger:       logger,
					ScheduleExpr: cfg.CompressSchedule,
				}
				sched := cron.NewScheduler(logger)
				if err := sched.RegisterJob(job); err != nil {
					return err
				}
				if err := sched.Start(ctx); err != nil {
					return err
				}
				defer func() { _ = sched.Stop(context.Background()) }()

				hup := make(chan os.Signal, 1)
				signal.Notify(hup, syscall.SIGHUP)
				defer signal.Stop(hup)

				sigCtx, cancel := context.WithCancel(ctx)
				defer cancel()
				go compressOnSignal(sigCtx, hup, sched, job.Name(), logger)
			}

			stats, err := p.Run(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), compress)
			logger.Info("planner stopped",
				"received", stats.Received,
				"published", stats.Published,
				"rejected", stats.Rejected,
				"failed", stats.Failed,
			)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}

// compressOnSignal runs the named compress job once each time sig fires,
// until ctx is done.
func compressOnSignal(ctx context.Context, sig <-chan os.Signal, sched *cron.Scheduler, job string, logger *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case s := <-sig:
			logger.Info("compression requested", "signal", s.String())
			if !sched.RunNow(ctx, job) {
				logger.Warn("compression job not registered", "job", job)
			}
		}
	}
}
