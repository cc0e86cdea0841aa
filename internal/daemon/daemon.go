// Package daemon runs the long-lived serve mode: the HTTP server, the
// optional periodic pipeline trigger, and the config watcher that picks up
// schedule changes without a restart.
package daemon

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/blogsmith/internal/agent"
	"git.home.luguber.info/inful/blogsmith/internal/config"
	"git.home.luguber.info/inful/blogsmith/internal/logfields"
	"git.home.luguber.info/inful/blogsmith/internal/server"
)

// Runner triggers one pipeline run.
type Runner interface {
	Run(ctx context.Context) (*agent.RunResult, error)
}

// Daemon couples the HTTP server with the periodic trigger.
type Daemon struct {
	cfg        *config.Config
	configPath string
	runner     Runner
	srv        *server.Server
	scheduler  *Scheduler
	watcher    *ConfigWatcher
}

// New creates a daemon. configPath may be empty to disable config watching.
func New(cfg *config.Config, configPath string, runner Runner, srv *server.Server) (*Daemon, error) {
	scheduler, err := NewScheduler()
	if err != nil {
		return nil, err
	}

	d := &Daemon{
		cfg:        cfg,
		configPath: configPath,
		runner:     runner,
		srv:        srv,
		scheduler:  scheduler,
	}

	if configPath != "" {
		watcher, err := NewConfigWatcher(configPath, d.reloadSchedule)
		if err != nil {
			return nil, err
		}
		d.watcher = watcher
	}

	return d, nil
}

// Run blocks serving requests and firing scheduled runs until ctx is
// cancelled, then shuts everything down.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.startScheduler(); err != nil {
		return err
	}

	if d.watcher != nil {
		if err := d.watcher.Start(ctx); err != nil {
			return err
		}
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- d.srv.Serve()
	}()

	var err error
	select {
	case <-ctx.Done():
		slog.Info("shutdown requested")
	case err = <-serveErr:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if serr := d.srv.Shutdown(shutdownCtx); serr != nil {
		slog.Error("HTTP server shutdown failed", logfields.Error(serr))
	}
	if serr := d.scheduler.Stop(); serr != nil {
		slog.Error("scheduler shutdown failed", logfields.Error(serr))
	}
	if d.watcher != nil {
		d.watcher.Stop()
	}
	return err
}

// startScheduler registers the periodic trigger and starts the scheduler.
// The task is registered even when the schedule is disabled so a config
// reload can enable it later without a restart.
func (d *Daemon) startScheduler() error {
	if err := d.scheduler.SchedulePeriodicRun(d.cfg.Daemon.Schedule.Std(), d.runScheduled); err != nil {
		return err
	}
	d.scheduler.Start()
	return nil
}

// runScheduled is the gocron task body. Failures are logged and absorbed so a
// bad run never kills the schedule.
func (d *Daemon) runScheduled() {
	slog.Info("scheduled pipeline run starting")
	result, err := d.runner.Run(context.Background())
	if err != nil {
		slog.Error("scheduled pipeline run failed", logfields.Error(err))
		return
	}
	slog.Info("scheduled pipeline run finished",
		logfields.Status(result.Message),
		slog.Float64("execution_time", result.ExecutionTime))
}

// reloadSchedule re-reads the config file and applies a changed schedule.
// Everything else (secrets, endpoints) still requires a restart.
func (d *Daemon) reloadSchedule() {
	fresh, err := config.Load(d.configPath)
	if err != nil {
		slog.Error("config reload failed", logfields.Error(err))
		return
	}

	newSchedule := fresh.Daemon.Schedule.Std()
	if newSchedule == d.cfg.Daemon.Schedule.Std() {
		return
	}

	if err := d.scheduler.Reschedule(newSchedule); err != nil {
		slog.Error("reschedule failed", logfields.Error(err))
		return
	}
	d.cfg.Daemon.Schedule = fresh.Daemon.Schedule
	slog.Info("schedule updated", "interval", newSchedule.String())
}
