// freezrd is the Linux resource-guardian daemon: it watches KESL, Node,
// Snap, Firefox, Brave, Telegram and Nvim for CPU/memory violations and
// reacts to memory pressure, escalating through nice/freeze/kill tiers
// and, where configured, systemd restarts and cgroup-v2 quotas.
//
// Structurally grounded on cmd/sysbox-fs/main.go's cli.App wiring: same
// flag set shape, same app.Before logging setup, same signal-driven exit
// handler and systemd readiness notification.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	systemd "github.com/coreos/go-systemd/v22/daemon"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/MajotraderLucky/freezr/cgroup"
	"github.com/MajotraderLucky/freezr/classify"
	"github.com/MajotraderLucky/freezr/clock"
	"github.com/MajotraderLucky/freezr/config"
	"github.com/MajotraderLucky/freezr/domain"
	"github.com/MajotraderLucky/freezr/engine"
	"github.com/MajotraderLucky/freezr/executor"
	"github.com/MajotraderLucky/freezr/metrics"
	"github.com/MajotraderLucky/freezr/pressure"
	"github.com/MajotraderLucky/freezr/reactor"
	"github.com/MajotraderLucky/freezr/statsexport"
	"github.com/MajotraderLucky/freezr/systemdctl"
)

const usage string = `freezrd resource guardian

freezrd is a daemon that watches a fixed set of Linux processes for
runaway CPU/memory usage and memory-pressure conditions, and applies a
tiered nice/freeze/kill/restart response to keep the host responsive.
`

var version string // populated at build time

// exitHandler waits for a termination signal, notifies systemd that the
// daemon is stopping, runs the Engine's shutdown cleanup, and exits.
func exitHandler(signalChan chan os.Signal, eng *engine.Engine) {
	s := <-signalChan

	logrus.Warnf("freezrd caught signal: %s", s)
	logrus.Info("Stopping (gracefully) ...")

	systemd.SdNotify(false, systemd.SdNotifyStopping)

	if err := eng.Shutdown(); err != nil {
		logrus.Warnf("shutdown cleanup failed: %v", err)
	}

	logrus.Info("Exiting ...")
	os.Exit(0)
}

// runLoop drives the Engine one tick per interval, exporting stats after
// every tick, until the process is asked to stop via exitHandler.
func runLoop(eng *engine.Engine, exporter *statsexport.Exporter, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		eng.Tick()
		if err := exporter.Write(eng.Snapshot()); err != nil {
			logrus.Warnf("failed to export stats: %v", err)
		}
	}
}

func main() {
	app := cli.NewApp()
	app.Name = "freezrd"
	app.Usage = usage
	app.Version = version

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config",
			Value: "/etc/freezr/config.toml",
			Usage: "path to the TOML configuration file",
		},
		cli.StringFlag{
			Name:  "stats-file",
			Value: statsexport.DefaultPath,
			Usage: "path to write the JSON stats snapshot after every tick",
		},
		cli.StringFlag{
			Name:  "log",
			Value: "",
			Usage: "log file path or empty string for stderr output (default: \"\")",
		},
		cli.StringFlag{
			Name:  "log-level",
			Value: "info",
			Usage: "log categories to include (debug, info, warning, error, fatal)",
		},
		cli.StringFlag{
			Name:  "log-format",
			Value: "text",
			Usage: "log format; must be json or text",
		},
	}

	app.Before = func(ctx *cli.Context) error {
		if path := ctx.GlobalString("log"); path != "" {
			f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND|os.O_SYNC, 0666)
			if err != nil {
				logrus.Fatalf("Error opening log file %v: %v. Exiting ...", path, err)
				return err
			}
			logrus.SetOutput(f)
		} else {
			logrus.SetOutput(os.Stderr)
		}

		if ctx.GlobalString("log-format") == "json" {
			logrus.SetFormatter(&logrus.JSONFormatter{
				TimestampFormat: "2006-01-02 15:04:05",
			})
		} else {
			logrus.SetFormatter(&logrus.TextFormatter{
				TimestampFormat: "2006-01-02 15:04:05",
				FullTimestamp:   true,
			})
		}

		switch logLevel := ctx.GlobalString("log-level"); logLevel {
		case "debug":
			logrus.SetLevel(logrus.DebugLevel)
		case "info":
			logrus.SetLevel(logrus.InfoLevel)
		case "warning":
			logrus.SetLevel(logrus.WarnLevel)
		case "error":
			logrus.SetLevel(logrus.ErrorLevel)
		case "fatal":
			logrus.SetLevel(logrus.FatalLevel)
		default:
			logrus.Fatalf("log-level option '%v' not recognized. Exiting ...", logLevel)
		}

		return nil
	}

	app.Action = func(ctx *cli.Context) error {
		logrus.Info("Initiating freezrd ...")

		cfg, err := config.Load(ctx.GlobalString("config"))
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		sys := clock.NewSystem()
		metricsSvc := metrics.NewService()
		exec := executor.NewSignal()
		controller := systemdctl.NewController(sys, cfg.Monitoring.MinRestartIntervalSecs)
		psiReader := pressure.NewReader()
		cgroupMgr := cgroup.NewManager(cfg.Cgroup.ToDomainCgroup())

		if cfg.Cgroup.Enabled {
			if err := cgroupMgr.Initialize(); err != nil {
				logrus.Warnf("cgroup initialization failed, continuing without quota enforcement: %v", err)
			}
		}

		eng := &engine.Engine{
			Kesl: classify.NewKeslWatcher(classify.KeslConfig{
				Enabled:       cfg.Kesl.Enabled,
				CPUThreshold:  cfg.Kesl.CPUThreshold,
				MemThresholdMB: cfg.Kesl.MemoryThresholdMB,
				MaxViolations: cfg.Kesl.MaxViolations,
				UnitName:      cfg.Kesl.ServiceName,
			}, metricsSvc, controller),
			Node: classify.NewNodeWatcher(cfg.Node.ToDomainNode(), metricsSvc, exec),
			Snap: classify.NewSingleTierWatcher(domain.ClassSnap, cfg.Snap.ToDomainSnap(), metricsSvc, exec, sys),
			Firefox: classify.NewTwoTierWatcher(domain.ClassFirefox, cfg.Firefox.ToDomainTwoTier(), metricsSvc, exec, sys),
			Brave: classify.NewTwoTierWatcher(domain.ClassBrave, cfg.Brave.ToDomainTwoTier(), metricsSvc, exec, sys),
			Telegram: classify.NewTwoTierWatcher(domain.ClassTelegram, cfg.Telegram.ToDomainTwoTier(), metricsSvc, exec, sys),
			Pressure: reactor.NewReactor(cfg.Pressure.ToDomainPressure(), psiReader, metricsSvc, exec, sys),
			Metrics:  metricsSvc,
		}

		if cfg.Cgroup.Enabled {
			eng.CgroupManager = cgroupMgr
		}

		exporter := statsexport.NewExporter(ctx.GlobalString("stats-file"))

		exitChan := make(chan os.Signal, 1)
		signal.Notify(exitChan, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
		go exitHandler(exitChan, eng)

		systemd.SdNotify(false, systemd.SdNotifyReady)
		logrus.Info("Ready ...")

		runLoop(eng, exporter, time.Duration(cfg.Monitoring.CheckIntervalSecs)*time.Second)

		return nil
	}

	if err := app.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}
