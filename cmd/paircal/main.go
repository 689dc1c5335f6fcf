package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"paircal/internal/capture"
	"paircal/internal/config"
	appLog "paircal/internal/log"
	"paircal/internal/schedule"
	"paircal/internal/tz"
	"paircal/internal/web"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	listen     string
	once       bool
	debug      bool
}

func main() {
	appLog.Info("paircal starting", "version", "0.1.0")

	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI --listen overrides config file listen if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	// Build the session table up front. A malformed entry rejects the whole
	// table: rendering a broken schedule is worse than refusing to start.
	table, err := buildTable(conf)
	if err != nil {
		appLog.Error("invalid session table", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	catalog := tz.NewCatalog()

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"source_timezone", conf.SourceTimezone,
		"snapshot", conf.SnapshotCron,
		"session_count", len(table),
		"once", flags.once,
		"debug", flags.debug,
	)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	srv := web.NewServer(conf, table, catalog, flags.debug)
	httpSrv := &http.Server{
		Addr:    conf.Listen,
		Handler: srv.Handler(),
	}

	serveErr := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+conf.Listen)
		serveErr <- httpSrv.ListenAndServe()
	}()

	if flags.once {
		// Single snapshot cycle against our own server, then exit.
		if err := waitReady(ctx, conf.Listen); err != nil {
			appLog.Error("server did not become ready", err)
		} else if err := runCapture(ctx, conf, flags.debug); err != nil {
			appLog.Error("snapshot capture failed", err)
		}
		cancel()
	} else if conf.SnapshotCron != "" {
		c := cron.New()
		_, err := c.AddFunc(conf.SnapshotCron, func() {
			if err := runCapture(ctx, conf, flags.debug); err != nil {
				appLog.Error("snapshot capture failed", err)
			}
		})
		if err != nil {
			appLog.Error("invalid snapshot cron expression", err, "snapshot", conf.SnapshotCron)
			os.Exit(1)
		}
		c.Start()
		defer c.Stop()
	}

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Error("HTTP server failed", err)
		}
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("HTTP shutdown failed", err)
	}

	appLog.Info("paircal exiting")
}

// buildTable normalizes the configured session entries into the internal
// session form, resolving the source zone once for the whole table.
func buildTable(conf *config.Config) ([]schedule.Session, error) {
	srcLoc, err := time.LoadLocation(conf.SourceTimezone)
	if err != nil {
		return nil, err
	}

	table := make([]schedule.Session, 0, len(conf.Sessions))
	for _, entry := range conf.Sessions {
		var sess schedule.Session
		if entry.Relative() {
			sh, sm, err := schedule.ParseClock(entry.Start)
			if err != nil {
				return nil, err
			}
			eh, em, err := schedule.ParseClock(entry.End)
			if err != nil {
				return nil, err
			}
			sess, err = schedule.NewWeeklySession(entry.Host, entry.Weekday, sh, sm, eh, em, srcLoc)
			if err != nil {
				return nil, err
			}
		} else {
			from, to, err := entry.ParseInstants()
			if err != nil {
				return nil, err
			}
			sess, err = schedule.NewInstantSession(entry.Host, from.In(srcLoc), to.In(srcLoc))
			if err != nil {
				return nil, err
			}
		}
		table = append(table, sess)
	}
	return table, nil
}

// waitReady polls /health until the HTTP server accepts requests.
func waitReady(ctx context.Context, listen string) error {
	url := "http://" + listen + "/health"
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(200 * time.Millisecond)
	}
	return errors.New("timed out waiting for " + url)
}

// runCapture snapshots the schedule page into the configured preview path.
func runCapture(ctx context.Context, conf *config.Config, debug bool) error {
	outPath := conf.PreviewPath
	if debug {
		outPath = "./cache/preview.png"
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	return capture.SchedulePNG(ctx, capture.Options{
		URL:        "http://" + conf.Listen + "/",
		OutputPath: outPath,
	})
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/paircal/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Serve, capture one schedule snapshot, and exit")
	flag.BoolVar(&cfg.debug, "debug", false, "Use local cache paths for debug artifacts")

	flag.Parse()

	return cfg
}
