package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"

	"calculette-hq/mtranspile/pkg/build"
	"calculette-hq/mtranspile/pkg/config"
	"calculette-hq/mtranspile/pkg/telemetry/metrics"
)

// Runner runs one build. *build.Builder implements it.
type Runner interface {
	Run(ctx context.Context, opts build.Options) (*build.Result, error)
}

// Watcher rebuilds when AST files change or on a cron schedule.
// Builds never overlap.
type Watcher struct {
	cfg     *config.Config
	runner  Runner
	opts    build.Options
	metrics *metrics.Collector
	logger  *slog.Logger

	buildMu sync.Mutex

	mu       sync.Mutex
	running  bool
	addr     net.Addr
	listenCh chan struct{}
}

// New creates a watcher. The schedule, when set, must be a standard
// cron expression.
func New(cfg *config.Config, runner Runner) (*Watcher, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if runner == nil {
		return nil, errors.New("runner is required")
	}
	if cfg.Watch.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Watch.Schedule); err != nil {
			return nil, fmt.Errorf("invalid cron schedule %q: %w", cfg.Watch.Schedule, err)
		}
	}
	return &Watcher{
		cfg:      cfg,
		runner:   runner,
		logger:   slog.Default(),
		listenCh: make(chan struct{}),
	}, nil
}

// WithLogger sets the logger.
func (w *Watcher) WithLogger(logger *slog.Logger) *Watcher {
	if logger != nil {
		w.logger = logger
	}
	return w
}

// WithMetrics serves collector on Watch.MetricsAddress.
func (w *Watcher) WithMetrics(collector *metrics.Collector) *Watcher {
	w.metrics = collector
	return w
}

// WithOptions sets the options passed to every build. Trigger is
// overwritten per build.
func (w *Watcher) WithOptions(opts build.Options) *Watcher {
	w.opts = opts
	return w
}

// Run builds once, then rebuilds on every change until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return errors.New("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	var events <-chan fsnotify.Event
	var errs <-chan error
	if dir := w.cfg.Input.Dir; dir != "" && !w.cfg.Input.Git.Enabled {
		fsw, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("failed to create fsnotify watcher: %w", err)
		}
		defer fsw.Close()

		if err := fsw.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		events, errs = fsw.Events, fsw.Errors
		w.logger.Info("watching AST directory",
			"dir", dir,
			"debounce_ms", w.cfg.Watch.Debounce.Milliseconds(),
		)
	} else if w.cfg.Input.Git.Enabled && w.cfg.Watch.Schedule == "" {
		w.logger.Warn("git source without schedule, only the initial build runs")
	}

	if w.cfg.Watch.Schedule != "" {
		scheduler := cron.New()
		if _, err := scheduler.AddFunc(w.cfg.Watch.Schedule, func() {
			w.rebuild(ctx, build.TriggerCron)
		}); err != nil {
			return fmt.Errorf("failed to schedule builds: %w", err)
		}
		scheduler.Start()
		defer func() {
			<-scheduler.Stop().Done()
		}()
		w.logger.Info("build scheduler started", "schedule", w.cfg.Watch.Schedule)
	}

	if w.cfg.Watch.MetricsAddress != "" && w.metrics != nil {
		srv, err := w.serveMetrics()
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	debounce := NewDebouncer(w.cfg.Watch.Debounce)
	defer debounce.Stop()

	w.rebuild(ctx, build.TriggerCLI)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watcher stopped")
			return nil

		case event, ok := <-events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if !shouldProcess(event) {
				continue
			}
			w.logger.Debug("AST file changed", "path", event.Name, "op", event.Op.String())
			debounce.Trigger(func() {
				w.rebuild(ctx, build.TriggerFSNotify)
			})

		case err, ok := <-errs:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			w.logger.Error("file watcher error", "error", err)
		}
	}
}

// MetricsAddr returns the address of the metrics endpoint once it is
// listening, or nil when ctx is done first.
func (w *Watcher) MetricsAddr(ctx context.Context) net.Addr {
	select {
	case <-w.listenCh:
		w.mu.Lock()
		defer w.mu.Unlock()
		return w.addr
	case <-ctx.Done():
		return nil
	}
}

func (w *Watcher) serveMetrics() (*http.Server, error) {
	path := w.cfg.Telemetry.Metrics.Path
	if path == "" {
		path = config.DefaultMetricsPath
	}
	mux := http.NewServeMux()
	mux.Handle(path, w.metrics.Handler())

	ln, err := net.Listen("tcp", w.cfg.Watch.MetricsAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", w.cfg.Watch.MetricsAddress, err)
	}
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			w.logger.Error("metrics server failed", "error", err)
		}
	}()

	w.mu.Lock()
	w.addr = ln.Addr()
	w.mu.Unlock()
	close(w.listenCh)

	w.logger.Info("serving metrics", "address", ln.Addr().String(), "path", path)
	return srv, nil
}

// rebuild runs one build. Failures are logged and watching goes on.
func (w *Watcher) rebuild(ctx context.Context, trigger string) {
	w.buildMu.Lock()
	defer w.buildMu.Unlock()

	if ctx.Err() != nil {
		return
	}

	opts := w.opts
	opts.Trigger = trigger
	res, err := w.runner.Run(ctx, opts)
	if err != nil {
		w.logger.Error("build failed", "trigger", trigger, "error", err)
		return
	}
	w.logger.Info("build finished",
		"trigger", trigger,
		"run_id", res.RunID.String(),
		"formulas", res.Formulas,
		"written", len(res.Written),
		"duration_ms", res.Duration.Milliseconds(),
	)
}

// shouldProcess reports whether event concerns a visible JSON file.
func shouldProcess(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return strings.EqualFold(filepath.Ext(base), ".json")
}
