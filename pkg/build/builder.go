package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"calculette-hq/mtranspile/pkg/codegen/python"
	"calculette-hq/mtranspile/pkg/config"
	"calculette-hq/mtranspile/pkg/mlang"
	mlangErrors "calculette-hq/mtranspile/pkg/mlang/errors"
	"calculette-hq/mtranspile/pkg/mlang/formula"
	"calculette-hq/mtranspile/pkg/mlang/symbols"
	"calculette-hq/mtranspile/pkg/mlang/translate"
	"calculette-hq/mtranspile/pkg/source"
	"calculette-hq/mtranspile/pkg/state"
	"calculette-hq/mtranspile/pkg/telemetry/logging"
	"calculette-hq/mtranspile/pkg/telemetry/metrics"
	"calculette-hq/mtranspile/pkg/telemetry/tracing"
)

// Build triggers.
const (
	TriggerCLI      = "cli"
	TriggerFSNotify = "fsnotify"
	TriggerCron     = "cron"
)

// Options select what a run does.
type Options struct {
	// Trigger labels the run in metrics and traces.
	Trigger string

	// File restricts translation to one rule or verification file and
	// skips ordering and emission.
	File string

	// SaveState saves the translation state and stops before ordering.
	SaveState bool

	// LoadState restores the last saved state instead of loading symbols
	// and translating.
	LoadState bool

	// Lint translates and orders but writes nothing.
	Lint bool

	// Progress, when set, follows the translated files.
	Progress Progress
}

// Progress reports the translation of the rule and verification files.
type Progress interface {
	Start(total int64)
	Update(current int64)
	Finish()
}

// Result describes a finished run.
type Result struct {
	RunID         uuid.UUID
	Revision      string
	Variables     symbols.Counts
	Formulas      int
	Verifications int
	Ordered       []string
	Passes        int
	Placeholders  int
	Duplicates    int
	Stats         translate.Stats
	Diagnostics   []*mlangErrors.Error
	Written       []string
	StateSaved    bool
	Duration      time.Duration
}

// Builder runs the transpilation pipeline.
type Builder struct {
	cfg     *config.Config
	loader  *source.Loader
	store   state.Store
	metrics *metrics.Collector
	tracer  *tracing.Tracer
	logger  *slog.Logger
}

// NewBuilder creates a builder for cfg. State is only touched when a run
// asks for it, through the store set by WithStore.
func NewBuilder(cfg *config.Config) *Builder {
	// A disabled tracer never fails.
	tracer, _ := tracing.New(&config.TracingConfig{})
	return &Builder{
		cfg:    cfg,
		loader: source.NewLoader(&cfg.Input),
		tracer: tracer,
		logger: slog.Default(),
	}
}

// WithStore sets the state store.
func (b *Builder) WithStore(store state.Store) *Builder {
	b.store = store
	return b
}

// WithMetrics sets the metrics collector.
func (b *Builder) WithMetrics(collector *metrics.Collector) *Builder {
	b.metrics = collector
	return b
}

// WithTracer sets the tracer.
func (b *Builder) WithTracer(tracer *tracing.Tracer) *Builder {
	if tracer != nil {
		b.tracer = tracer
	}
	return b
}

// WithLogger sets the logger.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	if logger != nil {
		b.logger = logger
		b.loader.WithLogger(logging.Component(logger, "source"))
	}
	return b
}

// Run executes one build.
func (b *Builder) Run(ctx context.Context, opts Options) (res *Result, err error) {
	if opts.Trigger == "" {
		opts.Trigger = TriggerCLI
	}
	if (opts.SaveState || opts.LoadState) && b.store == nil {
		return nil, errors.New("state store is not configured")
	}

	start := time.Now()
	res = &Result{RunID: uuid.New()}
	ctx = logging.WithRunID(ctx, res.RunID.String())

	ctx, span := b.start(ctx, "build",
		tracing.AttrRunID.String(res.RunID.String()),
		tracing.AttrTrigger.String(opts.Trigger),
		tracing.AttrApplication.String(b.cfg.Transpile.Application))
	defer func() {
		res.Duration = time.Since(start)
		status := metrics.StatusSuccess
		if err != nil {
			status = metrics.StatusError
			b.logger.ErrorContext(ctx, "build failed", "error", err, "duration", res.Duration)
		}
		if b.metrics != nil {
			b.metrics.RecordBuild(status, opts.Trigger, res.Duration)
		}
		tracing.End(span, err)
	}()

	b.logger.InfoContext(ctx, "build started", "trigger", opts.Trigger, "application", b.cfg.Transpile.Application)

	set, err := b.discover(ctx, opts, res)
	if err != nil {
		return res, err
	}

	var (
		table    *symbols.Table
		registry *formula.Registry
	)
	if opts.LoadState {
		table, registry, err = b.loadState(ctx, res)
	} else {
		table, registry, err = b.translate(ctx, set, opts, res)
	}
	if err != nil {
		return res, err
	}
	res.Variables = table.Counts()
	res.Formulas = registry.Len()
	res.Verifications = len(registry.Verifications())
	res.Duplicates = registry.Duplicates()
	if b.metrics != nil {
		b.metrics.SetVariables(string(symbols.KindInput), res.Variables.Input)
		b.metrics.SetVariables(string(symbols.KindComputed), res.Variables.Computed)
		b.metrics.SetVariables(string(symbols.KindConstant), res.Variables.Constant)
		b.metrics.SetFormulas(metrics.FormulasRegistered, res.Formulas)
		b.metrics.SetFormulas(metrics.FormulasDuplicate, res.Duplicates)
	}

	if err := b.applyDependencies(ctx, set, registry); err != nil {
		return res, err
	}

	if opts.SaveState {
		err := b.phase(ctx, "state", func(ctx context.Context) error {
			snap := state.NewSnapshot(res.RunID, b.cfg.Transpile.Application, res.Revision, table, registry)
			return b.store.Save(ctx, snap)
		})
		if err != nil {
			return res, fmt.Errorf("save state: %w", err)
		}
		res.StateSaved = true
		b.logger.InfoContext(ctx, "state saved, exiting", "formulas", res.Formulas)
		return res, nil
	}
	if opts.File != "" {
		b.logger.InfoContext(ctx, "single file translated, nothing emitted", "file", opts.File)
		return res, nil
	}

	var program *mlang.Program
	err = b.phase(ctx, "order", func(ctx context.Context) error {
		var err error
		program, err = mlang.Order(table, registry, logging.Component(b.logger, "order"))
		if err != nil {
			return err
		}
		res.Ordered = program.Order
		res.Passes = program.Passes
		res.Diagnostics = program.Diagnostics
		for _, d := range program.Diagnostics {
			res.Placeholders++
			b.logger.WarnContext(ctx, d.Message, "type", d.Type)
			if b.metrics != nil {
				b.metrics.RecordDiagnostic(string(d.Type))
			}
		}
		trace.SpanFromContext(ctx).SetAttributes(
			tracing.AttrFormulas.Int(len(program.Order)),
			tracing.AttrPasses.Int(program.Passes))
		return nil
	})
	if err != nil {
		return res, err
	}
	if b.metrics != nil {
		b.metrics.SetFormulas(metrics.FormulasOrdered, len(res.Ordered))
		b.metrics.SetFormulas(metrics.FormulasPlaceholder, res.Placeholders)
		b.metrics.SetOrderingPasses(res.Passes)
	}
	b.logger.InfoContext(ctx, "formulas ordered",
		"ordered", len(res.Ordered),
		"passes", res.Passes,
		"placeholders", res.Placeholders)

	if opts.Lint {
		return res, nil
	}

	err = b.phase(ctx, "emit", func(ctx context.Context) error {
		artifacts, err := python.Render(&python.Program{
			Symbols:       table,
			Formulas:      program.Formulas,
			Verifications: registry.Verifications(),
		})
		if err != nil {
			return err
		}
		res.Written, err = python.NewEmitter(b.cfg.Output.Dir).
			WithLogger(logging.Component(b.logger, "emit")).
			Write(ctx, artifacts)
		return err
	})
	if err != nil {
		return res, fmt.Errorf("emit: %w", err)
	}
	b.logger.InfoContext(ctx, "build finished", "dir", b.cfg.Output.Dir, "files", len(res.Written))
	return res, nil
}

// discover resolves the AST directory and the files of the run.
func (b *Builder) discover(ctx context.Context, opts Options, res *Result) (*source.Set, error) {
	var set *source.Set
	err := b.phase(ctx, "source", func(ctx context.Context) error {
		dir, revision, err := source.Fetch(ctx, &b.cfg.Input, logging.Component(b.logger, "git"))
		if err != nil {
			return err
		}
		if dir == "" {
			return errors.New("no AST directory given")
		}
		res.Revision = revision

		set, err = b.loader.Discover(ctx, dir)
		if err != nil {
			return err
		}
		set.Revision = revision
		if opts.File != "" {
			return set.Restrict(opts.File)
		}
		return nil
	})
	return set, err
}

// loadState restores the Symbol Table and the Registry of the last saved
// snapshot.
func (b *Builder) loadState(ctx context.Context, res *Result) (*symbols.Table, *formula.Registry, error) {
	var (
		table    *symbols.Table
		registry *formula.Registry
	)
	err := b.phase(ctx, "state", func(ctx context.Context) error {
		snap, err := b.store.Load(ctx)
		if err != nil {
			return err
		}
		table, registry, err = snap.Restore()
		if err != nil {
			return err
		}
		if res.Revision == "" {
			res.Revision = snap.SourceRevision
		}
		b.logger.InfoContext(ctx, "state loaded",
			"saved_run_id", snap.RunID,
			"created_at", snap.CreatedAt,
			"formulas", len(snap.Formulas))
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("load state: %w", err)
	}
	return table, registry, nil
}

// translate loads the symbols then translates the rule files and, unless
// skipped, the verification files.
func (b *Builder) translate(ctx context.Context, set *source.Set, opts Options, res *Result) (*symbols.Table, *formula.Registry, error) {
	var table *symbols.Table
	err := b.phase(ctx, "symbols", func(ctx context.Context) error {
		var err error
		table, err = b.loader.Symbols(ctx, set)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	b.recordFile(source.CategoryVariables)
	if set.Constants != "" {
		b.recordFile(source.CategoryConstants)
	}

	registry := formula.NewRegistry().
		WithStrict(b.cfg.Transpile.Strict).
		WithLogger(logging.Component(b.logger, "registry"))
	translator := translate.New(table, registry).
		WithFunctions(translate.NewFunctionTable(b.cfg.Transpile.Functions)).
		WithMaxDepth(b.cfg.Transpile.MaxDepth).
		WithMaxClones(b.cfg.Transpile.MaxClones).
		WithLogger(logging.Component(b.logger, "translate"))

	files := append([]string(nil), set.Rules...)
	categories := make(map[string]source.Category, len(files))
	for _, p := range set.Rules {
		categories[p] = source.CategoryRules
	}
	if !b.cfg.Transpile.SkipVerifications {
		for _, p := range set.Verifications {
			files = append(files, p)
			categories[p] = source.CategoryVerifications
		}
	}

	err = b.phase(ctx, "translate", func(ctx context.Context) error {
		if opts.Progress != nil {
			opts.Progress.Start(int64(len(files)))
		}
		for i, path := range files {
			if err := b.translateFile(ctx, translator, path); err != nil {
				return err
			}
			b.recordFile(categories[path])
			if opts.Progress != nil {
				opts.Progress.Update(int64(i + 1))
			}
		}
		if opts.Progress != nil {
			opts.Progress.Finish()
		}
		return nil
	})
	res.Stats = translator.Stats()
	b.recordStats(res.Stats)
	if err != nil {
		return nil, nil, err
	}
	b.logger.InfoContext(ctx, "translation finished",
		"files", len(files),
		"formulas", registry.Len(),
		"verifications", len(registry.Verifications()),
		"clones", res.Stats.Clones)
	return table, registry, nil
}

func (b *Builder) translateFile(ctx context.Context, translator *translate.Translator, path string) error {
	ctx = logging.WithFile(ctx, filepath.Base(path))
	entries, err := b.loader.Entries(ctx, path, b.cfg.Transpile.Application)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		node, err := entry.Decode()
		if err != nil {
			return err
		}
		if _, _, err := translator.Translate(node); err != nil {
			return err
		}
	}
	b.logger.DebugContext(ctx, "file translated", "entries", len(entries))
	return nil
}

// applyDependencies replaces derived dependency sets with the
// precomputed ones.
func (b *Builder) applyDependencies(ctx context.Context, set *source.Set, registry *formula.Registry) error {
	deps, err := b.loader.Dependencies(ctx, set)
	if err != nil {
		return err
	}
	if deps == nil {
		return nil
	}
	b.recordFile(source.CategoryDependencies)
	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		registry.SetDependencies(name, deps[name])
	}
	return nil
}

// phase runs fn in a child span and records its duration.
func (b *Builder) phase(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	start := time.Now()
	ctx, span := b.start(ctx, name)
	err := fn(ctx)
	tracing.End(span, err)
	if b.metrics != nil {
		b.metrics.RecordPhase(name, time.Since(start))
	}
	b.logger.DebugContext(ctx, "phase finished", "phase", name, "duration", time.Since(start))
	return err
}

func (b *Builder) start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return b.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (b *Builder) recordFile(category source.Category) {
	if b.metrics != nil {
		b.metrics.RecordFile(string(category))
	}
}

func (b *Builder) recordStats(stats translate.Stats) {
	if b.metrics == nil {
		return
	}
	for kind, n := range stats.Nodes {
		b.metrics.RecordNodes(string(kind), n)
	}
	for name, n := range stats.UnknownFunctions {
		b.metrics.RecordUnknownFunction(name, n)
	}
}
