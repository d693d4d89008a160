// Package driver loads declaration files, binds them as one compilation unit
// and collects the diagnostics and IR.
package driver

import (
	"context"
	"fmt"
	"time"

	"emerge/internal/binding"
	"emerge/internal/decl"
	"emerge/internal/diag"
	"emerge/internal/ir"
	"emerge/internal/observ"
	"emerge/internal/phase"
	"emerge/internal/project"
	"emerge/internal/source"
	"emerge/internal/trace"
)

// DefaultMaxDiagnostics applies when Options.MaxDiagnostics is not positive.
const DefaultMaxDiagnostics = 100

type Options struct {
	MaxDiagnostics   int
	WarningsAsErrors bool
	DisableLints     bool
	EnableTimings    bool
	// EmitIR lowers every package after a binding without errors.
	EmitIR bool
	// Jobs bounds parallel loading and decoding; 0 means GOMAXPROCS.
	Jobs int
	// Cache, when set, serves repeated runs over unchanged files.
	Cache *DiskCache
	// Progress, when set, receives per-file and per-stage events.
	Progress ProgressSink
}

type Result struct {
	FileSet *source.FileSet
	Files   []source.FileID
	Bag     *diag.Bag
	// Context and Types are nil when the result came from the cache.
	Context   *binding.Context
	Types     []*binding.BaseType
	Snapshots []*ir.Snapshot
	Digest    project.Digest
	Cached    bool
	Timing    *observ.Report
	// Errors counts error diagnostics as they were reported, so errors the
	// bag dropped over its limit still fail the run.
	Errors int
}

func (r *Result) HasErrors() bool {
	return r.Errors > 0 || r.Bag.HasErrors()
}

// Check binds the declaration files found under paths.
// A non-nil error means the run itself failed (I/O, cancellation, internal
// compiler error); problems in the declarations are reported in Result.Bag.
func Check(ctx context.Context, paths []string, opts Options) (*Result, error) {
	if opts.MaxDiagnostics <= 0 {
		opts.MaxDiagnostics = DefaultMaxDiagnostics
	}
	var timer *observ.Timer
	if opts.EnableTimings {
		timer = observ.NewTimer()
	}
	span := trace.Begin(trace.FromContext(ctx), trace.Site{Scope: trace.ScopeDriver, Name: "check"}, trace.SpanFrom(ctx))
	ctx = trace.WithSpan(ctx, span.ID())

	files, err := ListDeclFiles(paths)
	if err != nil {
		span.End(err.Error())
		return nil, err
	}
	res := &Result{
		FileSet: source.NewFileSet(),
		Bag:     diag.NewBag(opts.MaxDiagnostics),
	}
	emitQueued(opts.Progress, files)

	timer.Measure("load", func() {
		res.Files, err = loadFiles(ctx, res.FileSet, files, opts.Jobs, opts.Progress)
	})
	if err != nil {
		span.End(err.Error())
		return nil, err
	}
	res.Digest = cacheKey(unitDigest(res.FileSet, res.Files), opts)

	if hit, err := opts.Cache.restore(res); err != nil {
		span.End(err.Error())
		return nil, err
	} else if hit {
		res.Cached = true
		emitOutcome(opts.Progress, res, files, StageLoad)
		finish(res, timer)
		span.End("cached")
		return res, nil
	}

	counter := diag.NewCounter(diag.BagReporter{Bag: res.Bag})
	var units []*decl.Unit
	timer.Measure("parse", func() {
		units, err = parseFiles(ctx, res.FileSet, res.Files, opts.Jobs, counter, opts.Progress)
	})
	if err != nil {
		span.End(err.Error())
		return nil, err
	}
	if err := bind(ctx, res, files, units, counter, opts, timer); err != nil {
		span.End(err.Error())
		return nil, err
	}
	if err := opts.Cache.store(res); err != nil {
		span.End(err.Error())
		return nil, err
	}
	last := StageBind
	if len(res.Snapshots) > 0 {
		last = StageLower
	}
	emitOutcome(opts.Progress, res, files, last)
	finish(res, timer)
	span.End(describeFiles(len(files)))
	return res, nil
}

func finish(res *Result, timer *observ.Timer) {
	if timer == nil {
		return
	}
	report := timer.Report()
	res.Timing = &report
	appendTimingDiagnostic(res.Bag, timingPayload{Kind: "check", TotalMS: report.TotalMS, Phases: report.Phases})
}

// bind runs the binder and, when requested, lowering. An internal compiler
// error raised by either is returned as an error wrapping *phase.InternalError.
func bind(ctx context.Context, res *Result, files []string, units []*decl.Unit, counter *diag.Counter, opts Options, timer *observ.Timer) (err error) {
	defer recoverICE(&err, "binding "+describeFiles(len(res.Files)))
	if err := ctx.Err(); err != nil {
		return err
	}

	var reporter diag.Reporter = counter
	if opts.DisableLints {
		reporter = lintFilter{next: reporter}
	}
	bctx := binding.NewContext(ctx)
	res.Context = bctx
	emitStage(opts.Progress, files, StageBind, StatusWorking, 0)
	start := time.Now()
	res.Types = bctx.BindUnits(binding.NewDiagnosis(reporter), timer, units...)
	emit(opts.Progress, Event{Stage: StageBind, Status: StatusDone, Elapsed: time.Since(start)})

	res.Bag.Sort()
	res.Errors = counter.Errors()
	if opts.WarningsAsErrors {
		res.Bag.PromoteWarnings()
		res.Errors += counter.Warnings()
	}
	if opts.EmitIR && !res.HasErrors() {
		emitStage(opts.Progress, files, StageLower, StatusWorking, 0)
		timer.Measure("lower", func() {
			for _, pkg := range bctx.Packages() {
				res.Snapshots = append(res.Snapshots, bctx.Snapshot(pkg))
			}
		})
	}
	return nil
}

// recoverICE turns a panicking *phase.InternalError into *errp. Other panics
// are re-raised.
func recoverICE(errp *error, what string) {
	r := recover()
	if r == nil {
		return
	}
	ice, ok := r.(*phase.InternalError)
	if !ok {
		panic(r)
	}
	*errp = fmt.Errorf("%s: %w", what, ice)
}

// lintFilter drops lint warnings.
type lintFilter struct {
	next diag.Reporter
}

func (f lintFilter) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note) {
	if code >= diag.LntInfo && code < diag.PrjInfo {
		return
	}
	f.next.Report(code, sev, primary, msg, notes)
}
