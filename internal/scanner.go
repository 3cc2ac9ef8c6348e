package internal

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const statsInterval = 2 * time.Second

// run is one traversal-and-scan pass. Nothing in it outlives the call.
type run struct {
	opts    Options
	mode    Mode
	roots   []string
	needles []*Needle
	agg     *aggregator
	stats   runCounters
}

func newRun(opts Options, mode Mode, roots []string, needles []*Needle) *run {
	r := &run{opts: opts, mode: mode, roots: roots, needles: needles}
	r.agg = newAggregator(mode, opts.OnDiagnostic)
	r.stats.Start()
	return r
}

// report records a diagnostic. It returns a fatal error only when the
// abort policy applies.
func (r *run) report(d Diagnostic) error {
	r.stats.Diagnostics.Add(1)
	r.agg.diag(d)
	logrus.WithFields(logrus.Fields{"kind": d.Kind, "path": d.Path, "err": d.Err}).Warn("Skipped")
	if d.Kind == DiagWalkEntry && r.opts.ErrorPolicy == AbortOnError {
		return fmt.Errorf("%w: %s: %w", ErrWalkFailFast, d.Path, d.Err)
	}
	return nil
}

// process handles one file entry: record it, or scan and record it.
func (r *run) process(e FileEntry) error {
	if r.mode == ModeList {
		r.agg.add(e.Path, nil)
		return nil
	}
	r.stats.FilesScanned.Add(1)
	matches, err := collectMatches(e, r.needles, r.report)
	if err != nil {
		return err
	}
	if r.agg.add(e.Path, matches) {
		r.stats.Matches.Add(int64(len(matches)))
	}
	return nil
}

func (r *run) execute(ctx context.Context) (*RunResult, error) {
	var err error
	if r.opts.parallel() {
		err = r.parallel(ctx)
	} else {
		err = r.sequential(ctx)
	}
	if err != nil {
		return nil, err
	}
	return r.agg.result(r.opts.Sorted, r.stats.Snapshot()), nil
}

func (r *run) sequential(ctx context.Context) error {
	w := newWalker(&r.opts, r.roots, r.report)
	return w.Walk(ctx, func(e FileEntry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.stats.FilesFound.Add(1)
		return r.process(e)
	})
}

// parallel walks on one goroutine and scans on an ants pool. The first
// fatal error cancels the run; files already being scanned finish.
func (r *run) parallel(ctx context.Context) error {
	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	g, gctx := errgroup.WithContext(runCtx)

	entries := make(chan FileEntry, r.opts.QueueSize)
	var wg sync.WaitGroup

	pool, err := ants.NewPoolWithFunc(r.opts.Threads, func(i interface{}) {
		defer wg.Done()
		if gctx.Err() != nil {
			return
		}
		if err := r.process(i.(FileEntry)); err != nil {
			cancel(err)
		}
	})
	if err != nil {
		return fmt.Errorf("pool: %w", err)
	}
	defer pool.Release()

	// walker
	g.Go(func() error {
		defer close(entries)
		w := newWalker(&r.opts, r.roots, r.report)
		return w.Walk(gctx, func(e FileEntry) error {
			r.stats.FilesFound.Add(1)
			select {
			case entries <- e:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	})

	// dispatcher
	g.Go(func() error {
		defer wg.Wait()
		ticker := time.NewTicker(statsInterval)
		defer ticker.Stop()
		for {
			select {
			case e, ok := <-entries:
				if !ok {
					return nil
				}
				wg.Add(1)
				if err := pool.Invoke(e); err != nil {
					wg.Done()
					return fmt.Errorf("submit task: %w", err)
				}
			case <-ticker.C:
				logrus.Debugf("Stats: found=%d scanned=%d matches=%d diagnostics=%d",
					r.stats.FilesFound.Load(), r.stats.FilesScanned.Load(), r.stats.Matches.Load(), r.stats.Diagnostics.Load())
			case <-gctx.Done():
				return gctx.Err()
			}
		}
	})

	werr := g.Wait()
	if cause := context.Cause(runCtx); cause != nil {
		return cause
	}
	return werr
}
