package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"

	"qseq/internal/adapter"
	"qseq/internal/feature"
)

// DefaultBuffer is the per-region feature buffer used when Config.Buffer is 0.
const DefaultBuffer = 1024

// Config controls the query pipeline.
type Config struct {
	Threads int // number of worker goroutines (>=1)
	Buffer  int // features buffered per in-flight region
	Options adapter.Options
}

// Visitor receives one feature of regions[i].
type Visitor func(i int, f feature.Feature) error

type item struct {
	f   feature.Feature
	err error
}

type job struct {
	i   int
	out chan<- item
}

// ForEachRegion queries every region on cfg.Threads workers and streams the
// features to visit in input order. Nothing is materialized per region: at
// most Threads+1 regions are in flight, each holding at most cfg.Buffer
// features. A query error is returned after the features its region yielded
// before it have been visited; a visit error stops the run. Cancellation
// returns ctx.Err().
func ForEachRegion(
	ctx context.Context,
	cfg Config,
	regions []feature.Region,
	q Querier,
	visit Visitor,
) error {
	if cfg.Threads < 1 {
		cfg.Threads = 1
	}
	if cfg.Buffer < 1 {
		cfg.Buffer = DefaultBuffer
	}

	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan job)
	// slots holds the output of dispatched regions in input order; its
	// capacity bounds how far workers run ahead of the collector.
	slots := make(chan (<-chan item), cfg.Threads)

	// Feed work
	g.Go(func() error {
		defer close(jobs)
		defer close(slots)
		for i := range regions {
			out := make(chan item, cfg.Buffer)
			select {
			case slots <- out:
			case <-gctx.Done():
				return nil
			}
			select {
			case jobs <- job{i: i, out: out}:
			case <-gctx.Done():
				return nil
			}
		}
		return nil
	})

	// Workers
	for w := 0; w < cfg.Threads; w++ {
		g.Go(func() error {
			for j := range jobs {
				query(gctx, q, regions[j.i], cfg.Options, j.out)
			}
			return nil
		})
	}

	// Collector
	g.Go(func() error {
		i := 0
		for out := range slots {
			if err := drain(gctx, i, out, visit); err != nil {
				return err
			}
			i++
		}
		return nil
	})

	err := g.Wait()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// query streams one region into out and closes it. An error is the last item.
func query(ctx context.Context, q Querier, r feature.Region, opts adapter.Options, out chan<- item) {
	defer close(out)
	for f, err := range q.Features(ctx, r, opts) {
		select {
		case out <- item{f: f, err: err}:
		case <-ctx.Done():
			return
		}
		if err != nil {
			return
		}
	}
}

func drain(ctx context.Context, i int, out <-chan item, visit Visitor) error {
	for {
		select {
		case it, ok := <-out:
			if !ok {
				return nil
			}
			if it.err != nil {
				return it.err
			}
			if err := visit(i, it.f); err != nil {
				return err
			}
		case <-ctx.Done():
			return nil
		}
	}
}
