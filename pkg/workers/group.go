package workers

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/dskvich/artloop/pkg/logger"
)

type Worker interface {
	Name() string
	Start(context.Context) error
}

type Group []Worker

// Start runs the workers until ctx is done, one of them fails, or all of them
// return. Errors come back in worker order.
func (g Group) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	runCtx, cancelFn := context.WithCancel(ctx)
	defer cancelFn()

	errs := make([]error, len(g))
	var wg sync.WaitGroup
	wg.Add(len(g))
	for i, w := range g {
		go func(i int, w Worker) {
			defer wg.Done()
			if errs[i] = run(runCtx, w); errs[i] != nil {
				cancelFn()
			}
		}(i, w)
	}

	allDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(allDone)
	}()

	select {
	case <-allDone:
	case <-runCtx.Done():
		<-allDone
	}

	var err error
	for _, workerErr := range errs {
		if workerErr != nil {
			err = multierror.Append(err, workerErr)
		}
	}
	return err
}

func run(ctx context.Context, w Worker) error {
	started := time.Now()
	slog.InfoContext(ctx, "Starting worker", "name", w.Name())

	err := w.Start(ctx)
	elapsed := time.Since(started).Round(time.Millisecond)
	if err != nil {
		slog.ErrorContext(ctx, "Worker failed", "name", w.Name(), "uptime", elapsed, logger.Err(err))
		return fmt.Errorf("%s: %w", w.Name(), err)
	}

	slog.InfoContext(ctx, "Worker stopped", "name", w.Name(), "uptime", elapsed)
	return nil
}
