package compile

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pcreech/aclgen/pkg/junos"
	"github.com/pcreech/aclgen/pkg/policy"
)

// Job is one unit of batch work: a document compiled for one target.
type Job struct {
	Doc    *policy.Document
	Target policy.Target
}

// Result pairs a job with its outcome. ID is the run-unique job ID
// carried through the logs.
type Result struct {
	Job      Job
	ID       string
	Tree     *junos.Tree
	Err      error
	Duration time.Duration
}

// Batch compiles many documents concurrently. Documents are independent
// by construction; sharing Opts.Book across jobs is the one sanctioned
// piece of shared state, serialized by the book's own lock.
type Batch struct {
	Opts    Options
	Workers int          // defaults to GOMAXPROCS
	Logger  *slog.Logger // defaults to slog.Default()
	Metrics *Metrics     // optional
}

// Run compiles every job and returns results in job order. A canceled
// context fails the jobs that have not started; jobs already running
// finish, since a single compilation is bounded in-memory work.
func (b *Batch) Run(ctx context.Context, jobs []Job) []Result {
	workers := b.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}
	logger := b.Logger
	if logger == nil {
		logger = slog.Default()
	}

	results := make([]Result, len(jobs))
	idx := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idx {
				results[i] = b.runOne(ctx, logger, jobs[i])
			}
		}()
	}
	for i := range jobs {
		idx <- i
	}
	close(idx)
	wg.Wait()
	return results
}

func (b *Batch) runOne(ctx context.Context, logger *slog.Logger, job Job) Result {
	res := Result{Job: job, ID: uuid.New().String()}
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	start := time.Now()
	res.Tree, res.Err = Compile(job.Doc, job.Target, b.Opts)
	res.Duration = time.Since(start)

	if res.Err != nil {
		logger.Error("compile failed",
			"job", res.ID,
			"policy", job.Doc.Name,
			"target", string(job.Target),
			"err", res.Err)
	} else {
		logger.Debug("compiled",
			"job", res.ID,
			"policy", job.Doc.Name,
			"target", string(job.Target),
			"terms", len(job.Doc.Terms),
			"duration", res.Duration)
	}
	if b.Metrics != nil {
		b.Metrics.observe(job, res)
	}
	return res
}
