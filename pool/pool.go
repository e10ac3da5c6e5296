// Package pool runs pipeline invocations on a fixed set of workers. Tasks
// are claimed in submission order; results arrive in completion order.
package pool

import (
	"fmt"
	"runtime/debug"
	"sync"

	"go.uber.org/zap"

	"imageCompressor/models"
)

const DefaultWorkers = 4

// ProcessFunc transforms one spec into exactly one result.
type ProcessFunc func(models.TaskSpec) models.TaskResult

type WorkerPool struct {
	workers int
	logger  *zap.Logger
}

func NewWorkerPool(workers int, logger *zap.Logger) *WorkerPool {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &WorkerPool{
		workers: workers,
		logger:  logger,
	}
}

// Run dispatches every spec to the workers and returns the result channel.
// The channel is buffered to the batch size, so workers never block on
// delivery; it is closed once every submitted task has produced its result,
// which is the pool's termination signal.
func (p *WorkerPool) Run(specs []models.TaskSpec, process ProcessFunc) <-chan models.TaskResult {
	tasks := make(chan models.TaskSpec, len(specs))
	results := make(chan models.TaskResult, len(specs))

	for _, spec := range specs {
		tasks <- spec
	}
	close(tasks)

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for spec := range tasks {
				results <- p.runTask(worker, spec, process)
			}
		}(i)
	}

	go func() {
		wg.Wait()
		p.logger.Info("Worker pool drained",
			zap.Int("workers", p.workers),
			zap.Int("tasks", len(specs)),
		)
		close(results)
	}()

	return results
}

// runTask executes one pipeline invocation. A panic inside the pipeline is
// converted into an error result so a single bad task can never take down
// its worker or abort sibling tasks.
func (p *WorkerPool) runTask(worker int, spec models.TaskSpec, process ProcessFunc) (res models.TaskResult) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Panic recovered in worker",
				zap.Int("worker", worker),
				zap.String("task_id", spec.ID),
				zap.Any("error", r),
				zap.String("stack", string(debug.Stack())),
			)
			res = models.TaskResult{
				TaskID:    spec.ID,
				Status:    models.StatusError,
				InputPath: spec.InputPath,
				Err:       fmt.Sprintf("internal error: %v", r),
			}
		}
	}()

	return process(spec)
}
