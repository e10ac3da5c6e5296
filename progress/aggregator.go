// Package progress funnels worker outcomes to a single consumer. The
// aggregator is the only component allowed to mutate state visible to a
// presentation layer; workers communicate exclusively through results.
package progress

import (
	"sync"

	"go.uber.org/zap"

	"imageCompressor/models"
)

// BatchState tracks a running batch. Completed never decreases and never
// exceeds Submitted.
type BatchState struct {
	Submitted   int
	Completed   int
	Done        int
	Errored     int
	TotalBefore int64
	TotalAfter  int64
	Statuses    map[string]models.TaskStatus
}

type Aggregator struct {
	logger *zap.Logger

	mu       sync.Mutex
	state    BatchState
	complete bool

	onResult   func(models.TaskResult)
	onComplete func(models.BatchSummary)
}

func NewAggregator(specs []models.TaskSpec, logger *zap.Logger) *Aggregator {
	statuses := make(map[string]models.TaskStatus, len(specs))
	for _, spec := range specs {
		statuses[spec.ID] = models.StatusQueued
	}
	return &Aggregator{
		logger: logger,
		state: BatchState{
			Submitted: len(specs),
			Statuses:  statuses,
		},
	}
}

// SetResultCallback registers the per-result presentation callback. It is
// invoked from the consumer loop, in arrival order.
func (a *Aggregator) SetResultCallback(callback func(models.TaskResult)) {
	a.onResult = callback
}

// SetCompleteCallback registers the terminal-event callback; it fires
// exactly once, after the last result has been applied.
func (a *Aggregator) SetCompleteCallback(callback func(models.BatchSummary)) {
	a.onComplete = callback
}

// Consume drains the result channel until the pool closes it, applying each
// result to the batch state. It blocks the calling goroutine and returns
// the final summary; the decode/resize/encode work never runs here.
func (a *Aggregator) Consume(results <-chan models.TaskResult) models.BatchSummary {
	for res := range results {
		a.apply(res)

		if a.onResult != nil {
			a.onResult(res)
		}

		a.mu.Lock()
		finished := a.state.Completed == a.state.Submitted && !a.complete
		if finished {
			a.complete = true
		}
		summary := a.summaryLocked()
		a.mu.Unlock()

		if finished {
			a.logger.Info("Batch complete",
				zap.Int("done", summary.Done),
				zap.Int("errored", summary.Errored),
				zap.Int64("bytes_saved", summary.SpaceSaved()),
			)
			if a.onComplete != nil {
				a.onComplete(summary)
			}
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	return a.summaryLocked()
}

func (a *Aggregator) apply(res models.TaskResult) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.state.Statuses[res.TaskID] = res.Status
	a.state.Completed++

	switch res.Status {
	case models.StatusDone:
		a.state.Done++
		a.state.TotalBefore += res.BeforeSize
		a.state.TotalAfter += res.AfterSize
	case models.StatusError:
		a.state.Errored++
	}
}

// Snapshot returns a copy of the batch state for inspection.
func (a *Aggregator) Snapshot() BatchState {
	a.mu.Lock()
	defer a.mu.Unlock()

	statuses := make(map[string]models.TaskStatus, len(a.state.Statuses))
	for id, st := range a.state.Statuses {
		statuses[id] = st
	}
	snapshot := a.state
	snapshot.Statuses = statuses
	return snapshot
}

func (a *Aggregator) summaryLocked() models.BatchSummary {
	return models.BatchSummary{
		Submitted:   a.state.Submitted,
		Done:        a.state.Done,
		Errored:     a.state.Errored,
		TotalBefore: a.state.TotalBefore,
		TotalAfter:  a.state.TotalAfter,
	}
}
