// Package parallel fans out independent similarity searches and joins on all
// of them, so total wall-clock time approximates the slowest single task
// rather than their sum.
//
// Failure is isolated per task: one backend error (or panic, or timeout)
// degrades that task to an empty result and never fails the aggregate call.
// Callers must treat an empty slice as "no matches", not as a hard error.
package parallel

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/semcache/resource"
)

// Task is one independent search request.
type Task struct {
	AgentID string
	Query   string
	TopK    int
}

// SearchFunc executes a single task against the search backend.
type SearchFunc[T any] func(ctx context.Context, task Task) ([]T, error)

// TaskResult carries a task's outcome including its failure reason. Items is
// empty and non-nil when Err is set.
type TaskResult[T any] struct {
	Items []T
	Err   error
}

// Options configures a Coordinator.
type Options struct {
	// MaxConcurrent caps tasks in flight at once. Defaults to 16.
	MaxConcurrent int

	// TaskTimeout bounds each task so one hung backend call degrades to an
	// empty result instead of stalling the whole batch. 0 disables the
	// per-task timeout.
	TaskTimeout time.Duration

	// Logger records task failures at the point they are absorbed. Nil
	// discards them.
	Logger *slog.Logger

	// OnTaskFailure is invoked for every absorbed failure, for metrics.
	OnTaskFailure func(index int, task Task, err error)

	// Controller applies the shared backend-call budget.
	Controller *resource.Controller
}

// Coordinator runs batches of independent searches concurrently.
type Coordinator[T any] struct {
	maxConcurrent int
	taskTimeout   time.Duration
	logger        *slog.Logger
	onTaskFailure func(index int, task Task, err error)
	ctrl          *resource.Controller
}

// NewCoordinator creates a Coordinator.
func NewCoordinator[T any](optFns ...func(o *Options)) *Coordinator[T] {
	opts := Options{
		MaxConcurrent: 16,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxConcurrent < 1 {
		opts.MaxConcurrent = 1
	}

	return &Coordinator[T]{
		maxConcurrent: opts.MaxConcurrent,
		taskTimeout:   opts.TaskTimeout,
		logger:        opts.Logger,
		onTaskFailure: opts.OnTaskFailure,
		ctrl:          opts.Controller,
	}
}

// SearchMultiple runs all tasks concurrently and returns one result list per
// task, output index matching input index. A failed task yields an empty
// list; the call itself never fails.
func (c *Coordinator[T]) SearchMultiple(ctx context.Context, tasks []Task, fn SearchFunc[T]) [][]T {
	detailed := c.SearchMultipleResults(ctx, tasks, fn)

	results := make([][]T, len(detailed))
	for i, r := range detailed {
		results[i] = r.Items
	}
	return results
}

// SearchMultipleResults is SearchMultiple with per-task failure reasons
// exposed, for callers that need to distinguish "no matches" from "search
// failed".
func (c *Coordinator[T]) SearchMultipleResults(ctx context.Context, tasks []Task, fn SearchFunc[T]) []TaskResult[T] {
	results := make([]TaskResult[T], len(tasks))

	var g errgroup.Group
	g.SetLimit(c.maxConcurrent)

	for i, task := range tasks {
		g.Go(func() error {
			items, err := c.runTask(ctx, task, fn)
			if err != nil {
				if c.logger != nil {
					c.logger.WarnContext(ctx, "search task failed",
						"index", i,
						"agent_id", task.AgentID,
						"top_k", task.TopK,
						"error", err,
					)
				}
				if c.onTaskFailure != nil {
					c.onTaskFailure(i, task, err)
				}
				results[i] = TaskResult[T]{Items: []T{}, Err: err}
				return nil
			}
			if items == nil {
				items = []T{}
			}
			results[i] = TaskResult[T]{Items: items}
			return nil
		})
	}

	_ = g.Wait() // task errors are absorbed above; Wait only joins

	return results
}

// runTask applies the timeout, the backend budget and panic isolation around
// a single searchFn call.
func (c *Coordinator[T]) runTask(ctx context.Context, task Task, fn SearchFunc[T]) (items []T, err error) {
	if c.taskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.taskTimeout)
		defer cancel()
	}

	if err := c.ctrl.AcquireSearch(ctx); err != nil {
		return nil, err
	}
	defer c.ctrl.ReleaseSearch()

	defer func() {
		if r := recover(); r != nil {
			items = nil
			err = fmt.Errorf("search panicked: %v", r)
		}
	}()

	return fn(ctx, task)
}
