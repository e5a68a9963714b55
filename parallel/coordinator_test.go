package parallel

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Content string
}

func TestCoordinator_OrderPreserved(t *testing.T) {
	c := NewCoordinator[item]()

	tasks := make([]Task, 20)
	for i := range tasks {
		// TopK doubles as a per-task delay so later tasks finish first.
		tasks[i] = Task{AgentID: "a", Query: fmt.Sprintf("q%d", i), TopK: 20 - i}
	}

	results := c.SearchMultiple(context.Background(), tasks, func(_ context.Context, task Task) ([]item, error) {
		time.Sleep(time.Duration(task.TopK) * time.Millisecond)
		return []item{{Content: task.Query}}, nil
	})

	require.Len(t, results, 20)
	for i, r := range results {
		require.Len(t, r, 1)
		assert.Equal(t, fmt.Sprintf("q%d", i), r[0].Content)
	}
}

func TestCoordinator_Concurrent(t *testing.T) {
	c := NewCoordinator[item]()

	tasks := []Task{
		{AgentID: "a", Query: "q1", TopK: 5},
		{AgentID: "a", Query: "q2", TopK: 5},
		{AgentID: "b", Query: "q3", TopK: 5},
	}

	start := time.Now()
	results := c.SearchMultiple(context.Background(), tasks, func(_ context.Context, task Task) ([]item, error) {
		time.Sleep(100 * time.Millisecond)
		return []item{{Content: task.Query}}, nil
	})
	elapsed := time.Since(start)

	require.Len(t, results, 3)
	assert.Less(t, elapsed, 250*time.Millisecond,
		"3 tasks of ~100ms should complete in roughly one task's time, not their sum")
}

func TestCoordinator_FailureIsolation(t *testing.T) {
	c := NewCoordinator[item]()
	backendErr := errors.New("backend down")

	tasks := []Task{
		{AgentID: "a", Query: "good", TopK: 1},
		{AgentID: "a", Query: "bad", TopK: 1},
	}

	results := c.SearchMultiple(context.Background(), tasks, func(_ context.Context, task Task) ([]item, error) {
		if task.Query == "bad" {
			return nil, backendErr
		}
		return []item{{Content: "hit"}}, nil
	})

	require.Len(t, results, 2)
	assert.Equal(t, []item{{Content: "hit"}}, results[0])
	require.NotNil(t, results[1])
	assert.Empty(t, results[1], "failed task yields an empty, non-nil list")
}

func TestCoordinator_FailureReasonOptIn(t *testing.T) {
	c := NewCoordinator[item]()
	backendErr := errors.New("backend down")

	tasks := []Task{
		{AgentID: "a", Query: "good", TopK: 1},
		{AgentID: "a", Query: "bad", TopK: 1},
	}

	results := c.SearchMultipleResults(context.Background(), tasks, func(_ context.Context, task Task) ([]item, error) {
		if task.Query == "bad" {
			return nil, backendErr
		}
		return []item{{Content: "hit"}}, nil
	})

	require.Len(t, results, 2)
	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, backendErr)
	assert.Empty(t, results[1].Items)
}

func TestCoordinator_PanicIsolation(t *testing.T) {
	c := NewCoordinator[item]()

	tasks := []Task{
		{AgentID: "a", Query: "boom", TopK: 1},
		{AgentID: "a", Query: "fine", TopK: 1},
	}

	results := c.SearchMultipleResults(context.Background(), tasks, func(_ context.Context, task Task) ([]item, error) {
		if task.Query == "boom" {
			panic("searchFn bug")
		}
		return []item{{Content: "ok"}}, nil
	})

	require.Len(t, results, 2)
	require.Error(t, results[0].Err)
	assert.Contains(t, results[0].Err.Error(), "panicked")
	assert.Equal(t, []item{{Content: "ok"}}, results[1].Items)
}

func TestCoordinator_TaskTimeout(t *testing.T) {
	c := NewCoordinator[item](func(o *Options) {
		o.TaskTimeout = 30 * time.Millisecond
	})

	tasks := []Task{{AgentID: "a", Query: "hung", TopK: 1}}

	start := time.Now()
	results := c.SearchMultipleResults(context.Background(), tasks, func(ctx context.Context, _ Task) ([]item, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 200*time.Millisecond, "hung task must not stall the batch")
}

func TestCoordinator_OnTaskFailure(t *testing.T) {
	var failedIndex int
	var failedTask Task
	calls := 0

	c := NewCoordinator[item](func(o *Options) {
		o.OnTaskFailure = func(index int, task Task, _ error) {
			calls++
			failedIndex = index
			failedTask = task
		}
	})

	tasks := []Task{
		{AgentID: "a", Query: "ok", TopK: 1},
		{AgentID: "b", Query: "bad", TopK: 1},
	}

	c.SearchMultiple(context.Background(), tasks, func(_ context.Context, task Task) ([]item, error) {
		if task.Query == "bad" {
			return nil, errors.New("nope")
		}
		return nil, nil
	})

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, failedIndex)
	assert.Equal(t, "b", failedTask.AgentID)
}

func TestCoordinator_Empty(t *testing.T) {
	c := NewCoordinator[item]()
	results := c.SearchMultiple(context.Background(), nil, func(_ context.Context, _ Task) ([]item, error) {
		return nil, nil
	})
	assert.Empty(t, results)
}
