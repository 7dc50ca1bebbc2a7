package runnable

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunnable struct {
	status int
	err    error
}

func (f fakeRunnable) Run() (int, error) { return f.status, f.err }

func TestSequentialRunnableListOrsStatuses(t *testing.T) {
	list := &SequentialRunnableList{Children: []Runnable{
		fakeRunnable{status: 0},
		fakeRunnable{status: 1},
	}}
	st, err := list.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, st)
}

type countingRunnable struct {
	status int
	calls  *int
}

func (c countingRunnable) Run() (int, error) {
	*c.calls++
	return c.status, nil
}

func TestSequentialRunnableListAbortsOnBadStatus(t *testing.T) {
	calls := 0
	list := &SequentialRunnableList{Children: []Runnable{
		countingRunnable{status: 0, calls: &calls},
		countingRunnable{status: 2, calls: &calls},
		countingRunnable{status: 0, calls: &calls},
	}}
	st, err := list.Run()
	require.NoError(t, err)
	assert.Equal(t, 2, st)
	assert.Equal(t, 2, calls, "third child's Run must not execute after abort status")
}

func TestSequentialRunnableListPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	list := &SequentialRunnableList{Children: []Runnable{
		fakeRunnable{status: 0, err: boom},
	}}
	_, err := list.Run()
	assert.Equal(t, boom, err)
}

func TestParallelRunnableListOrsStatuses(t *testing.T) {
	list := &ParallelRunnableList{Children: []Runnable{
		fakeRunnable{status: 0},
		fakeRunnable{status: 1},
		fakeRunnable{status: 0},
	}}
	st, err := list.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, st)
}

func TestParallelRunnableListPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	list := &ParallelRunnableList{Children: []Runnable{
		fakeRunnable{status: 0},
		fakeRunnable{status: 0, err: boom},
	}}
	_, err := list.Run()
	assert.Error(t, err)
}
