// Package runnable defines the Runnable marker interface and the two
// built-in runnable-list classes the engine registers under the static
// library alias "IOC" (spec.md §6).
package runnable

import (
	"golang.org/x/sync/errgroup"
)

// Runnable is the interface every root object must implement. Run
// returns an integer status: 0 succeeds, 1 fails-but-continue, anything
// else fails-and-aborts (spec.md §6, "Exit codes").
type Runnable interface {
	Run() (int, error)
}

// abort reports whether status lies outside the continuable set {0, 1}.
func abort(status int) bool {
	return status != 0 && status != 1
}

// SequentialRunnableList runs its children left-to-right, OR-ing their
// statuses, and stops early if a child returns a status outside {0, 1}.
type SequentialRunnableList struct {
	Children []Runnable
}

func (s *SequentialRunnableList) Run() (int, error) {
	status := 0
	for _, child := range s.Children {
		st, err := child.Run()
		if err != nil {
			return st, err
		}
		status |= st
		if abort(st) {
			return st, nil
		}
	}
	return status, nil
}

// ParallelRunnableList spawns one goroutine per child, joins them all,
// then OR-s their final statuses, matching spec.md §5's "spawns one
// worker per child and joins them, propagating per-child status". Every
// child runs to completion; if any child returns an error, Run returns
// status 1 and the first such error.
type ParallelRunnableList struct {
	Children []Runnable
}

func (p *ParallelRunnableList) Run() (int, error) {
	statuses := make([]int, len(p.Children))

	var g errgroup.Group
	for i, child := range p.Children {
		i, child := i, child
		g.Go(func() error {
			st, err := child.Run()
			statuses[i] = st
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return 1, err
	}

	final := 0
	for _, st := range statuses {
		final |= st
	}
	return final, nil
}
