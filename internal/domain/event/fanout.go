package event

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Fanout delivers every change to all sinks concurrently and waits for all of them.
// The first error is returned; the other sinks still run to completion.
type Fanout []Notifier

func (f Fanout) Notify(ctx context.Context, changes ...Change) error {
	if len(changes) == 0 {
		return nil
	}
	var g errgroup.Group
	for _, n := range f {
		if n == nil {
			continue
		}
		n := n
		g.Go(func() error { return n.Notify(ctx, changes...) })
	}
	return g.Wait()
}
