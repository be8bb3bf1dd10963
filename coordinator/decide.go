package coordinator

import (
	"context"
	"fmt"

	"github.com/luca-patrignani/splitshot/domain/shot"
)

// decide calls the decider on ev. Whatever goes wrong, the local player
// misses.
func (n *Node) decide(ctx context.Context, ev shot.Event) shot.Decision {
	if n.decisionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.decisionTimeout)
		defer cancel()
	}
	type outcome struct {
		d   shot.Decision
		err error
	}
	out := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				out <- outcome{err: fmt.Errorf("decider panicked: %v", r)}
			}
		}()
		d, err := n.decider.Decide(ctx, ev)
		out <- outcome{d: d, err: err}
	}()

	var o outcome
	select {
	case o = <-out:
	case <-ctx.Done():
		o.err = fmt.Errorf("no decision: %w", ctx.Err())
	}
	if o.err != nil {
		n.log.Warn("decider failed, missing", "id", ev.ID, "kind", ev.Kind, "err", o.err)
		return shot.Missed()
	}
	if !o.d.ValidFor(ev.Kind) {
		n.log.Warn("decision does not answer the event, missing", "id", ev.ID, "kind", ev.Kind, "decision", o.d)
		return shot.Missed()
	}
	return o.d
}
