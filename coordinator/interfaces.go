package coordinator

import (
	"context"
	"log/slog"

	"github.com/luca-patrignani/splitshot/domain/shot"
	"github.com/luca-patrignani/splitshot/ledger"
	"github.com/luca-patrignani/splitshot/network"
)

// Bus abstracts the broadcast transport.
type Bus interface {
	// Broadcast sends e to every peer, the local one included. It must not
	// block on delivery.
	Broadcast(ctx context.Context, e network.Envelope) error

	// Inbox delivers the envelopes received, each at most once.
	Inbox() <-chan network.Envelope

	AddPeer(addr string)
	RemovePeer(addr string)
}

// Decider is the decision function of the local player.
type Decider interface {
	// Decide answers a Shot with a move or EndBeam, and a Won with a Shoot
	// or EndBeam.
	Decide(ctx context.Context, e shot.Event) (shot.Decision, error)
}

// DeciderFunc adapts a function to Decider.
type DeciderFunc func(ctx context.Context, e shot.Event) (shot.Decision, error)

func (f DeciderFunc) Decide(ctx context.Context, e shot.Event) (shot.Decision, error) {
	return f(ctx, e)
}

// Presenter receives every finished exchange.
type Presenter interface {
	Present(res shot.Result)
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(res shot.Result)

func (f PresenterFunc) Present(res shot.Result) {
	f(res)
}

// Ledger records committed decisions.
type Ledger interface {
	Append(kind, author string, payload any, votes []ledger.Vote, quorum int, extra ...map[string]string) (ledger.Block, error)
}

func logPresenter(log *slog.Logger) Presenter {
	return PresenterFunc(func(res shot.Result) {
		log.Info("exchange finished",
			"owner", res.Owner,
			"won", res.Status.Won,
			"shots", res.Status.Shots,
			"branches", res.Status.Terminals)
	})
}
