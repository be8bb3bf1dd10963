package coordinator

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/luca-patrignani/splitshot/domain/shot"
	"github.com/luca-patrignani/splitshot/election"
	"github.com/luca-patrignani/splitshot/membership"
	"github.com/luca-patrignani/splitshot/network"
)

// Event is an input of the Node. The set of events is closed.
type Event interface {
	isEvent()
}

// Join reports a peer reachable at Addr.
type Join struct {
	Addr string
}

// Leave reports that the peer at Addr is gone.
type Leave struct {
	Addr string
}

// RollVote carries a vote of an election round.
type RollVote struct {
	Vote election.Vote
}

// Shot asks its target to answer with a move.
type Shot struct {
	Event shot.Event
}

// Won asks a winner to shoot again or end its beam.
type Won struct {
	Event shot.Event
}

// Reply is the answer of Sender to the event with the given ID.
type Reply struct {
	ID       shot.MessageID    `json:"id"`
	Decision shot.Decision     `json:"decision"`
	Sender   membership.PeerID `json:"-"`
}

// ReplyShot answers a Shot.
type ReplyShot struct {
	Reply
}

// ReplyWon answers a Won.
type ReplyWon struct {
	Reply
}

// GameEnd carries a finished exchange.
type GameEnd struct {
	ExchangeID uuid.UUID   `json:"exchange_id"`
	Result     shot.Result `json:"result"`
}

type openRequest struct {
	target membership.PeerID
	move   shot.Move
	reply  chan error
}

type pendingExpired struct {
	id shot.MessageID
}

type snapshotRequest struct {
	reply chan Snapshot
}

func (Join) isEvent()            {}
func (Leave) isEvent()           {}
func (RollVote) isEvent()        {}
func (Shot) isEvent()            {}
func (Won) isEvent()             {}
func (ReplyShot) isEvent()       {}
func (ReplyWon) isEvent()        {}
func (GameEnd) isEvent()         {}
func (openRequest) isEvent()     {}
func (pendingExpired) isEvent()  {}
func (snapshotRequest) isEvent() {}

// Envelope kinds.
const (
	kindRollVote  = "roll_vote"
	kindShot      = "shot"
	kindWon       = "won"
	kindReplyShot = "reply_shot"
	kindReplyWon  = "reply_won"
	kindGameEnd   = "game_end"
)

// encode wraps ev into an envelope sent by from to target.
func encode(from membership.PeerID, target membership.PeerID, ev Event) (network.Envelope, error) {
	var (
		kind    string
		payload any
	)
	switch ev := ev.(type) {
	case RollVote:
		kind, payload = kindRollVote, ev.Vote
	case Shot:
		kind, payload = kindShot, ev.Event
	case Won:
		kind, payload = kindWon, ev.Event
	case ReplyShot:
		kind, payload = kindReplyShot, ev.Reply
	case ReplyWon:
		kind, payload = kindReplyWon, ev.Reply
	case GameEnd:
		kind, payload = kindGameEnd, ev
	default:
		return network.Envelope{}, fmt.Errorf("%T cannot be sent", ev)
	}
	return network.NewEnvelope(string(from), kind, string(target), payload)
}

// decode turns an envelope back into an event.
func decode(e network.Envelope) (Event, error) {
	switch e.Kind {
	case kindRollVote:
		var v election.Vote
		if err := e.Decode(&v); err != nil {
			return nil, err
		}
		if v.Sender != membership.PeerID(e.From) {
			return nil, fmt.Errorf("vote of %s sent by %s", v.Sender, e.From)
		}
		return RollVote{Vote: v}, nil
	case kindShot, kindWon:
		var ev shot.Event
		if err := e.Decode(&ev); err != nil {
			return nil, err
		}
		if e.Kind == kindShot {
			return Shot{Event: ev}, nil
		}
		return Won{Event: ev}, nil
	case kindReplyShot, kindReplyWon:
		var r Reply
		if err := e.Decode(&r); err != nil {
			return nil, err
		}
		r.Sender = membership.PeerID(e.From)
		if e.Kind == kindReplyShot {
			return ReplyShot{Reply: r}, nil
		}
		return ReplyWon{Reply: r}, nil
	case kindGameEnd:
		var g GameEnd
		if err := e.Decode(&g); err != nil {
			return nil, err
		}
		return g, nil
	}
	return nil, fmt.Errorf("unknown envelope kind %q from %s", e.Kind, e.From)
}
