package shot

import (
	"fmt"

	"github.com/luca-patrignani/splitshot/membership"
)

// PeerID identifies a participant of an exchange.
type PeerID = membership.PeerID

type Move string

const (
	Rock     Move = "rock"
	Paper    Move = "paper"
	Scissors Move = "scissors"
)

// Moves lists every valid move.
var Moves = []Move{Rock, Paper, Scissors}

func (m Move) Valid() bool {
	switch m {
	case Rock, Paper, Scissors:
		return true
	}
	return false
}

// ParseMove converts s into a Move.
func ParseMove(s string) (Move, error) {
	m := Move(s)
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidMove, s)
	}
	return m, nil
}

// MessageID correlates a pending marker with the reply that resolves it.
type MessageID uint64

type ActionKind string

const (
	KindNone    ActionKind = ""
	KindMove    ActionKind = "move"
	KindPending ActionKind = "pending"
	KindMissed  ActionKind = "missed"
	KindEnd     ActionKind = "end"
)

// Action fills the action and outcome slots of a Turn.
type Action struct {
	Kind ActionKind `json:"kind,omitempty"`
	Move Move       `json:"move,omitempty"`
	ID   MessageID  `json:"id,omitempty"`
}

func Played(m Move) Action {
	return Action{Kind: KindMove, Move: m}
}

func Pending(id MessageID) Action {
	return Action{Kind: KindPending, ID: id}
}

func MissedAction() Action {
	return Action{Kind: KindMissed}
}

func EndAction() Action {
	return Action{Kind: KindEnd}
}

// IsBeamEnd reports whether a is a terminal outcome of a branch.
func (a Action) IsBeamEnd() bool {
	return a.Kind == KindEnd || a.Kind == KindMissed
}

func (a Action) String() string {
	switch a.Kind {
	case KindMove:
		return string(a.Move)
	case KindPending:
		return fmt.Sprintf("pending(%d)", a.ID)
	case KindNone:
		return "-"
	}
	return string(a.Kind)
}

// Turn is the atomic unit of the tree.
type Turn struct {
	Actor   PeerID `json:"actor"`
	Action  Action `json:"action"`
	Target  PeerID `json:"target,omitempty"`
	Outcome Action `json:"outcome"`
}

// IsShot reports whether t is a shot at a target, as opposed to a declared
// winner choosing their next move.
func (t Turn) IsShot() bool {
	return t.Target != ""
}

// Result is the slot that decides how t ended: the outcome of a shot or the
// action of a winner.
func (t Turn) Result() Action {
	if t.IsShot() {
		return t.Outcome
	}
	return t.Action
}

func (t Turn) pending() (MessageID, bool) {
	r := t.Result()
	if r.Kind != KindPending {
		return 0, false
	}
	return r.ID, true
}

// Branch is a sequence of turns, optionally ending in a Split. The root
// branch is the whole tree.
type Branch struct {
	Turns []Turn `json:"turns"`
	Split *Split `json:"split,omitempty"`
}

// Split holds the two branches produced by a tie.
type Split struct {
	Left  Branch `json:"left"`
	Right Branch `json:"right"`
}

type EventKind string

const (
	// EventShot asks the target to answer a shot with a move.
	EventShot EventKind = "shot"
	// EventWon tells a winner to choose their next move.
	EventWon EventKind = "won"
)

// Event is a message for the decision function of a single peer.
type Event struct {
	Kind         EventKind `json:"kind"`
	ID           MessageID `json:"id"`
	Owner        PeerID    `json:"owner"`
	Target       PeerID    `json:"target"`
	From         PeerID    `json:"from,omitempty"`
	Loser        PeerID    `json:"loser,omitempty"`
	LoserMove    Move      `json:"loser_move,omitempty"`
	Participants []PeerID  `json:"participants"`
	Chain        Chain     `json:"chain"`
}

type DecisionKind string

const (
	DecisionMove    DecisionKind = "move"
	DecisionEndBeam DecisionKind = "end_beam"
	DecisionShoot   DecisionKind = "shoot"
	DecisionMissed  DecisionKind = "missed"
)

// Decision is the answer of a decision function to an Event.
type Decision struct {
	Kind   DecisionKind `json:"kind"`
	Move   Move         `json:"move,omitempty"`
	Target PeerID       `json:"target,omitempty"`
}

func Play(m Move) Decision {
	return Decision{Kind: DecisionMove, Move: m}
}

func EndBeam() Decision {
	return Decision{Kind: DecisionEndBeam}
}

func Shoot(target PeerID, m Move) Decision {
	return Decision{Kind: DecisionShoot, Move: m, Target: target}
}

func Missed() Decision {
	return Decision{Kind: DecisionMissed}
}

// ValidFor reports whether d is an admissible answer to an event of kind k.
// A shot is answered with a move or by ending the beam; a winner shoots
// again or ends the beam.
func (d Decision) ValidFor(k EventKind) bool {
	switch k {
	case EventShot:
		return d.Kind == DecisionEndBeam || (d.Kind == DecisionMove && d.Move.Valid())
	case EventWon:
		return d.Kind == DecisionEndBeam || (d.Kind == DecisionShoot && d.Move.Valid() && d.Target != "")
	}
	return false
}
