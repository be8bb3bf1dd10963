package shot

import (
	"fmt"
	"slices"
)

// Result is a finished exchange as handed to the presentation layer.
type Result struct {
	Owner        PeerID   `json:"owner"`
	Tree         Branch   `json:"tree"`
	Status       Status   `json:"status"`
	Rules        Rules    `json:"rules"`
	Participants []PeerID `json:"participants"`
}

// Exchange is the state machine owning the tree of the exchange opened by the
// local peer. It moves Idle -> InProgress on Open and back on Close.
// It is not safe for concurrent use.
type Exchange struct {
	rules        Rules
	tree         Branch
	participants []PeerID
	inProgress   bool
	lastID       MessageID
}

func NewExchange(rules Rules) *Exchange {
	return &Exchange{rules: rules}
}

func (x *Exchange) Rules() Rules {
	return x.rules
}

// SetStartingPlayer records the winner of the "who starts" election.
func (x *Exchange) SetStartingPlayer(p PeerID) {
	x.rules.StartingPlayer = p
}

func (x *Exchange) InProgress() bool {
	return x.inProgress
}

// Tree returns the current tree. The returned value is never mutated by the
// Exchange afterwards.
func (x *Exchange) Tree() Branch {
	return x.tree
}

func (x *Exchange) Participants() []PeerID {
	return slices.Clone(x.participants)
}

// Status evaluates the current tree.
func (x *Exchange) Status() Status {
	return Evaluate(x.tree, x.rules, x.participants)
}

// Open starts an exchange: caller shoots move at target. Only the elected
// starting player may open, and only while idle. It returns the shot event
// to deliver to target.
func (x *Exchange) Open(caller, target PeerID, move Move, participants []PeerID) (Event, error) {
	if x.inProgress {
		return Event{}, ErrExchangeInProgress
	}
	if x.rules.StartingPlayer == "" || caller != x.rules.StartingPlayer {
		return Event{}, fmt.Errorf("%w: %s is not %q", ErrNotStarter, caller, x.rules.StartingPlayer)
	}
	if !move.Valid() {
		return Event{}, fmt.Errorf("%w: %q", ErrInvalidMove, move)
	}
	if target == caller || !slices.Contains(participants, target) {
		return Event{}, fmt.Errorf("%w: %s", ErrInvalidTarget, target)
	}

	id := x.nextID()
	x.participants = slices.Clone(participants)
	x.tree = Branch{Turns: []Turn{{Actor: caller, Action: Played(move), Target: target, Outcome: Pending(id)}}}
	x.inProgress = true
	return x.complete(Event{Kind: EventShot, ID: id, Target: target, From: caller}), nil
}

// Resolve applies the reply d to the pending marker id. Unknown ids are
// ignored and reported with false, which absorbs stale and duplicate replies.
// It returns the events the resolution produced.
func (x *Exchange) Resolve(id MessageID, d Decision) ([]Event, bool) {
	if !x.inProgress || !x.tree.Contains(id) {
		return nil, false
	}
	r := &resolver{next: x.nextID, canTarget: x.canTarget}
	tree, ok := x.tree.resolve(id, d, r)
	if !ok {
		return nil, false
	}
	x.tree = tree
	events := make([]Event, len(r.notices))
	for i, n := range r.notices {
		events[i] = x.complete(n)
	}
	return events, true
}

// Close returns to Idle and hands out the finished exchange. Outstanding
// pending markers become Missed.
func (x *Exchange) Close() Result {
	tree := x.tree.missOutstanding()
	res := Result{
		Owner:        x.rules.StartingPlayer,
		Tree:         tree,
		Status:       Evaluate(tree, x.rules, x.participants),
		Rules:        x.rules,
		Participants: x.participants,
	}
	if len(x.tree.Turns) > 0 {
		res.Owner = x.tree.Turns[0].Actor
	}
	x.tree = Branch{}
	x.participants = nil
	x.inProgress = false
	return res
}

func (x *Exchange) nextID() MessageID {
	x.lastID++
	return x.lastID
}

func (x *Exchange) canTarget(shooter, target PeerID) bool {
	return target != shooter && slices.Contains(x.participants, target)
}

func (x *Exchange) complete(e Event) Event {
	e.Participants = slices.Clone(x.participants)
	e.Chain, _ = x.tree.ChainTo(e.ID)
	if len(x.tree.Turns) > 0 {
		e.Owner = x.tree.Turns[0].Actor
	}
	return e
}
