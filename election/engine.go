package election

import (
	"encoding/binary"
	"log/slog"
	"maps"
	"slices"

	"go.dedis.ch/kyber/v4/suites"

	"github.com/luca-patrignani/splitshot/membership"
)

var suite suites.Suite = suites.MustFind("Ed25519")

// Engine runs the elections of one peer. It is not safe for concurrent use:
// the coordinator goroutine owns it.
type Engine struct {
	self      membership.PeerID
	peers     func() []membership.PeerID
	draw      func() uint64
	log       *slog.Logger
	table     map[Kind]map[RollID]bucket
	winners   map[Kind]membership.PeerID
	callbacks map[Kind]func(membership.PeerID)
}

// Option configures an Engine.
type Option func(*Engine)

// WithDraw replaces the random source of rolls.
func WithDraw(draw func() uint64) Option {
	return func(e *Engine) {
		e.draw = draw
	}
}

// WithLogger sets the logger used to report committed winners.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// NewEngine creates an Engine for the local peer self. peers must return the
// current membership view each time it is called.
func NewEngine(self membership.PeerID, peers func() []membership.PeerID, opts ...Option) *Engine {
	e := &Engine{
		self:      self,
		peers:     peers,
		draw:      drawRoll,
		log:       slog.Default(),
		table:     map[Kind]map[RollID]bucket{},
		winners:   map[Kind]membership.PeerID{},
		callbacks: map[Kind]func(membership.PeerID){},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// OnWinner registers the side effect run when kind commits a new winner.
func (e *Engine) OnWinner(kind Kind, fn func(membership.PeerID)) {
	e.callbacks[kind] = fn
}

// Kinds returns, sorted, the election kinds with a registered side effect.
func (e *Engine) Kinds() []Kind {
	return slices.Sorted(maps.Keys(e.callbacks))
}

// StartRound draws a roll for kind fenced by the current view. The returned
// vote must be broadcast to every peer, including the local one.
func (e *Engine) StartRound(kind Kind) Vote {
	return Vote{
		Kind:   kind,
		RollID: NewRollID(e.peers()),
		Sender: e.self,
		Number: e.draw(),
	}
}

// Receive records v and, when its bucket is complete for the current view,
// determines the winner. It returns the winner and true only when the winner
// differs from the last one committed for the kind.
func (e *Engine) Receive(v Vote) (membership.PeerID, bool) {
	if !e.record(v) {
		return "", false
	}
	peers := e.peers()
	if NewRollID(peers) != v.RollID {
		return "", false
	}
	b := e.table[v.Kind][v.RollID]
	if !b.complete(peers) {
		return "", false
	}
	winner := Winner(b)
	if last, ok := e.winners[v.Kind]; ok && last == winner {
		return winner, false
	}
	e.winners[v.Kind] = winner
	e.log.Info("election winner committed", "kind", v.Kind, "winner", winner, "voters", len(b))
	if fn, ok := e.callbacks[v.Kind]; ok {
		fn(winner)
	}
	return winner, true
}

// record stores v unless its sender already voted in the same bucket.
func (e *Engine) record(v Vote) bool {
	byID, ok := e.table[v.Kind]
	if !ok {
		byID = map[RollID]bucket{}
		e.table[v.Kind] = byID
	}
	b, ok := byID[v.RollID]
	if !ok {
		b = bucket{}
		byID[v.RollID] = b
	}
	if _, voted := b[v.Sender]; voted {
		return false
	}
	b[v.Sender] = v.Number
	return true
}

// Winner returns the last committed winner of kind.
func (e *Engine) Winner(kind Kind) (membership.PeerID, bool) {
	w, ok := e.winners[kind]
	return w, ok
}

// Votes returns a copy of the bucket of kind fenced by id.
func (e *Engine) Votes(kind Kind, id RollID) map[membership.PeerID]uint64 {
	copied := map[membership.PeerID]uint64{}
	for p, n := range e.table[kind][id] {
		copied[p] = n
	}
	return copied
}

// drawRoll picks a random scalar of the suite and keeps 63 bits of it.
func drawRoll() uint64 {
	b, err := suite.Scalar().Pick(suite.RandomStream()).MarshalBinary()
	if err != nil {
		panic(err)
	}
	return binary.LittleEndian.Uint64(b[:8]) >> 1
}
