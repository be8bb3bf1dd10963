package election

import (
	"math/rand"
	"testing"

	"github.com/luca-patrignani/splitshot/membership"
)

type testPeer struct {
	view   []membership.PeerID
	engine *Engine
}

func newTestPeer(self membership.PeerID, view []membership.PeerID, number uint64) *testPeer {
	p := &testPeer{view: view}
	p.engine = NewEngine(self, func() []membership.PeerID { return p.view }, WithDraw(func() uint64 { return number }))
	return p
}

func TestNewRollIDIgnoresOrder(t *testing.T) {
	a := NewRollID([]membership.PeerID{"c", "a", "b"})
	b := NewRollID([]membership.PeerID{"b", "c", "a"})
	if a != b {
		t.Fatalf("expected equal roll ids, got %q and %q", a, b)
	}
	if a != "a,b,c" {
		t.Fatalf("unexpected roll id %q", a)
	}
}

func TestWinner(t *testing.T) {
	tests := []struct {
		name     string
		votes    map[membership.PeerID]uint64
		expected membership.PeerID
	}{
		{
			name:     "highest number wins",
			votes:    map[membership.PeerID]uint64{"a": 3, "b": 9, "c": 5},
			expected: "b",
		},
		{
			name:     "tie goes to smallest id",
			votes:    map[membership.PeerID]uint64{"c": 9, "b": 9, "a": 1},
			expected: "b",
		},
		{
			name:     "single voter",
			votes:    map[membership.PeerID]uint64{"z": 0},
			expected: "z",
		},
		{
			name:     "no votes",
			votes:    map[membership.PeerID]uint64{},
			expected: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := Winner(tt.votes); w != tt.expected {
				t.Errorf("Winner(%v) = %q, want %q", tt.votes, w, tt.expected)
			}
		})
	}
}

func TestReceiveConvergesRegardlessOfOrder(t *testing.T) {
	view := []membership.PeerID{"a", "b", "c"}
	numbers := map[membership.PeerID]uint64{"a": 10, "b": 30, "c": 20}
	peers := map[membership.PeerID]*testPeer{}
	var votes []Vote
	for id, n := range numbers {
		peers[id] = newTestPeer(id, view, n)
		votes = append(votes, peers[id].engine.StartRound(KindStarter))
	}

	rng := rand.New(rand.NewSource(7))
	for id, p := range peers {
		starters := 0
		p.engine.OnWinner(KindStarter, func(membership.PeerID) { starters++ })
		order := rng.Perm(len(votes))
		for _, i := range order {
			p.engine.Receive(votes[i])
		}
		w, ok := p.engine.Winner(KindStarter)
		if !ok || w != "b" {
			t.Fatalf("peer %s elected %q, want b", id, w)
		}
		if starters != 1 {
			t.Fatalf("peer %s fired the winner callback %d times", id, starters)
		}
	}
}

func TestReceiveIsIdempotent(t *testing.T) {
	p := newTestPeer("a", []membership.PeerID{"a", "b"}, 1)
	vote := Vote{Kind: KindStarter, RollID: "a,b", Sender: "b", Number: 5}
	p.engine.Receive(vote)
	vote.Number = 100
	p.engine.Receive(vote)
	if n := p.engine.Votes(KindStarter, "a,b")["b"]; n != 5 {
		t.Fatalf("duplicate vote overwrote the first one: got %d", n)
	}
}

func TestIncompleteBucketNeverElects(t *testing.T) {
	p := newTestPeer("a", []membership.PeerID{"a", "b", "c"}, 1)
	fired := false
	p.engine.OnWinner(KindStarter, func(membership.PeerID) { fired = true })
	for i := 0; i < 10; i++ {
		p.engine.Receive(Vote{Kind: KindStarter, RollID: "a,b,c", Sender: "a", Number: uint64(i)})
		p.engine.Receive(Vote{Kind: KindStarter, RollID: "a,b,c", Sender: "b", Number: uint64(i)})
	}
	if fired {
		t.Fatal("winner callback fired for an incomplete bucket")
	}
	if _, ok := p.engine.Winner(KindStarter); ok {
		t.Fatal("incomplete bucket committed a winner")
	}
}

func TestStaleRollIDIsFenced(t *testing.T) {
	p := newTestPeer("a", []membership.PeerID{"a", "b"}, 1)
	// votes cast while c was still a member
	p.engine.Receive(Vote{Kind: KindStarter, RollID: "a,b,c", Sender: "a", Number: 1})
	p.engine.Receive(Vote{Kind: KindStarter, RollID: "a,b,c", Sender: "b", Number: 2})
	if _, ok := p.engine.Winner(KindStarter); ok {
		t.Fatal("votes from another membership snapshot elected a winner")
	}
	p.engine.Receive(Vote{Kind: KindStarter, RollID: "a,b", Sender: "a", Number: 1})
	w, changed := p.engine.Receive(Vote{Kind: KindStarter, RollID: "a,b", Sender: "b", Number: 2})
	if !changed || w != "b" {
		t.Fatalf("expected b to be elected, got %q (changed=%v)", w, changed)
	}
}

func TestSameWinnerIsNotReannounced(t *testing.T) {
	p := newTestPeer("a", []membership.PeerID{"a", "b"}, 1)
	calls := 0
	p.engine.OnWinner(KindStarter, func(membership.PeerID) { calls++ })
	p.engine.Receive(Vote{Kind: KindStarter, RollID: "a,b", Sender: "a", Number: 1})
	p.engine.Receive(Vote{Kind: KindStarter, RollID: "a,b", Sender: "b", Number: 2})

	p.view = []membership.PeerID{"a", "b", "c"}
	p.engine.Receive(Vote{Kind: KindStarter, RollID: "a,b,c", Sender: "a", Number: 1})
	p.engine.Receive(Vote{Kind: KindStarter, RollID: "a,b,c", Sender: "c", Number: 0})
	_, changed := p.engine.Receive(Vote{Kind: KindStarter, RollID: "a,b,c", Sender: "b", Number: 7})
	if changed {
		t.Fatal("same winner must not be announced twice")
	}
	if calls != 1 {
		t.Fatalf("expected 1 callback, got %d", calls)
	}
}

func TestReturningViewKeepsIntermediateWinner(t *testing.T) {
	p := newTestPeer("a", []membership.PeerID{"a", "b"}, 1)
	p.engine.Receive(Vote{Kind: KindStarter, RollID: "a,b", Sender: "a", Number: 1})
	p.engine.Receive(Vote{Kind: KindStarter, RollID: "a,b", Sender: "b", Number: 2})

	p.view = []membership.PeerID{"a", "b", "c"}
	p.engine.Receive(Vote{Kind: KindStarter, RollID: "a,b,c", Sender: "a", Number: 1})
	p.engine.Receive(Vote{Kind: KindStarter, RollID: "a,b,c", Sender: "b", Number: 2})
	p.engine.Receive(Vote{Kind: KindStarter, RollID: "a,b,c", Sender: "c", Number: 9})

	// c leaves: the new rolls fall in the bucket already complete for "a,b"
	p.view = []membership.PeerID{"a", "b"}
	for _, v := range []Vote{
		{Kind: KindStarter, RollID: "a,b", Sender: "a", Number: 5},
		{Kind: KindStarter, RollID: "a,b", Sender: "b", Number: 3},
	} {
		if _, changed := p.engine.Receive(v); changed {
			t.Fatalf("vote %+v recomputed the winner", v)
		}
	}
	if w, _ := p.engine.Winner(KindStarter); w != "c" {
		t.Fatalf("expected c to stay the winner, got %q", w)
	}
}

func TestIdenticalHistoriesConverge(t *testing.T) {
	type change struct {
		view  []membership.PeerID
		votes []Vote
	}
	history := []change{
		{
			view: []membership.PeerID{"a", "b"},
			votes: []Vote{
				{Kind: KindStarter, RollID: "a,b", Sender: "a", Number: 4},
				{Kind: KindStarter, RollID: "a,b", Sender: "b", Number: 2},
			},
		},
		{
			view: []membership.PeerID{"a", "b", "c"},
			votes: []Vote{
				{Kind: KindStarter, RollID: "a,b,c", Sender: "c", Number: 8},
				{Kind: KindStarter, RollID: "a,b,c", Sender: "a", Number: 8},
				{Kind: KindStarter, RollID: "a,b,c", Sender: "b", Number: 3},
			},
		},
		{
			view: []membership.PeerID{"b", "c"},
			votes: []Vote{
				{Kind: KindStarter, RollID: "b,c", Sender: "b", Number: 6},
				{Kind: KindStarter, RollID: "b,c", Sender: "c", Number: 5},
			},
		},
	}
	winners := make([][]membership.PeerID, 2)
	for i := range winners {
		p := newTestPeer("b", nil, 0)
		for _, c := range history {
			p.view = c.view
			for _, v := range c.votes {
				p.engine.Receive(v)
			}
			w, _ := p.engine.Winner(KindStarter)
			winners[i] = append(winners[i], w)
		}
	}
	expected := []membership.PeerID{"a", "a", "b"}
	for i := range expected {
		if winners[0][i] != winners[1][i] || winners[0][i] != expected[i] {
			t.Fatalf("step %d: engines elected %q and %q, want %q", i, winners[0][i], winners[1][i], expected[i])
		}
	}
}

func TestDrawRollIsPositive(t *testing.T) {
	for i := 0; i < 100; i++ {
		if n := drawRoll(); n>>63 != 0 {
			t.Fatalf("roll %d exceeds 63 bits", n)
		}
	}
}
