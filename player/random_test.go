package player

import (
	"context"
	"testing"

	"github.com/luca-patrignani/splitshot/domain/shot"
)

func fixed(values ...int) func(int) int {
	return func(n int) int {
		v := values[0] % n
		values = values[1:]
		return v
	}
}

func TestRandomAnswersShotWithMove(t *testing.T) {
	r := NewRandom(50)
	for range 20 {
		d, err := r.Decide(context.Background(), shot.Event{Kind: shot.EventShot})
		if err != nil {
			t.Fatal(err)
		}
		if !d.ValidFor(shot.EventShot) || d.Kind != shot.DecisionMove {
			t.Fatalf("unexpected decision %v", d)
		}
	}
}

func TestRandomWinner(t *testing.T) {
	ev := shot.Event{Kind: shot.EventWon, Target: "b", Participants: []shot.PeerID{"a", "b", "c"}}
	tests := []struct {
		name     string
		draws    []int
		expected shot.Decision
	}{
		{"ends beam", []int{0, 10}, shot.EndBeam()},
		{"shoots first other", []int{1, 90, 0}, shot.Shoot("a", shot.Paper)},
		{"shoots second other", []int{2, 90, 1}, shot.Shoot("c", shot.Scissors)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Random{EndBeamOdds: 50, intn: fixed(tt.draws...)}
			d, err := r.Decide(context.Background(), ev)
			if err != nil {
				t.Fatal(err)
			}
			if d != tt.expected {
				t.Fatalf("expected %v, got %v", tt.expected, d)
			}
		})
	}
}

func TestRandomAloneEndsBeam(t *testing.T) {
	r := NewRandom(0)
	ev := shot.Event{Kind: shot.EventWon, Target: "a", Participants: []shot.PeerID{"a"}}
	d, err := r.Decide(context.Background(), ev)
	if err != nil || d != shot.EndBeam() {
		t.Fatalf("expected end beam, got %v, %v", d, err)
	}
}

func TestIntnInRange(t *testing.T) {
	for range 100 {
		if v := intn(3); v < 0 || v >= 3 {
			t.Fatalf("intn(3) = %d", v)
		}
	}
}
