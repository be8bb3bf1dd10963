package shot

import (
	"reflect"
	"testing"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Throw
		expected []Win
	}{
		{
			name:     "rock beats scissors",
			a:        Throw{Actor: "A", Move: Rock},
			b:        Throw{Actor: "B", Move: Scissors},
			expected: []Win{{Winner: "A", Loser: "B", LoserMove: Scissors}},
		},
		{
			name:     "paper beats rock",
			a:        Throw{Actor: "A", Move: Rock},
			b:        Throw{Actor: "B", Move: Paper},
			expected: []Win{{Winner: "B", Loser: "A", LoserMove: Rock}},
		},
		{
			name:     "scissors beats paper",
			a:        Throw{Actor: "A", Move: Scissors},
			b:        Throw{Actor: "B", Move: Paper},
			expected: []Win{{Winner: "A", Loser: "B", LoserMove: Paper}},
		},
		{
			name: "tie makes both winners",
			a:    Throw{Actor: "A", Move: Rock},
			b:    Throw{Actor: "B", Move: Rock},
			expected: []Win{
				{Winner: "A", Loser: "B", LoserMove: Rock},
				{Winner: "B", Loser: "A", LoserMove: Rock},
			},
		},
		{
			name:     "valid move beats invalid move",
			a:        Throw{Actor: "A", Move: "lizard"},
			b:        Throw{Actor: "B", Move: Paper},
			expected: []Win{{Winner: "B", Loser: "A", LoserMove: "lizard"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.a, tt.b)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Resolve(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestDistinctMovesHaveOneWinner(t *testing.T) {
	for _, a := range Moves {
		for _, b := range Moves {
			wins := Resolve(Throw{Actor: "A", Move: a}, Throw{Actor: "B", Move: b})
			if a == b {
				if len(wins) != 2 {
					t.Errorf("%s vs %s: expected split, got %v", a, b, wins)
				}
				continue
			}
			if len(wins) != 1 {
				t.Errorf("%s vs %s: expected exactly one winner, got %v", a, b, wins)
			}
		}
	}
}

func TestParseMove(t *testing.T) {
	if m, err := ParseMove("paper"); err != nil || m != Paper {
		t.Fatalf("ParseMove(paper) = %q, %v", m, err)
	}
	if _, err := ParseMove("lizard"); err == nil {
		t.Fatal("expected error for unknown move")
	}
}

func TestDecisionValidFor(t *testing.T) {
	tests := []struct {
		name     string
		d        Decision
		kind     EventKind
		expected bool
	}{
		{"move answers shot", Play(Rock), EventShot, true},
		{"end beam answers shot", EndBeam(), EventShot, true},
		{"shoot does not answer shot", Shoot("x", Rock), EventShot, false},
		{"invalid move does not answer shot", Play("lizard"), EventShot, false},
		{"shoot answers won", Shoot("x", Paper), EventWon, true},
		{"shoot without target", Shoot("", Paper), EventWon, false},
		{"end beam answers won", EndBeam(), EventWon, true},
		{"move does not answer won", Play(Paper), EventWon, false},
		{"missed answers nothing", Missed(), EventWon, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.d.ValidFor(tt.kind); got != tt.expected {
				t.Errorf("%v.ValidFor(%s) = %v, want %v", tt.d, tt.kind, got, tt.expected)
			}
		})
	}
}
