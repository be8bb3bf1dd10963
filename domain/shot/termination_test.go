package shot

import "testing"

func TestEvaluate(t *testing.T) {
	rules := Rules{MinTimesTargeted: 1, RequiredBranchCount: 1, MaxTotalShots: 3}
	players := []PeerID{"a", "b"}
	shot := func(actor, target PeerID, outcome Action) Turn {
		return Turn{Actor: actor, Action: Played(Rock), Target: target, Outcome: outcome}
	}
	winner := func(actor PeerID, action Action) Turn {
		return Turn{Actor: actor, Action: action}
	}

	tests := []struct {
		name     string
		tree     Branch
		expected Status
	}{
		{
			name:     "empty tree",
			tree:     Branch{},
			expected: Status{},
		},
		{
			name:     "pending shot",
			tree:     Branch{Turns: []Turn{shot("a", "b", Pending(1))}},
			expected: Status{Shots: 1, Terminals: 1},
		},
		{
			name: "everyone targeted and beam ended",
			tree: Branch{Turns: []Turn{
				shot("a", "b", Played(Scissors)),
				shot("a", "b", Played(Scissors)),
				winner("a", EndAction()),
			}},
			expected: Status{Shots: 2, Terminals: 1, Ended: true},
		},
		{
			name: "won",
			tree: Branch{Turns: []Turn{
				shot("a", "b", Played(Scissors)),
				shot("a", "b", Played(Paper)),
				shot("b", "a", EndAction()),
			}},
			expected: Status{Shots: 3, Terminals: 1, Ended: true, Won: true},
		},
		{
			name:     "missed branch ends without win",
			tree:     Branch{Turns: []Turn{shot("a", "b", MissedAction())}},
			expected: Status{Shots: 1, Terminals: 1, Ended: true},
		},
		{
			name: "shot budget spent",
			tree: Branch{Turns: []Turn{
				shot("a", "b", Played(Scissors)),
				shot("a", "b", Played(Paper)),
				shot("b", "a", Pending(3)),
			}},
			expected: Status{Shots: 3, Terminals: 1, Ended: true},
		},
		{
			name: "wrong branch count",
			tree: Branch{
				Turns: []Turn{shot("a", "b", Played(Rock))},
				Split: &Split{
					Left:  Branch{Turns: []Turn{shot("a", "b", EndAction())}},
					Right: Branch{Turns: []Turn{shot("b", "a", EndAction())}},
				},
			},
			expected: Status{Shots: 3, Terminals: 2, Ended: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Evaluate(tt.tree, rules, players); got != tt.expected {
				t.Errorf("Evaluate() = %+v, want %+v", got, tt.expected)
			}
		})
	}
}

func TestEvaluateWithoutParticipants(t *testing.T) {
	rules := Rules{MinTimesTargeted: 1, RequiredBranchCount: 1, MaxTotalShots: 5}
	tree := Branch{Turns: []Turn{{Actor: "a", Action: EndAction()}}}
	s := Evaluate(tree, rules, nil)
	if !s.Ended || s.Won {
		t.Fatalf("expected ended without win, got %+v", s)
	}
}

func TestRulesValidate(t *testing.T) {
	if err := DefaultRules().Validate(); err != nil {
		t.Fatal(err)
	}
	bad := []Rules{
		{MinTimesTargeted: -1, RequiredBranchCount: 1, MaxTotalShots: 1},
		{MinTimesTargeted: 0, RequiredBranchCount: 0, MaxTotalShots: 1},
		{MinTimesTargeted: 0, RequiredBranchCount: 1, MaxTotalShots: 0},
	}
	for _, r := range bad {
		if err := r.Validate(); err == nil {
			t.Errorf("expected %+v to be rejected", r)
		}
	}
}
