package shot

// Status is the verdict of Evaluate on a tree.
type Status struct {
	Ended     bool `json:"ended"`
	Won       bool `json:"won"`
	Shots     int  `json:"shots"`
	Terminals int  `json:"terminals"`
}

// Evaluate decides from scratch whether the exchange recorded in tree has
// ended and whether it was won.
//
// The exchange ends when the shot budget is spent or when every branch ended
// in a beam end. It is won when it ended with every branch closed by End,
// exactly the required number of branches, no more shots than allowed, and
// every participant targeted at least the required number of times.
func Evaluate(tree Branch, rules Rules, participants []PeerID) Status {
	terminals := tree.Terminals()
	shots := 0
	targeted := map[PeerID]int{}
	tree.Walk(func(t Turn) {
		if t.IsShot() {
			shots++
			targeted[t.Target]++
		}
	})

	allBeamEnds, allEnd, anyMissed := len(terminals) > 0, len(terminals) > 0, false
	for _, t := range terminals {
		r := t.Result()
		allBeamEnds = allBeamEnds && r.IsBeamEnd()
		allEnd = allEnd && r.Kind == KindEnd
		anyMissed = anyMissed || r.Kind == KindMissed
	}

	minTargeted := 0
	for i, p := range participants {
		if i == 0 || targeted[p] < minTargeted {
			minTargeted = targeted[p]
		}
	}

	ended := shots >= rules.MaxTotalShots || allBeamEnds
	return Status{
		Ended: ended,
		Won: ended &&
			minTargeted >= rules.MinTimesTargeted &&
			len(terminals) == rules.RequiredBranchCount &&
			!anyMissed &&
			allEnd &&
			shots <= rules.MaxTotalShots,
		Shots:     shots,
		Terminals: len(terminals),
	}
}
