package shot

// Chain lists the lineages of actors from the root of the tree. The lineage
// leading to the pending marker a message refers to is the last entry.
type Chain [][]PeerID

// Contains reports whether the pending marker id is anywhere in b.
func (b Branch) Contains(id MessageID) bool {
	for _, t := range b.Turns {
		if pid, ok := t.pending(); ok && pid == id {
			return true
		}
	}
	if b.Split != nil {
		return b.Split.Left.Contains(id) || b.Split.Right.Contains(id)
	}
	return false
}

// Terminals returns the trailing turn of every branch that does not end in a
// Split, left before right.
func (b Branch) Terminals() []Turn {
	if b.Split != nil {
		return append(b.Split.Left.Terminals(), b.Split.Right.Terminals()...)
	}
	if len(b.Turns) == 0 {
		return nil
	}
	return []Turn{b.Turns[len(b.Turns)-1]}
}

// Walk calls fn for every turn of the tree in depth-first order.
func (b Branch) Walk(fn func(Turn)) {
	for _, t := range b.Turns {
		fn(t)
	}
	if b.Split != nil {
		b.Split.Left.Walk(fn)
		b.Split.Right.Walk(fn)
	}
}

// Shots counts the shots of the tree.
func (b Branch) Shots() int {
	n := 0
	b.Walk(func(t Turn) {
		if t.IsShot() {
			n++
		}
	})
	return n
}

// PendingIDs returns the outstanding message ids of the tree.
func (b Branch) PendingIDs() []MessageID {
	var ids []MessageID
	b.Walk(func(t Turn) {
		if id, ok := t.pending(); ok {
			ids = append(ids, id)
		}
	})
	return ids
}

// ChainTo reconstructs the shot chain of the pending marker id. At every
// Split on the way, the lineages of the side not taken are recorded as
// separate entries before descending into the side that is taken.
func (b Branch) ChainTo(id MessageID) (Chain, bool) {
	var path []PeerID
	for _, t := range b.Turns {
		path = appendTurn(path, t)
		if pid, ok := t.pending(); ok && pid == id {
			return Chain{path}, true
		}
	}
	if b.Split == nil {
		return nil, false
	}
	if sub, ok := b.Split.Left.ChainTo(id); ok {
		return prefixed(path, append(b.Split.Right.lineages(), sub...)), true
	}
	if sub, ok := b.Split.Right.ChainTo(id); ok {
		return prefixed(path, append(b.Split.Left.lineages(), sub...)), true
	}
	return nil, false
}

func (b Branch) lineages() Chain {
	var path []PeerID
	for _, t := range b.Turns {
		path = appendTurn(path, t)
	}
	if b.Split == nil {
		return Chain{path}
	}
	return prefixed(path, append(b.Split.Left.lineages(), b.Split.Right.lineages()...))
}

func appendTurn(path []PeerID, t Turn) []PeerID {
	path = append(path, t.Actor)
	if t.IsShot() {
		path = append(path, t.Target)
	}
	return path
}

func prefixed(prefix []PeerID, c Chain) Chain {
	out := make(Chain, len(c))
	for i, lineage := range c {
		entry := make([]PeerID, 0, len(prefix)+len(lineage))
		entry = append(entry, prefix...)
		out[i] = append(entry, lineage...)
	}
	return out
}

// resolver carries what a resolution needs besides the tree itself.
type resolver struct {
	next      func() MessageID
	canTarget func(shooter, target PeerID) bool
	notices   []Event
}

// resolve returns a copy of b in which the pending marker id has been
// resolved by d. Unchanged subtrees are shared, nothing is mutated in place.
func (b Branch) resolve(id MessageID, d Decision, r *resolver) (Branch, bool) {
	for i, t := range b.Turns {
		if pid, ok := t.pending(); ok && pid == id {
			next := Branch{Turns: cloneTurns(b.Turns), Split: b.Split}
			r.apply(&next, i, d)
			return next, true
		}
	}
	if b.Split == nil {
		return b, false
	}
	if left, ok := b.Split.Left.resolve(id, d, r); ok {
		return Branch{Turns: b.Turns, Split: &Split{Left: left, Right: b.Split.Right}}, true
	}
	if right, ok := b.Split.Right.resolve(id, d, r); ok {
		return Branch{Turns: b.Turns, Split: &Split{Left: b.Split.Left, Right: right}}, true
	}
	return b, false
}

func (r *resolver) apply(b *Branch, i int, d Decision) {
	t := b.Turns[i]
	if !t.IsShot() {
		switch {
		case d.Kind == DecisionEndBeam:
			t.Action = EndAction()
		case d.Kind == DecisionShoot && d.Move.Valid() && r.canTarget(t.Actor, d.Target):
			id := r.next()
			t = Turn{Actor: t.Actor, Action: Played(d.Move), Target: d.Target, Outcome: Pending(id)}
			r.notices = append(r.notices, Event{Kind: EventShot, ID: id, Target: d.Target, From: t.Actor})
		default:
			t.Action = MissedAction()
		}
		b.Turns[i] = t
		return
	}

	switch {
	case d.Kind == DecisionEndBeam:
		t.Outcome = EndAction()
		b.Turns[i] = t
	case d.Kind == DecisionMove && d.Move.Valid():
		t.Outcome = Played(d.Move)
		b.Turns[i] = t
		wins := Resolve(Throw{Actor: t.Actor, Move: t.Action.Move}, Throw{Actor: t.Target, Move: d.Move})
		switch len(wins) {
		case 1:
			b.Turns = append(b.Turns, r.won(wins[0]))
		case 2:
			b.Split = &Split{
				Left:  Branch{Turns: []Turn{r.won(wins[0])}},
				Right: Branch{Turns: []Turn{r.won(wins[1])}},
			}
		}
	default:
		t.Outcome = MissedAction()
		b.Turns[i] = t
	}
}

func (r *resolver) won(w Win) Turn {
	id := r.next()
	r.notices = append(r.notices, Event{
		Kind:      EventWon,
		ID:        id,
		Target:    w.Winner,
		Loser:     w.Loser,
		LoserMove: w.LoserMove,
	})
	return Turn{Actor: w.Winner, Action: Pending(id)}
}

// missOutstanding replaces every pending marker of b with Missed.
func (b Branch) missOutstanding() Branch {
	next := Branch{Turns: cloneTurns(b.Turns)}
	for i, t := range next.Turns {
		if _, ok := t.pending(); !ok {
			continue
		}
		if t.IsShot() {
			next.Turns[i].Outcome = MissedAction()
		} else {
			next.Turns[i].Action = MissedAction()
		}
	}
	if b.Split != nil {
		next.Split = &Split{Left: b.Split.Left.missOutstanding(), Right: b.Split.Right.missOutstanding()}
	}
	return next
}

func cloneTurns(turns []Turn) []Turn {
	out := make([]Turn, len(turns), len(turns)+1)
	copy(out, turns)
	return out
}
