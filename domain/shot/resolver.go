package shot

// Throw is the move of one actor in a resolution.
type Throw struct {
	Actor PeerID
	Move  Move
}

// Win names a winner, the other party and the other party's move.
type Win struct {
	Winner    PeerID
	Loser     PeerID
	LoserMove Move
}

// Beats reports whether a beats b.
func Beats(a, b Move) bool {
	return (a == Rock && b == Scissors) ||
		(a == Paper && b == Rock) ||
		(a == Scissors && b == Paper)
}

// Resolve decides the winners between a and b. Equal moves make both parties
// winners, which splits the tree. Invalid moves never win.
func Resolve(a, b Throw) []Win {
	switch {
	case a.Move == b.Move && a.Move.Valid():
		return []Win{
			{Winner: a.Actor, Loser: b.Actor, LoserMove: b.Move},
			{Winner: b.Actor, Loser: a.Actor, LoserMove: a.Move},
		}
	case Beats(a.Move, b.Move) || (a.Move.Valid() && !b.Move.Valid()):
		return []Win{{Winner: a.Actor, Loser: b.Actor, LoserMove: b.Move}}
	case Beats(b.Move, a.Move) || (b.Move.Valid() && !a.Move.Valid()):
		return []Win{{Winner: b.Actor, Loser: a.Actor, LoserMove: a.Move}}
	}
	return nil
}
