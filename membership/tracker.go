package membership

// Tracker maintains the MembershipView of the local peer.
// It is not safe for concurrent use: the coordinator goroutine owns it.
type Tracker struct {
	self PeerID
	view map[PeerID]string
}

// NewTracker creates a view containing only the local peer.
func NewTracker(selfAddr string) *Tracker {
	self := PeerIDFromAddress(selfAddr)
	return &Tracker{
		self: self,
		view: map[PeerID]string{self: selfAddr},
	}
}

// Self returns the PeerID of the local peer.
func (t *Tracker) Self() PeerID {
	return t.self
}

// Join adds the peer at addr to the view.
// The boolean reports whether the view changed.
func (t *Tracker) Join(addr string) (PeerID, bool) {
	id := PeerIDFromAddress(addr)
	if _, ok := t.view[id]; ok {
		return id, false
	}
	t.view[id] = addr
	return id, true
}

// Leave removes the peer at addr from the view. The local peer never leaves
// its own view. The boolean reports whether the view changed.
func (t *Tracker) Leave(addr string) (PeerID, bool) {
	id := PeerIDFromAddress(addr)
	if id == t.self {
		return id, false
	}
	if _, ok := t.view[id]; !ok {
		return id, false
	}
	delete(t.view, id)
	return id, true
}

// Peers returns the sorted PeerIDs of the current view.
func (t *Tracker) Peers() []PeerID {
	ids := make([]PeerID, 0, len(t.view))
	for id := range t.view {
		ids = append(ids, id)
	}
	return SortPeers(ids)
}

// View returns a copy of the current view.
func (t *Tracker) View() map[PeerID]string {
	copied := make(map[PeerID]string, len(t.view))
	for k, v := range t.view {
		copied[k] = v
	}
	return copied
}
