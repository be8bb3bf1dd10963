package election

import (
	"strings"

	"github.com/luca-patrignani/splitshot/membership"
)

// Kind names an election. Each kind has its own buckets and winner.
type Kind string

const (
	// KindStarter elects the peer allowed to open the next exchange.
	KindStarter Kind = "who_starts"
)

// RollID fences votes to the membership snapshot they were cast under.
type RollID string

// NewRollID computes the RollID of a membership snapshot. The result does not
// depend on the order of peers.
func NewRollID(peers []membership.PeerID) RollID {
	sorted := make([]membership.PeerID, len(peers))
	copy(sorted, peers)
	membership.SortPeers(sorted)
	parts := make([]string, len(sorted))
	for i, p := range sorted {
		parts[i] = string(p)
	}
	return RollID(strings.Join(parts, ","))
}

// Vote is one peer's roll in one election round.
type Vote struct {
	Kind   Kind              `json:"kind"`
	RollID RollID            `json:"roll_id"`
	Sender membership.PeerID `json:"sender"`
	Number uint64            `json:"number"`
}

type bucket map[membership.PeerID]uint64

// complete reports whether the voters of b are exactly peers.
func (b bucket) complete(peers []membership.PeerID) bool {
	if len(b) != len(peers) {
		return false
	}
	for _, p := range peers {
		if _, ok := b[p]; !ok {
			return false
		}
	}
	return true
}

// Winner returns the peer with the highest number in votes. Ties go to the
// lexically smallest PeerID. It returns the empty PeerID for no votes.
func Winner(votes map[membership.PeerID]uint64) membership.PeerID {
	var best membership.PeerID
	var bestNumber uint64
	found := false
	for p, n := range votes {
		if !found || n > bestNumber || (n == bestNumber && p < best) {
			best = p
			bestNumber = n
			found = true
		}
	}
	return best
}
