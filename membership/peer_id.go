package membership

import (
	"encoding/hex"
	"sort"

	"go.dedis.ch/kyber/v4/suites"
)

// PeerID is a short, cluster-unique identifier of a peer.
type PeerID string

func (id PeerID) String() string {
	return string(id)
}

const idBytes = 5

var suite suites.Suite = suites.MustFind("Ed25519")

// PeerIDFromAddress derives the PeerID of the peer reachable at addr.
func PeerIDFromAddress(addr string) PeerID {
	h := suite.Hash()
	h.Write([]byte(addr))
	sum := h.Sum(nil)
	return PeerID(hex.EncodeToString(sum[:idBytes]))
}

// SortPeers sorts ids in place and returns them.
func SortPeers(ids []PeerID) []PeerID {
	sort.Slice(ids, func(i, j int) bool {
		return ids[i] < ids[j]
	})
	return ids
}
