// Package membership keeps each peer's local view of the cluster.
//
// # Peer identifiers
//
// A PeerID is derived from the full transport address of a peer by hashing it
// with the Ed25519 kyber suite and keeping a short hex prefix. Every observer
// computes the same PeerID for the same address, so the mapping never has to
// be transmitted.
//
// # View
//
// The Tracker owns a map from PeerID to address. It always contains the local
// peer and is mutated only by Join and Leave. Callers only ever receive copies.
//
// Missed join/leave notifications are not corrected: the local view diverges
// until the transport reports the next change.
package membership
