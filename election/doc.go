// Package election implements the randomized "highest roll wins" vote that
// every peer runs whenever the membership view changes.
//
// # Rounds
//
// StartRound draws a random number and tags it with the RollID of the local
// view. The resulting Vote is broadcast to every peer, the sender included.
// Receive records each vote in the bucket of the RollID it was cast under, so
// votes computed against different membership snapshots are never compared.
//
// # Winner
//
// A bucket is complete when its voters are exactly the peers of the current
// view. The winner of a complete bucket is the peer with the highest number;
// equal numbers are broken by the lexically smallest PeerID. The winner is a
// pure function of the bucket, so every peer that observes the same complete
// bucket elects the same peer regardless of the order votes arrived in.
//
// A bucket that never completes (a peer left mid-round) is never resolved; it
// is abandoned in favour of the round started by the next membership change.
package election
