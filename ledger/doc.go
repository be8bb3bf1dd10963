// Package ledger implements an append-only, hash-chained log of the
// decisions a peer has committed to.
//
// # Core Components
//
// Blockchain: the log. Every block carries the hash of its predecessor, so
// any later modification breaks the chain.
//
// Block: a single decision: an elected starting player together with the
// votes that elected it, or a finished exchange with its full turn tree.
//
// # Usage
//
// Create a blockchain, append blocks as decisions are taken and call Verify
// at any time to check that the chain is intact.
package ledger
