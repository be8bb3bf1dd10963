// Package coordinator runs a peer: it keeps the membership view, takes part
// in the "who starts" elections and drives the exchanges.
//
// # Core Components
//
// Node: a single goroutine owning the membership Tracker, the election
// Engine, the Exchange and the ledger. Every input, from the bus or from the
// local process, is an Event processed one at a time.
//
// Bus: the broadcast transport. Messages for a single peer are broadcast
// with a target and filtered on receipt.
//
// Decider: the decision function of the local player, called for every Shot
// and Won event addressed to it. Panics, errors, timeouts and answers that do
// not fit the event all count as Missed.
//
// Presenter: receives every finished exchange.
//
// # Exchange Protocol
//
//  1. The elected starter opens an exchange and broadcasts a Shot at its target.
//  2. The target answers with ReplyShot; the starter resolves the turn and
//     broadcasts the resulting Won events.
//  3. Each winner answers with ReplyWon, shooting again or ending its beam.
//  4. When the exchange ends the starter broadcasts GameEnd with the full tree;
//     every peer presents it and records it in its ledger.
package coordinator
