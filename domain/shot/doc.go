// Package shot implements the domain logic of a branching rock-paper-scissors
// exchange between peers.
//
// # Core Types
//
// Turn: one node of the history, a four slot record (actor, action, target,
// outcome). A shot carries the shooter's move and a pending marker in the
// outcome slot; a declared winner awaiting their next move carries the
// pending marker in the action slot.
//
// Branch: an ordered list of turns optionally terminated by a Split, whose
// left and right sides are independent branches.
//
// Exchange: the state machine that owns a tree while an exchange is in
// progress, issues message ids and resolves replies.
//
// # Game Flow
//
// The elected starter opens with a move against a target. The target answers
// with a move; the Resolver decides the winner, who then shoots at somebody
// else or ends their beam. Equal moves split the tree in two branches, each
// with its own winner. After every mutation Evaluate decides whether the
// exchange has ended and whether it ended in a win.
package shot
