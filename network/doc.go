// Package network provides the broadcast bus peers use to talk to each other.
//
// # Core Components
//
// Peer: an HTTP server and client pair. Every message is an Envelope POSTed
// as JSON to the root path of every known address.
//
// Envelope: the unit of transport. Messages meant for a single peer are still
// broadcast; they carry a Target and receivers filter on it.
//
// # Delivery
//
// Broadcast is fire-and-forget: each remote delivery runs in its own
// goroutine and is retried until the peer's timeout expires. The sender's own
// copy is looped back to its Inbox. Receivers drop envelopes whose ID they
// have already seen, so retries never deliver twice.
//
// # TLS
//
// WithCertificate and WithLimitedCAs switch both the server and the client to
// mutual TLS. GenerateSelfSignedCert builds a certificate for a listen address.
package network
