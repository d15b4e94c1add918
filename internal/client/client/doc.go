// Package client pushes change sets to a remote sync peer.
//
// The Client interface is the transport contract used by the sync service.
// TLSClient implements it over a TLS stream using the frame format of
// internal/wire: it dials, completes the handshake, writes one frame and waits
// for the one-line JSON acknowledgement, bounding every step with a deadline.
//
// Each attempt walks the states Idle, Connecting, Handshaking, Sending and
// AwaitingAck, ending in Committed (reported by the caller once the new
// watermark is persisted) or Failed. A StateFunc observes the transitions.
//
// Failures to reach or talk to the peer are common.TransportFailure; an
// "error" field in the peer's answer is common.RemoteRejected.
package client
