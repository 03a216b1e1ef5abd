// Package broadcast implements a reliable, ordered broadcast transport
// over raw UDP: a Sender frames outgoing messages into sequence-numbered
// fragments packed into MTU-sized datagrams, and a Receiver reassembles
// per-source streams, requesting retransmission of anything it is
// missing.
//
// Ordering is per-sender only — there is no cross-sender sequencing.
// Loss, reordering, and duplication at the UDP layer are expected and
// handled by the protocol; UDP's own checksum is trusted, and no
// authentication is provided.
//
// The SPECULATING probe convention: a stream that has caught up to its
// own maxSeq but has not naturally quiesced sends a RESEND range
// `[ok+1, ok]` — an empty range whose low end is one past the highest
// sequence it has processed. The sender interprets this as "tell me
// anything you have beyond ok", not as a request for an actual empty
// range of sequences.
package broadcast
