package broadcast

import "time"

// sendWindow is a fixed-size ring of outstanding packs keyed by their
// first fragment's sequence number, touched only by the sender
// goroutine and therefore lock-free.
type sendWindow struct {
	size     uint32
	slots    []*pack
	seqs     []uint32 // the seq each slot was last filled with, to detect staleness
	resentAt []time.Time
}

func newSendWindow(size int) *sendWindow {
	return &sendWindow{
		size:     uint32(size),
		slots:    make([]*pack, size),
		seqs:     make([]uint32, size),
		resentAt: make([]time.Time, size),
	}
}

func (w *sendWindow) index(seq uint32) uint32 { return seq % w.size }

// insert records p under its first fragment's sequence, overwriting
// whatever stale entry previously occupied that ring slot.
func (w *sendWindow) insert(p *pack) {
	i := w.index(p.firstSeq)
	w.slots[i] = p
	w.seqs[i] = p.firstSeq
	w.resentAt[i] = time.Time{}
}

// lookup returns the pack for seq if the ring slot still holds it (an
// overwritten or never-filled slot means the sender no longer has it,
// which the caller reports as UNAVAILABLE).
func (w *sendWindow) lookup(seq uint32) (*pack, bool) {
	i := w.index(seq)
	if w.slots[i] == nil || w.seqs[i] != seq {
		return nil, false
	}
	return w.slots[i], true
}

// markResent records that seq was just retransmitted, for the
// resend-dedup delay.
func (w *sendWindow) markResent(seq uint32, now time.Time) {
	i := w.index(seq)
	if w.seqs[i] == seq {
		w.resentAt[i] = now
	}
}

// recentlyResent reports whether seq was retransmitted within delay of
// now.
func (w *sendWindow) recentlyResent(seq uint32, now time.Time, delay time.Duration) bool {
	i := w.index(seq)
	if w.seqs[i] != seq {
		return false
	}
	last := w.resentAt[i]
	return !last.IsZero() && now.Sub(last) < delay
}

// recvWindow is a fixed-size ring of received-but-not-yet-consumed
// fragments, keyed by sequence, touched only by the receiver goroutine
// for a single stream.
type recvWindow struct {
	size  uint32
	slots []fragment
	have  []bool
}

func newRecvWindow(size int) *recvWindow {
	return &recvWindow{
		size:  uint32(size),
		slots: make([]fragment, size),
		have:  make([]bool, size),
	}
}

func (w *recvWindow) index(seq uint32) uint32 { return seq % w.size }

// insert stores f, without overwrite, at its sequence's ring slot.
func (w *recvWindow) insert(f fragment) {
	i := w.index(f.header.Seq)
	if w.have[i] && w.slots[i].header.Seq == f.header.Seq {
		return
	}
	w.slots[i] = f
	w.have[i] = true
}

// contains reports whether seq is currently held without consuming it.
func (w *recvWindow) contains(seq uint32) bool {
	i := w.index(seq)
	return w.have[i] && w.slots[i].header.Seq == seq
}

// take returns and clears the fragment stored for seq, if any.
func (w *recvWindow) take(seq uint32) (fragment, bool) {
	i := w.index(seq)
	if !w.have[i] || w.slots[i].header.Seq != seq {
		return fragment{}, false
	}
	w.have[i] = false
	return w.slots[i], true
}
