package broadcast

import (
	"net"
	"time"

	"github.com/RoaringBitmap/roaring"
	"go.uber.org/zap"
)

type streamState int

const (
	stateUninitialized streamState = iota
	stateTracking
	stateReceiving
	stateSpeculating
	stateWaitingResend
)

// recvStream holds one originating sender's receive state: its window
// of not-yet-consumed fragments, its progress cursors, and the
// delivered-sequence bitmap used to reject duplicates in O(1) ahead of
// the window. Touched only by the owning Receiver's goroutine.
type recvStream struct {
	addr  net.Addr
	cfg   Config
	log   *zap.Logger
	state streamState

	ok     uint32 // highest contiguously-processed sequence
	maxSeq uint32 // highest sequence observed at all
	window *recvWindow

	delivered *roaring.Bitmap

	lastUpdate    time.Time
	timeoutCount  int
	inMessage     bool
	assembling    []byte

	deliver chan<- []byte
}

func newRecvStream(addr net.Addr, cfg Config, log *zap.Logger, deliver chan<- []byte) *recvStream {
	return &recvStream{
		addr:      addr,
		cfg:       cfg,
		log:       log,
		state:     stateUninitialized,
		window:    newRecvWindow(cfg.WindowSize),
		delivered: roaring.New(),
		deliver:   deliver,
	}
}

// insert is the per-sender stream insertion algorithm: on first
// observation the stream starts TRACKING with ok = seq-1; duplicates
// (already delivered) are dropped via the bitmap check; fragments below
// ok are dropped; everything else goes into the window, then the stream
// walks forward from ok+1 as far as it can.
func (s *recvStream) insert(f fragment) {
	now := time.Now()
	s.lastUpdate = now
	s.maxSeq = maxSeq(s.maxSeq, f.header.Seq)

	if s.delivered.Contains(f.header.Seq) {
		return
	}

	if s.state == stateUninitialized {
		s.state = stateTracking
		s.ok = f.header.Seq - 1
	}

	if after(f.header.Seq, s.ok) {
		return // strictly below ok: already consumed
	}

	s.window.insert(f)
	s.advance()
}

// advance walks forward from ok+1 while the window holds the next
// fragment, transitioning state per fragment type.
func (s *recvStream) advance() {
	for {
		next := s.ok + 1
		f, have := s.window.take(next)
		if !have {
			return
		}
		s.delivered.Add(f.header.Seq)
		s.ok = next

		switch f.header.Len {
		case startOfMsg:
			s.state = stateReceiving
			s.assembling = s.assembling[:0]
			s.inMessage = true
		case endOfMsg:
			if s.inMessage {
				msg := make([]byte, len(s.assembling))
				copy(msg, s.assembling)
				select {
				case s.deliver <- msg:
				default:
					s.log.Warn("broadcast: delivery channel full, dropping message")
				}
			}
			s.inMessage = false
			s.state = stateTracking
		default:
			// NORMAL data fragment.
			if s.inMessage {
				s.assembling = append(s.assembling, f.payload...)
			}
		}
	}
}

// advanceMaxSeq handles UNAVAILABLE/SEQUENCE_UPDATE fragments, which
// move maxSeq (and, for an unrecoverable gap, ok) without delivering
// anything.
func (s *recvStream) advanceMaxSeq(seq uint32) {
	s.maxSeq = maxSeq(s.maxSeq, seq)
	if s.state == stateUninitialized {
		s.state = stateTracking
		s.ok = seq
		return
	}
	if after(s.ok, seq) {
		s.ok = seq
	}
}

// feedback implements the idle-timeout RESEND/probe/give-up policy,
// returning a RESEND fragment to send back to addr, if any.
func (s *recvStream) feedback(now time.Time) (ranges []resendRange, probe bool) {
	if s.state == stateUninitialized {
		return nil, false
	}
	idle := now.Sub(s.lastUpdate)

	switch s.state {
	case stateSpeculating, stateWaitingResend:
		if idle < s.cfg.StreamTimeout {
			return nil, false
		}
		s.timeoutCount++
		if s.timeoutCount >= s.cfg.MaxSpeculativeRetries {
			s.state = stateTracking
			s.timeoutCount = 0
			return nil, false
		}
		if s.state == stateSpeculating {
			s.state = stateWaitingResend
			return s.missingRanges(), false
		}
		s.state = stateReceiving
		return nil, false
	default:
		if idle < s.cfg.StreamTimeout/5 {
			return nil, false
		}
		if s.ok != s.maxSeq {
			s.state = stateWaitingResend
			return s.missingRanges(), false
		}
		s.state = stateSpeculating
		return []resendRange{{Begin: s.ok + 1, End: s.ok}}, true
	}
}

// missingRanges walks [ok+1, maxSeq] and emits half-open ranges of
// sequences the window does not already hold, capped at
// maxResendRanges.
func (s *recvStream) missingRanges() []resendRange {
	var ranges []resendRange
	seq := s.ok + 1
	for !after(s.maxSeq, seq) {
		if s.window.contains(seq) {
			seq++
			continue
		}
		start := seq
		for !after(s.maxSeq, seq) && !s.window.contains(seq) {
			seq++
		}
		ranges = append(ranges, resendRange{Begin: start, End: seq})
		if len(ranges) >= maxResendRanges {
			break
		}
	}
	return ranges
}
