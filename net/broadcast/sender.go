package broadcast

import (
	"context"
	"net"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/norensa/libspl-go/internal/clock"
)

// sendRetries is the small, fixed number of immediate retries a
// transmit gets on EAGAIN/EINTR — a tight retry loop, not an
// exponential multi-second backoff, matching the source's intent.
const sendRetries = 5

type resendRequest struct {
	ranges []resendRange
}

// Sender frames outgoing messages into sequence-numbered fragments,
// packs them into MTU-sized datagrams, and broadcasts them to a fixed
// set of addresses, retransmitting on request and pacing itself with a
// simple congestion controller.
type Sender struct {
	cfg   Config
	conn  net.PacketConn
	addrs []net.Addr
	log   *zap.Logger
	clock clock.Source

	nextSeq  uint32
	window   *sendWindow
	sendCh   chan *pack
	resendCh chan resendRequest

	sendCount   atomic.Uint64
	resendCount atomic.Uint64
	sleepFor    atomic.Duration

	group  *errgroup.Group
	cancel context.CancelFunc
}

// NewSender creates a Sender broadcasting on conn to addrs.
func NewSender(conn net.PacketConn, addrs []net.Addr, cfg Config, log *zap.Logger) *Sender {
	cfg = cfg.withDefaults()
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Sender{
		cfg:      cfg,
		conn:     conn,
		addrs:    addrs,
		log:      log,
		clock:    clock.Default,
		window:   newSendWindow(cfg.WindowSize),
		sendCh:   make(chan *pack, 256),
		resendCh: make(chan resendRequest, 64),
		cancel:   cancel,
	}
	group, gctx := errgroup.WithContext(ctx)
	s.group = group
	group.Go(func() error { return s.run(gctx) })
	return s
}

// Send frames data as one broadcast message: START_OF_MSG, a run of
// NORMAL fragments, END_OF_MSG, packed into as many MTU-sized datagrams
// as needed and enqueued for transmission.
func (s *Sender) Send(data []byte) error {
	b := newPackBuilder(s.cfg.MTU)

	b.add(fragHeader{Len: startOfMsg, Seq: s.allocSeq()}, nil)

	for len(data) > 0 {
		bodyCap := s.cfg.MTU - fragHeaderSize
		if bodyCap > normalThreshold {
			bodyCap = normalThreshold
		}
		n := len(data)
		if n > bodyCap {
			n = bodyCap
		}
		b.add(fragHeader{Len: uint16(n), Seq: s.allocSeq()}, data[:n])
		data = data[n:]
	}

	b.add(fragHeader{Len: endOfMsg, Seq: s.allocSeq()}, nil)

	for _, p := range b.finish() {
		select {
		case s.sendCh <- p:
		default:
			return errors.New("broadcast: send queue full")
		}
	}
	return nil
}

func (s *Sender) allocSeq() uint32 {
	seq := s.nextSeq
	s.nextSeq++
	return seq
}

// Close stops the sender engine and waits for it to exit.
func (s *Sender) Close() error {
	s.cancel()
	return s.group.Wait()
}

func (s *Sender) run(ctx context.Context) error {
	seqTicker := time.NewTicker(s.cfg.SequenceUpdateInterval)
	defer seqTicker.Stop()
	congestionTicker := time.NewTicker(s.cfg.CongestionUpdateInterval)
	defer congestionTicker.Stop()

	var sentSinceSleep int

	for {
		select {
		case <-ctx.Done():
			return nil
		case p := <-s.sendCh:
			s.window.insert(p)
			if err := s.transmit(p.bytes); err != nil {
				return err
			}
			s.sendCount.Inc()
			// Pace per fragment: sleep whenever this pack carries the
			// running fragment count past another multiple of 10.
			before := sentSinceSleep / 10
			sentSinceSleep += len(p.fragments)
			if sentSinceSleep/10 > before {
				if d := s.sleepFor.Load(); d > 0 {
					time.Sleep(d)
				}
			}
		case req := <-s.resendCh:
			if err := s.handleResend(req); err != nil {
				return err
			}
		case <-seqTicker.C:
			if err := s.sendSequenceUpdate(); err != nil {
				return err
			}
		case <-congestionTicker.C:
			s.updateCongestion()
		}
	}
}

func (s *Sender) transmit(buf []byte) error {
	for _, addr := range s.addrs {
		op := func() error {
			_, err := s.conn.WriteTo(buf, addr)
			if err != nil && isTransient(err) {
				return err
			}
			if err != nil {
				return backoff.Permanent(err)
			}
			return nil
		}
		policy := backoff.WithMaxRetries(backoff.NewConstantBackOff(0), sendRetries)
		if err := backoff.Retry(op, policy); err != nil {
			s.log.Error("broadcast: transmit failed", zap.Error(err), zap.Stringer("addr", addr))
			return err
		}
	}
	return nil
}

func isTransient(err error) bool {
	return errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EINTR)
}

func (s *Sender) handleResend(req resendRequest) error {
	now := s.clock.Now()
rangeLoop:
	for _, r := range req.ranges {
		// End == Begin-1 means "everything from Begin onward" — walk
		// until the window has nothing left to offer.
		openEnded := r.End+1 == r.Begin
		count := int(r.End - r.Begin)
		seq := r.Begin
		for i := 0; openEnded || i < count; i++ {
			p, ok := s.window.lookup(seq)
			if !ok {
				if err := s.sendUnavailable(seq); err != nil {
					return err
				}
				if openEnded {
					continue rangeLoop
				}
			} else if !s.window.recentlyResent(seq, now, s.cfg.ResendDedupDelay) {
				if err := s.transmit(p.bytes); err != nil {
					return err
				}
				s.window.markResent(seq, now)
				s.resendCount.Inc()
			}
			seq++
		}
	}
	return nil
}

func (s *Sender) sendUnavailable(seq uint32) error {
	var hdr [fragHeaderSize]byte
	encodeHeader(hdr[:], fragHeader{Len: unavailable, Seq: seq})
	return s.transmit(hdr[:])
}

func (s *Sender) sendSequenceUpdate() error {
	var hdr [fragHeaderSize]byte
	encodeHeader(hdr[:], fragHeader{Len: sequenceUpdate, Seq: s.nextSeq - 1})
	return s.transmit(hdr[:])
}

// updateCongestion applies the multiplicative/halving pacing rule from
// (sendCount, resendCount) deltas observed since the last tick.
func (s *Sender) updateCongestion() {
	sendDelta := s.sendCount.Swap(0)
	resendDelta := s.resendCount.Swap(0)
	cur := s.sleepFor.Load()

	switch {
	case resendDelta > 0 && sendDelta > resendDelta:
		next := time.Duration(float64(cur) * 1.05)
		if next < 30*time.Microsecond {
			next = 30 * time.Microsecond
		}
		s.sleepFor.Store(next)
	case resendDelta > 0:
		next := time.Duration(float64(cur) * 1.5)
		s.sleepFor.Store(next)
	default:
		next := cur / 2
		if next < 10*time.Microsecond {
			next = 0
		}
		s.sleepFor.Store(next)
	}
}
