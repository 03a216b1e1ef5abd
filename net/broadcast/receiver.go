package broadcast

import (
	"context"
	"io"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Receiver polls a socket, reassembles per-source fragment streams into
// whole messages, and drives the feedback loop that requests
// retransmission of whatever each stream is missing.
type Receiver struct {
	cfg  Config
	conn net.PacketConn
	log  *zap.Logger

	resendTarget chan<- resendRequest

	mu      sync.Mutex
	streams map[string]*recvStream

	deliverCh   chan deliveredMessage
	pendingMu   sync.Mutex
	pending     []byte
	pendingAddr net.Addr

	ctx    context.Context
	group  *errgroup.Group
	cancel context.CancelFunc
}

type deliveredMessage struct {
	addr net.Addr
	data []byte
}

// NewReceiver creates a Receiver reading from conn. resendTarget, if
// non-nil, is the channel RESEND fragments observed on the wire are
// forwarded to (typically a co-located Sender's resend queue).
func NewReceiver(conn net.PacketConn, cfg Config, log *zap.Logger, resendTarget chan<- resendRequest) *Receiver {
	cfg = cfg.withDefaults()
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	r := &Receiver{
		cfg:          cfg,
		conn:         conn,
		log:          log,
		resendTarget: resendTarget,
		streams:      make(map[string]*recvStream),
		deliverCh:    make(chan deliveredMessage, 256),
		cancel:       cancel,
	}
	group, gctx := errgroup.WithContext(ctx)
	r.ctx = gctx
	r.group = group
	group.Go(func() error { return r.readLoop(gctx) })
	group.Go(func() error { return r.feedbackLoop(gctx) })
	return r
}

// Close stops the receiver's goroutines and waits for them to exit.
func (r *Receiver) Close() error {
	r.cancel()
	return r.group.Wait()
}

func (r *Receiver) readLoop(ctx context.Context) error {
	buf := make([]byte, r.cfg.MTU)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		r.conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
		n, addr, err := r.conn.ReadFrom(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			return err
		}
		frags, err := parsePack(buf[:n])
		if err != nil {
			r.log.Warn("broadcast: dropping malformed pack", zap.Error(err))
			continue
		}
		r.dispatch(addr, frags)
	}
}

func (r *Receiver) dispatch(addr net.Addr, frags []fragment) {
	if len(frags) == 0 {
		return
	}
	switch frags[0].header.Len {
	case resend:
		if r.resendTarget == nil {
			return
		}
		ranges, err := decodeResendBody(frags[0].payload)
		if err != nil {
			r.log.Warn("broadcast: malformed RESEND", zap.Error(err))
			return
		}
		select {
		case r.resendTarget <- resendRequest{ranges: ranges}:
		default:
			r.log.Warn("broadcast: resend queue full, dropping RESEND")
		}
	case unavailable:
		s := r.streamFor(addr)
		s.advanceMaxSeq(frags[0].header.Seq)
	case sequenceUpdate:
		// A liveness beacon only moves ok for a stream that has not seen
		// anything yet; otherwise it just raises maxSeq so feedback can
		// request what is missing.
		s := r.streamFor(addr)
		if s.state == stateUninitialized {
			s.advanceMaxSeq(frags[0].header.Seq)
		} else {
			s.maxSeq = maxSeq(s.maxSeq, frags[0].header.Seq)
		}
	default:
		s := r.streamFor(addr)
		for _, f := range frags {
			s.insert(f)
		}
	}
}

func (r *Receiver) streamFor(addr net.Addr) *recvStream {
	key := addr.String()
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.streams[key]
	if !ok {
		s = newRecvStream(addr, r.cfg, r.log, r.deliverChanFor(addr))
		r.streams[key] = s
	}
	return s
}

// deliverChanFor adapts the stream's []byte delivery into the
// receiver-wide deliverCh, tagging each message with its source. The
// forwarding goroutine exits once r.ctx is done, which Close() triggers;
// Close() does not wait for it. It is not registered with r.group since
// group.Wait() would otherwise block on it forever (nothing ever closes c).
func (r *Receiver) deliverChanFor(addr net.Addr) chan<- []byte {
	c := make(chan []byte, 16)
	go func() {
		for {
			select {
			case <-r.ctx.Done():
				return
			case msg := <-c:
				select {
				case r.deliverCh <- deliveredMessage{addr: addr, data: msg}:
				case <-r.ctx.Done():
					return
				default:
					r.log.Warn("broadcast: delivery channel full, dropping message")
				}
			}
		}
	}()
	return c
}

func (r *Receiver) feedbackLoop(ctx context.Context) error {
	ticker := time.NewTicker(r.cfg.StreamTimeout / 5)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.runFeedback()
		}
	}
}

func (r *Receiver) runFeedback() {
	now := time.Now()
	r.mu.Lock()
	streams := make([]*recvStream, 0, len(r.streams))
	for _, s := range r.streams {
		streams = append(streams, s)
	}
	r.mu.Unlock()

	for _, s := range streams {
		ranges, _ := s.feedback(now)
		if len(ranges) == 0 {
			continue
		}
		var hdr [fragHeaderSize]byte
		body := encodeResendBody(ranges)
		encodeHeader(hdr[:], fragHeader{Len: resend, Seq: 0})
		out := append(append([]byte{}, hdr[:]...), body...)
		if _, err := r.conn.WriteTo(out, s.addr); err != nil {
			r.log.Warn("broadcast: failed to send RESEND", zap.Error(err))
		}
	}
}

// Recv pulls the next ready message. It copies as many bytes as fit
// into buf, never crossing a message boundary in one call; if the
// message is longer than buf, the remainder is buffered for the next
// call and io.ErrShortBuffer is returned alongside the partial count —
// a deliberate Go-idiomatic addition, since "not enough caller buffer"
// has no defined behavior in the protocol this is ported from. The
// originating address is remembered alongside the buffered remainder, so
// every call that drains a single message, including the continuation
// reads after a short buffer, returns the same non-nil address. In
// non-blocking mode (block == false), Recv returns 0 with a nil address
// and a nil error rather than blocking when nothing is ready.
func (r *Receiver) Recv(ctx context.Context, buf []byte, block bool) (int, net.Addr, error) {
	r.pendingMu.Lock()
	if len(r.pending) > 0 {
		addr := r.pendingAddr
		n := copy(buf, r.pending)
		r.pending = r.pending[n:]
		if len(r.pending) == 0 {
			r.pendingAddr = nil
		}
		r.pendingMu.Unlock()
		if n < len(buf) || len(r.pending) == 0 {
			return n, addr, nil
		}
		return n, addr, io.ErrShortBuffer
	}
	r.pendingMu.Unlock()

	if block {
		select {
		case <-ctx.Done():
			return 0, nil, ctx.Err()
		case m := <-r.deliverCh:
			return r.deliverInto(buf, m)
		}
	}

	select {
	case m := <-r.deliverCh:
		return r.deliverInto(buf, m)
	default:
		return 0, nil, nil
	}
}

func (r *Receiver) deliverInto(buf []byte, m deliveredMessage) (int, net.Addr, error) {
	n := copy(buf, m.data)
	if n < len(m.data) {
		r.pendingMu.Lock()
		r.pending = append([]byte{}, m.data[n:]...)
		r.pendingAddr = m.addr
		r.pendingMu.Unlock()
		return n, m.addr, io.ErrShortBuffer
	}
	return n, m.addr, nil
}
