package broadcast

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Fragment length values share storage with a type tag: any value at or
// below normalThreshold is a literal payload length; everything above it
// is a sentinel naming a control fragment. A NORMAL data fragment's
// payload length is therefore capped at normalThreshold at pack-build
// time so it can never be misread as a control fragment.
const (
	normalThreshold = 65529 // max literal data length; also the NORMAL marker value
	sequenceUpdate  = 65530
	unavailable     = 65531
	resend          = 65532
	endOfMsg        = 65533
	startOfMsg      = 65534
	invalid         = 65535 // never sent
)

const fragHeaderSize = 6 // len:u16 + seq:u32

// fragHeader is the 6-byte header prefixing every fragment in a pack.
type fragHeader struct {
	Len uint16
	Seq uint32
}

func (h fragHeader) isControl() bool { return h.Len > normalThreshold }

func encodeHeader(buf []byte, h fragHeader) {
	binary.LittleEndian.PutUint16(buf[0:2], h.Len)
	binary.LittleEndian.PutUint32(buf[2:6], h.Seq)
}

func decodeHeader(buf []byte) fragHeader {
	return fragHeader{
		Len: binary.LittleEndian.Uint16(buf[0:2]),
		Seq: binary.LittleEndian.Uint32(buf[2:6]),
	}
}

// fragment is a decoded, in-memory view of one wire fragment: its
// header plus the payload bytes (empty for control fragments other than
// RESEND, whose body is a packed run of ranges).
type fragment struct {
	header  fragHeader
	payload []byte
}

// resendRange is a half-open [Begin, End) sequence range requested for
// retransmission. End == Begin-1 is the wire's "everything from Begin
// onward" convention (the sender tests it as End+1 == Begin, which holds
// under wraparound too).
type resendRange struct {
	Begin uint32
	End   uint32
}

const resendRangeSize = 8 // begin:u32 + end:u32

// maxResendRanges bounds a single RESEND request per the feedback
// policy in the package doc.
const maxResendRanges = 2048

func encodeResendBody(ranges []resendRange) []byte {
	buf := make([]byte, len(ranges)*resendRangeSize)
	for i, r := range ranges {
		off := i * resendRangeSize
		binary.LittleEndian.PutUint32(buf[off:off+4], r.Begin)
		binary.LittleEndian.PutUint32(buf[off+4:off+8], r.End)
	}
	return buf
}

func decodeResendBody(buf []byte) ([]resendRange, error) {
	if len(buf)%resendRangeSize != 0 {
		return nil, errors.New("broadcast: malformed RESEND body")
	}
	n := len(buf) / resendRangeSize
	ranges := make([]resendRange, n)
	for i := 0; i < n; i++ {
		off := i * resendRangeSize
		ranges[i] = resendRange{
			Begin: binary.LittleEndian.Uint32(buf[off : off+4]),
			End:   binary.LittleEndian.Uint32(buf[off+4 : off+8]),
		}
	}
	return ranges, nil
}

// pack is a datagram-sized buffer holding one or more encoded fragments,
// plus the parsed view of the fragments it was built from (on the send
// side) or decoded into (on the receive side).
type pack struct {
	bytes     []byte
	fragments []fragment
	firstSeq  uint32
}

// packBuilder accumulates fragments into MTU-sized packs.
type packBuilder struct {
	mtu   int
	cur   []byte
	frags []fragment
	out   []*pack
}

func newPackBuilder(mtu int) *packBuilder {
	return &packBuilder{mtu: mtu}
}

func (b *packBuilder) add(h fragHeader, payload []byte) {
	need := fragHeaderSize + len(payload)
	if len(b.cur)+need > b.mtu && len(b.cur) > 0 {
		b.flush()
	}
	start := len(b.cur)
	b.cur = append(b.cur, make([]byte, need)...)
	encodeHeader(b.cur[start:start+fragHeaderSize], h)
	copy(b.cur[start+fragHeaderSize:], payload)
	b.frags = append(b.frags, fragment{header: h, payload: payload})
}

func (b *packBuilder) flush() {
	if len(b.cur) == 0 {
		return
	}
	first := uint32(0)
	if len(b.frags) > 0 {
		first = b.frags[0].header.Seq
	}
	b.out = append(b.out, &pack{bytes: b.cur, fragments: b.frags, firstSeq: first})
	b.cur = nil
	b.frags = nil
}

// finish flushes any partial trailing pack and returns every pack built.
func (b *packBuilder) finish() []*pack {
	b.flush()
	return b.out
}

// parsePack decodes every fragment in a received datagram.
func parsePack(buf []byte) ([]fragment, error) {
	var frags []fragment
	pos := 0
	for pos < len(buf) {
		if pos+fragHeaderSize > len(buf) {
			return nil, errors.New("broadcast: truncated fragment header")
		}
		h := decodeHeader(buf[pos : pos+fragHeaderSize])
		pos += fragHeaderSize
		bodyLen := 0
		switch {
		case h.Len <= normalThreshold:
			bodyLen = int(h.Len)
		case h.Len == resend:
			bodyLen = len(buf) - pos // RESEND's body runs to the end of the datagram
		default:
			bodyLen = 0
		}
		if pos+bodyLen > len(buf) {
			return nil, errors.New("broadcast: truncated fragment body")
		}
		frags = append(frags, fragment{header: h, payload: buf[pos : pos+bodyLen]})
		pos += bodyLen
	}
	return frags, nil
}
