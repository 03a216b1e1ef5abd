package broadcast

// after reports whether b is "ahead of" a in the sequence space modulo
// 2^32, using the minimum-distance signed-difference test rather than a
// plain a < b (which breaks at wraparound). This is the single
// comparator every ordering decision in the package goes through.
func after(a, b uint32) bool {
	return int32(b-a) > 0
}

// maxSeq returns whichever of a, b is ahead per after.
func maxSeq(a, b uint32) uint32 {
	if after(a, b) {
		return b
	}
	return a
}
