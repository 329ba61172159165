// Package lsb implements the low-order-bit codec that threads a payload
// bit-stream through a carrier sample stream. Iteration is strictly linear
// by byte offset: no stride, no position scrambling, no channel
// interleaving beyond the natural sample layout. Endianness of multi-byte
// samples never matters because each byte is treated independently.
package lsb

import (
	"ghostbit/bitio"
	"ghostbit/stegoerr"
)

// K is the number of low bits per carrier byte used to carry payload.
// QualityMode maps to one of these.
type K int

const (
	K1 K = 1
	K2 K = 2
	K4 K = 4
)

// Valid reports whether k is one of the three supported bit depths.
func (k K) Valid() bool {
	return k == K1 || k == K2 || k == K4
}

func (k K) String() string {
	switch k {
	case K1:
		return "k1"
	case K2:
		return "k2"
	case K4:
		return "k4"
	default:
		return "invalid"
	}
}

// Capacity returns the number of whole payload bits that fit in a body of
// the given length at this bit depth.
func (k K) Capacity(bodyLen int) int {
	return bodyLen * int(k)
}

// Embed clears the low k bits of every byte in body and ORs in the next k
// bits read MSB-first from payload. body is modified in place. Only the
// first len(payload)*8/k carrier bytes are rewritten; if payload is shorter
// than body allows, the carrier bytes beyond that are never touched.
// Embed fails with a CapacityError if payload does not fit.
func Embed(body []byte, payload []byte, k K) error {
	if !k.Valid() {
		return stegoerr.Format("invalid LSB bit depth")
	}
	payloadBits := len(payload) * 8
	if payloadBits > k.Capacity(len(body)) {
		return stegoerr.Capacity("payload exceeds carrier capacity")
	}

	// k always divides 8 (k ∈ {1,2,4}), so payloadBits is always a
	// multiple of k: every chunk below is exactly k bits wide, never
	// partial.
	mask := byte((1 << uint(k)) - 1)
	cursor := bitio.NewReader(payload)
	for i := 0; i < len(body) && cursor.PosBits() < payloadBits; i++ {
		chunk, err := cursor.ReadBits(int(k))
		if err != nil {
			return err
		}
		body[i] = (body[i] &^ mask) | (byte(chunk) & mask)
	}
	return nil
}

// Extract collects the low k bits from each byte of body, packs them
// MSB-first, and returns exactly nBits worth of payload (rounded up to the
// nearest byte; callers that need an exact bit count should mask the final
// partial byte themselves). Extract fails with a CapacityError if body
// cannot supply nBits.
func Extract(body []byte, k K, nBits int) ([]byte, error) {
	if !k.Valid() {
		return nil, stegoerr.Format("invalid LSB bit depth")
	}
	if nBits > k.Capacity(len(body)) {
		return nil, stegoerr.Capacity("requested bits exceed carrier capacity")
	}

	mask := byte((1 << uint(k)) - 1)
	out := make([]byte, (nBits+7)/8)

	cursor := bitio.NewWriter(out)
	for i := 0; i < len(body) && cursor.PosBits() < nBits; i++ {
		chunk := body[i] & mask
		n := int(k)
		if rem := nBits - cursor.PosBits(); rem < n {
			// Final partial chunk: only the high bits still belong to
			// the payload.
			chunk >>= uint(n - rem)
			n = rem
		}
		if err := cursor.WriteBits(uint64(chunk), n); err != nil {
			return nil, err
		}
	}
	return out, nil
}
