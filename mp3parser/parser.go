package mp3parser

import (
	"encoding/binary"
	"fmt"
)

// MPEG-1 Layer III bitrate table, kbit/s. Index 0 ("free") and 15 are
// treated as unsupported.
var bitrateTable = [16]int{
	0, 32, 40, 48, 56, 64, 80, 96,
	112, 128, 160, 192, 224, 256, 320, 0,
}

var sampleRateTable = [4]int{44100, 48000, 32000, 0}

// syncSafeLen decodes an ID3v2 sync-safe 28-bit length.
func syncSafeLen(b []byte) int {
	return int(b[0]&0x7F)<<21 | int(b[1]&0x7F)<<14 | int(b[2]&0x7F)<<7 | int(b[3]&0x7F)
}

// parseID3v2 returns the tag info and the offset of the first byte after
// the tag, or (nil, 0) when no tag is present.
func parseID3v2(data []byte) (*ID3v2Info, int) {
	if len(data) < 10 || string(data[:3]) != "ID3" {
		return nil, 0
	}
	info := &ID3v2Info{
		Major: data[3],
		Minor: data[4],
		Flags: data[5],
		Size:  syncSafeLen(data[6:10]),
	}
	end := 10 + info.Size
	if end > len(data) {
		end = len(data)
	}
	return info, end
}

// parseFrameHeader decodes the 4 bytes at data[0:4]. It returns an error
// for anything that is not a complete, supported Layer III frame header.
func parseFrameHeader(data []byte) (*FrameHeader, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("short frame header")
	}
	raw := binary.BigEndian.Uint32(data[:4])

	if raw&0xFFE00000 != 0xFFE00000 {
		return nil, fmt.Errorf("invalid sync word: 0x%08X", raw)
	}

	h := &FrameHeader{
		VersionID:   int((raw >> 19) & 0x3),
		Layer:       int((raw >> 17) & 0x3),
		Protected:   (raw>>16)&0x1 == 0,
		Padded:      (raw>>9)&0x1 == 1,
		ChannelMode: int((raw >> 6) & 0x3),
	}
	if h.Layer != 1 { // layer bits 01 = Layer III
		return nil, fmt.Errorf("not a Layer III frame (layer bits %d)", h.Layer)
	}

	h.Bitrate = bitrateTable[(raw>>12)&0xF] * 1000
	h.SampleRate = sampleRateTable[(raw>>10)&0x3]
	if h.Bitrate == 0 || h.SampleRate == 0 {
		return nil, fmt.Errorf("unsupported bitrate or sample rate")
	}

	pad := 0
	if h.Padded {
		pad = 1
	}
	h.FrameLength = (144*h.Bitrate)/h.SampleRate + pad
	if h.FrameLength <= 4 {
		return nil, fmt.Errorf("implausible frame length %d", h.FrameLength)
	}
	return h, nil
}

// Parse scans data into a Stream: an optional leading ID3v2 tag followed
// by frames. On a byte that starts no valid frame it advances by one and
// counts it in SkippedBytes, so a damaged region cannot stall the scan.
func Parse(data []byte) (*Stream, error) {
	stream := &Stream{}

	id3, pos := parseID3v2(data)
	stream.ID3v2 = id3

	for pos < len(data) {
		h, err := parseFrameHeader(data[pos:])
		if err != nil {
			pos++
			stream.SkippedBytes++
			continue
		}
		if pos+h.FrameLength > len(data) {
			// Truncated final frame: count the remainder as skipped.
			stream.SkippedBytes += len(data) - pos
			break
		}
		stream.Frames = append(stream.Frames, &Frame{
			Header: h,
			Body:   data[pos+4 : pos+h.FrameLength],
		})
		pos += h.FrameLength
	}

	return stream, nil
}
