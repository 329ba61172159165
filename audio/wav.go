package audio

import (
	"encoding/binary"
	"fmt"

	"ghostbit/stegoerr"
)

// findDataChunk walks a RIFF/WAVE container's chunk list looking for the
// "data" subchunk. Real-world WAV files carry "LIST"/"fact"/"JUNK" chunks
// ahead of "data" often enough that assuming a fixed 44-byte header is
// wrong.
func findDataChunk(raw []byte) (headerLen, dataLen int, err error) {
	if len(raw) < 12 || string(raw[0:4]) != "RIFF" || string(raw[8:12]) != "WAVE" {
		return 0, 0, stegoerr.Format("not a RIFF/WAVE file")
	}

	pos := 12
	for pos+8 <= len(raw) {
		chunkID := string(raw[pos : pos+4])
		chunkSize := int(binary.LittleEndian.Uint32(raw[pos+4 : pos+8]))
		bodyStart := pos + 8

		if chunkID == "data" {
			if bodyStart+chunkSize > len(raw) {
				chunkSize = len(raw) - bodyStart
			}
			return bodyStart, chunkSize, nil
		}

		pos = bodyStart + chunkSize
		if chunkSize%2 == 1 {
			pos++ // chunks are word-aligned
		}
	}
	return 0, 0, stegoerr.Format("no data chunk found in WAV file")
}

// fmtChunk holds the fields of a WAV "fmt " subchunk needed to interpret
// the data chunk's raw bytes as samples.
type fmtChunk struct {
	channels      int
	sampleRate    int
	bitsPerSample int
}

func findFmtChunk(raw []byte) (fmtChunk, error) {
	if len(raw) < 12 {
		return fmtChunk{}, stegoerr.Format("not a RIFF/WAVE file")
	}
	pos := 12
	for pos+8 <= len(raw) {
		chunkID := string(raw[pos : pos+4])
		chunkSize := int(binary.LittleEndian.Uint32(raw[pos+4 : pos+8]))
		bodyStart := pos + 8
		if chunkID == "fmt " {
			if bodyStart+16 > len(raw) {
				return fmtChunk{}, stegoerr.Format("truncated fmt chunk")
			}
			body := raw[bodyStart : bodyStart+16]
			return fmtChunk{
				channels:      int(binary.LittleEndian.Uint16(body[2:4])),
				sampleRate:    int(binary.LittleEndian.Uint32(body[4:8])),
				bitsPerSample: int(binary.LittleEndian.Uint16(body[14:16])),
			}, nil
		}
		pos = bodyStart + chunkSize
		if chunkSize%2 == 1 {
			pos++
		}
	}
	return fmtChunk{}, stegoerr.Format("no fmt chunk found in WAV file")
}

// decodeWAV splits a WAV file into its header (everything up to and
// including the data subchunk's own 8-byte id+size prefix) and its raw PCM
// body, byte-exact — the LSB codec mutates these bytes directly, so no
// int-buffer round trip may touch them first.
func decodeWAV(raw []byte) (samples []byte, headerLen int, meta *Metadata, err error) {
	fc, err := findFmtChunk(raw)
	if err != nil {
		return nil, 0, nil, err
	}
	dataStart, dataLen, err := findDataChunk(raw)
	if err != nil {
		return nil, 0, nil, err
	}

	body := raw[dataStart : dataStart+dataLen]
	bytesPerSample := fc.bitsPerSample / 8
	if bytesPerSample == 0 || fc.channels == 0 || fc.sampleRate == 0 {
		return nil, 0, nil, stegoerr.Format("invalid WAV fmt chunk")
	}

	frames := len(body) / (bytesPerSample * fc.channels)
	duration := float64(frames) / float64(fc.sampleRate)

	return body, dataStart, &Metadata{
		SampleRate: fc.sampleRate,
		Channels:   fc.channels,
		BitDepth:   fc.bitsPerSample,
		Duration:   duration,
		TotalBytes: len(body),
	}, nil
}

func validateWAVBitDepth(bits int) error {
	switch bits {
	case 8, 16, 24, 32:
		return nil
	default:
		return fmt.Errorf("unsupported bit depth %d", bits)
	}
}
