// Package audio is the transcoder boundary around the steganography core:
// DecodeToPCM/EncodeFromPCM for carrier I/O, read-only tag reading, and the PSNR
// quality diagnostic. WAV is the primary carrier; MP3 is accepted as a
// decode-only source, since writing the payload back into a lossy format
// would destroy it.
package audio

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/tosone/minimp3"

	"ghostbit/mp3parser"
	"ghostbit/stegoerr"
)

// DecodeToPCM loads an audio file and returns its sample bytes exactly as
// they sit on disk (for WAV) or as minimp3 decodes them (for MP3, which has
// no header-prefixed-sample-array concept — headerLen is always 0 for MP3
// sources), along with its Metadata.
func DecodeToPCM(path string) (samples []byte, headerLen int, meta *Metadata, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, nil, stegoerr.IO("failed to read audio file", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return decodeWAV(raw)
	case ".mp3":
		return decodeMP3(raw)
	default:
		return nil, 0, nil, stegoerr.Format("unsupported carrier format")
	}
}

// decodeMP3 validates frame structure with mp3parser before handing the
// file to minimp3 — a corrupt frame stream can make minimp3's decode
// unreliable without erroring, so the cheap structural check runs first.
func decodeMP3(raw []byte) ([]byte, int, *Metadata, error) {
	if _, err := mp3parser.Validate(raw); err != nil {
		return nil, 0, nil, stegoerr.Format("invalid MP3 structure").WithInternal("%v", err)
	}

	decoder, data, err := minimp3.DecodeFull(raw)
	if err != nil {
		return nil, 0, nil, stegoerr.IO("failed to decode MP3", err)
	}
	defer decoder.Close()

	bytesPerSample := 2 // minimp3 always decodes to 16-bit PCM
	samplesPerChannel := len(data) / bytesPerSample / decoder.Channels
	duration := float64(samplesPerChannel) / float64(decoder.SampleRate)

	meta := &Metadata{
		SampleRate: decoder.SampleRate,
		Channels:   decoder.Channels,
		BitDepth:   16,
		Duration:   duration,
		TotalBytes: len(data),
	}

	return data, 0, meta, nil
}
