package audio

import (
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"ghostbit/stegoerr"
)

// EncodeFromPCM builds a fresh output file from raw sample bytes plus
// Metadata. Only "wav" is implemented: the embedded payload survives only a
// lossless round trip, so a lossy target (mp3, ...) is refused outright
// rather than silently re-encoded.
func EncodeFromPCM(samples []byte, meta *Metadata, targetFormat string) ([]byte, error) {
	if targetFormat != "wav" {
		return nil, stegoerr.Format("lossy output target refused")
	}
	if err := validateWAVBitDepth(meta.BitDepth); err != nil {
		return nil, stegoerr.Format(err.Error())
	}

	bytesPerSample := meta.BitDepth / 8
	if bytesPerSample == 0 || len(samples)%bytesPerSample != 0 {
		return nil, stegoerr.Format("sample buffer not aligned to bit depth")
	}
	ints := bytesToInts(samples, bytesPerSample)

	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: meta.Channels,
			SampleRate:  meta.SampleRate,
		},
		Data:           ints,
		SourceBitDepth: meta.BitDepth,
	}

	tempFile, err := os.CreateTemp("", "ghostbit_*.wav")
	if err != nil {
		return nil, stegoerr.IO("failed to create temp file", err)
	}
	defer os.Remove(tempFile.Name())
	defer tempFile.Close()

	encoder := wav.NewEncoder(tempFile, meta.SampleRate, meta.BitDepth, meta.Channels, 1)
	if err := encoder.Write(buf); err != nil {
		return nil, stegoerr.IO("failed to encode WAV", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, stegoerr.IO("failed to close WAV encoder", err)
	}

	if _, err := tempFile.Seek(0, 0); err != nil {
		return nil, stegoerr.IO("failed to rewind WAV temp file", err)
	}
	out, err := io.ReadAll(tempFile)
	if err != nil {
		return nil, stegoerr.IO("failed to read WAV data", err)
	}
	return out, nil
}

// bytesToInts reinterprets little-endian, bytesPerSample-wide signed PCM
// samples as ints for go-audio's IntBuffer, handling 8/16/24/32 bit widths.
func bytesToInts(samples []byte, bytesPerSample int) []int {
	count := len(samples) / bytesPerSample
	out := make([]int, count)
	for i := 0; i < count; i++ {
		chunk := samples[i*bytesPerSample : (i+1)*bytesPerSample]
		var v int32
		for j := bytesPerSample - 1; j >= 0; j-- {
			v = (v << 8) | int32(chunk[j])
		}
		// sign-extend from bytesPerSample*8 bits to 32
		shift := uint(32 - bytesPerSample*8)
		v = (v << shift) >> shift
		out[i] = int(v)
	}
	return out
}
