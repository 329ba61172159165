package audio

// Metadata describes the PCM layout of a decoded sample stream: enough to
// rebuild a playable file from the raw sample bytes.
type Metadata struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Duration   float64
	TotalBytes int
}
