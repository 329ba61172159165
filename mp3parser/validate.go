package mp3parser

import "fmt"

// Validate sanity-checks an MP3 file's frame structure before it is handed
// to the PCM decoder: at least one frame must parse with a valid sync word
// and a side-info region consistent with its header, and the stream must
// not be mostly garbage. It returns the number of valid frames found.
func Validate(data []byte) (frameCount int, err error) {
	stream, err := Parse(data)
	if err != nil {
		return 0, fmt.Errorf("parse mp3: %w", err)
	}
	if len(stream.Frames) == 0 {
		return 0, fmt.Errorf("no valid MP3 frames found")
	}
	if stream.SkippedBytes > len(data)/2 {
		return 0, fmt.Errorf("stream is mostly unparseable (%d of %d bytes skipped)", stream.SkippedBytes, len(data))
	}

	for i, frame := range stream.Frames {
		if err := CheckFrame(frame.Header, frame.Body); err != nil {
			return 0, fmt.Errorf("frame %d: %w", i, err)
		}
	}

	return len(stream.Frames), nil
}
