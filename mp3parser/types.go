// Package mp3parser performs a structural scan of an MP3 bitstream: ID3v2
// tag header, frame sync words, and per-frame side-info consistency. It is
// a pre-flight check run before a file is handed to the PCM decoder, not a
// decoder itself.
package mp3parser

// ID3v2Info summarizes an ID3v2 tag found at the start of a stream.
type ID3v2Info struct {
	Major byte
	Minor byte
	Flags byte
	// Size is the tag body length in bytes, excluding the 10-byte header.
	Size int
}

// FrameHeader holds the decoded fields of one 4-byte MP3 frame header.
type FrameHeader struct {
	VersionID   int // 3 = MPEG-1, 2 = MPEG-2, 0 = MPEG-2.5
	Layer       int
	Protected   bool
	Bitrate     int // bits per second
	SampleRate  int // Hz
	Padded      bool
	ChannelMode int // 3 = mono
	// FrameLength is the full frame size in bytes, header included.
	FrameLength int
}

// Frame is one parsed frame: its header plus the frame body (everything
// after the 4 header bytes).
type Frame struct {
	Header *FrameHeader
	Body   []byte
}

// Stream is the structural view of a whole MP3 file.
type Stream struct {
	ID3v2  *ID3v2Info
	Frames []*Frame
	// SkippedBytes counts bytes that belonged to no tag or frame (garbage
	// between frames, truncated tail). A clean file has zero.
	SkippedBytes int
}
