package stego

// Fixed wire-format overhead. Per-file overhead is the container's
// per-entry fixed fields (2-byte name length + 8-byte data length + 4-byte
// CRC = 14 bytes); name bytes are counted separately.
const (
	containerFixedOverhead  = 4 + 1 + 1 + 2 + 4 // magic+version+cipherver+count+endmarker
	perFileOverhead         = 2 + 8 + 4         // name length + data length + crc, name bytes counted separately
	bitstreamHeaderOverhead = 1 + 1 + 8         // MODE + VERSION_TAG + TOTAL_LEN

	envelopeOverheadV0 = 0
	envelopeOverheadV1 = 16 + 16 + 32 // salt + iv + mac (ciphertext is the container itself)
	envelopeOverheadV2 = 16 + 12 + 16 // salt + nonce + tag
)

// MaxPayloadBytes is an approximate, generous upper bound on the total
// file-data bytes that fit bodyBytes of carrier in the given mode, assuming
// estimatedFiles files each with a short name. The Coordinator performs the
// exact, authoritative
// check against the fully serialized container; this helper exists for
// callers (CLI `capacity` subcommand, HTTP `/capacity` endpoint) that want
// a quick estimate before building any file list.
func MaxPayloadBytes(bodyBytes int, mode QualityMode, estimatedFiles int) int {
	if estimatedFiles < 1 {
		estimatedFiles = 1
	}
	totalBits := int(mode.K()) * bodyBytes
	totalBytes := totalBits / 8

	overhead := bitstreamHeaderOverhead + envelopeOverheadV0 + containerFixedOverhead + estimatedFiles*perFileOverhead
	usable := totalBytes - overhead
	if usable < 0 {
		return 0
	}
	return usable
}
