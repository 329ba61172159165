// Package container implements the self-describing multi-file manifest
// embedded into a carrier: a magic-prefixed header, per-file
// name/data/CRC32 entries, and an end marker, plus the fixed-size
// bitstream preamble that lets a decoder know where the payload ends.
package container

import (
	"encoding/binary"
	"hash/crc32"
	"strings"

	"ghostbit/crypto"
	"ghostbit/stegoerr"
)

const (
	magic              = "GBIT"
	endMarker          = "ENDB"
	formatVersion byte = 1

	maxNameLen = 1024
	maxDataLen = 1 << 47
)

// File is one payload entry: a name and its raw bytes.
type File struct {
	Name string
	Data []byte
}

// validateName rejects empty, oversized, and path-traversing file names.
func validateName(name string) error {
	if name == "" {
		return stegoerr.Format("file name cannot be empty")
	}
	if len(name) > maxNameLen {
		return stegoerr.Format("file name exceeds maximum length")
	}
	if strings.ContainsAny(name, "/\\") || strings.ContainsRune(name, 0) {
		return stegoerr.Format("file name must not contain path separators or NUL")
	}
	return nil
}

// Marshal serializes files into the manifest wire format:
// MAGIC | VERSION | CIPHER_VERSION | FILE_COUNT | entries... | END_MARKER.
func Marshal(files []File, cipherVersion crypto.CipherVersion) ([]byte, error) {
	if len(files) == 0 {
		return nil, stegoerr.Format("at least one file is required")
	}
	if len(files) > 65535 {
		return nil, stegoerr.Format("too many files")
	}

	var buf []byte
	buf = append(buf, magic...)
	buf = append(buf, formatVersion)
	buf = append(buf, byte(cipherVersion))

	countBytes := make([]byte, 2)
	binary.BigEndian.PutUint16(countBytes, uint16(len(files)))
	buf = append(buf, countBytes...)

	for _, f := range files {
		if err := validateName(f.Name); err != nil {
			return nil, err
		}
		if len(f.Data) > maxDataLen {
			return nil, stegoerr.Format("file data exceeds maximum length")
		}

		nameLenBytes := make([]byte, 2)
		binary.BigEndian.PutUint16(nameLenBytes, uint16(len(f.Name)))
		buf = append(buf, nameLenBytes...)
		buf = append(buf, f.Name...)

		dataLenBytes := make([]byte, 8)
		binary.BigEndian.PutUint64(dataLenBytes, uint64(len(f.Data)))
		buf = append(buf, dataLenBytes...)
		buf = append(buf, f.Data...)

		crcBytes := make([]byte, 4)
		binary.BigEndian.PutUint32(crcBytes, crc32.ChecksumIEEE(f.Data))
		buf = append(buf, crcBytes...)
	}

	buf = append(buf, endMarker...)
	return buf, nil
}

// Unmarshal parses and strictly validates the manifest format, returning
// the decoded files and the cipher version recorded in the header.
func Unmarshal(blob []byte) ([]File, crypto.CipherVersion, error) {
	const headerLen = 4 + 1 + 1 + 2
	if len(blob) < headerLen+len(endMarker) {
		return nil, 0, stegoerr.Format("container too short")
	}
	if string(blob[0:4]) != magic {
		return nil, 0, stegoerr.Format("bad magic")
	}
	if blob[4] != formatVersion {
		return nil, 0, stegoerr.Format("unsupported container version")
	}
	cipherVersion := crypto.CipherVersion(blob[5])
	if cipherVersion != crypto.VersionPlaintext && cipherVersion != crypto.VersionLegacyCBC && cipherVersion != crypto.VersionGCM {
		return nil, 0, stegoerr.Format("unsupported cipher version")
	}
	fileCount := int(binary.BigEndian.Uint16(blob[6:8]))
	if fileCount == 0 {
		return nil, 0, stegoerr.Format("zero files declared")
	}

	pos := headerLen
	files := make([]File, 0, fileCount)
	for i := 0; i < fileCount; i++ {
		if pos+2 > len(blob) {
			return nil, 0, stegoerr.Format("truncated file entry: name length")
		}
		nameLen := int(binary.BigEndian.Uint16(blob[pos : pos+2]))
		pos += 2
		if nameLen == 0 || nameLen > maxNameLen || pos+nameLen > len(blob) {
			return nil, 0, stegoerr.Format("truncated file entry: name")
		}
		name := string(blob[pos : pos+nameLen])
		if err := validateName(name); err != nil {
			return nil, 0, err
		}
		pos += nameLen

		if pos+8 > len(blob) {
			return nil, 0, stegoerr.Format("truncated file entry: data length")
		}
		dataLen := binary.BigEndian.Uint64(blob[pos : pos+8])
		pos += 8
		if dataLen > maxDataLen || pos+int(dataLen) > len(blob) {
			return nil, 0, stegoerr.Format("truncated file entry: data")
		}
		data := blob[pos : pos+int(dataLen)]
		pos += int(dataLen)

		if pos+4 > len(blob) {
			return nil, 0, stegoerr.Format("truncated file entry: crc")
		}
		wantCRC := binary.BigEndian.Uint32(blob[pos : pos+4])
		pos += 4
		if gotCRC := crc32.ChecksumIEEE(data); gotCRC != wantCRC {
			return nil, 0, stegoerr.Format("crc mismatch for file").WithInternal("name=%s want=%x got=%x", name, wantCRC, gotCRC)
		}

		files = append(files, File{Name: name, Data: data})
	}

	if pos+len(endMarker) > len(blob) || string(blob[pos:pos+len(endMarker)]) != endMarker {
		return nil, 0, stegoerr.Format("bad end marker")
	}

	return files, cipherVersion, nil
}

// BitstreamHeaderLen is the fixed size, in bytes, of the QUALITY_MODE |
// VERSION_TAG | TOTAL_LEN framing embedded ahead of every payload.
const BitstreamHeaderLen = 1 + 1 + 8

// BitstreamHeader is the fixed-size preamble embedded at a constant bit
// depth (k=2) ahead of the payload, so a decoder can learn the payload's
// own bit depth and cipher version before it has to guess either.
type BitstreamHeader struct {
	Mode byte // caller-defined quality mode tag (0/1/2 for high/normal/low)
	Tag  crypto.CipherVersion
	Len  uint64 // length in bytes of the envelope-or-container blob that follows
}

// EncodeBitstreamHeader serializes a BitstreamHeader to its fixed 10-byte
// wire form.
func EncodeBitstreamHeader(h BitstreamHeader) []byte {
	out := make([]byte, BitstreamHeaderLen)
	out[0] = h.Mode
	out[1] = byte(h.Tag)
	binary.BigEndian.PutUint64(out[2:10], h.Len)
	return out
}

// DecodeBitstreamHeader parses the fixed 10-byte preamble.
func DecodeBitstreamHeader(raw []byte) (BitstreamHeader, error) {
	if len(raw) < BitstreamHeaderLen {
		return BitstreamHeader{}, stegoerr.NoData("stream too short for bitstream header")
	}
	return BitstreamHeader{
		Mode: raw[0],
		Tag:  crypto.CipherVersion(raw[1]),
		Len:  binary.BigEndian.Uint64(raw[2:10]),
	}, nil
}
