package stego

import (
	"ghostbit/container"
	"ghostbit/crypto"
)

// FileInfo describes one entry without exposing its data, for Analyze's
// password-present listing.
type FileInfo struct {
	Name string
	Size int
}

// Report is the read-only inspection result of Analyze. It never carries
// payload bytes and never surfaces a failure as an error. Structural
// failures downgrade to HasHiddenData=false; a missing or wrong password on
// a valid envelope keeps HasHiddenData=true without a file listing.
type Report struct {
	HasHiddenData bool
	CipherVersion crypto.CipherVersion
	Mode          QualityMode
	FileCount     int
	TotalSize     int
	Files         []FileInfo
}

// Analyzer inspects an encoded stream for the presence and shape of hidden
// data without ever materializing file contents to disk.
type Analyzer struct{}

// NewAnalyzer returns an Analyzer. It holds no state.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze reads the BitstreamHeader and, depending on CipherVersion and
// whether a password was supplied, goes on to parse the container manifest
// or the encrypted envelope's size. A bad header, or a plaintext blob with
// bad magic or a bad end marker, is reported as HasHiddenData=false rather
// than returned as an error; a corrupt container inside an envelope that
// authenticated keeps HasHiddenData=true without a file listing.
func (a *Analyzer) Analyze(encoded []byte, headerLen int, password string) Report {
	header, payloadRegion, err := readHeaderAndRegion(encoded, headerLen)
	if err != nil {
		return Report{HasHiddenData: false}
	}

	mode := QualityMode(header.Mode)
	k := mode.K()
	if int(header.Len)*8 > k.Capacity(len(payloadRegion)) {
		return Report{HasHiddenData: false}
	}

	switch header.Tag {
	case crypto.VersionPlaintext, crypto.VersionLegacyCBC, crypto.VersionGCM:
	default:
		return Report{HasHiddenData: false}
	}

	report := Report{
		HasHiddenData: true,
		CipherVersion: header.Tag,
		Mode:          mode,
		TotalSize:     int(header.Len),
	}

	if header.Tag != crypto.VersionPlaintext && password == "" {
		// Envelope present but locked: report version and size only.
		return report
	}

	blob, err := extractPayload(payloadRegion, k, header.Len)
	if err != nil {
		return Report{HasHiddenData: false}
	}

	plain := blob
	if header.Tag != crypto.VersionPlaintext {
		plain, err = crypto.Open(blob, password, header.Tag)
		if err != nil {
			// Wrong password: report stays at "envelope present" without
			// file listing, rather than surfacing an auth error.
			return report
		}
	}

	files, _, err := container.Unmarshal(plain)
	if err != nil {
		if header.Tag == crypto.VersionPlaintext {
			// A plaintext blob that is not a valid container means the
			// header bytes were noise all along.
			return Report{HasHiddenData: false}
		}
		// The envelope authenticated but the container inside is corrupt;
		// keep the envelope facts without a listing.
		return report
	}

	report.FileCount = len(files)
	report.Files = make([]FileInfo, len(files))
	total := 0
	for i, f := range files {
		report.Files[i] = FileInfo{Name: f.Name, Size: len(f.Data)}
		total += len(f.Data)
	}
	report.TotalSize = total
	return report
}
