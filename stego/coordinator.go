package stego

import (
	"ghostbit/audio"
	"ghostbit/container"
	"ghostbit/crypto"
	"ghostbit/lsb"
	"ghostbit/stegoerr"
)

// headerK is the fixed bit depth the BitstreamHeader is always embedded
// and read at, independent of the body's own QualityMode — this is what
// lets Decode/Analyze learn the real quality mode before they know it.
const headerK = lsb.K2

// headerCarrierBytes is how many carrier bytes the fixed-depth header
// consumes: ceil(BitstreamHeaderLen*8 / headerK).
func headerCarrierBytes() int {
	bits := container.BitstreamHeaderLen * 8
	return (bits + int(headerK) - 1) / int(headerK)
}

// Coordinator orchestrates the end-to-end encode/decode pipelines:
// container build, optional encryption, LSB write, and the inverse. It
// holds no state across calls beyond the ProgressSink supplied at
// construction — every call is isolated.
type Coordinator struct {
	Sink ProgressSink
}

// NewCoordinator returns a Coordinator. A nil sink is replaced with
// NopProgressSink.
func NewCoordinator(sink ProgressSink) *Coordinator {
	if sink == nil {
		sink = NopProgressSink{}
	}
	return &Coordinator{Sink: sink}
}

// EncodeReport carries diagnostics about a completed encode, beyond the
// modified sample buffer itself: a PSNR quality signal over the carrier
// body, and the exact container size written.
type EncodeReport struct {
	PSNRdB        float64
	ContainerSize int
}

// Encode builds a Container from files, optionally seals it under
// password, frames it with the BitstreamHeader preamble, and embeds it
// into carrier[headerLen:] — the header at headerK, the payload at
// mode.K(). carrier is copied; the input is never modified. Returns the
// full output buffer (header + modified body) and a diagnostic report.
func (c *Coordinator) Encode(carrier []byte, headerLen int, files []container.File, mode QualityMode, password string) ([]byte, EncodeReport, error) {
	if headerLen < 0 || headerLen > len(carrier) {
		return nil, EncodeReport{}, stegoerr.Format("header length exceeds carrier size")
	}

	var (
		tag  crypto.CipherVersion
		blob []byte
		err  error
	)
	if password != "" {
		if err := crypto.ValidateKey(password); err != nil {
			return nil, EncodeReport{}, err
		}
		plain, merr := container.Marshal(files, crypto.VersionGCM)
		if merr != nil {
			return nil, EncodeReport{}, merr
		}
		blob, tag, err = crypto.Seal(plain, password)
		if err != nil {
			return nil, EncodeReport{}, err
		}
	} else {
		blob, err = container.Marshal(files, crypto.VersionPlaintext)
		if err != nil {
			return nil, EncodeReport{}, err
		}
		tag = crypto.VersionPlaintext
	}

	headerBytes := headerCarrierBytes()
	body := carrier[headerLen:]
	if len(body) < headerBytes {
		return nil, EncodeReport{}, stegoerr.Capacity("carrier too small for bitstream header")
	}

	k := mode.K()
	payloadRegion := body[headerBytes:]
	if len(blob)*8 > k.Capacity(len(payloadRegion)) {
		return nil, EncodeReport{}, stegoerr.Capacity("container does not fit in carrier at the selected quality")
	}

	out := make([]byte, len(carrier))
	copy(out, carrier)
	outBody := out[headerLen:]

	headerWire := container.EncodeBitstreamHeader(container.BitstreamHeader{
		Mode: byte(mode),
		Tag:  tag,
		Len:  uint64(len(blob)),
	})
	if err := lsb.Embed(outBody[:headerBytes], headerWire, headerK); err != nil {
		return nil, EncodeReport{}, err
	}
	if err := lsb.Embed(outBody[headerBytes:], blob, k); err != nil {
		return nil, EncodeReport{}, err
	}

	psnr := audio.CalculatePSNR(body, outBody)

	for i, f := range files {
		if c.Sink.OnEncoded(FileProgress{Name: f.Name, Bytes: len(f.Data), Index: i, Total: len(files)}) {
			return nil, EncodeReport{}, stegoerr.Cancelled("encode cancelled by progress sink")
		}
	}

	return out, EncodeReport{PSNRdB: psnr, ContainerSize: len(blob)}, nil
}

// Decode extracts and returns every file embedded in encoded[headerLen:].
// If the container is encrypted and password is empty, provider is invoked
// to obtain one; provider may be nil if the caller already knows no
// password will be needed (an encrypted container then fails with
// KeyRequired).
func (c *Coordinator) Decode(encoded []byte, headerLen int, password string, provider PasswordProvider) ([]container.File, error) {
	header, payloadRegion, err := readHeaderAndRegion(encoded, headerLen)
	if err != nil {
		return nil, err
	}

	mode := QualityMode(header.Mode)
	k := mode.K()
	if int(header.Len)*8 > k.Capacity(len(payloadRegion)) {
		return nil, stegoerr.Format("declared TOTAL_LEN exceeds available body capacity")
	}
	envelopeOrContainer, err := extractPayload(payloadRegion, k, header.Len)
	if err != nil {
		return nil, err
	}

	var plain []byte
	switch header.Tag {
	case crypto.VersionPlaintext:
		plain = envelopeOrContainer
	case crypto.VersionLegacyCBC, crypto.VersionGCM:
		if password == "" {
			if provider == nil {
				return nil, stegoerr.KeyRequired("encrypted data found, no password supplied")
			}
			decision := provider()
			if decision.Cancel {
				return nil, stegoerr.Cancelled("password entry cancelled")
			}
			password = decision.Password
		}
		if err := crypto.ValidateKey(password); err != nil {
			return nil, err
		}
		plain, err = crypto.Open(envelopeOrContainer, password, header.Tag)
		if err != nil {
			return nil, err
		}
	default:
		return nil, stegoerr.Format("unknown version tag")
	}

	files, _, err := container.Unmarshal(plain)
	if err != nil {
		return nil, err
	}

	for i, f := range files {
		if c.Sink.OnDecoded(FileProgress{Name: f.Name, Bytes: len(f.Data), Index: i, Total: len(files)}) {
			return nil, stegoerr.Cancelled("decode cancelled by progress sink")
		}
	}

	return files, nil
}

// readHeaderAndRegion extracts the fixed-depth BitstreamHeader and returns
// it along with the carrier sub-slice where the payload lives.
func readHeaderAndRegion(encoded []byte, headerLen int) (container.BitstreamHeader, []byte, error) {
	if headerLen < 0 || headerLen > len(encoded) {
		return container.BitstreamHeader{}, nil, stegoerr.Format("header length exceeds carrier size")
	}
	body := encoded[headerLen:]

	headerBytes := headerCarrierBytes()
	if len(body) < headerBytes {
		return container.BitstreamHeader{}, nil, stegoerr.NoData("carrier too small for a bitstream header")
	}

	raw, err := lsb.Extract(body[:headerBytes], headerK, container.BitstreamHeaderLen*8)
	if err != nil {
		return container.BitstreamHeader{}, nil, err
	}
	header, err := container.DecodeBitstreamHeader(raw)
	if err != nil {
		return container.BitstreamHeader{}, nil, err
	}
	if header.Mode > byte(QualityLow) {
		return container.BitstreamHeader{}, nil, stegoerr.NoData("unrecognized quality mode byte")
	}
	if header.Len == 0 {
		return container.BitstreamHeader{}, nil, stegoerr.NoData("zero-length payload declared")
	}
	return header, body[headerBytes:], nil
}

// extractPayload reads exactly length bytes of payload from region at bit
// depth k, trimming lsb.Extract's byte-rounded output to the exact length
// recorded in the BitstreamHeader.
func extractPayload(region []byte, k lsb.K, length uint64) ([]byte, error) {
	raw, err := lsb.Extract(region, k, int(length)*8)
	if err != nil {
		return nil, err
	}
	return raw[:length], nil
}
