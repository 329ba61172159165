// Package stego orchestrates the end-to-end hide/extract pipelines: the
// Coordinator drives container build, optional encryption, and LSB
// embedding; the Analyzer inspects a carrier without extracting; and
// MaxPayloadBytes estimates how much a carrier can hold.
package stego

import "ghostbit/lsb"

// QualityMode selects how many low bits of each carrier byte carry
// payload: fewer bits means less audible distortion, more bits means more
// capacity.
type QualityMode int

const (
	// QualityHigh uses 1 bit per carrier byte (ratio 8, least audible).
	QualityHigh QualityMode = iota
	// QualityNormal uses 2 bits per carrier byte (ratio 4).
	QualityNormal
	// QualityLow uses 4 bits per carrier byte (ratio 2, most capacity).
	QualityLow
)

// K returns the LSB bit depth for this mode.
func (m QualityMode) K() lsb.K {
	switch m {
	case QualityHigh:
		return lsb.K1
	case QualityNormal:
		return lsb.K2
	case QualityLow:
		return lsb.K4
	default:
		return lsb.K1
	}
}

// Ratio returns the carrier-bits-per-payload-bit ratio (8, 4, or 2).
func (m QualityMode) Ratio() int {
	return 8 / int(m.K())
}

func (m QualityMode) String() string {
	switch m {
	case QualityHigh:
		return "high"
	case QualityNormal:
		return "normal"
	case QualityLow:
		return "low"
	default:
		return "unknown"
	}
}

// ParseQualityMode maps a CLI/API string to a QualityMode.
func ParseQualityMode(s string) (QualityMode, bool) {
	switch s {
	case "high":
		return QualityHigh, true
	case "normal":
		return QualityNormal, true
	case "low":
		return QualityLow, true
	default:
		return 0, false
	}
}

// FileProgress describes one file as it is processed, passed to
// ProgressSink callbacks.
type FileProgress struct {
	Name  string
	Bytes int
	Index int
	Total int
}

// ProgressSink receives synchronous notifications once per processed file.
// Returning true from either method requests cooperative cancellation: the
// Coordinator aborts before emitting any further file on decode, or before
// returning on encode.
type ProgressSink interface {
	OnEncoded(p FileProgress) (cancel bool)
	OnDecoded(p FileProgress) (cancel bool)
}

// NopProgressSink implements ProgressSink with no-ops; it never cancels.
type NopProgressSink struct{}

func (NopProgressSink) OnEncoded(FileProgress) bool { return false }
func (NopProgressSink) OnDecoded(FileProgress) bool { return false }

// PasswordDecision is the result of a PasswordProvider callback: either a
// password to use, or a cancellation request.
type PasswordDecision struct {
	Password string
	Cancel   bool
}

// Provide returns a PasswordDecision that supplies a password.
func Provide(password string) PasswordDecision {
	return PasswordDecision{Password: password}
}

// Cancel returns a PasswordDecision that aborts the operation.
func Cancel() PasswordDecision {
	return PasswordDecision{Cancel: true}
}

// PasswordProvider is invoked when a v1/v2 envelope is encountered on
// decode and no password was supplied up front.
type PasswordProvider func() PasswordDecision
