package stego

import "testing"

func TestMaxPayloadBytesRatios(t *testing.T) {
	const body = 1 << 20

	tests := []struct {
		mode  QualityMode
		ratio int
	}{
		{mode: QualityHigh, ratio: 8},
		{mode: QualityNormal, ratio: 4},
		{mode: QualityLow, ratio: 2},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			got := MaxPayloadBytes(body, tt.mode, 1)
			ideal := body / tt.ratio
			if got >= ideal {
				t.Errorf("capacity %d not below ideal %d (overhead missing)", got, ideal)
			}
			// Overhead is tens of bytes, not a meaningful fraction.
			if got < ideal-100 {
				t.Errorf("capacity %d too far below ideal %d", got, ideal)
			}
		})
	}
}

func TestMaxPayloadBytesMonotonicInBody(t *testing.T) {
	prev := -1
	for _, body := range []int{0, 100, 1000, 10_000, 100_000, 1_000_000} {
		got := MaxPayloadBytes(body, QualityNormal, 1)
		if got < prev {
			t.Fatalf("capacity decreased: body=%d gives %d, previous was %d", body, got, prev)
		}
		prev = got
	}
}

func TestMaxPayloadBytesFileOverhead(t *testing.T) {
	const body = 1 << 20
	one := MaxPayloadBytes(body, QualityNormal, 1)
	ten := MaxPayloadBytes(body, QualityNormal, 10)
	if ten >= one {
		t.Errorf("ten files (%d) should cost more overhead than one (%d)", ten, one)
	}
	if one-ten != 9*perFileOverhead {
		t.Errorf("per-file overhead delta = %d, want %d", one-ten, 9*perFileOverhead)
	}
}

func TestMaxPayloadBytesFloorsAtZero(t *testing.T) {
	if got := MaxPayloadBytes(10, QualityHigh, 1); got != 0 {
		t.Errorf("tiny carrier capacity = %d, want 0", got)
	}
	if got := MaxPayloadBytes(0, QualityLow, 5); got != 0 {
		t.Errorf("empty carrier capacity = %d, want 0", got)
	}
}

func TestQualityModeMapping(t *testing.T) {
	if QualityHigh.Ratio() != 8 || QualityNormal.Ratio() != 4 || QualityLow.Ratio() != 2 {
		t.Error("mode ratios do not match 8/4/2")
	}
	if int(QualityHigh.K()) != 1 || int(QualityNormal.K()) != 2 || int(QualityLow.K()) != 4 {
		t.Error("mode bit depths do not match 1/2/4")
	}

	for _, s := range []string{"high", "normal", "low"} {
		mode, ok := ParseQualityMode(s)
		if !ok || mode.String() != s {
			t.Errorf("ParseQualityMode(%q) = %v, %v", s, mode, ok)
		}
	}
	if _, ok := ParseQualityMode("ultra"); ok {
		t.Error("ParseQualityMode accepted an unknown mode")
	}
}
