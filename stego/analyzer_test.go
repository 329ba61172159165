package stego

import (
	"testing"

	"ghostbit/container"
	"ghostbit/crypto"
)

func TestAnalyzePlaintextListsFiles(t *testing.T) {
	carrier := makeCarrier(64 * 1024)
	files := []container.File{
		{Name: "one.txt", Data: []byte("first")},
		{Name: "two.bin", Data: make([]byte, 300)},
	}

	encoded, _, err := NewCoordinator(nil).Encode(carrier, wavHeaderLen, files, QualityLow, "")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	report := NewAnalyzer().Analyze(encoded, wavHeaderLen, "")
	if !report.HasHiddenData {
		t.Fatal("HasHiddenData = false, want true")
	}
	if report.CipherVersion != crypto.VersionPlaintext {
		t.Errorf("CipherVersion = %d, want 0", report.CipherVersion)
	}
	if report.Mode != QualityLow {
		t.Errorf("Mode = %v, want low", report.Mode)
	}
	if report.FileCount != 2 {
		t.Fatalf("FileCount = %d, want 2", report.FileCount)
	}
	if report.Files[0].Name != "one.txt" || report.Files[0].Size != 5 {
		t.Errorf("file 0 = %+v", report.Files[0])
	}
	if report.Files[1].Name != "two.bin" || report.Files[1].Size != 300 {
		t.Errorf("file 1 = %+v", report.Files[1])
	}
	if report.TotalSize != 305 {
		t.Errorf("TotalSize = %d, want 305", report.TotalSize)
	}
}

func TestAnalyzeEncryptedWithoutPassword(t *testing.T) {
	carrier := makeCarrier(32 * 1024)
	files := []container.File{{Name: "s.txt", Data: []byte("hidden")}}

	encoded, report, err := NewCoordinator(nil).Encode(carrier, wavHeaderLen, files, QualityNormal, "p@ss")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got := NewAnalyzer().Analyze(encoded, wavHeaderLen, "")
	if !got.HasHiddenData {
		t.Fatal("HasHiddenData = false, want true")
	}
	if got.CipherVersion != crypto.VersionGCM {
		t.Errorf("CipherVersion = %d, want 2", got.CipherVersion)
	}
	// Locked: envelope size only, no file listing.
	if got.FileCount != 0 || len(got.Files) != 0 {
		t.Errorf("locked report lists files: %+v", got.Files)
	}
	if got.TotalSize != report.ContainerSize {
		t.Errorf("TotalSize = %d, want envelope size %d", got.TotalSize, report.ContainerSize)
	}
}

func TestAnalyzeEncryptedWithPassword(t *testing.T) {
	carrier := makeCarrier(32 * 1024)
	files := []container.File{{Name: "s.txt", Data: []byte("hidden")}}

	encoded, _, err := NewCoordinator(nil).Encode(carrier, wavHeaderLen, files, QualityNormal, "p@ss")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got := NewAnalyzer().Analyze(encoded, wavHeaderLen, "p@ss")
	if !got.HasHiddenData || got.FileCount != 1 {
		t.Fatalf("report = %+v, want 1 listed file", got)
	}
	if got.Files[0].Name != "s.txt" || got.Files[0].Size != 6 {
		t.Errorf("file 0 = %+v", got.Files[0])
	}
}

func TestAnalyzeEncryptedWrongPassword(t *testing.T) {
	carrier := makeCarrier(32 * 1024)
	files := []container.File{{Name: "s.txt", Data: []byte("hidden")}}

	encoded, _, err := NewCoordinator(nil).Encode(carrier, wavHeaderLen, files, QualityNormal, "right")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	// A wrong password downgrades to the locked view, never an error.
	got := NewAnalyzer().Analyze(encoded, wavHeaderLen, "wrong")
	if !got.HasHiddenData {
		t.Error("HasHiddenData = false, want true")
	}
	if got.FileCount != 0 {
		t.Errorf("FileCount = %d, want 0", got.FileCount)
	}
}

func TestAnalyzeCleanAudio(t *testing.T) {
	tests := []struct {
		name    string
		carrier []byte
	}{
		{name: "constant body", carrier: make([]byte, wavHeaderLen+8192)},
		{name: "pseudo noise", carrier: makeCarrier(8192)},
		{name: "too short", carrier: make([]byte, wavHeaderLen+4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := NewAnalyzer().Analyze(tt.carrier, wavHeaderLen, "")
			if report.HasHiddenData {
				t.Errorf("HasHiddenData = true on %s", tt.name)
			}
		})
	}
}

func TestAnalyzeCorruptedContainer(t *testing.T) {
	carrier := makeCarrier(32 * 1024)
	files := []container.File{{Name: "s.txt", Data: []byte("payload")}}

	encoded, _, err := NewCoordinator(nil).Encode(carrier, wavHeaderLen, files, QualityNormal, "")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	// Corrupt a payload-carrying bit inside the file's data region. At
	// k=2, payload byte 25 (past the 23-byte header+name prefix, within
	// "payload") rides in carrier bytes 100..103 of the payload region.
	tampered := make([]byte, len(encoded))
	copy(tampered, encoded)
	tampered[wavHeaderLen+40+100] ^= 0x01

	report := NewAnalyzer().Analyze(tampered, wavHeaderLen, "")
	if report.HasHiddenData {
		t.Error("corrupt plaintext container still reported as hidden data")
	}
	if report.FileCount != 0 {
		t.Errorf("FileCount = %d, want 0 after corruption", report.FileCount)
	}
}
