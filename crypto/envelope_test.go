package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"testing"

	"ghostbit/stegoerr"
)

func TestSealOpenRoundTrip(t *testing.T) {
	plaintext := []byte("the quick brown fox jumps over the lazy dog")

	blob, version, err := Seal(plaintext, "p@ss")
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if version != VersionGCM {
		t.Errorf("version = %d, want %d", version, VersionGCM)
	}
	if wantLen := saltLen + nonceLen + len(plaintext) + gcmTagLen; len(blob) != wantLen {
		t.Errorf("blob length = %d, want %d", len(blob), wantLen)
	}

	got, err := Open(blob, "p@ss", VersionGCM)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Errorf("Open = %q, want %q", got, plaintext)
	}
}

func TestOpenWrongPasswordUniformError(t *testing.T) {
	blob, _, err := Seal([]byte("secret"), "correct")
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	_, err1 := Open(blob, "wrong", VersionGCM)
	_, err2 := Open(blob, "correcta", VersionGCM)
	for i, err := range []error{err1, err2} {
		if !errors.Is(err, stegoerr.Auth()) {
			t.Fatalf("err%d = %v, want auth error", i+1, err)
		}
	}
	// Same public message regardless of which byte differs.
	if err1.Error() != err2.Error() {
		t.Errorf("error messages differ: %q vs %q", err1.Error(), err2.Error())
	}
}

func TestOpenDetectsTampering(t *testing.T) {
	blob, _, err := Seal([]byte("payload bytes that matter"), "pw")
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	tests := []struct {
		name   string
		offset int
	}{
		{name: "ciphertext byte", offset: saltLen + nonceLen},
		{name: "tag byte", offset: len(blob) - 1},
		{name: "nonce byte", offset: saltLen},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tampered := make([]byte, len(blob))
			copy(tampered, blob)
			tampered[tt.offset] ^= 0x01

			if _, err := Open(tampered, "pw", VersionGCM); !errors.Is(err, stegoerr.Auth()) {
				t.Errorf("Open tampered = %v, want auth error", err)
			}
		})
	}
}

func TestOpenTruncatedBlob(t *testing.T) {
	for _, version := range []CipherVersion{VersionGCM, VersionLegacyCBC} {
		if _, err := Open(make([]byte, 10), "pw", version); !errors.Is(err, stegoerr.Auth()) {
			t.Errorf("Open truncated v%d = %v, want auth error", version, err)
		}
	}
}

func TestOpenUnknownVersion(t *testing.T) {
	if _, err := Open(make([]byte, 100), "pw", CipherVersion(9)); !errors.Is(err, stegoerr.Auth()) {
		t.Errorf("Open unknown version = %v, want auth error", err)
	}
}

// sealLegacy builds a v1 blob the way older releases wrote them:
// SALT | IV | CBC ciphertext (PKCS#7) | HMAC-SHA256 over everything before
// the MAC, all under the same derived key.
func sealLegacy(t *testing.T, plaintext []byte, password string) []byte {
	t.Helper()

	salt := bytes.Repeat([]byte{0x11}, saltLen)
	iv := bytes.Repeat([]byte{0x22}, cbcIVLen)
	key := deriveKey(password, salt)

	padLen := aesBlockLen - len(plaintext)%aesBlockLen
	padded := append(append([]byte{}, plaintext...), bytes.Repeat([]byte{byte(padLen)}, padLen)...)

	block, err := aes.NewCipher(key)
	if err != nil {
		t.Fatalf("aes.NewCipher: %v", err)
	}
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	blob := append(append(append([]byte{}, salt...), iv...), ciphertext...)
	mac := hmac.New(sha256.New, key)
	mac.Write(blob)
	return mac.Sum(blob)
}

func TestOpenLegacyCBC(t *testing.T) {
	plaintext := []byte("legacy container bytes")
	blob := sealLegacy(t, plaintext, "old-password")

	got, err := Open(blob, "old-password", VersionLegacyCBC)
	if err != nil {
		t.Fatalf("Open legacy: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Errorf("Open legacy = %q, want %q", got, plaintext)
	}

	if _, err := Open(blob, "wrong", VersionLegacyCBC); !errors.Is(err, stegoerr.Auth()) {
		t.Errorf("Open legacy wrong password = %v, want auth error", err)
	}

	tampered := make([]byte, len(blob))
	copy(tampered, blob)
	tampered[saltLen+cbcIVLen] ^= 0x01
	if _, err := Open(tampered, "old-password", VersionLegacyCBC); !errors.Is(err, stegoerr.Auth()) {
		t.Errorf("Open legacy tampered = %v, want auth error", err)
	}
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{name: "normal", password: "p@ss", wantErr: false},
		{name: "empty", password: "", wantErr: true},
		{name: "too long", password: string(make([]byte, 1025)), wantErr: true},
		{name: "max length", password: string(make([]byte, 1024)), wantErr: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKey(tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateKey(%q...) err = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
		})
	}
}

func TestSealRandomizesSaltAndNonce(t *testing.T) {
	blob1, _, err := Seal([]byte("same plaintext"), "pw")
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	blob2, _, err := Seal([]byte("same plaintext"), "pw")
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if bytes.Equal(blob1[:saltLen+nonceLen], blob2[:saltLen+nonceLen]) {
		t.Error("two seals produced identical salt and nonce")
	}
}
