// Package crypto implements the authenticated encryption envelope that
// protects an embedded container: Argon2id key derivation plus two cipher
// versions — v2 (AES-256-GCM, the only version Seal produces) and v1
// (AES-256-CBC + HMAC-SHA256, read-only legacy).
package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"

	"ghostbit/stegoerr"
)

// CipherVersion identifies which envelope format a blob uses.
type CipherVersion byte

const (
	VersionPlaintext CipherVersion = 0
	VersionLegacyCBC CipherVersion = 1
	VersionGCM       CipherVersion = 2
)

const (
	keyLen      = 32
	saltLen     = 16
	nonceLen    = 12
	gcmTagLen   = 16
	cbcIVLen    = 16
	hmacLen     = 32
	aesBlockLen = 16

	// Argon2id parameters, locked for interoperability: changing any of
	// these makes existing carriers undecryptable.
	argonMemoryKiB  = 64 * 1024
	argonIterations = 3
	argonParallel   = 4
)

// ValidateKey bounds the password length sanely. Empty passwords are
// rejected because an empty password defeats the point of encrypting;
// excessively long input is rejected to keep Argon2id's cost bounded.
func ValidateKey(password string) error {
	if len(password) == 0 {
		return stegoerr.Format("password cannot be empty")
	}
	if len(password) > 1024 {
		return stegoerr.Format("password is too long")
	}
	return nil
}

// deriveKey runs Argon2id over password and salt with the fixed parameters
// above.
func deriveKey(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, argonIterations, argonMemoryKiB, argonParallel, keyLen)
}

// Seal encrypts plaintext under password, always producing a v2
// (AES-256-GCM) envelope: SALT(16) | NONCE(12) | CIPHERTEXT | TAG(16).
func Seal(plaintext []byte, password string) ([]byte, CipherVersion, error) {
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, 0, stegoerr.IO("failed to generate salt", err)
	}
	key := deriveKey(password, salt)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, 0, stegoerr.IO("failed to initialize cipher", err)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, nonceLen)
	if err != nil {
		return nil, 0, stegoerr.IO("failed to initialize GCM", err)
	}

	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, 0, stegoerr.IO("failed to generate nonce", err)
	}

	// Seal appends the tag to the ciphertext; AAD is fixed empty (see
	// DESIGN.md Open Questions — the AAD choice is pinned for
	// interoperability, not derived from the plaintext's own header).
	sealed := gcm.Seal(nil, nonce, plaintext, nil)

	blob := make([]byte, 0, saltLen+nonceLen+len(sealed))
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	blob = append(blob, sealed...)
	return blob, VersionGCM, nil
}

// Open decrypts blob under password according to version. Every failure —
// wrong password, tag mismatch, truncated blob, unknown version — returns
// the same uniform AuthError so no information about which part failed
// leaks to the caller.
func Open(blob []byte, password string, version CipherVersion) ([]byte, error) {
	switch version {
	case VersionGCM:
		return openGCM(blob, password)
	case VersionLegacyCBC:
		return openLegacyCBC(blob, password)
	default:
		return nil, stegoerr.Auth().WithInternal("unknown cipher version %d", version)
	}
}

func openGCM(blob []byte, password string) ([]byte, error) {
	if len(blob) < saltLen+nonceLen+gcmTagLen {
		return nil, stegoerr.Auth().WithInternal("truncated v2 blob")
	}
	salt := blob[:saltLen]
	nonce := blob[saltLen : saltLen+nonceLen]
	ciphertext := blob[saltLen+nonceLen:]

	key := deriveKey(password, salt)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, stegoerr.Auth().WithInternal("cipher init: %v", err)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, nonceLen)
	if err != nil {
		return nil, stegoerr.Auth().WithInternal("gcm init: %v", err)
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, stegoerr.Auth().WithInternal("gcm open: %v", err).Wrap(err)
	}
	return plaintext, nil
}

// openLegacyCBC decrypts a v1 blob: SALT(16) | IV(16) | CIPHERTEXT (PKCS#7
// padded) | MAC(32), where MAC = HMAC-SHA256 over SALT|IV|CIPHERTEXT under
// the same derived key. This format exists only so carriers written by
// older releases stay readable — Seal never produces it.
func openLegacyCBC(blob []byte, password string) ([]byte, error) {
	if len(blob) < saltLen+cbcIVLen+aesBlockLen+hmacLen {
		return nil, stegoerr.Auth().WithInternal("truncated v1 blob")
	}
	salt := blob[:saltLen]
	iv := blob[saltLen : saltLen+cbcIVLen]
	macStart := len(blob) - hmacLen
	ciphertext := blob[saltLen+cbcIVLen : macStart]
	mac := blob[macStart:]

	if len(ciphertext) == 0 || len(ciphertext)%aesBlockLen != 0 {
		return nil, stegoerr.Auth().WithInternal("ciphertext not block-aligned")
	}

	key := deriveKey(password, salt)

	expectedMAC := hmac.New(sha256.New, key)
	expectedMAC.Write(blob[:macStart])
	if !hmac.Equal(mac, expectedMAC.Sum(nil)) {
		return nil, stegoerr.Auth().WithInternal("hmac mismatch")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, stegoerr.Auth().WithInternal("cipher init: %v", err)
	}
	mode := cipher.NewCBCDecrypter(block, iv)
	padded := make([]byte, len(ciphertext))
	mode.CryptBlocks(padded, ciphertext)

	plaintext, err := unpadPKCS7(padded)
	if err != nil {
		return nil, stegoerr.Auth().WithInternal("padding: %v", err)
	}
	return plaintext, nil
}

func unpadPKCS7(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty block")
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > aesBlockLen || padLen > len(data) {
		return nil, fmt.Errorf("invalid padding length %d", padLen)
	}
	padding := data[len(data)-padLen:]
	if !bytes.Equal(padding, bytes.Repeat([]byte{byte(padLen)}, padLen)) {
		return nil, fmt.Errorf("invalid padding bytes")
	}
	return data[:len(data)-padLen], nil
}
