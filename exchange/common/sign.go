package common

import (
	"crypto/hmac"
	"encoding/base64"
	"encoding/hex"
	"hash"
)

// HexSignature returns the hex HMAC of payload under secret, with the
// hash chosen by the venue (sha512.New for Bittrex-style query signing,
// sha512.New384 for Gemini payloads).
func HexSignature(h func() hash.Hash, secret, payload string) string {
	m := hmac.New(h, []byte(secret))
	m.Write([]byte(payload))
	return hex.EncodeToString(m.Sum(nil))
}

// Base64Payload encodes a private-request body the Gemini way.
func Base64Payload(raw []byte) string {
	return base64.StdEncoding.EncodeToString(raw)
}
