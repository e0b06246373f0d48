package vfs

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// HashBytes returns the hex-encoded SHA3-256 digest of data, the common
// helper every Backend's File.Hash implementation calls.
func HashBytes(data []byte) (string, error) {
	sum := sha3.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
